package results

import (
	"regexp"
	"sort"

	"github.com/notargets/femview/neutral"
	"github.com/notargets/femview/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	componentName = regexp.MustCompile(`^(.+)-(node|elem)-([123])$`)
	scalarName    = regexp.MustCompile(`^(.+)-(node|elem)$`)
)

// Field is a display field. Groups[g] has one row per cell (elemental) or
// per shared point (nodal) of mesh group g and one column per component.
type Field struct {
	Name       string
	Kind       neutral.EntityKind
	Components int
	Groups     []*mat.Dense
}

// Range returns the value range over group g, using the magnitude for
// multi-component fields. rows limits the range to those rows of the group;
// nil means every row.
func (f *Field) Range(g int, rows []int) (lo, hi float64) {
	d := f.Groups[g]
	if d == nil {
		return 0, 0
	}
	if rows == nil {
		n, _ := d.Dims()
		rows = make([]int, n)
		for r := range rows {
			rows[r] = r
		}
	}
	if len(rows) == 0 {
		return 0, 0
	}
	vals := make([]float64, len(rows))
	for i, r := range rows {
		if f.Components == 1 {
			vals[i] = d.At(r, 0)
		} else {
			vals[i] = floats.Norm(d.RawRowView(r), 2)
		}
	}
	return floats.Min(vals), floats.Max(vals)
}

// Values returns group g flattened row by row
func (f *Field) Values(g int) []float64 {
	d := f.Groups[g]
	if d == nil {
		return nil
	}
	rows, cols := d.Dims()
	out := make([]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		out = append(out, d.RawRowView(r)...)
	}
	return out
}

type componentSet struct {
	base, suffix string
	parts        [3]*Bound
}

// GroupFields merges bound vectors into display fields. Names of the form
// base-node-1/2/3 (or -elem-) with all three components present become one
// 3-component field called base; base-node and base-elem become a scalar
// called base; any other name is a scalar under its own name. aliases
// renames bases. Fields are returned sorted by name.
func GroupFields(bound map[string]*Bound, aliases map[string]string) (fields []*Field) {
	alias := func(base string) string {
		if a, ok := aliases[base]; ok && a != "" {
			return a
		}
		return base
	}
	type named struct {
		field  *Field
		source string
	}
	var out []named

	sets := make(map[string]*componentSet)
	names := make([]string, 0, len(bound))
	for name := range bound {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b := bound[name]
		if m := componentName.FindStringSubmatch(name); m != nil {
			key := m[1] + "-" + m[2]
			cs, ok := sets[key]
			if !ok {
				cs = &componentSet{base: m[1], suffix: m[2]}
				sets[key] = cs
			}
			cs.parts[m[3][0]-'1'] = b
			continue
		}
		if m := scalarName.FindStringSubmatch(name); m != nil {
			out = append(out, named{newField(alias(m[1]), b), m[1] + "-" + m[2]})
			continue
		}
		out = append(out, named{newField(alias(name), b), name})
	}
	for _, cs := range sets {
		if cs.parts[0] != nil && cs.parts[1] != nil && cs.parts[2] != nil &&
			cs.parts[0].Kind == cs.parts[1].Kind && cs.parts[1].Kind == cs.parts[2].Kind {
			out = append(out, named{newField(alias(cs.base), cs.parts[:]...), cs.base + "-" + cs.suffix})
			continue
		}
		for _, p := range cs.parts {
			if p != nil {
				out = append(out, named{newField(p.Name, p), p.Name})
			}
		}
	}

	counts := make(map[string]int)
	for _, n := range out {
		counts[n.field.Name]++
	}
	for _, n := range out {
		if counts[n.field.Name] > 1 {
			n.field.Name = n.source
		}
		fields = append(fields, n.field)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return
}

func newField(name string, parts ...*Bound) *Field {
	f := &Field{
		Name:       name,
		Kind:       parts[0].Kind,
		Components: len(parts),
		Groups:     make([]*mat.Dense, len(parts[0].Groups)),
	}
	for g := range f.Groups {
		rows := len(parts[0].Groups[g])
		if rows == 0 {
			continue
		}
		data := make([]float64, rows*f.Components)
		for c, p := range parts {
			for r, v := range p.Groups[g] {
				data[r*f.Components+c] = v
			}
		}
		f.Groups[g] = mat.NewDense(rows, f.Components, data)
	}
	return f
}

// HasNaN reports whether any value of the field is NaN
func (f *Field) HasNaN() bool {
	return utils.IsNan(f.Groups)
}
