package neutral

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// FileBuilder writes neutral files block by block. Records use the default
// Layout, so anything it writes decodes with DefaultLayout.
type FileBuilder struct {
	blocks []string
}

func NewFileBuilder() *FileBuilder {
	return &FileBuilder{}
}

// Raw appends a block with the given body lines
func (b *FileBuilder) Raw(code int, lines ...string) *FileBuilder {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%6d\n", Delimiter, code)
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(Delimiter)
	b.blocks = append(b.blocks, sb.String())
	return b
}

func nullable(title string) string {
	if title == "" {
		return NullTitle
	}
	return title
}

func (b *FileBuilder) Header(title, version string) *FileBuilder {
	return b.Raw(HeaderBlock, nullable(title), version+",")
}

// Nodes appends one node block holding the nodes in the order given
func (b *FileBuilder) Nodes(nodes ...Node) *FileBuilder {
	lines := make([]string, 0, len(nodes)+1)
	for _, n := range nodes {
		lines = append(lines, fmt.Sprintf("%d,0,0,1,46,0,0,0,0,0,0,%s,%s,%s,",
			n.ID, ftoa(n.Coord[0]), ftoa(n.Coord[1]), ftoa(n.Coord[2])))
	}
	lines = append(lines, "-1,-1,-1,-1,-1,-1,-1,-1,-1,-1,-1,0.,0.,0.,")
	return b.Raw(NodeBlock, lines...)
}

// Properties appends one property block, one seven line record per property
func (b *FileBuilder) Properties(props ...Property) *FileBuilder {
	var lines []string
	for _, p := range props {
		lines = append(lines,
			fmt.Sprintf("%d,110,%d,25,1,0,", p.ID, p.MaterialID),
			nullable(p.Title),
			"0,0,0,0,",
			"0,",
			"0,",
			"0,",
			"0,",
		)
	}
	lines = append(lines, "-1,-1,-1,-1,-1,-1,")
	return b.Raw(PropertyBlock, lines...)
}

// Elements appends one element block, one seven line record per element.
// Nodes fill the twenty connectivity slots in order, unused slots are zero.
func (b *FileBuilder) Elements(elements ...Element) *FileBuilder {
	var lines []string
	for _, e := range elements {
		var slots [MaxElementNodes]int
		copy(slots[:], e.Nodes)
		lines = append(lines,
			fmt.Sprintf("%d,124,%d,25,%d,1,0,0,", e.ID, e.PropertyID, e.Topology),
			joinInts(slots[:10]),
			joinInts(slots[10:]),
			"0.,0.,0.,",
			"0.,0.,0.,",
			"0.,0.,0.,",
			"0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,",
		)
	}
	lines = append(lines, "-1,-1,-1,-1,-1,-1,-1,-1,")
	return b.Raw(ElementBlock, lines...)
}

// Material appends a material block
func (b *FileBuilder) Material(m Material) *FileBuilder {
	return b.Raw(MaterialBlock,
		fmt.Sprintf("%d,-601,55,0,0,1,0,", m.ID),
		nullable(m.Title),
		"10,",
		"0,0,0,0,0,0,0,0,0,0,",
	)
}

// OutputSets appends an output set block
func (b *FileBuilder) OutputSets(code int, sets ...TimeSet) *FileBuilder {
	var lines []string
	for _, s := range sets {
		lines = append(lines,
			fmt.Sprintf("%d,", s.ID),
			nullable(s.Title),
			"0,1,",
			ftoa(s.Time)+",",
			"1,",
			"generated",
		)
	}
	return b.Raw(code, lines...)
}

// OutputVectors appends an output vector block. Values are written in
// ascending id order.
func (b *FileBuilder) OutputVectors(code int, vectors ...ResultVector) *FileBuilder {
	var lines []string
	for _, v := range vectors {
		entity := nodalEntityCode
		if v.Kind == Elemental {
			entity = elementalEntityCode
		}
		lines = append(lines,
			fmt.Sprintf("%d,%d,1,", v.SetID, v.ID),
			v.Name,
			"0.,0.,0.,",
			"0,0,0,0,0,0,0,0,0,0,",
			"0,0,0,0,0,0,0,0,0,0,",
			fmt.Sprintf("0,0,1,%d,0,", entity),
			"1,0,1,0,",
		)
		ids := make([]int, 0, len(v.Values))
		for id := range v.Values {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			lines = append(lines, fmt.Sprintf("%d,%s,", id, ftoa(v.Values[id])))
		}
		lines = append(lines, "-1,0.,")
	}
	return b.Raw(code, lines...)
}

func (b *FileBuilder) String() string {
	return strings.Join(b.blocks, "\n") + "\n"
}

func (b *FileBuilder) WriteFile(filename string) error {
	return os.WriteFile(filename, []byte(b.String()), 0644)
}

func ftoa(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += "."
	}
	return s
}

func joinInts(vals []int) string {
	var sb strings.Builder
	for _, v := range vals {
		sb.WriteString(strconv.Itoa(v))
		sb.WriteByte(',')
	}
	return sb.String()
}
