package results

import (
	"errors"
	"fmt"

	"github.com/notargets/femview/mesh"
	"github.com/notargets/femview/neutral"
)

// ErrNoVectors means a result file has nothing for the requested output set
var ErrNoVectors = errors.New("no vectors found for this step")

// Bound is one named vector laid out on the mesh. Groups[g] is aligned with
// the cells of mesh group g for elemental values and with the shared points
// for nodal values.
type Bound struct {
	Name   string
	Kind   neutral.EntityKind
	Groups [][]float64
}

// Bind lays every vector of one output set onto the mesh. Ids without a
// value stay zero. Vectors sharing a name within the set are merged, later
// values winning.
func Bind(m *mesh.Mesh, vectors []neutral.ResultVector, setID int) (map[string]*Bound, error) {
	bound := make(map[string]*Bound)
	for _, v := range vectors {
		if v.SetID != setID {
			continue
		}
		b, ok := bound[v.Name]
		if !ok {
			b = newBound(m, v.Name, v.Kind)
			bound[v.Name] = b
		} else if b.Kind != v.Kind {
			return nil, fmt.Errorf("vector %q in set %d is both %s and %s", v.Name, setID, b.Kind, v.Kind)
		}
		switch v.Kind {
		case neutral.Elemental:
			bindElemental(m, b, v.Values)
		case neutral.Nodal:
			bindNodal(m, b, v.Values)
		}
	}
	if len(bound) == 0 {
		return nil, fmt.Errorf("set %d: %w", setID, ErrNoVectors)
	}
	return bound, nil
}

func newBound(m *mesh.Mesh, name string, kind neutral.EntityKind) *Bound {
	b := &Bound{Name: name, Kind: kind, Groups: make([][]float64, len(m.Groups))}
	for g := range m.Groups {
		n := m.NumPoints()
		if kind == neutral.Elemental {
			n = m.Groups[g].Len()
		}
		b.Groups[g] = make([]float64, n)
	}
	return b
}

func bindElemental(m *mesh.Mesh, b *Bound, values map[int]float64) {
	for g := range m.Groups {
		for local, id := range m.Groups[g].ElementIDs {
			if v, ok := values[id]; ok {
				b.Groups[g][local] = v
			}
		}
	}
}

func bindNodal(m *mesh.Mesh, b *Bound, values map[int]float64) {
	for id, v := range values {
		i, ok := m.Index.Index(id)
		if !ok || i >= m.NumPoints() {
			continue
		}
		for g := range b.Groups {
			b.Groups[g][i] = v
		}
	}
}
