package results

import (
	"github.com/james-bowman/sparse"
	"github.com/notargets/femview/mesh"
	"github.com/notargets/femview/neutral"
	"gonum.org/v1/gonum/mat"
)

// incidence returns the point x cell incidence matrix of a group and the
// number of group cells touching each point
func incidence(m *mesh.Mesh, g int) (*sparse.CSR, []float64) {
	grp := &m.Groups[g]
	dok := sparse.NewDOK(m.NumPoints(), grp.Len())
	for c, cell := range grp.Cells {
		for _, v := range cell.Vertices {
			dok.Set(v, c, 1)
		}
	}
	csr := dok.ToCSR()
	ones := make([]float64, grp.Len())
	for i := range ones {
		ones[i] = 1
	}
	counts := make([]float64, m.NumPoints())
	csr.MulVecTo(counts, false, ones)
	return csr, counts
}

// CellToPoint averages an elemental field onto the points of each group.
// A point takes the mean over the group's cells that use it; points the
// group does not touch stay zero.
func CellToPoint(m *mesh.Mesh, f *Field) *Field {
	if f.Kind != neutral.Elemental {
		return nil
	}
	out := &Field{
		Name:       f.Name + "_nodal",
		Kind:       neutral.Nodal,
		Components: f.Components,
		Groups:     make([]*mat.Dense, len(f.Groups)),
	}
	np := m.NumPoints()
	for g, d := range f.Groups {
		if d == nil || np == 0 {
			continue
		}
		csr, counts := incidence(m, g)
		avg := mat.NewDense(np, f.Components, nil)
		col := make([]float64, m.Groups[g].Len())
		sum := make([]float64, np)
		for c := 0; c < f.Components; c++ {
			mat.Col(col, c, d)
			for i := range sum {
				sum[i] = 0
			}
			csr.MulVecTo(sum, false, col)
			for i, n := range counts {
				if n > 0 {
					avg.Set(i, c, sum[i]/n)
				}
			}
		}
		out.Groups[g] = avg
	}
	return out
}
