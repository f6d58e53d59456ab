package mesh

// CellKind is the geometric shape of a cell
type CellKind int

const (
	Vertex CellKind = iota
	Line
	Triangle
	QuadraticTriangle
	Quad
	QuadraticQuad
	Tet
	QuadraticTet
	Prism
	QuadraticPrism
	Hex
	QuadraticHex
)

func (c CellKind) String() string {
	return [...]string{"Vertex", "Line", "Triangle", "QuadraticTriangle", "Quad", "QuadraticQuad",
		"Tet", "QuadraticTet", "Prism", "QuadraticPrism", "Hex", "QuadraticHex"}[c]
}

// VTKType returns the VTK cell type id for the shape
func (c CellKind) VTKType() uint8 {
	return [...]uint8{1, 3, 5, 22, 9, 23, 10, 24, 13, 26, 12, 25}[c]
}

// Element topology codes of the neutral format
const (
	TopoLine2   = 0
	TopoTri3    = 2
	TopoTri6    = 3
	TopoQuad4   = 4
	TopoQuad8   = 5
	TopoTetra4  = 6
	TopoWedge6  = 7
	TopoBrick8  = 8
	TopoPoint   = 9
	TopoTetra10 = 10
	TopoWedge15 = 11
	TopoBrick20 = 12
)

// Topology is the cell kind and exact node count of a topology code
type Topology struct {
	Kind      CellKind
	NodeCount int
}

var topologies = map[int]Topology{
	TopoPoint:   {Vertex, 1},
	TopoLine2:   {Line, 2},
	TopoTri3:    {Triangle, 3},
	TopoTri6:    {QuadraticTriangle, 6},
	TopoQuad4:   {Quad, 4},
	TopoQuad8:   {QuadraticQuad, 8},
	TopoTetra4:  {Tet, 4},
	TopoTetra10: {QuadraticTet, 10},
	TopoWedge6:  {Prism, 6},
	TopoWedge15: {QuadraticPrism, 15},
	TopoBrick8:  {Hex, 8},
	TopoBrick20: {QuadraticHex, 20},
}

// LookupTopology returns the shape for a topology code. Codes not in the
// table are unsupported.
func LookupTopology(code int) (Topology, bool) {
	t, ok := topologies[code]
	return t, ok
}
