package neutral

// MaxElementNodes is the number of connectivity slots of an element record
const MaxElementNodes = 20

// Header is the file title and declared format version
type Header struct {
	Title   string
	Version string
}

// Node is a single decoded node row
type Node struct {
	ID    int
	Coord [3]float64
}

// NodeTable maps source node ids to coordinates. Ids are sparse.
type NodeTable map[int][3]float64

// Property groups elements sharing a material and physical definition
type Property struct {
	ID         int
	MaterialID int
	Title      string
}

// Element is a decoded element record. Nodes holds source node ids in the
// shape's canonical order with zero placeholders removed.
type Element struct {
	ID         int
	PropertyID int
	Topology   int
	Nodes      []int
}

type Material struct {
	ID    int
	Title string
}

// Layout carries the record strides and result block codes, all of which
// vary between producer versions
type Layout struct {
	NodeMinTokens     int
	PropertyStride    int
	ElementStride     int
	OutputSetBlock    int
	OutputVectorBlock int
	VectorHeaderLines int
}

func DefaultLayout() Layout {
	return Layout{
		NodeMinTokens:     14,
		PropertyStride:    7,
		ElementStride:     7,
		OutputSetBlock:    450,
		OutputVectorBlock: 451,
		VectorHeaderLines: 7,
	}
}
