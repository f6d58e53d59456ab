package mesh

import (
	"fmt"
	"io"
	"sort"

	"github.com/notargets/femview/neutral"
)

// DenseNodeIndex maps sparse source node ids onto [0, N), assigned in
// ascending id order
type DenseNodeIndex struct {
	ids   []int
	index map[int]int
}

func NewDenseNodeIndex(nodes neutral.NodeTable) DenseNodeIndex {
	d := DenseNodeIndex{
		ids:   make([]int, 0, len(nodes)),
		index: make(map[int]int, len(nodes)),
	}
	for id := range nodes {
		d.ids = append(d.ids, id)
	}
	sort.Ints(d.ids)
	for i, id := range d.ids {
		d.index[id] = i
	}
	return d
}

func (d DenseNodeIndex) Len() int { return len(d.ids) }

// Index returns the dense index of a source node id
func (d DenseNodeIndex) Index(id int) (int, bool) {
	i, ok := d.index[id]
	return i, ok
}

// SourceID returns the source node id at a dense index
func (d DenseNodeIndex) SourceID(i int) int { return d.ids[i] }

// Cell is one element expressed in dense vertex indices
type Cell struct {
	Kind     CellKind
	Topology int
	Vertices []int
}

// PropertyGroup holds the cells of one property. ElementIDs[i] is the source
// element id of Cells[i]; local indices mean nothing outside the group.
type PropertyGroup struct {
	PropertyID int
	MaterialID int
	Name       string
	Cells      []Cell
	ElementIDs []int
}

func (g *PropertyGroup) Len() int { return len(g.Cells) }

// Points returns the sorted dense indices of the points the group's cells use
func (g *PropertyGroup) Points() []int {
	seen := make(map[int]struct{})
	for _, c := range g.Cells {
		for _, v := range c.Vertices {
			seen[v] = struct{}{}
		}
	}
	points := make([]int, 0, len(seen))
	for v := range seen {
		points = append(points, v)
	}
	sort.Ints(points)
	return points
}

// SkipCause tells why an element produced no cell
type SkipCause uint8

const (
	UnsupportedTopology SkipCause = iota
	TooFewNodes
	MissingNode
)

func (c SkipCause) String() string {
	return [...]string{"unsupported topology", "too few nodes", "missing node"}[c]
}

type SkippedElement struct {
	ElementID int
	Topology  int
	Cause     SkipCause
	NodeID    int // offending node for MissingNode
}

func (s SkippedElement) String() string {
	switch s.Cause {
	case MissingNode:
		return fmt.Sprintf("element %d: %s %d", s.ElementID, s.Cause, s.NodeID)
	default:
		return fmt.Sprintf("element %d: %s (topology %d)", s.ElementID, s.Cause, s.Topology)
	}
}

// Mesh is the assembled geometry. All groups share Points; nothing in a
// Mesh is modified after Assemble returns.
type Mesh struct {
	Index        DenseNodeIndex
	Points       [][3]float64
	Groups       []PropertyGroup
	Skipped      []SkippedElement
	ElementCount int
}

func (m *Mesh) NumPoints() int { return len(m.Points) }

func (m *Mesh) NumCells() (n int) {
	for i := range m.Groups {
		n += m.Groups[i].Len()
	}
	return
}

// Group returns the group with the given display name
func (m *Mesh) Group(name string) (*PropertyGroup, bool) {
	for i := range m.Groups {
		if m.Groups[i].Name == name {
			return &m.Groups[i], true
		}
	}
	return nil, false
}

// GroupName is the display name of a property group
func GroupName(propertyID int, title string) string {
	if title == "" {
		return fmt.Sprintf("Property_%d", propertyID)
	}
	return fmt.Sprintf("Property_%d_%s", propertyID, title)
}

// Assemble builds the dense point array and one group per property id, in
// ascending property id order. Elements with an unsupported topology, too
// few nodes or an unknown node are dropped and listed in Skipped. Nodes
// beyond the topology's count are ignored.
func Assemble(nodes neutral.NodeTable, elements []neutral.Element, props map[int]neutral.Property) *Mesh {
	m := &Mesh{
		Index:        NewDenseNodeIndex(nodes),
		ElementCount: len(elements),
	}
	m.Points = make([][3]float64, m.Index.Len())
	for i, id := range m.Index.ids {
		m.Points[i] = nodes[id]
	}

	partitions := make(map[int][]neutral.Element)
	for _, el := range elements {
		partitions[el.PropertyID] = append(partitions[el.PropertyID], el)
	}
	propIDs := make([]int, 0, len(partitions))
	for id := range partitions {
		propIDs = append(propIDs, id)
	}
	sort.Ints(propIDs)

	for _, pid := range propIDs {
		prop := props[pid]
		g := PropertyGroup{
			PropertyID: pid,
			MaterialID: prop.MaterialID,
			Name:       GroupName(pid, prop.Title),
		}
		for _, el := range partitions[pid] {
			cell, skip, ok := m.cellOf(el)
			if !ok {
				m.Skipped = append(m.Skipped, skip)
				continue
			}
			g.Cells = append(g.Cells, cell)
			g.ElementIDs = append(g.ElementIDs, el.ID)
		}
		if len(g.Cells) > 0 {
			m.Groups = append(m.Groups, g)
		}
	}
	return m
}

func (m *Mesh) cellOf(el neutral.Element) (c Cell, skip SkippedElement, ok bool) {
	skip = SkippedElement{ElementID: el.ID, Topology: el.Topology}
	topo, found := LookupTopology(el.Topology)
	if !found {
		skip.Cause = UnsupportedTopology
		return
	}
	if len(el.Nodes) < topo.NodeCount {
		skip.Cause = TooFewNodes
		return
	}
	for _, id := range el.Nodes {
		if _, found = m.Index.Index(id); !found {
			skip.Cause, skip.NodeID = MissingNode, id
			return
		}
	}
	c = Cell{Kind: topo.Kind, Topology: el.Topology, Vertices: make([]int, topo.NodeCount)}
	for i, id := range el.Nodes[:topo.NodeCount] {
		c.Vertices[i], _ = m.Index.Index(id)
	}
	return c, skip, true
}

// PrintStatistics writes mesh statistics
func (m *Mesh) PrintStatistics(w io.Writer) {
	fmt.Fprintf(w, "Mesh Statistics:\n")
	fmt.Fprintf(w, "  Points: %d\n", m.NumPoints())
	fmt.Fprintf(w, "  Cells: %d of %d elements\n", m.NumCells(), m.ElementCount)

	kindCounts := make(map[CellKind]int)
	for _, g := range m.Groups {
		fmt.Fprintf(w, "  Group %s: %d cells, material %d\n", g.Name, g.Len(), g.MaterialID)
		for _, c := range g.Cells {
			kindCounts[c.Kind]++
		}
	}
	fmt.Fprintf(w, "  Cell kinds:\n")
	for k := Vertex; k <= QuadraticHex; k++ {
		if kindCounts[k] > 0 {
			fmt.Fprintf(w, "    %s: %d\n", k, kindCounts[k])
		}
	}
	if len(m.Skipped) > 0 {
		fmt.Fprintf(w, "  Skipped elements: %d\n", len(m.Skipped))
	}
}
