package mesh

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/notargets/femview/neutral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cubeNodes() []neutral.Node {
	return []neutral.Node{
		{ID: 1, Coord: [3]float64{0, 0, 0}},
		{ID: 2, Coord: [3]float64{1, 0, 0}},
		{ID: 3, Coord: [3]float64{1, 1, 0}},
		{ID: 4, Coord: [3]float64{0, 1, 0}},
		{ID: 5, Coord: [3]float64{0, 0, 1}},
		{ID: 6, Coord: [3]float64{1, 0, 1}},
		{ID: 7, Coord: [3]float64{1, 1, 1}},
		{ID: 8, Coord: [3]float64{0, 1, 1}},
	}
}

func readModel(t *testing.T, b *neutral.FileBuilder) *neutral.Model {
	t.Helper()
	lines, err := neutral.ReadLines(bytes.NewBufferString(b.String()))
	require.NoError(t, err)
	return neutral.DecodeModel(neutral.ExtractBlocks(lines), neutral.DefaultLayout())
}

func TestLookupTopology(t *testing.T) {
	testCases := []struct {
		code  int
		kind  CellKind
		count int
	}{
		{TopoPoint, Vertex, 1},
		{TopoLine2, Line, 2},
		{TopoTri3, Triangle, 3},
		{TopoTri6, QuadraticTriangle, 6},
		{TopoQuad4, Quad, 4},
		{TopoQuad8, QuadraticQuad, 8},
		{TopoTetra4, Tet, 4},
		{TopoTetra10, QuadraticTet, 10},
		{TopoWedge6, Prism, 6},
		{TopoWedge15, QuadraticPrism, 15},
		{TopoBrick8, Hex, 8},
		{TopoBrick20, QuadraticHex, 20},
	}
	for _, tc := range testCases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			topo, ok := LookupTopology(tc.code)
			require.True(t, ok)
			assert.Equal(t, tc.kind, topo.Kind)
			assert.Equal(t, tc.count, topo.NodeCount)
		})
	}
	for _, code := range []int{1, 13, 17, -1} {
		_, ok := LookupTopology(code)
		assert.False(t, ok, "code %d", code)
	}
	assert.Equal(t, uint8(12), Hex.VTKType())
	assert.Equal(t, uint8(10), Tet.VTKType())
	assert.Equal(t, uint8(25), QuadraticHex.VTKType())
}

func TestAssembleSingleHex(t *testing.T) {
	model := readModel(t, neutral.NewFileBuilder().
		Header("", "4.41").
		Nodes(cubeNodes()...).
		Properties(neutral.Property{ID: 1, MaterialID: 1}).
		Elements(neutral.Element{ID: 1, PropertyID: 1, Topology: TopoBrick8, Nodes: []int{1, 2, 3, 4, 5, 6, 7, 8}}))

	m := Assemble(model.Nodes, model.Elements, model.Properties)
	require.Len(t, m.Groups, 1)
	assert.Equal(t, 8, m.NumPoints())
	assert.Equal(t, 1, m.NumCells())
	g := m.Groups[0]
	assert.Equal(t, "Property_1", g.Name)
	assert.Equal(t, 1, g.ElementIDs[0])
	assert.Equal(t, Hex, g.Cells[0].Kind)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, g.Cells[0].Vertices)
	assert.Empty(t, m.Skipped)
}

func TestAssembleMixedBlocks(t *testing.T) {
	nodes := []neutral.Node{
		{ID: 10, Coord: [3]float64{0, 0, 0}},
		{ID: 20, Coord: [3]float64{1, 0, 0}},
		{ID: 30, Coord: [3]float64{0, 1, 0}},
		{ID: 40, Coord: [3]float64{0, 0, 1}},
		{ID: 50, Coord: [3]float64{1, 1, 0}},
	}
	model := readModel(t, neutral.NewFileBuilder().
		Header("", "4.41").
		Material(neutral.Material{ID: 1, Title: "Iron"}).
		Material(neutral.Material{ID: 2, Title: "Air"}).
		Elements(neutral.Element{ID: 3, PropertyID: 2, Topology: TopoQuad4, Nodes: []int{10, 20, 50, 30}}).
		Properties(neutral.Property{ID: 1, MaterialID: 1, Title: "Core"}).
		Nodes(nodes...).
		Elements(neutral.Element{ID: 1, PropertyID: 1, Topology: TopoTetra4, Nodes: []int{10, 20, 30, 40}}).
		Properties(neutral.Property{ID: 2, MaterialID: 2}).
		Elements(neutral.Element{ID: 2, PropertyID: 2, Topology: TopoTri3, Nodes: []int{10, 20, 30}}))
	require.Len(t, model.Materials, 2)

	m := Assemble(model.Nodes, model.Elements, model.Properties)
	assert.Equal(t, 3, m.NumCells())
	require.Len(t, m.Groups, 2)
	assert.Equal(t, "Property_1_Core", m.Groups[0].Name)
	assert.Equal(t, 1, m.Groups[0].MaterialID)
	assert.Equal(t, "Property_2", m.Groups[1].Name)
	assert.Equal(t, []int{3, 2}, m.Groups[1].ElementIDs)
	for _, g := range m.Groups {
		for _, c := range g.Cells {
			topo, ok := LookupTopology(c.Topology)
			require.True(t, ok)
			assert.Len(t, c.Vertices, topo.NodeCount)
		}
	}
	// quad 10,20,50,30 -> dense 0,1,4,2; declared order kept
	assert.Equal(t, []int{0, 1, 4, 2}, m.Groups[1].Cells[0].Vertices)
	assert.Equal(t, []int{0, 1, 2, 3}, m.Groups[0].Points())
	assert.Equal(t, []int{0, 1, 2, 4}, m.Groups[1].Points())

	var buf bytes.Buffer
	m.PrintStatistics(&buf)
	assert.Contains(t, buf.String(), "Cells: 3 of 3 elements")
}

func TestAssembleSkipsAndConservation(t *testing.T) {
	nodes := neutral.NodeTable{1: {}, 2: {}, 3: {}, 4: {}}
	elements := []neutral.Element{
		{ID: 1, PropertyID: 1, Topology: TopoTri3, Nodes: []int{1, 2, 3}},
		{ID: 2, PropertyID: 1, Topology: 17, Nodes: []int{1, 2, 3}},
		{ID: 3, PropertyID: 1, Topology: TopoQuad4, Nodes: []int{1, 2, 3}},
		{ID: 4, PropertyID: 2, Topology: TopoTri3, Nodes: []int{1, 2, 99}},
		{ID: 5, PropertyID: 2, Topology: TopoTri3, Nodes: []int{4, 3, 2, 1}},
		{ID: 6, PropertyID: 3, Topology: TopoLine2, Nodes: []int{1, 77}},
	}
	m := Assemble(nodes, elements, nil)

	require.Len(t, m.Skipped, 4)
	assert.Equal(t, UnsupportedTopology, m.Skipped[0].Cause)
	assert.Equal(t, TooFewNodes, m.Skipped[1].Cause)
	assert.Equal(t, MissingNode, m.Skipped[2].Cause)
	assert.Equal(t, 99, m.Skipped[2].NodeID)
	assert.Equal(t, "element 4: missing node 99", m.Skipped[2].String())
	assert.Equal(t, len(elements), m.NumCells()+len(m.Skipped))

	// group 3 lost its only element and is not emitted
	require.Len(t, m.Groups, 2)
	assert.Equal(t, []int{3, 2, 1}, m.Groups[1].Cells[0].Vertices)

	seen := make(map[int]int)
	for _, g := range m.Groups {
		for local, id := range g.ElementIDs {
			seen[id]++
			assert.Equal(t, Triangle, g.Cells[local].Kind)
		}
	}
	assert.Equal(t, map[int]int{1: 1, 5: 1}, seen)
}

func TestAssembleDeterministic(t *testing.T) {
	base := cubeNodes()
	elements := []neutral.Element{
		{ID: 11, PropertyID: 4, Topology: TopoTetra4, Nodes: []int{1, 2, 4, 5}},
		{ID: 12, PropertyID: 2, Topology: TopoBrick8, Nodes: []int{1, 2, 3, 4, 5, 6, 7, 8}},
	}
	var reference *Mesh
	rng := rand.New(rand.NewSource(3))
	for trial := 0; trial < 5; trial++ {
		shuffled := append([]neutral.Node(nil), base...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		model := readModel(t, neutral.NewFileBuilder().Nodes(shuffled...).Elements(elements...))
		m := Assemble(model.Nodes, model.Elements, model.Properties)
		if reference == nil {
			reference = m
			continue
		}
		assert.Equal(t, reference.Points, m.Points)
		assert.Equal(t, reference.Groups, m.Groups)
	}
	for i := 0; i < reference.Index.Len(); i++ {
		assert.Equal(t, i+1, reference.Index.SourceID(i))
	}
	assert.Equal(t, 2, reference.Groups[0].PropertyID)
	g, ok := reference.Group("Property_4")
	require.True(t, ok)
	assert.Equal(t, []int{11}, g.ElementIDs)
	_, ok = reference.Group("Property_9")
	assert.False(t, ok)
}
