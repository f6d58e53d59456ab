package neutral

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, b *FileBuilder) *Model {
	t.Helper()
	return DecodeModel(ExtractBlocks(splitLines(b.String())), DefaultLayout())
}

func TestDecodeHeader(t *testing.T) {
	m := decode(t, NewFileBuilder().Header("Motor model", "4.41").Header("second", "9.9"))
	require.NotNil(t, m.Header)
	assert.Equal(t, "Motor model", m.Header.Title)
	assert.Equal(t, "4.41", m.Header.Version)

	m = decode(t, NewFileBuilder().Header("", "4.41"))
	assert.Equal(t, "", m.Header.Title)

	m = decode(t, NewFileBuilder())
	assert.Nil(t, m.Header)
}

func TestDecodeNodes(t *testing.T) {
	t.Run("CoordinateColumns", func(t *testing.T) {
		blocks := ExtractBlocks([]string{"   -1", "   403",
			"12,0,0,1,46,9,9,9,9,9,9,1.5,-2.,3.25,",
			"   -1"})
		nodes := DecodeNodes(blocks[NodeBlock], 14, nil)
		assert.Equal(t, [3]float64{1.5, -2, 3.25}, nodes[12])
	})

	t.Run("ShortAndBadRowsSkipped", func(t *testing.T) {
		blocks := ExtractBlocks([]string{"   -1", "   403",
			"1,0,0,1,46,0,0,0,0,0,0,0.,0.,0.,",
			"2,0,0,1,46,0.,0.,0.,",
			"x,0,0,1,46,0,0,0,0,0,0,0.,0.,0.,",
			"3,0,0,1,46,0,0,0,0,0,0,1.,abc,0.,",
			"0,0,0,1,46,0,0,0,0,0,0,0.,0.,0.,",
			"4,0,0,1,46,0,0,0,0,0,0,4.,4.,4.,",
			"   -1"})
		var diag Diagnostics
		nodes := DecodeNodes(blocks[NodeBlock], 14, &diag)
		assert.Len(t, nodes, 2)
		assert.Contains(t, nodes, 1)
		assert.Contains(t, nodes, 4)
		require.Len(t, diag.Skips, 4)
		assert.Equal(t, ShortRow, diag.Skips[0].Reason)
		assert.Equal(t, BadNumber, diag.Skips[1].Reason)
		assert.Equal(t, BadNumber, diag.Skips[2].Reason)
		assert.Equal(t, NonPositiveID, diag.Skips[3].Reason)
		assert.Equal(t, 3, diag.Skips[0].Line)
		assert.Equal(t, 4, diag.Count(NodeBlock))
	})

	t.Run("LastWriteWins", func(t *testing.T) {
		m := decode(t, NewFileBuilder().
			Nodes(Node{ID: 7, Coord: [3]float64{1, 1, 1}}, Node{ID: 8}).
			Elements(Element{ID: 1, PropertyID: 1, Topology: 0, Nodes: []int{7, 8}}).
			Nodes(Node{ID: 7, Coord: [3]float64{2, 3, 4}}))
		assert.Equal(t, [3]float64{2, 3, 4}, m.Nodes[7])
		assert.Len(t, m.Nodes, 2)
	})
}

func TestDecodeProperties(t *testing.T) {
	m := decode(t, NewFileBuilder().
		Properties(Property{ID: 1, MaterialID: 3, Title: "Rotor"}, Property{ID: 2, MaterialID: 4}).
		Properties(Property{ID: 1, MaterialID: 5, Title: "Rotor iron"}))
	want := map[int]Property{
		1: {ID: 1, MaterialID: 5, Title: "Rotor iron"},
		2: {ID: 2, MaterialID: 4},
	}
	if diff := cmp.Diff(want, m.Properties); diff != "" {
		t.Errorf("properties mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, m.Diagnostics.Skips)
}

func TestDecodeElements(t *testing.T) {
	t.Run("ConnectivityOrderAndZeroSlots", func(t *testing.T) {
		blocks := ExtractBlocks([]string{"   -1", "   404",
			"5,124,2,25,6,1,0,0,",
			"4,3,9,0,1,0,0,0,0,0,",
			"0,0,0,0,0,0,0,0,0,0,",
			"", "", "", "",
			"   -1"})
		elements := DecodeElements(blocks[ElementBlock], 7, nil)
		want := []Element{{ID: 5, PropertyID: 2, Topology: 6, Nodes: []int{4, 3, 9, 1}}}
		if diff := cmp.Diff(want, elements); diff != "" {
			t.Errorf("elements mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("TwentyNodeSlots", func(t *testing.T) {
		nodes := make([]int, 20)
		for i := range nodes {
			nodes[i] = 100 + i
		}
		m := decode(t, NewFileBuilder().Elements(Element{ID: 9, PropertyID: 1, Topology: 12, Nodes: nodes}))
		require.Len(t, m.Elements, 1)
		assert.Equal(t, nodes, m.Elements[0].Nodes)
	})

	t.Run("BadStrideRetriesNextLine", func(t *testing.T) {
		blocks := ExtractBlocks([]string{"   -1", "   404",
			"garbage",
			"7,124,1,25,2,1,0,0,",
			"1,2,3,0,0,0,0,0,0,0,",
			"0,0,0,0,0,0,0,0,0,0,",
			"", "", "", "",
			"8,124,1,25,2,1,0,0,",
			"3,2,4,0,0,0,0,0,0,0,",
			"   -1"})
		var diag Diagnostics
		elements := DecodeElements(blocks[ElementBlock], 7, &diag)
		require.Len(t, elements, 2)
		assert.Equal(t, 7, elements[0].ID)
		assert.Equal(t, []int{3, 2, 4}, elements[1].Nodes)
		require.Len(t, diag.Skips, 1)
		assert.Equal(t, ShortRow, diag.Skips[0].Reason)
	})

	t.Run("ConfigurableStride", func(t *testing.T) {
		blocks := ExtractBlocks([]string{"   -1", "   404",
			"1,124,1,25,2,1,0,0,",
			"1,2,3,0,0,0,0,0,0,0,",
			"0,0,0,0,0,0,0,0,0,0,",
			"2,124,1,25,2,1,0,0,",
			"2,3,4,0,0,0,0,0,0,0,",
			"0,0,0,0,0,0,0,0,0,0,",
			"   -1"})
		elements := DecodeElements(blocks[ElementBlock], 3, nil)
		assert.Len(t, elements, 2)
	})
}

func TestDecodeMaterials(t *testing.T) {
	m := decode(t, NewFileBuilder().Material(Material{ID: 1, Title: "Copper"}).Material(Material{ID: 2}))
	want := map[int]Material{1: {ID: 1, Title: "Copper"}, 2: {ID: 2}}
	if diff := cmp.Diff(want, m.Materials); diff != "" {
		t.Errorf("materials mismatch (-want +got):\n%s", diff)
	}
}

func TestReadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.neu")
	require.NoError(t, NewFileBuilder().
		Header("", "4.41").
		Material(Material{ID: 1}).
		Elements(Element{ID: 1, PropertyID: 1, Topology: 2, Nodes: []int{1, 2, 3}}).
		Properties(Property{ID: 1, MaterialID: 1}).
		Nodes(Node{ID: 1}, Node{ID: 2, Coord: [3]float64{1, 0, 0}}, Node{ID: 3, Coord: [3]float64{0, 1, 0}}).
		WriteFile(path))
	m, err := ReadModel(path, DefaultLayout())
	require.NoError(t, err)
	assert.Len(t, m.Nodes, 3)
	assert.Len(t, m.Elements, 1)
	assert.Len(t, m.Properties, 1)
	assert.Len(t, m.Materials, 1)
	assert.Equal(t, "version 4.41: 3 nodes, 1 elements, 1 properties, 1 materials, 0 skipped rows", m.String())
}
