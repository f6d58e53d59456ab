package results

import (
	"math"
	"testing"

	"github.com/notargets/femview/neutral"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(fields []*Field) (names []string) {
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return
}

func TestGroupFields(t *testing.T) {
	m := twoGroupMesh()
	np := m.NumPoints()
	nodal := func(name string, v float64) *Bound {
		b := newBound(m, name, neutral.Nodal)
		for g := range b.Groups {
			for i := range b.Groups[g] {
				b.Groups[g][i] = v
			}
		}
		return b
	}
	elemental := func(name string, v float64) *Bound {
		b := newBound(m, name, neutral.Elemental)
		for g := range b.Groups {
			for i := range b.Groups[g] {
				b.Groups[g][i] = v
			}
		}
		return b
	}

	t.Run("Grouping", func(t *testing.T) {
		bound := map[string]*Bound{
			"B-node-1": nodal("B-node-1", 3),
			"B-node-2": nodal("B-node-2", 4),
			"B-node-3": nodal("B-node-3", 0),
			"J-elem":   elemental("J-elem", 2),
			"Pressure": nodal("Pressure", 1),
			"F-elem-1": elemental("F-elem-1", 1),
			"F-elem-2": elemental("F-elem-2", 1),
		}
		fields := GroupFields(bound, map[string]string{"B": "MagneticFlux"})
		assert.Equal(t, []string{"F-elem-1", "F-elem-2", "J", "MagneticFlux", "Pressure"}, fieldNames(fields))

		flux := fields[3]
		assert.Equal(t, 3, flux.Components)
		assert.Equal(t, neutral.Nodal, flux.Kind)
		rows, cols := flux.Groups[0].Dims()
		assert.Equal(t, np, rows)
		assert.Equal(t, 3, cols)
		assert.Equal(t, []float64{3, 4, 0}, flux.Groups[1].RawRowView(2))
		lo, hi := flux.Range(0, nil)
		assert.Equal(t, 5.0, lo)
		assert.Equal(t, 5.0, hi)

		j := fields[2]
		assert.Equal(t, 1, j.Components)
		assert.Equal(t, neutral.Elemental, j.Kind)
		assert.Equal(t, []float64{2, 2}, j.Values(0))
		assert.Equal(t, []float64{2}, j.Values(1))
	})

	t.Run("NameCollision", func(t *testing.T) {
		bound := map[string]*Bound{
			"T-node": nodal("T-node", 1),
			"T-elem": elemental("T-elem", 1),
		}
		fields := GroupFields(bound, nil)
		assert.Equal(t, []string{"T-elem", "T-node"}, fieldNames(fields))
	})

	t.Run("MixedKindComponents", func(t *testing.T) {
		bound := map[string]*Bound{
			"V-node-1": nodal("V-node-1", 1),
			"V-node-2": elemental("V-node-2", 1),
			"V-node-3": nodal("V-node-3", 1),
		}
		fields := GroupFields(bound, nil)
		assert.Equal(t, []string{"V-node-1", "V-node-2", "V-node-3"}, fieldNames(fields))
	})

	t.Run("NaN", func(t *testing.T) {
		b := elemental("X", 1)
		b.Groups[1][0] = math.NaN()
		fields := GroupFields(map[string]*Bound{"X": b}, nil)
		require.Len(t, fields, 1)
		assert.True(t, fields[0].HasNaN())
	})
}

func TestCellToPoint(t *testing.T) {
	m := twoGroupMesh()
	vectors := []neutral.ResultVector{
		{Name: "J-elem", Kind: neutral.Elemental, SetID: 1, Values: map[int]float64{1: 2, 2: 4, 7: 6}},
		{Name: "T-node", Kind: neutral.Nodal, SetID: 1, Values: map[int]float64{10: 1}},
	}
	bound, err := Bind(m, vectors, 1)
	require.NoError(t, err)
	fields := GroupFields(bound, nil)
	require.Equal(t, []string{"J", "T"}, fieldNames(fields))

	assert.Nil(t, CellToPoint(m, fields[1]))

	avg := CellToPoint(m, fields[0])
	require.NotNil(t, avg)
	assert.Equal(t, "J_nodal", avg.Name)
	assert.Equal(t, neutral.Nodal, avg.Kind)
	assert.Equal(t, []float64{3, 2, 3, 4, 0, 0}, avg.Values(0))
	assert.Equal(t, []float64{0, 6, 6, 0, 6, 6}, avg.Values(1))
	lo, hi := avg.Range(0, nil)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 4.0, hi)
}

func TestFieldRangeOverGroupPoints(t *testing.T) {
	m := twoGroupMesh()
	vectors := []neutral.ResultVector{
		{Name: "T-node", Kind: neutral.Nodal, SetID: 1, Values: map[int]float64{10: -5, 20: 1, 30: 2, 40: 3, 50: 9, 60: 8}},
	}
	bound, err := Bind(m, vectors, 1)
	require.NoError(t, err)
	fields := GroupFields(bound, nil)
	require.Len(t, fields, 1)
	temp := fields[0]

	tests := []struct {
		name   string
		group  int
		lo, hi float64
	}{
		{"TrianglesSkipQuadPoints", 0, -5, 3},
		{"QuadSkipsTrianglePoints", 1, 1, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := temp.Range(tt.group, m.Groups[tt.group].Points())
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}

	lo, hi := temp.Range(0, []int{})
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 0.0, hi)
}
