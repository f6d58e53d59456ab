package vtk

import (
	"fmt"
	"regexp"

	"github.com/notargets/femview/mesh"
)

// Cell data arrays carried by every piece
const (
	ElementID  = "ElementID"
	PropertyID = "PropertyID"
	MaterialID = "MaterialID"
	TopologyID = "TopologyID"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// PieceName is the file name used for a group's piece
func PieceName(group string) string {
	return unsafeName.ReplaceAllString(group, "_") + ".vtu"
}

// GeometryPiece returns group g as a piece holding the full shared point
// array, the group's cells and the per-cell id arrays
func GeometryPiece(m *mesh.Mesh, g int) Piece {
	grp := &m.Groups[g]
	points := make([]float64, 0, 3*m.NumPoints())
	for _, p := range m.Points {
		points = append(points, p[:]...)
	}

	n := grp.Len()
	var (
		conn    []int
		offsets = make([]int, n)
		types   = make([]int, n)
		elemIDs = make([]int, n)
		propIDs = make([]int, n)
		matIDs  = make([]int, n)
		topo    = make([]int, n)
	)
	for i, c := range grp.Cells {
		conn = append(conn, c.Vertices...)
		offsets[i] = len(conn)
		types[i] = int(c.Kind.VTKType())
		elemIDs[i] = grp.ElementIDs[i]
		propIDs[i] = grp.PropertyID
		matIDs[i] = grp.MaterialID
		topo[i] = c.Topology
	}

	p := Piece{
		NumberOfPoints: m.NumPoints(),
		NumberOfCells:  n,
	}
	p.Points.Arrays = []DataArray{FloatArray("Points", 3, points)}
	p.Cells.Arrays = []DataArray{
		Int64Array("connectivity", conn),
		Int64Array("offsets", offsets),
		UInt8Array("types", types),
	}
	p.CellData.Arrays = []DataArray{
		Int32Array(ElementID, elemIDs),
		Int32Array(PropertyID, propIDs),
		Int32Array(MaterialID, matIDs),
		Int32Array(TopologyID, topo),
	}
	return p
}

// ReadPiece reads the single piece of an unstructured grid file
func ReadPiece(filename string) (Piece, error) {
	f, err := ReadFile(filename)
	if err != nil {
		return Piece{}, err
	}
	if f.Grid == nil || len(f.Grid.Pieces) != 1 {
		return Piece{}, fmt.Errorf("%s: not a single piece unstructured grid", filename)
	}
	return f.Grid.Pieces[0], nil
}
