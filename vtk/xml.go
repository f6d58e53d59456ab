package vtk

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	fileVersion = "1.0"
	byteOrder   = "LittleEndian"
	ascii       = "ascii"
	perLine     = 6
)

// File is the root element of every VTK XML file written here. Exactly one
// of the dataset members is set, matching Type.
type File struct {
	XMLName    xml.Name          `xml:"VTKFile"`
	Type       string            `xml:"type,attr"`
	Version    string            `xml:"version,attr"`
	ByteOrder  string            `xml:"byte_order,attr"`
	Grid       *UnstructuredGrid `xml:"UnstructuredGrid,omitempty"`
	MultiBlock *MultiBlock       `xml:"vtkMultiBlockDataSet,omitempty"`
	Collection *Collection       `xml:"Collection,omitempty"`
}

type UnstructuredGrid struct {
	Pieces []Piece `xml:"Piece"`
}

// Piece is one unstructured grid
type Piece struct {
	NumberOfPoints int     `xml:"NumberOfPoints,attr"`
	NumberOfCells  int     `xml:"NumberOfCells,attr"`
	PointData      DataSet `xml:"PointData"`
	CellData       DataSet `xml:"CellData"`
	Points         DataSet `xml:"Points"`
	Cells          DataSet `xml:"Cells"`
}

type DataSet struct {
	Arrays []DataArray `xml:"DataArray"`
}

// Array returns the array with the given name
func (d *DataSet) Array(name string) (*DataArray, bool) {
	for i := range d.Arrays {
		if d.Arrays[i].Name == name {
			return &d.Arrays[i], true
		}
	}
	return nil, false
}

// Set replaces the array of the same name, or appends it
func (d *DataSet) Set(a DataArray) {
	if old, ok := d.Array(a.Name); ok {
		*old = a
		return
	}
	d.Arrays = append(d.Arrays, a)
}

// Names lists the array names in order
func (d *DataSet) Names() (names []string) {
	for _, a := range d.Arrays {
		names = append(names, a.Name)
	}
	return
}

type DataArray struct {
	Type               string `xml:"type,attr"`
	Name               string `xml:"Name,attr,omitempty"`
	NumberOfComponents int    `xml:"NumberOfComponents,attr,omitempty"`
	Format             string `xml:"format,attr"`
	RangeMin           string `xml:"RangeMin,attr,omitempty"`
	RangeMax           string `xml:"RangeMax,attr,omitempty"`
	Text               string `xml:",innerxml"`
}

type MultiBlock struct {
	Blocks []BlockRef `xml:"DataSet"`
}

// BlockRef points a multiblock entry at a piece file, relative to the
// container
type BlockRef struct {
	Index int    `xml:"index,attr"`
	Name  string `xml:"name,attr"`
	File  string `xml:"file,attr"`
}

type Collection struct {
	Entries []Entry `xml:"DataSet"`
}

// Entry is one manifest line: a snapshot container at one time value
type Entry struct {
	Timestep float64 `xml:"timestep,attr"`
	Part     int     `xml:"part,attr"`
	File     string  `xml:"file,attr"`
}

func NewUnstructured(pieces ...Piece) *File {
	return &File{Type: "UnstructuredGrid", Version: fileVersion, ByteOrder: byteOrder,
		Grid: &UnstructuredGrid{Pieces: pieces}}
}

func NewMultiBlock(blocks ...BlockRef) *File {
	return &File{Type: "vtkMultiBlockDataSet", Version: fileVersion, ByteOrder: byteOrder,
		MultiBlock: &MultiBlock{Blocks: blocks}}
}

func NewCollection(entries ...Entry) *File {
	return &File{Type: "Collection", Version: fileVersion, ByteOrder: byteOrder,
		Collection: &Collection{Entries: entries}}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func layout(n int, format func(i int) string) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		switch {
		case i%perLine == 0:
			sb.WriteString("\n")
		default:
			sb.WriteByte(' ')
		}
		sb.WriteString(format(i))
	}
	if n > 0 {
		sb.WriteString("\n")
	}
	return sb.String()
}

// FloatArray is a Float64 array of the given component count
func FloatArray(name string, components int, values []float64) DataArray {
	return DataArray{
		Type:               "Float64",
		Name:               name,
		NumberOfComponents: components,
		Format:             ascii,
		Text:               layout(len(values), func(i int) string { return formatFloat(values[i]) }),
	}
}

// WithRange sets the RangeMin and RangeMax attributes
func (a DataArray) WithRange(lo, hi float64) DataArray {
	a.RangeMin, a.RangeMax = formatFloat(lo), formatFloat(hi)
	return a
}

func intArray(typ, name string, values []int) DataArray {
	return DataArray{
		Type:   typ,
		Name:   name,
		Format: ascii,
		Text:   layout(len(values), func(i int) string { return strconv.Itoa(values[i]) }),
	}
}

func Int32Array(name string, values []int) DataArray { return intArray("Int32", name, values) }

func Int64Array(name string, values []int) DataArray { return intArray("Int64", name, values) }

func UInt8Array(name string, values []int) DataArray { return intArray("UInt8", name, values) }

// Floats parses the array text
func (a *DataArray) Floats() ([]float64, error) {
	fields := strings.Fields(a.Text)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("array %q value %d: %w", a.Name, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// Ints parses the array text
func (a *DataArray) Ints() ([]int, error) {
	fields := strings.Fields(a.Text)
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("array %q value %d: %w", a.Name, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// WriteFile writes f to a temporary file next to filename and renames it
// into place, so readers never see a partial file
func WriteFile(filename string, f *File) error {
	return WriteFiles(map[string]*File{filename: f})
}

// WriteFiles writes every file to a temporary name first and renames them
// into place only when all of them were written. A write error leaves every
// target unchanged.
func WriteFiles(files map[string]*File) (err error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	staged := make([]string, 0, len(names))
	defer func() {
		if err != nil {
			for _, tmp := range staged {
				os.Remove(tmp)
			}
		}
	}()
	for _, name := range names {
		var tmp string
		if tmp, err = stage(name, files[name]); err != nil {
			return err
		}
		staged = append(staged, tmp)
	}
	for i, name := range names {
		if err = os.Rename(staged[i], name); err != nil {
			staged = staged[i:]
			return err
		}
	}
	return nil
}

// stage encodes f into a temporary file in filename's directory
func stage(filename string, f *File) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(f); err != nil {
		return "", fmt.Errorf("encode %s: %w", filename, err)
	}
	buf.WriteByte('\n')

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".*")
	if err != nil {
		return "", err
	}
	if err = tmp.Chmod(0644); err == nil {
		_, err = tmp.Write(buf.Bytes())
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func ReadFile(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	f := &File{}
	if err = xml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	return f, nil
}
