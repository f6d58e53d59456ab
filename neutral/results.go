package neutral

import (
	"fmt"
	"sort"
	"strings"
)

// EntityKind tells whether result values belong to nodes or elements
type EntityKind uint8

const (
	Nodal EntityKind = iota
	Elemental
)

func (k EntityKind) String() string {
	return [...]string{"nodal", "elemental"}[k]
}

// ParseEntityKind is the inverse of EntityKind.String
func ParseEntityKind(s string) (EntityKind, error) {
	switch s {
	case "nodal":
		return Nodal, nil
	case "elemental":
		return Elemental, nil
	}
	return 0, fmt.Errorf("unknown entity kind %q", s)
}

// Entity type codes found in the vector header
const (
	nodalEntityCode     = 7
	elementalEntityCode = 8
)

// TimeSet is one output set (time step) of a result file
type TimeSet struct {
	ID    int
	Time  float64
	Title string
}

// ResultVector is one named value list for one output set
type ResultVector struct {
	ID     int
	Name   string
	Kind   EntityKind
	SetID  int
	Values map[int]float64
}

// ResultFile holds the time sets of a result file and an index of its
// vector records. Vector values are decoded one output set at a time by
// Vectors, so the whole series is never held as values.
type ResultFile struct {
	Sets        []TimeSet
	Diagnostics Diagnostics
	blocks      []Block
	records     []vectorRecord
}

func NewResultFile(blocks Blocks, layout Layout) *ResultFile {
	rf := &ResultFile{blocks: blocks[layout.OutputVectorBlock]}
	rf.Sets = DecodeTimeSets(blocks[layout.OutputSetBlock], &rf.Diagnostics)
	rf.records = indexVectors(rf.blocks, layout.VectorHeaderLines, &rf.Diagnostics)
	return rf
}

// ReadResultFile reads a result file and decodes its output sets
func ReadResultFile(filename string, layout Layout) (*ResultFile, error) {
	blocks, err := ReadBlocksFile(filename)
	if err != nil {
		return nil, err
	}
	return NewResultFile(blocks, layout), nil
}

// Vectors decodes the vectors belonging to one output set
func (rf *ResultFile) Vectors(setID int) (vectors []ResultVector) {
	for _, r := range rf.records {
		if r.setID == setID {
			vectors = append(vectors, r.decode(rf.blocks[r.block].Lines))
		}
	}
	return
}

// AllVectors decodes every vector of every output set
func (rf *ResultFile) AllVectors() (vectors []ResultVector) {
	for _, r := range rf.records {
		vectors = append(vectors, r.decode(rf.blocks[r.block].Lines))
	}
	return
}

// VectorNames returns the distinct vector names, sorted
func (rf *ResultFile) VectorNames() (names []string) {
	seen := make(map[string]bool)
	for _, r := range rf.records {
		if !seen[r.name] {
			seen[r.name] = true
			names = append(names, r.name)
		}
	}
	sort.Strings(names)
	return
}

// DecodeTimeSets decodes output set records:
//
//	set id
//	title
//	program, analysis type
//	time value
//	number of note lines n, followed by n note lines
//
// A set id seen twice keeps the later record. The result is sorted by id.
func DecodeTimeSets(blocks []Block, diag *Diagnostics) []TimeSet {
	byID := make(map[int]TimeSet)
	for _, b := range blocks {
		for i := 0; i < len(b.Lines); {
			tokens := SplitRow(b.Lines[i])
			if isTerminator(tokens) {
				break
			}
			id, ok := tokenInt(tokens, 0)
			if !ok || id <= 0 {
				reason := BadNumber
				if ok {
					reason = NonPositiveID
				}
				diag.skip(b, i, reason)
				i++
				continue
			}
			if i+4 >= len(b.Lines) {
				diag.skip(b, i, Truncated)
				break
			}
			t, ok := tokenFloat(SplitRow(b.Lines[i+3]), 0)
			if !ok {
				diag.skip(b, i+3, BadNumber)
				i++
				continue
			}
			notes, ok := tokenInt(SplitRow(b.Lines[i+4]), 0)
			if !ok || notes < 0 {
				notes = 0
			}
			byID[id] = TimeSet{ID: id, Time: t, Title: titleOf(b.Lines[i+1])}
			i += 5 + notes
		}
	}
	sets := make([]TimeSet, 0, len(byID))
	for _, s := range byID {
		sets = append(sets, s)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].ID < sets[j].ID })
	return sets
}

func entityKindOf(code int, name string) (EntityKind, bool) {
	switch code {
	case nodalEntityCode:
		return Nodal, true
	case elementalEntityCode:
		return Elemental, true
	}
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "-node"):
		return Nodal, true
	case strings.Contains(lower, "-elem"):
		return Elemental, true
	}
	return 0, false
}

// vectorRecord locates one vector inside a block; data rows are
// lines[first:end]
type vectorRecord struct {
	block      int
	first, end int
	id, setID  int
	name       string
	kind       EntityKind
}

func (r vectorRecord) decode(lines []string) ResultVector {
	v := ResultVector{ID: r.id, Name: r.name, Kind: r.kind, SetID: r.setID,
		Values: make(map[int]float64, r.end-r.first)}
	for _, line := range lines[r.first:r.end] {
		row := SplitRow(line)
		id, ok := tokenInt(row, 0)
		if !ok {
			continue
		}
		if value, ok := tokenFloat(row, 1); ok {
			v.Values[id] = value
		}
	}
	return v
}

// indexVectors scans output vector records. Each record has headerLines
// header rows starting with (set id, vector id, ...) and the vector name,
// with the entity type code as the fourth token of the sixth row, followed by
// (entity id, value) rows closed by an entity id of -1. Records whose entity
// type cannot be determined are skipped.
func indexVectors(blocks []Block, headerLines int, diag *Diagnostics) (records []vectorRecord) {
	if headerLines < 6 {
		headerLines = 6
	}
	for bi, b := range blocks {
		lines := b.Lines
		for i := 0; i < len(lines); {
			tokens := SplitRow(lines[i])
			setID, ok1 := tokenInt(tokens, 0)
			vecID, ok2 := tokenInt(tokens, 1)
			if !ok1 || !ok2 {
				if len(tokens) != 0 {
					diag.skip(b, i, BadNumber)
				}
				i++
				continue
			}
			if i+headerLines > len(lines) {
				diag.skip(b, i, Truncated)
				break
			}
			r := vectorRecord{block: bi, id: vecID, setID: setID, name: strings.TrimSpace(lines[i+1])}
			entity, _ := tokenInt(SplitRow(lines[i+5]), 3)
			kind, known := entityKindOf(entity, r.name)
			r.kind = kind
			r.first = i + headerLines
			j := r.first
			for ; j < len(lines); j++ {
				row := SplitRow(lines[j])
				id, ok := tokenInt(row, 0)
				if ok && id == -1 {
					break
				}
				if _, okv := tokenFloat(row, 1); !ok || !okv {
					diag.skip(b, j, BadNumber)
				}
			}
			r.end = j
			if known {
				records = append(records, r)
			} else {
				diag.skip(b, i+5, UnknownEntity)
			}
			i = j + 1
		}
	}
	return
}
