package neutral

import (
	"fmt"
	"strconv"
)

// Model is everything decoded from a mesh file
type Model struct {
	Header      *Header
	Nodes       NodeTable
	Properties  map[int]Property
	Elements    []Element
	Materials   map[int]Material
	Diagnostics Diagnostics
}

// DecodeModel runs every record decoder over the extracted blocks
func DecodeModel(blocks Blocks, layout Layout) *Model {
	m := &Model{}
	m.Header = DecodeHeader(blocks[HeaderBlock])
	m.Nodes = DecodeNodes(blocks[NodeBlock], layout.NodeMinTokens, &m.Diagnostics)
	m.Properties = DecodeProperties(blocks[PropertyBlock], layout.PropertyStride, &m.Diagnostics)
	m.Elements = DecodeElements(blocks[ElementBlock], layout.ElementStride, &m.Diagnostics)
	m.Materials = DecodeMaterials(blocks[MaterialBlock], &m.Diagnostics)
	return m
}

// ReadModel reads and decodes a neutral mesh file
func ReadModel(filename string, layout Layout) (*Model, error) {
	blocks, err := ReadBlocksFile(filename)
	if err != nil {
		return nil, err
	}
	return DecodeModel(blocks, layout), nil
}

// DecodeHeader decodes the first header block, nil when there is none
func DecodeHeader(blocks []Block) *Header {
	if len(blocks) == 0 {
		return nil
	}
	lines := blocks[0].Lines
	h := &Header{}
	if len(lines) > 0 {
		h.Title = titleOf(lines[0])
	}
	if len(lines) > 1 {
		if tokens := SplitRow(lines[1]); len(tokens) > 0 {
			h.Version = tokens[0]
		}
	}
	return h
}

func parseNodeRow(line string, minTokens int) (n Node, reason SkipReason, ok bool) {
	tokens := SplitRow(line)
	if len(tokens) < minTokens || len(tokens) < 14 {
		return n, ShortRow, false
	}
	var good bool
	if n.ID, good = tokenInt(tokens, 0); !good {
		return n, BadNumber, false
	}
	if n.ID <= 0 {
		return n, NonPositiveID, false
	}
	for d := 0; d < 3; d++ {
		if n.Coord[d], good = tokenFloat(tokens, 11+d); !good {
			return n, BadNumber, false
		}
	}
	return n, 0, true
}

// DecodeNodes merges all node blocks into one table. A later row for an id
// already present replaces the earlier one.
func DecodeNodes(blocks []Block, minTokens int, diag *Diagnostics) NodeTable {
	nodes := make(NodeTable)
	for _, b := range blocks {
		for i, line := range b.Lines {
			if isTerminator(SplitRow(line)) {
				break
			}
			n, reason, ok := parseNodeRow(line, minTokens)
			if !ok {
				diag.skip(b, i, reason)
				continue
			}
			nodes[n.ID] = n.Coord
		}
	}
	return nodes
}

func parseIDRow(line string, idx ...int) (vals []int, reason SkipReason, ok bool) {
	tokens := SplitRow(line)
	for _, i := range idx {
		if i >= len(tokens) {
			return nil, ShortRow, false
		}
	}
	vals = make([]int, len(idx))
	for k, i := range idx {
		v, good := tokenInt(tokens, i)
		if !good {
			return nil, BadNumber, false
		}
		vals[k] = v
	}
	if vals[0] <= 0 {
		return nil, NonPositiveID, false
	}
	return vals, 0, true
}

// DecodeProperties decodes fixed stride property records: the id row
// (id, color, material id, ...) is followed by the title row.
func DecodeProperties(blocks []Block, stride int, diag *Diagnostics) map[int]Property {
	if stride < 2 {
		stride = 2
	}
	props := make(map[int]Property)
	for _, b := range blocks {
		for i := 0; i < len(b.Lines); {
			if isTerminator(SplitRow(b.Lines[i])) {
				break
			}
			vals, reason, ok := parseIDRow(b.Lines[i], 0, 2)
			if !ok {
				diag.skip(b, i, reason)
				i++
				continue
			}
			p := Property{ID: vals[0], MaterialID: vals[1]}
			if i+1 < len(b.Lines) {
				p.Title = titleOf(b.Lines[i+1])
			}
			props[p.ID] = p
			i += stride
		}
	}
	return props
}

// DecodeElements decodes fixed stride element records. The id row holds
// (id, color, property id, type, topology, ...); the next two rows hold ten
// node slots each, where zero marks an unused slot.
func DecodeElements(blocks []Block, stride int, diag *Diagnostics) (elements []Element) {
	if stride < 3 {
		stride = 3
	}
	for _, b := range blocks {
		for i := 0; i < len(b.Lines); {
			if isTerminator(SplitRow(b.Lines[i])) {
				break
			}
			vals, reason, ok := parseIDRow(b.Lines[i], 0, 2, 4)
			if !ok {
				diag.skip(b, i, reason)
				i++
				continue
			}
			el := Element{ID: vals[0], PropertyID: vals[1], Topology: vals[2]}
			for k := 1; k <= 2 && i+k < len(b.Lines); k++ {
				for _, tok := range SplitRow(b.Lines[i+k]) {
					id, err := strconv.Atoi(tok)
					if err != nil || id == 0 {
						continue
					}
					if len(el.Nodes) < MaxElementNodes {
						el.Nodes = append(el.Nodes, id)
					}
				}
			}
			elements = append(elements, el)
			i += stride
		}
	}
	return
}

// DecodeMaterials reads one material per block from its leading id row
func DecodeMaterials(blocks []Block, diag *Diagnostics) map[int]Material {
	materials := make(map[int]Material)
	for _, b := range blocks {
		for i, line := range b.Lines {
			vals, reason, ok := parseIDRow(line, 0)
			if !ok {
				diag.skip(b, i, reason)
				continue
			}
			m := Material{ID: vals[0]}
			if i+1 < len(b.Lines) {
				m.Title = titleOf(b.Lines[i+1])
			}
			materials[m.ID] = m
			break
		}
	}
	return materials
}

func (m *Model) String() string {
	version := "none"
	if m.Header != nil {
		version = m.Header.Version
	}
	return fmt.Sprintf("version %s: %d nodes, %d elements, %d properties, %d materials, %d skipped rows",
		version, len(m.Nodes), len(m.Elements), len(m.Properties), len(m.Materials), len(m.Diagnostics.Skips))
}
