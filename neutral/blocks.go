package neutral

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Delimiter opens and closes every block of a neutral file
const Delimiter = "   -1"

// Block type codes with a fixed meaning in every format version
const (
	HeaderBlock   = 100
	PropertyBlock = 402
	NodeBlock     = 403
	ElementBlock  = 404
	MaterialBlock = 601
)

// Block is one delimited run of raw lines. Start is the 0-based file line of
// Lines[0] and is only used for diagnostics.
type Block struct {
	Code  int
	Start int
	Lines []string
}

// Blocks holds every block of a file keyed by type code, in file order.
// Codes without a decoder are kept untouched.
type Blocks map[int][]Block

// Codes returns the distinct block codes present
func (b Blocks) Codes() (codes []int) {
	for code := range b {
		codes = append(codes, code)
	}
	return
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t\r") == Delimiter
}

// ExtractBlocks splits a line sequence into typed blocks. A delimiter followed
// by a line holding a single integer opens a block which runs to the next
// delimiter. A delimiter followed by another delimiter, or by anything other
// than an integer, is skipped.
func ExtractBlocks(lines []string) Blocks {
	blocks := make(Blocks)
	for i := 0; i < len(lines); {
		if !isDelimiter(lines[i]) || i+1 >= len(lines) {
			i++
			continue
		}
		if isDelimiter(lines[i+1]) {
			i++
			continue
		}
		code, err := strconv.Atoi(strings.TrimSpace(lines[i+1]))
		if err != nil {
			i++
			continue
		}
		j := i + 2
		for j < len(lines) && !isDelimiter(lines[j]) {
			j++
		}
		blocks[code] = append(blocks[code], Block{
			Code:  code,
			Start: i + 2,
			Lines: lines[i+2 : j],
		})
		i = j
	}
	return blocks
}

// ReadLines reads all lines from r without their line terminators
func ReadLines(r io.Reader) (lines []string, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading lines: %w", err)
	}
	return
}

// ReadBlocksFile reads and splits a neutral file
func ReadBlocksFile(filename string) (Blocks, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	lines, err := ReadLines(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return ExtractBlocks(lines), nil
}
