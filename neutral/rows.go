package neutral

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NullTitle is written by producers in place of an empty title
const NullTitle = "<NULL>"

// SplitRow tokenizes a record row. Rows containing a comma are split on
// commas, anything else on whitespace. Trailing empty tokens are dropped.
func SplitRow(line string) []string {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, ",") {
		return strings.Fields(line)
	}
	tokens := strings.Split(line, ",")
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	for len(tokens) > 0 && tokens[len(tokens)-1] == "" {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

func tokenInt(tokens []string, i int) (int, bool) {
	if i >= len(tokens) {
		return 0, false
	}
	v, err := strconv.Atoi(tokens[i])
	return v, err == nil
}

func tokenFloat(tokens []string, i int) (float64, bool) {
	if i >= len(tokens) {
		return 0, false
	}
	v, err := strconv.ParseFloat(tokens[i], 64)
	return v, err == nil
}

func titleOf(line string) string {
	title := strings.TrimSpace(line)
	if title == NullTitle {
		return ""
	}
	return title
}

// isTerminator reports whether a row is the "-1,..." end marker that closes
// a list of records inside a block
func isTerminator(tokens []string) bool {
	return len(tokens) > 0 && tokens[0] == "-1"
}

// SkipReason classifies a row that could not be decoded
type SkipReason uint8

const (
	ShortRow SkipReason = iota
	BadNumber
	NonPositiveID
	Truncated
	UnknownEntity
)

func (r SkipReason) String() string {
	return [...]string{"short row", "bad number", "non-positive id", "truncated record", "unknown entity type"}[r]
}

// Skip records one row a decoder stepped over
type Skip struct {
	Block  int
	Line   int // 0-based file line
	Reason SkipReason
}

func (s Skip) String() string {
	return fmt.Sprintf("block %d line %d: %s", s.Block, s.Line+1, s.Reason)
}

// Diagnostics accumulates skipped rows across decoders
type Diagnostics struct {
	Skips []Skip
}

func (d *Diagnostics) skip(b Block, line int, reason SkipReason) {
	if d == nil {
		return
	}
	d.Skips = append(d.Skips, Skip{Block: b.Code, Line: b.Start + line, Reason: reason})
}

// Count returns the number of skipped rows for a block code
func (d Diagnostics) Count(code int) (n int) {
	for _, s := range d.Skips {
		if s.Block == code {
			n++
		}
	}
	return
}

// Summary returns "code: reason xN" lines, ordered by block code then reason
func (d Diagnostics) Summary() (lines []string) {
	type key struct {
		code   int
		reason SkipReason
	}
	counts := make(map[key]int)
	for _, s := range d.Skips {
		counts[key{s.Block, s.Reason}]++
	}
	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].code != keys[j].code {
			return keys[i].code < keys[j].code
		}
		return keys[i].reason < keys[j].reason
	})
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("block %d: %s x%d", k.code, k.reason, counts[k]))
	}
	return
}
