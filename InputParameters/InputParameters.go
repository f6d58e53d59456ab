package InputParameters

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ghodss/yaml"
	"github.com/notargets/femview/neutral"
)

// ProbeDisabled as ProbeDB turns the probe store off
const ProbeDisabled = "-"

// Parameters obtained from the YAML import file
type ImportParameters struct {
	Title             string            `json:"Title"`
	ExpectedVersion   string            `json:"ExpectedVersion"`
	PropertyStride    int               `json:"PropertyStride"`
	ElementStride     int               `json:"ElementStride"`
	NodeMinTokens     int               `json:"NodeMinTokens"`
	OutputSetBlock    int               `json:"OutputSetBlock"`
	OutputVectorBlock int               `json:"OutputVectorBlock"`
	VectorHeaderLines int               `json:"VectorHeaderLines"`
	FieldAliases      map[string]string `json:"FieldAliases"` // vector base name -> display name
	CellToPoint       bool              `json:"CellToPoint"`
	AllowErrors       bool              `json:"AllowErrors"`
	ProbeDB           string            `json:"ProbeDB"` // empty: <out>/<base>.probe.db
}

// NewImportParameters returns the defaults for 4.41 files
func NewImportParameters() *ImportParameters {
	ip := &ImportParameters{}
	ip.setDefaults()
	return ip
}

func (ip *ImportParameters) setDefaults() {
	def := neutral.DefaultLayout()
	if ip.ExpectedVersion == "" {
		ip.ExpectedVersion = "4.41"
	}
	if ip.PropertyStride == 0 {
		ip.PropertyStride = def.PropertyStride
	}
	if ip.ElementStride == 0 {
		ip.ElementStride = def.ElementStride
	}
	if ip.NodeMinTokens == 0 {
		ip.NodeMinTokens = def.NodeMinTokens
	}
	if ip.OutputSetBlock == 0 {
		ip.OutputSetBlock = def.OutputSetBlock
	}
	if ip.OutputVectorBlock == 0 {
		ip.OutputVectorBlock = def.OutputVectorBlock
	}
	if ip.VectorHeaderLines == 0 {
		ip.VectorHeaderLines = def.VectorHeaderLines
	}
}

// Parse reads YAML over the current values; unset fields take defaults
func (ip *ImportParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	ip.setDefaults()
	return ip.Validate()
}

func ReadImportParameters(filename string) (*ImportParameters, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	ip := &ImportParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return ip, nil
}

func (ip *ImportParameters) Validate() error {
	switch {
	case ip.PropertyStride < 2:
		return fmt.Errorf("PropertyStride %d: need at least 2 lines", ip.PropertyStride)
	case ip.ElementStride < 3:
		return fmt.Errorf("ElementStride %d: need at least 3 lines", ip.ElementStride)
	case ip.NodeMinTokens < 14:
		return fmt.Errorf("NodeMinTokens %d: coordinates need 14 tokens", ip.NodeMinTokens)
	case ip.VectorHeaderLines < 6:
		return fmt.Errorf("VectorHeaderLines %d: need at least 6 lines", ip.VectorHeaderLines)
	case ip.OutputSetBlock == ip.OutputVectorBlock:
		return fmt.Errorf("OutputSetBlock and OutputVectorBlock are both %d", ip.OutputSetBlock)
	}
	return nil
}

// Layout is the record layout the decoders use
func (ip *ImportParameters) Layout() neutral.Layout {
	return neutral.Layout{
		NodeMinTokens:     ip.NodeMinTokens,
		PropertyStride:    ip.PropertyStride,
		ElementStride:     ip.ElementStride,
		OutputSetBlock:    ip.OutputSetBlock,
		OutputVectorBlock: ip.OutputVectorBlock,
		VectorHeaderLines: ip.VectorHeaderLines,
	}
}

func (ip *ImportParameters) Print() {
	ip.Fprint(os.Stdout)
}

func (ip *ImportParameters) Fprint(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	fmt.Fprintf(w, "[%s]\t\t\t= Expected Version\n", ip.ExpectedVersion)
	fmt.Fprintf(w, "[%d, %d]\t\t\t= Property, Element Stride\n", ip.PropertyStride, ip.ElementStride)
	fmt.Fprintf(w, "[%d]\t\t\t= Node Min Tokens\n", ip.NodeMinTokens)
	fmt.Fprintf(w, "[%d, %d]\t\t= Output Set, Vector Blocks\n", ip.OutputSetBlock, ip.OutputVectorBlock)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Vector Header Lines\n", ip.VectorHeaderLines)
	fmt.Fprintf(w, "[%v]\t\t\t= Cell To Point\n", ip.CellToPoint)
	fmt.Fprintf(w, "[%v]\t\t\t= Allow Errors\n", ip.AllowErrors)
	if ip.ProbeDB != "" {
		fmt.Fprintf(w, "[%s]\t= Probe DB\n", ip.ProbeDB)
	}
	keys := make([]string, len(ip.FieldAliases))
	i := 0
	for k := range ip.FieldAliases {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(w, "FieldAliases[%s] = %s\n", key, ip.FieldAliases[key])
	}
}
