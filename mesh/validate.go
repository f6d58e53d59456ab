package mesh

import (
	"fmt"

	"github.com/notargets/femview/neutral"
)

// ExpectedVersion is the format version the decoders were written against
const ExpectedVersion = "4.41"

type Severity uint8

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	return [...]string{"WARNING", "ERROR"}[s]
}

// Finding is one validator message
type Finding struct {
	Severity Severity
	Message  string
}

func (f Finding) String() string {
	return f.Severity.String() + ": " + f.Message
}

// Validate cross-checks decoded data. Every check runs; ERROR findings mean
// the mesh should not be built, WARNING findings are advisory.
func Validate(model *neutral.Model, expectedVersion string) (findings []Finding) {
	add := func(s Severity, format string, args ...any) {
		findings = append(findings, Finding{Severity: s, Message: fmt.Sprintf(format, args...)})
	}
	if len(model.Nodes) == 0 {
		add(Error, "no nodes defined")
	}
	if len(model.Elements) == 0 {
		add(Error, "no elements defined")
	}
	for _, el := range model.Elements {
		if _, ok := LookupTopology(el.Topology); !ok {
			add(Warning, "element %d has unsupported topology %d", el.ID, el.Topology)
		}
		for _, id := range el.Nodes {
			if _, ok := model.Nodes[id]; !ok {
				add(Error, "element %d references missing node %d", el.ID, id)
			}
		}
	}
	switch {
	case model.Header == nil:
		add(Warning, "no header block, expected version %s", expectedVersion)
	case model.Header.Version != expectedVersion:
		add(Warning, "format version %q, expected %q", model.Header.Version, expectedVersion)
	}
	return
}

// HasErrors reports whether any finding is an ERROR
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == Error {
			return true
		}
	}
	return false
}
