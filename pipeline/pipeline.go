package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/notargets/femview/InputParameters"
	"github.com/notargets/femview/collection"
	"github.com/notargets/femview/mesh"
	"github.com/notargets/femview/neutral"
	"github.com/notargets/femview/probe"
)

// ErrValidation means the mesh file produced ERROR findings
var ErrValidation = errors.New("mesh validation failed")

// MeshBuild is the outcome of reading and assembling a mesh file
type MeshBuild struct {
	Model    *neutral.Model
	Mesh     *mesh.Mesh
	Findings []mesh.Finding
}

// BuildMeshFromFile decodes, validates and assembles a mesh file. When the
// validator reports an ERROR and params do not allow errors, the findings
// are returned with an error wrapping ErrValidation and no mesh.
func BuildMeshFromFile(filename string, params *InputParameters.ImportParameters) (*MeshBuild, error) {
	if params == nil {
		params = InputParameters.NewImportParameters()
	}
	model, err := neutral.ReadModel(filename, params.Layout())
	if err != nil {
		return nil, err
	}
	b := &MeshBuild{
		Model:    model,
		Findings: mesh.Validate(model, params.ExpectedVersion),
	}
	if mesh.HasErrors(b.Findings) && !params.AllowErrors {
		return b, fmt.Errorf("%s: %w", filename, ErrValidation)
	}
	b.Mesh = mesh.Assemble(model.Nodes, model.Elements, model.Properties)
	return b, nil
}

// Session binds result files against one assembled mesh
type Session struct {
	*MeshBuild
	Params *InputParameters.ImportParameters
	Writer *collection.Writer
	Probe  *probe.Store
	Logger *slog.Logger
}

// BaseName is the artifact base name of a mesh file
func BaseName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ProbePath is where the probe store of a base name lives, "" if disabled
func ProbePath(dir, base string, params *InputParameters.ImportParameters) string {
	switch params.ProbeDB {
	case InputParameters.ProbeDisabled:
		return ""
	case "":
		return filepath.Join(dir, base+".probe.db")
	}
	return params.ProbeDB
}

// Open builds the mesh, writes its geometry container into dir and opens the
// probe store
func Open(ctx context.Context, meshFile, dir string, params *InputParameters.ImportParameters, logger *slog.Logger) (s *Session, err error) {
	if params == nil {
		params = InputParameters.NewImportParameters()
	}
	if logger == nil {
		logger = slog.Default()
	}
	b, err := BuildMeshFromFile(meshFile, params)
	if b != nil {
		for _, f := range b.Findings {
			logger.Warn("validation", "finding", f.String())
		}
		for _, line := range b.Model.Diagnostics.Summary() {
			logger.Warn("skipped rows", "detail", line)
		}
	}
	if err != nil {
		return nil, err
	}
	for _, skip := range b.Mesh.Skipped {
		logger.Debug("skipped element", "detail", skip.String())
	}

	base := BaseName(meshFile)
	s = &Session{MeshBuild: b, Params: params, Logger: logger}
	s.Writer = collection.NewWriter(dir, base, b.Mesh, params)
	s.Writer.Logger = logger
	if err = s.Writer.WriteGeometry(); err != nil {
		return nil, err
	}
	if path := ProbePath(dir, base, params); path != "" {
		if s.Probe, err = probe.Open(path); err != nil {
			return nil, err
		}
		if err = s.Probe.RegisterMesh(ctx, b.Mesh); err != nil {
			s.Probe.Close()
			return nil, err
		}
		s.Writer.Probe = s.Probe
	}
	return s, nil
}

// BindFieldFromFile adds the fields of a result file to the step snapshots
// and the manifest
func (s *Session) BindFieldFromFile(ctx context.Context, filename string) ([]collection.Step, error) {
	rf, err := neutral.ReadResultFile(filename, s.Params.Layout())
	if err != nil {
		return nil, err
	}
	return s.Writer.Write(ctx, rf, filepath.Base(filename))
}

// Query returns per-entity time series of the bound results
func (s *Session) Query(ctx context.Context, q probe.Query) ([]probe.Series, error) {
	if s.Probe == nil {
		return nil, errors.New("probe store is disabled")
	}
	return s.Probe.Query(ctx, q)
}

func (s *Session) Close() error {
	if s.Probe == nil {
		return nil
	}
	return s.Probe.Close()
}

// QueryFile runs a query against an existing probe store
func QueryFile(ctx context.Context, path string, q probe.Query) ([]probe.Series, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	store, err := probe.Open(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Query(ctx, q)
}
