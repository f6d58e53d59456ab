package collection

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/notargets/femview/InputParameters"
	"github.com/notargets/femview/mesh"
	"github.com/notargets/femview/neutral"
	"github.com/notargets/femview/probe"
	"github.com/notargets/femview/results"
	"github.com/notargets/femview/utils"
	"github.com/notargets/femview/vtk"
)

// Writer turns result files into per-step snapshots of one mesh and keeps
// the manifest that lists them. Steps are written one at a time; a step is
// added to the manifest only after its snapshot is complete.
type Writer struct {
	Dir    string
	Base   string
	Mesh   *mesh.Mesh
	Params *InputParameters.ImportParameters
	Probe  *probe.Store // optional
	Logger *slog.Logger
}

// Step describes one written snapshot
type Step struct {
	Index  int
	SetID  int
	Time   float64
	File   string
	Fields []string
	Merged bool // added to an existing snapshot
}

func NewWriter(dir, base string, m *mesh.Mesh, params *InputParameters.ImportParameters) *Writer {
	if params == nil {
		params = InputParameters.NewImportParameters()
	}
	return &Writer{Dir: dir, Base: base, Mesh: m, Params: params}
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}

func (w *Writer) GeometryPath() string { return filepath.Join(w.Dir, w.Base+".vtm") }

func (w *Writer) ManifestPath() string { return filepath.Join(w.Dir, w.Base+".pvd") }

// SnapshotName is the manifest file name of step k
func (w *Writer) SnapshotName(k int) string { return fmt.Sprintf("%s_%04d.vtm", w.Base, k) }

// WriteGeometry writes the geometry container, one piece per group
func (w *Writer) WriteGeometry() error {
	refs, err := w.writePieces(w.Base+"_mesh", nil, false)
	if err != nil {
		return err
	}
	if err = vtk.WriteFile(w.GeometryPath(), vtk.NewMultiBlock(refs...)); err != nil {
		return err
	}
	w.logger().Info("wrote geometry", "file", w.GeometryPath(),
		"groups", len(w.Mesh.Groups), "points", w.Mesh.NumPoints(), "cells", w.Mesh.NumCells())
	return nil
}

// ReadManifest returns the manifest entries; a missing manifest is empty
func (w *Writer) ReadManifest() ([]vtk.Entry, error) {
	f, err := vtk.ReadFile(w.ManifestPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if f.Collection == nil {
		return nil, fmt.Errorf("%s: not a collection", w.ManifestPath())
	}
	return f.Collection.Entries, nil
}

// Write binds every output set of rf, in ascending set id order, as step
// 0, 1, ... . A step already in the manifest has its snapshot extended:
// new fields are added, fields of the same name replaced, and nothing
// else changes. Steps finished before an error stay registered.
func (w *Writer) Write(ctx context.Context, rf *neutral.ResultFile, source string) (steps []Step, err error) {
	log := w.logger().With("source", source)
	if len(rf.Sets) == 0 {
		return nil, fmt.Errorf("%s: no output sets: %w", source, results.ErrNoVectors)
	}
	for _, line := range rf.Diagnostics.Summary() {
		log.Warn("skipped rows", "detail", line)
	}
	entries, err := w.ReadManifest()
	if err != nil {
		return nil, err
	}
	var runID string
	if w.Probe != nil {
		if runID, err = w.Probe.BeginRun(ctx, source); err != nil {
			return nil, err
		}
	}

	for k, set := range rf.Sets {
		if err = ctx.Err(); err != nil {
			return steps, err
		}
		var (
			vectors = rf.Vectors(set.ID)
			bound   map[string]*results.Bound
		)
		if bound, err = results.Bind(w.Mesh, vectors, set.ID); err != nil {
			return steps, fmt.Errorf("%s step %d: %w", source, k, err)
		}
		fields := w.fields(bound)
		for _, f := range fields {
			if f.HasNaN() {
				log.Warn("field has NaN values", "step", k, "field", f.Name)
			}
		}

		if k > 0 && set.Time < rf.Sets[k-1].Time {
			log.Warn("time goes backwards, manifest is not in time order",
				"step", k, "set", set.ID, "time", set.Time, "previous", rf.Sets[k-1].Time)
		}
		step := Step{Index: k, SetID: set.ID, Time: set.Time, File: w.SnapshotName(k)}
		if k < len(entries) {
			step.File, step.Merged = entries[k].File, true
			if entries[k].Timestep != set.Time {
				log.Warn("time differs from manifest", "step", k, "manifest", entries[k].Timestep, "time", set.Time)
			}
		}
		for _, f := range fields {
			step.Fields = append(step.Fields, f.Name)
		}
		if err = w.writeSnapshot(step.File, fields, step.Merged); err != nil {
			return steps, fmt.Errorf("%s step %d: %w", source, k, err)
		}
		if w.Probe != nil {
			if err = w.Probe.RecordStep(ctx, runID, k, set, vectors); err != nil {
				return steps, fmt.Errorf("%s step %d: %w", source, k, err)
			}
		}
		if !step.Merged {
			entries = append(entries, vtk.Entry{Timestep: set.Time, File: step.File})
			if err = vtk.WriteFile(w.ManifestPath(), vtk.NewCollection(entries...)); err != nil {
				return steps, err
			}
		}
		steps = append(steps, step)
		log.Info("wrote step", "step", k, "set", set.ID, "time", set.Time,
			"fields", len(fields), "merged", step.Merged, "mem", utils.ReadMemUsage())
	}
	return steps, nil
}

func (w *Writer) fields(bound map[string]*results.Bound) []*results.Field {
	fields := results.GroupFields(bound, w.Params.FieldAliases)
	if !w.Params.CellToPoint {
		return fields
	}
	n := len(fields)
	for _, f := range fields[:n] {
		if avg := results.CellToPoint(w.Mesh, f); avg != nil {
			fields = append(fields, avg)
		}
	}
	return fields
}

func (w *Writer) writeSnapshot(file string, fields []*results.Field, merge bool) error {
	refs, err := w.writePieces(strings.TrimSuffix(file, ".vtm"), fields, merge)
	if err != nil {
		return err
	}
	return vtk.WriteFile(filepath.Join(w.Dir, file), vtk.NewMultiBlock(refs...))
}

// writePieces writes one piece per group under dir, relative to w.Dir.
// Every piece is read, checked and built before any is written, and the
// pieces are renamed into place together, so a failure leaves all of them
// as they were.
func (w *Writer) writePieces(dir string, fields []*results.Field, merge bool) ([]vtk.BlockRef, error) {
	refs := make([]vtk.BlockRef, len(w.Mesh.Groups))
	files := make(map[string]*vtk.File, len(w.Mesh.Groups))
	for g := range w.Mesh.Groups {
		grp := &w.Mesh.Groups[g]
		rel := path.Join(dir, vtk.PieceName(grp.Name))
		full := filepath.Join(w.Dir, filepath.FromSlash(rel))

		piece, err := w.piece(g, full, merge)
		if err != nil {
			return nil, err
		}
		var points []int
		for _, f := range fields {
			if f.Groups[g] == nil {
				continue
			}
			var rows []int
			if f.Kind == neutral.Nodal {
				if points == nil {
					points = grp.Points()
				}
				rows = points
			}
			lo, hi := f.Range(g, rows)
			a := vtk.FloatArray(f.Name, f.Components, f.Values(g)).WithRange(lo, hi)
			switch f.Kind {
			case neutral.Nodal:
				piece.PointData.Set(a)
			case neutral.Elemental:
				piece.CellData.Set(a)
			}
		}
		files[full] = vtk.NewUnstructured(piece)
		refs[g] = vtk.BlockRef{Index: g, Name: grp.Name, File: rel}
	}
	if err := vtk.WriteFiles(files); err != nil {
		return nil, err
	}
	return refs, nil
}

// piece returns the existing piece when merging, else fresh geometry
func (w *Writer) piece(g int, filename string, merge bool) (vtk.Piece, error) {
	if !merge {
		return vtk.GeometryPiece(w.Mesh, g), nil
	}
	p, err := vtk.ReadPiece(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return vtk.GeometryPiece(w.Mesh, g), nil
	}
	if err != nil {
		return p, err
	}
	if p.NumberOfPoints != w.Mesh.NumPoints() || p.NumberOfCells != w.Mesh.Groups[g].Len() {
		return p, fmt.Errorf("%s: has %d points, %d cells; mesh group %s has %d points, %d cells",
			filename, p.NumberOfPoints, p.NumberOfCells, w.Mesh.Groups[g].Name, w.Mesh.NumPoints(), w.Mesh.Groups[g].Len())
	}
	return p, nil
}
