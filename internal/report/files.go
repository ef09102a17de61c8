package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"domaincheck/pkg/domain"
	"domaincheck/pkg/logger"
	"domaincheck/pkg/serrors"

	"go.uber.org/zap"
)

// Report file names inside the output directory.
const (
	FullFile     = "full_results.csv"
	MinimalFile  = "export_min.csv"
	WorkbookFile = "results.xlsx"
)

// HitsFile returns the name of the hits report for threshold.
func HitsFile(threshold int64) string {
	return fmt.Sprintf("hits_over_%d.csv", threshold)
}

// Files writes the reports of a run into Dir.
type Files struct {
	Dir       string
	Threshold int64
	// Workbook additionally writes results.xlsx.
	Workbook bool
}

// Checkpoint rewrites the full report with the results completed so far.
func (f Files) Checkpoint(ctx context.Context, results domain.ResultSet) error {
	if err := f.write(FullFile, func(w io.Writer) error { return WriteFull(w, results) }); err != nil {
		return err
	}
	logger.Debug(ctx, "checkpoint written", zap.Int("results", len(results)), zap.String("dir", f.Dir))

	return nil
}

// Write writes every report and returns the paths written.
func (f Files) Write(ctx context.Context, results domain.ResultSet) ([]string, error) {
	outputs := []struct {
		name  string
		write func(io.Writer) error
	}{
		{FullFile, func(w io.Writer) error { return WriteFull(w, results) }},
		{HitsFile(f.Threshold), func(w io.Writer) error { return WriteHits(w, results, f.Threshold) }},
		{MinimalFile, func(w io.Writer) error { return WriteMinimal(w, results) }},
	}
	if f.Workbook {
		outputs = append(outputs, struct {
			name  string
			write func(io.Writer) error
		}{WorkbookFile, func(w io.Writer) error { return WriteWorkbook(w, results, f.Threshold) }})
	}

	paths := make([]string, 0, len(outputs))
	for _, o := range outputs {
		if err := f.write(o.name, o.write); err != nil {
			return paths, err
		}
		paths = append(paths, filepath.Join(f.Dir, o.name))
	}
	logger.Info(ctx, "reports written", zap.Strings("files", paths))

	return paths, nil
}

// write renders into memory first and replaces the target with a rename so a
// crash never leaves a truncated report behind.
func (f Files) write(name string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}

	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return serrors.Wrap(serrors.ErrInternal, err, "could not create output dir")
	}

	tmp, err := os.CreateTemp(f.Dir, "."+name+"-*")
	if err != nil {
		return serrors.Wrap(serrors.ErrInternal, err, "could not create temp file")
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()

		return serrors.Wrap(serrors.ErrInternal, err, "could not write %s", name)
	}
	if err := tmp.Close(); err != nil {
		return serrors.Wrap(serrors.ErrInternal, err, "could not close %s", name)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(f.Dir, name)); err != nil {
		return serrors.Wrap(serrors.ErrInternal, err, "could not replace %s", name)
	}

	return nil
}
