package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kilianp07/velomagg/core/report"
)

// Options selects the files written by WriteFiles.
type Options struct {
	Dir       string
	BaseName  string
	CSV       bool
	JSON      bool
	Report    bool
	Dashboard bool
}

// WriteFiles writes <base>.csv (scored stations), <base>_stats.json (summary),
// <base>_report.txt (detailed report) and <base>_dashboard.html (charts) as
// selected, and returns the paths written.
func WriteFiles(opts Options, in report.Input) ([]string, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	var written []string
	write := func(suffix string, fn func(io.Writer) error) error {
		path := filepath.Join(opts.Dir, opts.BaseName+suffix)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := fn(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}
	if opts.CSV {
		if err := write(".csv", func(w io.Writer) error { return WriteCSV(w, in.Records) }); err != nil {
			return written, err
		}
	}
	if opts.JSON {
		if err := write("_stats.json", func(w io.Writer) error { return WriteJSON(w, in.Summary) }); err != nil {
			return written, err
		}
	}
	if opts.Report {
		if err := write("_report.txt", func(w io.Writer) error { return report.WriteDetailed(w, in) }); err != nil {
			return written, err
		}
	}
	if opts.Dashboard {
		title := in.Title
		if title == "" {
			title = "Bike-share network dashboard"
		}
		if err := write("_dashboard.html", func(w io.Writer) error { return WriteDashboard(w, title, in.Records) }); err != nil {
			return written, err
		}
	}
	return written, nil
}
