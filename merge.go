package certgen

import (
	"fmt"
	"path/filepath"

	"github.com/alnah/go-certgen/internal/fileutil"
)

// DefaultMergedName is the combined document's file name.
const DefaultMergedName = "all_certificates.pdf"

// MergeOptions configures Merge.
type MergeOptions struct {
	Output      string // combined document path; "" = DefaultMergedPath(OutputDir)
	OutputDir   string // per-name artifact directory, removed when left empty
	KeepSingles bool   // keep per-name files after merging
}

// MergeReport describes what Merge produced and cleaned up.
type MergeReport struct {
	Output        string
	Pages         int
	Removed       int     // per-name files deleted
	DirRemoved    bool    // output directory deleted
	CleanupErrors []error // best-effort failures, never fatal
}

// DefaultMergedPath places the combined document next to the output
// directory so the directory can be removed once emptied.
func DefaultMergedPath(outputDir string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(outputDir)), DefaultMergedName)
}

// Merge concatenates the documents of succeeded results in input order.
// Failed results are skipped. With no succeeded results nothing is written
// and ErrNothingToMerge is returned.
//
// Unless KeepSingles is set, merged per-name files are deleted afterwards and
// OutputDir is removed if it is empty. A directory still holding other files
// is left in place.
func Merge(doc DocumentWriter, results []Result, opts MergeOptions) (*MergeReport, error) {
	out := opts.Output
	if out == "" {
		out = DefaultMergedPath(opts.OutputDir)
	}
	report := &MergeReport{Output: out}

	merged := Succeeded(results)
	if len(merged) == 0 {
		if !opts.KeepSingles {
			removeEmptyDir(report, opts.OutputDir)
		}
		return report, ErrNothingToMerge
	}

	pages := make([]Page, len(merged))
	for i, r := range merged {
		pages[i] = r.Artifact.Page()
	}

	n, err := doc.Merge(pages, out)
	if err != nil {
		return report, fmt.Errorf("merging %d certificates: %w", len(pages), err)
	}
	report.Pages = n

	if opts.KeepSingles {
		return report, nil
	}

	for _, r := range merged {
		for _, p := range r.Artifact.Files() {
			removed, err := fileutil.RemoveFile(p)
			if err != nil {
				report.CleanupErrors = append(report.CleanupErrors, err)
				continue
			}
			if removed {
				report.Removed++
			}
		}
	}

	removeEmptyDir(report, opts.OutputDir)
	return report, nil
}

// removeEmptyDir deletes dir when nothing is left in it.
func removeEmptyDir(report *MergeReport, dir string) {
	if dir == "" {
		return
	}
	removed, err := fileutil.RemoveDirIfEmpty(dir)
	if err != nil {
		report.CleanupErrors = append(report.CleanupErrors, err)
	}
	report.DirRemoved = removed
}
