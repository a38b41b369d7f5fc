// Package pipeline sequences the dataset preparation stages:
// fix (optional), convert, check, split, per-split check, summary.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/visionprep/yoloprep/core/check"
	"github.com/visionprep/yoloprep/core/config"
	"github.com/visionprep/yoloprep/core/convert"
	"github.com/visionprep/yoloprep/core/fix"
	"github.com/visionprep/yoloprep/core/runlog"
	"github.com/visionprep/yoloprep/core/split"
	"github.com/visionprep/yoloprep/core/yolo"
)

// ErrCheckFailed marks a run aborted because a dataset check found
// problems, as opposed to an IO failure.
var ErrCheckFailed = errors.New("dataset check failed")

// Pipeline runs every stage against the configured workspace. Unlike
// the usual grab-bag of dataset shell scripts, a failure in any stage
// aborts the run.
type Pipeline struct {
	Config *config.Configuration
	Log    *runlog.RunLogger

	// Out receives human-readable progress and the final summary.
	Out io.Writer

	// ApplyFixes runs the annotation repair stage before converting.
	ApplyFixes bool
}

// Run executes the full pipeline.
func (p *Pipeline) Run() error {
	fsys := p.Config.Fs()
	layout := p.Config.Layout

	if p.ApplyFixes {
		fixer := &fix.Fixer{
			Fs:             fsys,
			AnnotationsDir: layout.VOCAnnotations,
			Rules:          p.Config.Fix,
			Log:            p.Log,
		}
		res, err := fixer.Run()
		if err != nil {
			return fmt.Errorf("fix stage: %w", err)
		}
		fmt.Fprintf(p.Out, "fix: %d files changed, %d objects dropped\n",
			res.FilesChanged, res.ObjectsDropped)
	}

	converter := &convert.Converter{
		Fs:             fsys,
		Config:         p.Config,
		AnnotationsDir: layout.VOCAnnotations,
		ImagesDir:      layout.VOCImages,
		OutputDir:      layout.YOLOAll,
		Log:            p.Log,
	}
	convRes, err := converter.Run()
	if err != nil {
		return fmt.Errorf("convert stage: %w", err)
	}
	fmt.Fprintf(p.Out, "convert: %d pairs written, %d annotations skipped\n",
		convRes.Processed, convRes.Skipped)

	// The pre-split check gates everything downstream: splitting a bad
	// dataset would only smear its problems across three directories.
	if err := p.checkDir(layout.YOLOAll); err != nil {
		return err
	}

	splitter := &split.Splitter{
		Fs:        fsys,
		InputDir:  layout.YOLOAll,
		OutputDir: layout.YOLOSplit,
		Ratios:    p.Config.Split,
		Seed:      p.Config.ShuffleSeed,
		Log:       p.Log,
	}
	if _, err := splitter.Run(); err != nil {
		return fmt.Errorf("split stage: %w", err)
	}

	// All three post-split checks run and report before any failure
	// propagates, so one bad split doesn't hide problems in another.
	var failed []string
	for _, name := range split.Names {
		if err := p.checkDir(filepath.Join(layout.YOLOSplit, name)); err != nil {
			if !errors.Is(err, ErrCheckFailed) {
				return err
			}
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w for splits %v", ErrCheckFailed, failed)
	}

	return p.summarize()
}

// checkDir runs the YOLO integrity check on dir, rendering the report.
func (p *Pipeline) checkDir(dir string) error {
	report, err := check.Dataset(p.Config.Fs(), dir, p.Config)
	if err != nil {
		return fmt.Errorf("checking %s: %w", dir, err)
	}

	report.Render(p.Out)
	if !report.OK() {
		return fmt.Errorf("%w: %s", ErrCheckFailed, dir)
	}
	return nil
}

// summarize reports per-split image counts from the directories
// themselves rather than trusting the splitter's bookkeeping.
func (p *Pipeline) summarize() error {
	counts := make(map[string]int, len(split.Names))

	total := 0
	fmt.Fprintln(p.Out, "\nFinal dataset:")
	for _, name := range split.Names {
		imagesDir := filepath.Join(p.Config.Layout.YOLOSplit, name, yolo.ImagesDirName)
		stems, err := yolo.ImageStems(p.Config.Fs(), imagesDir)
		if err != nil {
			return fmt.Errorf("counting %s: %w", imagesDir, err)
		}

		counts[name] = len(stems)
		total += len(stems)
		fmt.Fprintf(p.Out, "  %-5s %d images\n", name, len(stems))
	}
	fmt.Fprintf(p.Out, "  total %d images\n", total)

	p.Log.Summary(counts)
	return nil
}
