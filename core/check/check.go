// Package check validates dataset integrity before and after the
// pipeline runs.
package check

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/visionprep/yoloprep/core/config"
	"github.com/visionprep/yoloprep/core/yolo"
)

// Dataset checks a YOLO dataset directory containing images/ and
// labels/ subdirectories. The returned error covers filesystem
// failures only; dataset defects land in the report.
func Dataset(fsys afero.Fs, dir string, cfg *config.Configuration) (*Report, error) {
	report := newReport(dir, "yolo")

	imagesDir := filepath.Join(dir, yolo.ImagesDirName)
	labelsDir := filepath.Join(dir, yolo.LabelsDirName)

	for _, sub := range []string{imagesDir, labelsDir} {
		exists, err := afero.DirExists(fsys, sub)
		if err != nil {
			return nil, err
		}
		if !exists {
			report.problemf(sub, "directory does not exist")
		}
	}
	if len(report.Problems) > 0 {
		return report, nil
	}

	imageStems, err := yolo.ImageStems(fsys, imagesDir)
	if err != nil {
		return nil, err
	}
	labelStems, err := yolo.LabelStems(fsys, labelsDir)
	if err != nil {
		return nil, err
	}

	report.ImageCount = len(imageStems)
	report.AnnotationCount = len(labelStems)

	images := stemSet(imageStems)
	labels := stemSet(labelStems)
	report.MissingImages = difference(labelStems, images)
	report.MissingAnnotations = difference(imageStems, labels)

	for _, stem := range labelStems {
		if !images[stem] {
			continue
		}
		report.PairCount++
		checkLabelFile(fsys, filepath.Join(labelsDir, stem+yolo.LabelExt), cfg, report)
	}

	return report, nil
}

// checkLabelFile validates every line so a single malformed line
// doesn't hide later ones.
func checkLabelFile(fsys afero.Fs, path string, cfg *config.Configuration, report *Report) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		report.problemf(path, "%v", err)
		return
	}

	for i, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		label, err := yolo.ParseLine(line)
		if err != nil {
			report.problemf(path, "line %d: %v", i+1, err)
			continue
		}
		if !cfg.ValidClassID(label.Class) {
			report.problemf(path, "line %d: invalid class id %d", i+1, label.Class)
			continue
		}
		if !label.InRange() {
			report.problemf(path, "line %d: coordinates outside [0, 1]", i+1)
			continue
		}

		report.classStat(cfg.ClassName(label.Class)).add(label.Width, label.Height)
	}
}

func stemSet(stems []string) map[string]bool {
	out := make(map[string]bool, len(stems))
	for _, s := range stems {
		out[s] = true
	}
	return out
}

// difference returns the members of stems absent from other, in order.
func difference(stems []string, other map[string]bool) []string {
	var out []string
	for _, s := range stems {
		if !other[s] {
			out = append(out, s)
		}
	}
	return out
}
