package check

import (
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/visionprep/yoloprep/core/config"
	"github.com/visionprep/yoloprep/core/voc"
	"github.com/visionprep/yoloprep/core/yolo"
)

// VOCDataset checks a Pascal VOC annotation/image directory pair.
func VOCDataset(fsys afero.Fs, annotationsDir, imagesDir string, cfg *config.Configuration) (*Report, error) {
	report := newReport(annotationsDir, "voc")

	for _, dir := range []string{annotationsDir, imagesDir} {
		exists, err := afero.DirExists(fsys, dir)
		if err != nil {
			return nil, err
		}
		if !exists {
			report.problemf(dir, "directory does not exist")
		}
	}
	if len(report.Problems) > 0 {
		return report, nil
	}

	xmlStems, err := voc.Stems(fsys, annotationsDir)
	if err != nil {
		return nil, err
	}
	imageStems, err := yolo.ImageStems(fsys, imagesDir)
	if err != nil {
		return nil, err
	}

	report.ImageCount = len(imageStems)
	report.AnnotationCount = len(xmlStems)

	images := stemSet(imageStems)
	annotations := stemSet(xmlStems)
	report.MissingImages = difference(xmlStems, images)
	report.MissingAnnotations = difference(imageStems, annotations)
	for _, stem := range xmlStems {
		if images[stem] {
			report.PairCount++
		}
	}

	for _, stem := range xmlStems {
		checkAnnotation(fsys, filepath.Join(annotationsDir, stem+".xml"), cfg, report)
	}

	return report, nil
}

func checkAnnotation(fsys afero.Fs, path string, cfg *config.Configuration, report *Report) {
	ann, err := voc.ReadAnnotation(fsys, path)
	if err != nil {
		report.problemf(path, "%v", err)
		return
	}

	if ann.Size.Width <= 0 || ann.Size.Height <= 0 {
		report.problemf(path, "missing or invalid image size %dx%d", ann.Size.Width, ann.Size.Height)
		return
	}

	for i, obj := range ann.Objects {
		if _, ok := cfg.ClassID(obj.Name); !ok {
			report.problemf(path, "object %d: unknown class %q", i+1, obj.Name)
			continue
		}
		if obj.Box == nil {
			report.problemf(path, "object %d: missing bndbox", i+1)
			continue
		}
		if err := obj.Box.Check(ann.Size.Width, ann.Size.Height); err != nil {
			report.problemf(path, "object %d: %v", i+1, err)
			continue
		}

		report.classStat(obj.Name).add(obj.Box.Width(), obj.Box.Height())
	}
}
