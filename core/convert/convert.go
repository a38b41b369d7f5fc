// Package convert turns a Pascal VOC dataset into an unsplit YOLO one.
package convert

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/visionprep/yoloprep/core/config"
	"github.com/visionprep/yoloprep/core/runlog"
	"github.com/visionprep/yoloprep/core/voc"
	"github.com/visionprep/yoloprep/core/yolo"
)

const stageName = "convert"

// Converter copies VOC images and rewrites their annotations as YOLO
// label files under OutputDir/{images,labels}.
type Converter struct {
	Fs             afero.Fs
	Config         *config.Configuration
	AnnotationsDir string
	ImagesDir      string
	OutputDir      string
	Log            *runlog.RunLogger
}

// Result summarizes a conversion.
type Result struct {
	// Processed counts image+label pairs written.
	Processed int
	// Skipped counts annotations dropped for missing metadata.
	Skipped int
	// MissingImages counts annotations whose referenced image was absent.
	MissingImages int
}

func (r *Result) counts() map[string]int {
	return map[string]int{
		"processed":      r.Processed,
		"skipped":        r.Skipped,
		"missing_images": r.MissingImages,
	}
}

// Run converts every annotation in AnnotationsDir.
func (c *Converter) Run() (*Result, error) {
	c.Log.StageStart(stageName)

	stems, err := voc.Stems(c.Fs, c.AnnotationsDir)
	if err != nil {
		c.Log.StageFailed(stageName, err)
		return nil, fmt.Errorf("listing annotations: %w", err)
	}

	imagesOut := filepath.Join(c.OutputDir, yolo.ImagesDirName)
	labelsOut := filepath.Join(c.OutputDir, yolo.LabelsDirName)
	for _, dir := range []string{imagesOut, labelsOut} {
		if err := c.Fs.MkdirAll(dir, 0755); err != nil {
			c.Log.StageFailed(stageName, err)
			return nil, err
		}
	}

	var res Result
	for _, stem := range stems {
		xmlPath := filepath.Join(c.AnnotationsDir, stem+".xml")

		ann, err := voc.ReadAnnotation(c.Fs, xmlPath)
		if err != nil {
			c.Log.Warn(stageName, xmlPath, err.Error())
			res.Skipped++
			continue
		}
		if ann.Size.Width <= 0 || ann.Size.Height <= 0 {
			c.Log.Warn(stageName, xmlPath, "missing or invalid image size")
			res.Skipped++
			continue
		}
		if ann.Filename == "" {
			c.Log.Warn(stageName, xmlPath, "missing image filename")
			res.Skipped++
			continue
		}

		labels := c.convertObjects(xmlPath, ann)
		labelPath := filepath.Join(labelsOut, stem+yolo.LabelExt)
		if err := yolo.WriteLabels(c.Fs, labelPath, labels); err != nil {
			c.Log.StageFailed(stageName, err)
			return nil, fmt.Errorf("writing %s: %w", labelPath, err)
		}

		imagePath := filepath.Join(c.ImagesDir, ann.Filename)
		if exists, err := afero.Exists(c.Fs, imagePath); err != nil {
			c.Log.StageFailed(stageName, err)
			return nil, err
		} else if !exists {
			c.Log.Warn(stageName, imagePath, "image file not found")
			res.MissingImages++
			continue
		}

		if err := yolo.CopyFile(c.Fs, imagePath, filepath.Join(imagesOut, ann.Filename)); err != nil {
			c.Log.StageFailed(stageName, err)
			return nil, fmt.Errorf("copying %s: %w", imagePath, err)
		}
		res.Processed++
	}

	c.Log.StageDone(stageName, res.counts())
	return &res, nil
}

// convertObjects turns the annotation's boxes into normalized YOLO
// labels, dropping objects with unknown classes.
func (c *Converter) convertObjects(xmlPath string, ann *voc.Annotation) []yolo.Label {
	labels := []yolo.Label{}
	for _, obj := range ann.Objects {
		classID, ok := c.Config.ClassID(obj.Name)
		if !ok {
			c.Log.Warn(stageName, xmlPath, fmt.Sprintf("unknown class %q", obj.Name))
			continue
		}
		if obj.Box == nil {
			c.Log.Warn(stageName, xmlPath, fmt.Sprintf("object %q has no bounding box", obj.Name))
			continue
		}
		if obj.Box.Malformed {
			c.Log.Warn(stageName, xmlPath, fmt.Sprintf("object %q has a non-numeric bounding box", obj.Name))
			continue
		}

		labels = append(labels, Normalize(classID, *obj.Box, ann.Size.Width, ann.Size.Height))
	}
	return labels
}

// Normalize converts a pixel-space box to a YOLO label with center
// coordinates normalized to the image size. Values are clamped to
// [0, 1] so slightly out-of-bounds annotations stay usable.
func Normalize(classID int, box voc.Box, imgWidth, imgHeight int) yolo.Label {
	w := float64(imgWidth)
	h := float64(imgHeight)

	return yolo.Label{
		Class:   classID,
		XCenter: clamp01((box.XMin + box.XMax) / 2 / w),
		YCenter: clamp01((box.YMin + box.YMax) / 2 / h),
		Width:   clamp01(box.Width() / w),
		Height:  clamp01(box.Height() / h),
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
