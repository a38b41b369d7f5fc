// Package split partitions an unsplit YOLO dataset into train, val and
// test subsets.
package split

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"github.com/visionprep/yoloprep/core/config"
	"github.com/visionprep/yoloprep/core/runlog"
	"github.com/visionprep/yoloprep/core/yolo"
)

const stageName = "split"

// Names are the dataset partitions, in output order.
var Names = []string{"train", "val", "test"}

// Splitter copies image+label pairs from InputDir into per-split
// subdirectories of OutputDir.
type Splitter struct {
	Fs        afero.Fs
	InputDir  string
	OutputDir string
	Ratios    config.SplitRatios

	// Seed makes the shuffle, and therefore the partition, reproducible.
	Seed int64

	Log *runlog.RunLogger
}

// Result holds the number of images copied into each split.
type Result struct {
	Counts map[string]int
}

// Total is the number of images across all splits.
func (r *Result) Total() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

// Run shuffles the dataset and copies each partition into place.
func (s *Splitter) Run() (*Result, error) {
	s.Log.StageStart(stageName)

	if err := s.Ratios.Check(); err != nil {
		s.Log.StageFailed(stageName, err)
		return nil, err
	}

	imagesDir := filepath.Join(s.InputDir, yolo.ImagesDirName)
	labelsDir := filepath.Join(s.InputDir, yolo.LabelsDirName)

	imageFiles, err := yolo.ImageFiles(s.Fs, imagesDir)
	if err != nil {
		s.Log.StageFailed(stageName, err)
		return nil, fmt.Errorf("listing %s: %w", imagesDir, err)
	}

	stems := make([]string, 0, len(imageFiles))
	for stem := range imageFiles {
		stems = append(stems, stem)
	}
	sort.Strings(stems)
	rand.New(rand.NewSource(s.Seed)).Shuffle(len(stems), func(i, j int) {
		stems[i], stems[j] = stems[j], stems[i]
	})

	res := &Result{Counts: make(map[string]int, len(Names))}
	for name, members := range s.partition(stems) {
		splitImages := filepath.Join(s.OutputDir, name, yolo.ImagesDirName)
		splitLabels := filepath.Join(s.OutputDir, name, yolo.LabelsDirName)
		for _, dir := range []string{splitImages, splitLabels} {
			if err := s.Fs.MkdirAll(dir, 0755); err != nil {
				s.Log.StageFailed(stageName, err)
				return nil, err
			}
		}

		for _, stem := range members {
			src := filepath.Join(imagesDir, imageFiles[stem])
			if err := yolo.CopyFile(s.Fs, src, filepath.Join(splitImages, imageFiles[stem])); err != nil {
				s.Log.StageFailed(stageName, err)
				return nil, fmt.Errorf("copying %s: %w", src, err)
			}
			res.Counts[name]++

			labelSrc := filepath.Join(labelsDir, stem+yolo.LabelExt)
			if exists, err := afero.Exists(s.Fs, labelSrc); err != nil {
				s.Log.StageFailed(stageName, err)
				return nil, err
			} else if !exists {
				s.Log.Warn(stageName, labelSrc, "label file not found")
				continue
			}
			if err := yolo.CopyFile(s.Fs, labelSrc, filepath.Join(splitLabels, stem+yolo.LabelExt)); err != nil {
				s.Log.StageFailed(stageName, err)
				return nil, fmt.Errorf("copying %s: %w", labelSrc, err)
			}
		}
	}

	s.Log.StageDone(stageName, res.Counts)
	return res, nil
}

// partition cuts the shuffled stems into the three splits. Val and
// test sizes are truncated toward zero; train absorbs the rounding
// remainder so every stem lands in exactly one split.
func (s *Splitter) partition(stems []string) map[string][]string {
	n := len(stems)
	nVal := int(s.Ratios.Val * float64(n))
	nTest := int(s.Ratios.Test * float64(n))
	nTrain := n - nVal - nTest

	return map[string][]string{
		"train": stems[:nTrain],
		"val":   stems[nTrain : nTrain+nVal],
		"test":  stems[nTrain+nVal:],
	}
}
