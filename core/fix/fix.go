// Package fix repairs common defects in Pascal VOC annotations so the
// rest of the pipeline doesn't have to reject whole files.
package fix

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/visionprep/yoloprep/core/config"
	"github.com/visionprep/yoloprep/core/runlog"
	"github.com/visionprep/yoloprep/core/voc"
)

const stageName = "fix"

// Fixer rewrites annotation files in place: objects with unusable
// bounding boxes are dropped and configured class-name swaps applied.
type Fixer struct {
	Fs             afero.Fs
	AnnotationsDir string
	Rules          config.FixRules
	Log            *runlog.RunLogger
}

// Result summarizes a repair pass.
type Result struct {
	FilesChanged   int
	ObjectsDropped int
	NamesSwapped   int
	Unreadable     int
}

func (r *Result) counts() map[string]int {
	return map[string]int{
		"files_changed":   r.FilesChanged,
		"objects_dropped": r.ObjectsDropped,
		"names_swapped":   r.NamesSwapped,
		"unreadable":      r.Unreadable,
	}
}

// Run repairs every annotation in AnnotationsDir.
func (f *Fixer) Run() (*Result, error) {
	f.Log.StageStart(stageName)

	stems, err := voc.Stems(f.Fs, f.AnnotationsDir)
	if err != nil {
		f.Log.StageFailed(stageName, err)
		return nil, fmt.Errorf("listing annotations: %w", err)
	}

	var res Result
	for _, stem := range stems {
		path := filepath.Join(f.AnnotationsDir, stem+".xml")

		ann, err := voc.ReadAnnotation(f.Fs, path)
		if err != nil {
			f.Log.Warn(stageName, path, err.Error())
			res.Unreadable++
			continue
		}
		if ann.Size.Width <= 0 || ann.Size.Height <= 0 {
			f.Log.Warn(stageName, path, "missing or invalid image size, not repairable")
			res.Unreadable++
			continue
		}

		dropped, swapped := f.repair(path, ann)
		if dropped == 0 && swapped == 0 {
			continue
		}

		if err := voc.WriteAnnotation(f.Fs, path, ann); err != nil {
			f.Log.StageFailed(stageName, err)
			return nil, fmt.Errorf("rewriting %s: %w", path, err)
		}
		res.FilesChanged++
		res.ObjectsDropped += dropped
		res.NamesSwapped += swapped
	}

	f.Log.StageDone(stageName, res.counts())
	return &res, nil
}

// repair mutates the annotation, returning how many objects were
// dropped and how many class names swapped.
func (f *Fixer) repair(path string, ann *voc.Annotation) (dropped, swapped int) {
	kept := ann.Objects[:0]
	for _, obj := range ann.Objects {
		// Objects with no bndbox at all are left for the converter to
		// warn about; only present-but-broken boxes are dropped.
		if obj.Box != nil {
			if err := obj.Box.Check(ann.Size.Width, ann.Size.Height); err != nil {
				f.Log.Warn(stageName, path, fmt.Sprintf("dropping %q: %v", obj.Name, err))
				dropped++
				continue
			}
		}

		if swap, ok := f.swapFor(obj.Name); ok {
			obj.Name = swap
			swapped++
		}
		kept = append(kept, obj)
	}
	ann.Objects = kept
	return dropped, swapped
}

func (f *Fixer) swapFor(name string) (string, bool) {
	for _, swap := range f.Rules.ClassSwaps {
		switch name {
		case swap.A:
			return swap.B, true
		case swap.B:
			return swap.A, true
		}
	}
	return "", false
}
