package check

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
)

// Problem is a single defect found in a dataset.
type Problem struct {
	Path    string
	Message string
}

// ClassStat accumulates per-class object counts and box dimensions.
// Dimensions are normalized for YOLO datasets and in pixels for VOC.
type ClassStat struct {
	Objects                            int
	MinW, MinH, MaxW, MaxH, SumW, SumH float64
}

func (s *ClassStat) add(w, h float64) {
	if s.Objects == 0 {
		s.MinW, s.MinH = w, h
		s.MaxW, s.MaxH = w, h
	} else {
		if w < s.MinW {
			s.MinW = w
		}
		if h < s.MinH {
			s.MinH = h
		}
		if w > s.MaxW {
			s.MaxW = w
		}
		if h > s.MaxH {
			s.MaxH = h
		}
	}
	s.Objects++
	s.SumW += w
	s.SumH += h
}

func (s *ClassStat) AvgW() float64 { return s.SumW / float64(s.Objects) }
func (s *ClassStat) AvgH() float64 { return s.SumH / float64(s.Objects) }

// Report is the outcome of a dataset integrity check.
type Report struct {
	Dir string

	// Kind is "yolo" or "voc"; it only affects rendering.
	Kind string

	ImageCount      int
	AnnotationCount int
	PairCount       int

	// MissingImages are annotation stems with no image file.
	MissingImages []string
	// MissingAnnotations are image stems with no annotation.
	MissingAnnotations []string

	Problems []Problem

	Classes map[string]*ClassStat
}

func newReport(dir, kind string) *Report {
	return &Report{Dir: dir, Kind: kind, Classes: make(map[string]*ClassStat)}
}

func (r *Report) problemf(path, format string, args ...interface{}) {
	r.Problems = append(r.Problems, Problem{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) classStat(name string) *ClassStat {
	stat, ok := r.Classes[name]
	if !ok {
		stat = &ClassStat{}
		r.Classes[name] = stat
	}
	return stat
}

// OK reports whether the dataset passed the check.
func (r *Report) OK() bool {
	return len(r.MissingImages) == 0 &&
		len(r.MissingAnnotations) == 0 &&
		len(r.Problems) == 0
}

// TotalObjects is the number of valid objects across all classes.
func (r *Report) TotalObjects() int {
	total := 0
	for _, stat := range r.Classes {
		total += stat.Objects
	}
	return total
}

// listCap bounds how many missing files are itemized per category.
const listCap = 5

// Render writes a human-readable version of the report.
func (r *Report) Render(w io.Writer) {
	annotationNoun := "labels"
	sizeUnit := "normalized"
	if r.Kind == "voc" {
		annotationNoun = "annotations"
		sizeUnit = "pixels"
	}

	fmt.Fprintf(w, "Checking %s\n", r.Dir)
	fmt.Fprintf(w, "  images: %d  %s: %d  pairs: %d\n",
		r.ImageCount, annotationNoun, r.AnnotationCount, r.PairCount)

	renderMissing(w, r.MissingImages, "without an image file")
	renderMissing(w, r.MissingAnnotations, "without "+annotationNoun)

	if len(r.Problems) > 0 {
		fmt.Fprintf(w, "\n%d problems:\n", len(r.Problems))
		for _, p := range r.Problems {
			fmt.Fprintf(w, "  %s: %s\n", p.Path, p.Message)
		}
	}

	if total := r.TotalObjects(); total > 0 {
		fmt.Fprintf(w, "\nClass distribution:\n")
		for _, name := range r.sortedClassNames() {
			stat := r.Classes[name]
			fmt.Fprintf(w, "  %-16s %5d (%.1f%%)\n",
				name, stat.Objects, float64(stat.Objects)/float64(total)*100)
		}

		fmt.Fprintf(w, "\nBox sizes (%s):\n", sizeUnit)
		for _, name := range r.sortedClassNames() {
			stat := r.Classes[name]
			fmt.Fprintf(w, "  %-16s avg %.3f x %.3f  min %.3f x %.3f  max %.3f x %.3f\n",
				name, stat.AvgW(), stat.AvgH(), stat.MinW, stat.MinH, stat.MaxW, stat.MaxH)
		}
	}

	fmt.Fprintln(w)
	if r.OK() {
		color.New(color.FgGreen).Fprintln(w, "dataset check passed")
	} else {
		color.New(color.FgRed).Fprintln(w, "dataset check failed")
	}
}

func renderMissing(w io.Writer, stems []string, suffix string) {
	if len(stems) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%d stems %s:\n", len(stems), suffix)
	for i, stem := range stems {
		if i == listCap {
			fmt.Fprintf(w, "  ... and %d more\n", len(stems)-listCap)
			break
		}
		fmt.Fprintf(w, "  - %s\n", stem)
	}
}

func (r *Report) sortedClassNames() []string {
	names := make([]string, 0, len(r.Classes))
	for name := range r.Classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
