// Package yolo reads and writes YOLO plain-text detection labels.
//
// A label file holds one line per object:
//
//	<class-id> <x-center> <y-center> <width> <height>
//
// with all four coordinates normalized to [0, 1] relative to the image.
package yolo

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

const (
	// ImagesDirName and LabelsDirName are the two subdirectories every
	// YOLO dataset directory is expected to contain.
	ImagesDirName = "images"
	LabelsDirName = "labels"

	// LabelExt is the extension of label files.
	LabelExt = ".txt"
)

// imageExts are the image extensions the pipeline recognizes, lowercase.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsImageFile reports whether name has a recognized image extension.
func IsImageFile(name string) bool {
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return false
	}
	return imageExts[strings.ToLower(name[dot:])]
}

// Label is a single object in a label file.
type Label struct {
	Class   int
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
}

// InRange reports whether all four coordinates are within [0, 1].
func (l Label) InRange() bool {
	for _, v := range []float64{l.XCenter, l.YCenter, l.Width, l.Height} {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// ParseLine parses a single label-file line.
func ParseLine(line string) (Label, error) {
	parts := strings.Fields(line)
	if len(parts) != 5 {
		return Label{}, fmt.Errorf("expected 5 fields, got %d", len(parts))
	}

	class, err := strconv.Atoi(parts[0])
	if err != nil {
		return Label{}, fmt.Errorf("bad class id %q: %w", parts[0], err)
	}

	var coords [4]float64
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Label{}, fmt.Errorf("bad coordinate %q: %w", p, err)
		}
		coords[i] = v
	}

	return Label{
		Class:   class,
		XCenter: coords[0],
		YCenter: coords[1],
		Width:   coords[2],
		Height:  coords[3],
	}, nil
}

// Format renders the label as a label-file line without trailing newline.
func (l Label) Format() string {
	return fmt.Sprintf("%d %.6f %.6f %.6f %.6f",
		l.Class, l.XCenter, l.YCenter, l.Width, l.Height)
}

// ReadLabels parses the label file at path. A missing trailing newline
// and blank lines are tolerated.
func ReadLabels(fsys afero.Fs, path string) ([]Label, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}

	var out []Label
	for i, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		label, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, label)
	}
	return out, nil
}

// WriteLabels writes one line per label to path.
func WriteLabels(fsys afero.Fs, path string, labels []Label) error {
	var buf bytes.Buffer
	for _, l := range labels {
		fmt.Fprintln(&buf, l.Format())
	}
	return afero.WriteFile(fsys, path, buf.Bytes(), 0644)
}

// ImageStems lists the basenames (without extension) of all image files
// in dir, sorted.
func ImageStems(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImageFile(entry.Name()) {
			continue
		}
		name := entry.Name()
		out = append(out, name[:strings.LastIndex(name, ".")])
	}
	sort.Strings(out)
	return out, nil
}

// ImageFiles maps the stem of every image file in dir to its full
// filename.
func ImageFiles(fsys afero.Fs, dir string) (map[string]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !IsImageFile(name) {
			continue
		}
		out[name[:strings.LastIndex(name, ".")]] = name
	}
	return out, nil
}

// CopyFile copies src to dst byte for byte.
func CopyFile(fsys afero.Fs, src, dst string) error {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fsys.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// LabelStems lists the basenames of all .txt label files in dir, sorted.
func LabelStems(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), LabelExt) {
			continue
		}
		out = append(out, strings.TrimSuffix(entry.Name(), LabelExt))
	}
	sort.Strings(out)
	return out, nil
}
