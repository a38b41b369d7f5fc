// Package voc reads and writes Pascal VOC object detection annotations.
package voc

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// Annotation is the contents of a single Annotations/<stem>.xml file.
type Annotation struct {
	XMLName  xml.Name `xml:"annotation"`
	Folder   string   `xml:"folder,omitempty"`
	Filename string   `xml:"filename"`
	Size     Size     `xml:"size"`
	Objects  []Object `xml:"object"`
}

// Size is the pixel dimensions of the annotated image.
type Size struct {
	Width  int `xml:"width"`
	Height int `xml:"height"`
	Depth  int `xml:"depth,omitempty"`
}

// Object is one labeled region in an image. Box is nil when the
// annotation carries no bndbox element at all.
type Object struct {
	Name      string `xml:"name"`
	Pose      string `xml:"pose,omitempty"`
	Truncated int    `xml:"truncated,omitempty"`
	Difficult int    `xml:"difficult,omitempty"`
	Box       *Box   `xml:"bndbox"`
}

// Box is a pixel-coordinate bounding box with inclusive corners.
type Box struct {
	XMin float64 `xml:"xmin"`
	YMin float64 `xml:"ymin"`
	XMax float64 `xml:"xmax"`
	YMax float64 `xml:"ymax"`

	// Malformed is set when any coordinate in the XML wasn't numeric.
	// Such a box fails Check but doesn't poison the whole annotation.
	Malformed bool `xml:"-"`
}

// UnmarshalXML parses coordinates leniently: a non-numeric value marks
// the box Malformed instead of failing the entire annotation, so
// callers can drop just the offending object.
func (b *Box) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var raw struct {
		XMin string `xml:"xmin"`
		YMin string `xml:"ymin"`
		XMax string `xml:"xmax"`
		YMax string `xml:"ymax"`
	}
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}

	for _, coord := range []struct {
		text string
		dst  *float64
	}{
		{raw.XMin, &b.XMin},
		{raw.YMin, &b.YMin},
		{raw.XMax, &b.XMax},
		{raw.YMax, &b.YMax},
	} {
		v, err := strconv.ParseFloat(strings.TrimSpace(coord.text), 64)
		if err != nil {
			b.Malformed = true
			continue
		}
		*coord.dst = v
	}
	return nil
}

func (b Box) Width() float64  { return b.XMax - b.XMin }
func (b Box) Height() float64 { return b.YMax - b.YMin }
func (b Box) Area() float64   { return b.Width() * b.Height() }

// MinBoxArea is the smallest box, in square pixels, considered usable
// for training.
const MinBoxArea = 4.0

// Check reports why the box is unusable for an image of the given
// dimensions, or nil if it's fine.
func (b Box) Check(imgWidth, imgHeight int) error {
	switch {
	case b.Malformed:
		return fmt.Errorf("non-numeric coordinate")
	case b.XMin >= b.XMax:
		return fmt.Errorf("xmin (%g) >= xmax (%g)", b.XMin, b.XMax)
	case b.YMin >= b.YMax:
		return fmt.Errorf("ymin (%g) >= ymax (%g)", b.YMin, b.YMax)
	case b.XMin < 0 || b.YMin < 0 || b.XMax > float64(imgWidth) || b.YMax > float64(imgHeight):
		return fmt.Errorf("box (%g, %g, %g, %g) outside %dx%d image",
			b.XMin, b.YMin, b.XMax, b.YMax, imgWidth, imgHeight)
	case b.Area() < MinBoxArea:
		return fmt.Errorf("box area %g below %g px minimum", b.Area(), MinBoxArea)
	}
	return nil
}

// ReadAnnotation parses the VOC XML file at path.
func ReadAnnotation(fsys afero.Fs, path string) (*Annotation, error) {
	fd, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	var out Annotation
	if err := xml.NewDecoder(fd).Decode(&out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return &out, nil
}

// WriteAnnotation serializes the annotation back to path.
func WriteAnnotation(fsys afero.Fs, path string, ann *Annotation) error {
	data, err := xml.MarshalIndent(ann, "", "  ")
	if err != nil {
		return err
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')
	return afero.WriteFile(fsys, path, data, 0644)
}

// Stems lists the basenames (without .xml) of all annotation files in
// dir, sorted.
func Stems(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xml") {
			continue
		}
		out = append(out, strings.TrimSuffix(entry.Name(), ".xml"))
	}
	sort.Strings(out)
	return out, nil
}
