package convert

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/visionprep/yoloprep/core/config"
	"github.com/visionprep/yoloprep/core/runlog"
	"github.com/visionprep/yoloprep/core/voc"
	"github.com/visionprep/yoloprep/core/yolo"
)

func testConfig() *config.Configuration {
	return &config.Configuration{
		ClassNames: []string{"control_marker", "missing_screw", "screw", "circuit_board"},
	}
}

func writeAnnotation(t *testing.T, fsys afero.Fs, stem string, ann *voc.Annotation) {
	t.Helper()
	if err := voc.WriteAnnotation(fsys, "Annotations/"+stem+".xml", ann); err != nil {
		t.Fatal(err)
	}
}

func writeImage(t *testing.T, fsys afero.Fs, name string) {
	t.Helper()
	if err := afero.WriteFile(fsys, "JPEGImages/"+name, []byte{0xff, 0xd8}, 0644); err != nil {
		t.Fatal(err)
	}
}

func newConverter(fsys afero.Fs) *Converter {
	return &Converter{
		Fs:             fsys,
		Config:         testConfig(),
		AnnotationsDir: "Annotations",
		ImagesDir:      "JPEGImages",
		OutputDir:      "data_yolo_all",
		Log:            runlog.Discard().NewRun(),
	}
}

func TestConverter(t *testing.T) {
	fsys := afero.NewMemMapFs()

	writeAnnotation(t, fsys, "frame_0001", &voc.Annotation{
		Filename: "frame_0001.jpg",
		Size:     voc.Size{Width: 200, Height: 100, Depth: 3},
		Objects: []voc.Object{
			{Name: "screw", Box: &voc.Box{XMin: 50, YMin: 25, XMax: 150, YMax: 75}},
			{Name: "circuit_board", Box: &voc.Box{XMin: 0, YMin: 0, XMax: 200, YMax: 100}},
		},
	})
	writeImage(t, fsys, "frame_0001.jpg")

	res, err := newConverter(fsys).Run()
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 0, res.Skipped)

	data, err := afero.ReadFile(fsys, "data_yolo_all/labels/frame_0001.txt")
	assert.Nil(t, err)
	assert.Equal(t,
		"2 0.500000 0.500000 0.500000 0.500000\n"+
			"3 0.500000 0.500000 1.000000 1.000000\n",
		string(data))

	exists, err := afero.Exists(fsys, "data_yolo_all/images/frame_0001.jpg")
	assert.Nil(t, err)
	assert.True(t, exists)
}

func TestConverter_unknownClass(t *testing.T) {
	fsys := afero.NewMemMapFs()

	writeAnnotation(t, fsys, "frame_0002", &voc.Annotation{
		Filename: "frame_0002.jpg",
		Size:     voc.Size{Width: 100, Height: 100},
		Objects: []voc.Object{
			{Name: "mystery", Box: &voc.Box{XMin: 10, YMin: 10, XMax: 50, YMax: 50}},
			{Name: "screw", Box: &voc.Box{XMin: 20, YMin: 20, XMax: 40, YMax: 40}},
		},
	})
	writeImage(t, fsys, "frame_0002.jpg")

	res, err := newConverter(fsys).Run()
	if err != nil {
		t.Fatal(err)
	}

	// The unknown object is dropped, the rest of the file survives.
	assert.Equal(t, 1, res.Processed)
	labels, err := yolo.ReadLabels(fsys, "data_yolo_all/labels/frame_0002.txt")
	assert.Nil(t, err)
	if assert.Len(t, labels, 1) {
		assert.Equal(t, 2, labels[0].Class)
	}
}

func TestConverter_missingBox(t *testing.T) {
	fsys := afero.NewMemMapFs()

	writeAnnotation(t, fsys, "frame_0003", &voc.Annotation{
		Filename: "frame_0003.jpg",
		Size:     voc.Size{Width: 100, Height: 100},
		Objects: []voc.Object{
			{Name: "screw"},
			{Name: "circuit_board", Box: &voc.Box{XMin: 0, YMin: 0, XMax: 100, YMax: 100}},
		},
	})
	writeImage(t, fsys, "frame_0003.jpg")

	res, err := newConverter(fsys).Run()
	if err != nil {
		t.Fatal(err)
	}

	// The box-less object is skipped; it must not become an all-zero label.
	assert.Equal(t, 1, res.Processed)
	data, err := afero.ReadFile(fsys, "data_yolo_all/labels/frame_0003.txt")
	assert.Nil(t, err)
	assert.Equal(t, "3 0.500000 0.500000 1.000000 1.000000\n", string(data))
}

func TestConverter_nonNumericBox(t *testing.T) {
	fsys := afero.NewMemMapFs()

	const xml = `<annotation>
  <filename>frame_0004.jpg</filename>
  <size><width>100</width><height>100</height><depth>3</depth></size>
  <object>
    <name>screw</name>
    <bndbox><xmin>abc</xmin><ymin>10</ymin><xmax>50</xmax><ymax>50</ymax></bndbox>
  </object>
</annotation>`
	assert.Nil(t, afero.WriteFile(fsys, "Annotations/frame_0004.xml", []byte(xml), 0644))
	writeImage(t, fsys, "frame_0004.jpg")

	res, err := newConverter(fsys).Run()
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 1, res.Processed)
	labels, err := yolo.ReadLabels(fsys, "data_yolo_all/labels/frame_0004.txt")
	assert.Nil(t, err)
	assert.Len(t, labels, 0)
}

func TestConverter_skipsBadAnnotations(t *testing.T) {
	fsys := afero.NewMemMapFs()

	// No size.
	writeAnnotation(t, fsys, "no_size", &voc.Annotation{Filename: "no_size.jpg"})
	// No filename.
	writeAnnotation(t, fsys, "no_filename", &voc.Annotation{
		Size: voc.Size{Width: 10, Height: 10},
	})
	// Unparseable XML.
	assert.Nil(t, afero.WriteFile(fsys, "Annotations/garbage.xml", []byte("<annotation"), 0644))
	// Annotated but the image is gone.
	writeAnnotation(t, fsys, "no_image", &voc.Annotation{
		Filename: "no_image.jpg",
		Size:     voc.Size{Width: 10, Height: 10},
	})

	res, err := newConverter(fsys).Run()
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 0, res.Processed)
	assert.Equal(t, 3, res.Skipped)
	assert.Equal(t, 1, res.MissingImages)
}

func TestNormalize_clamps(t *testing.T) {
	// Box pokes past the right edge of a 100x100 image.
	label := Normalize(0, voc.Box{XMin: 50, YMin: 50, XMax: 150, YMax: 90}, 100, 100)

	assert.Equal(t, 1.0, label.XCenter)
	assert.Equal(t, 1.0, label.Width)
	assert.InDelta(t, 0.7, label.YCenter, 1e-9)
	assert.InDelta(t, 0.4, label.Height, 1e-9)
}

func TestConverter_emptyAnnotationsDir(t *testing.T) {
	fsys := afero.NewMemMapFs()
	assert.Nil(t, fsys.MkdirAll("Annotations", 0755))
	assert.Nil(t, fsys.MkdirAll("JPEGImages", 0755))

	res, err := newConverter(fsys).Run()
	assert.Nil(t, err)
	assert.Equal(t, 0, res.Processed)
}

func ExampleNormalize() {
	label := Normalize(2, voc.Box{XMin: 50, YMin: 25, XMax: 150, YMax: 75}, 200, 100)
	fmt.Println(label.Format())
	// Output: 2 0.500000 0.500000 0.500000 0.500000
}
