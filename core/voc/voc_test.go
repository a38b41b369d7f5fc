package voc

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

const sampleXML = `<?xml version="1.0"?>
<annotation>
  <folder>JPEGImages</folder>
  <filename>frame_0001.jpg</filename>
  <size>
    <width>1920</width>
    <height>1080</height>
    <depth>3</depth>
  </size>
  <object>
    <name>screw</name>
    <difficult>0</difficult>
    <bndbox>
      <xmin>100</xmin>
      <ymin>200</ymin>
      <xmax>300</xmax>
      <ymax>400</ymax>
    </bndbox>
  </object>
  <object>
    <name>circuit_board</name>
    <bndbox>
      <xmin>0</xmin>
      <ymin>0</ymin>
      <xmax>1920</xmax>
      <ymax>1080</ymax>
    </bndbox>
  </object>
</annotation>
`

func TestReadAnnotation(t *testing.T) {
	fsys := afero.NewMemMapFs()
	assert.Nil(t, afero.WriteFile(fsys, "frame_0001.xml", []byte(sampleXML), 0644))

	ann, err := ReadAnnotation(fsys, "frame_0001.xml")
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, "frame_0001.jpg", ann.Filename)
	assert.Equal(t, Size{Width: 1920, Height: 1080, Depth: 3}, ann.Size)
	if assert.Len(t, ann.Objects, 2) {
		assert.Equal(t, "screw", ann.Objects[0].Name)
		assert.Equal(t, &Box{XMin: 100, YMin: 200, XMax: 300, YMax: 400}, ann.Objects[0].Box)
		assert.Equal(t, "circuit_board", ann.Objects[1].Name)
	}
}

func TestReadAnnotation_malformed(t *testing.T) {
	fsys := afero.NewMemMapFs()
	assert.Nil(t, afero.WriteFile(fsys, "bad.xml", []byte("<annotation><object>"), 0644))

	_, err := ReadAnnotation(fsys, "bad.xml")
	assert.NotNil(t, err)
}

func TestReadAnnotation_missingBox(t *testing.T) {
	const xml = `<annotation>
  <filename>a.jpg</filename>
  <size><width>100</width><height>100</height><depth>3</depth></size>
  <object><name>screw</name></object>
</annotation>`

	fsys := afero.NewMemMapFs()
	assert.Nil(t, afero.WriteFile(fsys, "a.xml", []byte(xml), 0644))

	ann, err := ReadAnnotation(fsys, "a.xml")
	assert.Nil(t, err)
	if assert.Len(t, ann.Objects, 1) {
		assert.Nil(t, ann.Objects[0].Box)
	}
}

func TestReadAnnotation_nonNumericCoordinate(t *testing.T) {
	const xml = `<annotation>
  <filename>a.jpg</filename>
  <size><width>100</width><height>100</height><depth>3</depth></size>
  <object>
    <name>screw</name>
    <bndbox><xmin>abc</xmin><ymin>10</ymin><xmax>50</xmax><ymax>50</ymax></bndbox>
  </object>
</annotation>`

	fsys := afero.NewMemMapFs()
	assert.Nil(t, afero.WriteFile(fsys, "a.xml", []byte(xml), 0644))

	ann, err := ReadAnnotation(fsys, "a.xml")
	assert.Nil(t, err)
	if assert.Len(t, ann.Objects, 1) {
		box := ann.Objects[0].Box
		if assert.NotNil(t, box) {
			assert.True(t, box.Malformed)
			assert.Equal(t, 50.0, box.XMax)
			assert.NotNil(t, box.Check(100, 100))
		}
	}
}

func TestWriteAnnotation(t *testing.T) {
	fsys := afero.NewMemMapFs()

	want := &Annotation{
		Filename: "a.jpg",
		Size:     Size{Width: 10, Height: 20, Depth: 3},
		Objects: []Object{
			{Name: "screw", Box: &Box{XMin: 1, YMin: 2, XMax: 5, YMax: 9}},
		},
	}
	assert.Nil(t, WriteAnnotation(fsys, "a.xml", want))

	got, err := ReadAnnotation(fsys, "a.xml")
	assert.Nil(t, err)
	assert.Equal(t, want.Filename, got.Filename)
	assert.Equal(t, want.Size, got.Size)
	assert.Equal(t, want.Objects, got.Objects)
}

func TestBoxCheck(t *testing.T) {
	cases := map[string]struct {
		box     Box
		wantErr bool
	}{
		"valid":          {Box{XMin: 10, YMin: 10, XMax: 50, YMax: 50}, false},
		"inverted-x":     {Box{XMin: 50, YMin: 10, XMax: 10, YMax: 50}, true},
		"inverted-y":     {Box{XMin: 10, YMin: 50, XMax: 50, YMax: 10}, true},
		"degenerate":     {Box{XMin: 10, YMin: 10, XMax: 10, YMax: 50}, true},
		"negative-min":   {Box{XMin: -1, YMin: 10, XMax: 50, YMax: 50}, true},
		"past-right":     {Box{XMin: 10, YMin: 10, XMax: 101, YMax: 50}, true},
		"past-bottom":    {Box{XMin: 10, YMin: 10, XMax: 50, YMax: 101}, true},
		"below-min-area": {Box{XMin: 10, YMin: 10, XMax: 11, YMax: 13}, true},
		"exactly-fits":   {Box{XMin: 0, YMin: 0, XMax: 100, YMax: 100}, false},
		"non-numeric":    {Box{XMin: 10, YMin: 10, XMax: 50, YMax: 50, Malformed: true}, true},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			err := tc.box.Check(100, 100)
			if tc.wantErr {
				assert.NotNil(t, err)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

func TestStems(t *testing.T) {
	fsys := afero.NewMemMapFs()
	for _, name := range []string{"b.xml", "a.xml", "notes.txt", "c.XML"} {
		assert.Nil(t, afero.WriteFile(fsys, "anns/"+name, []byte("<annotation/>"), 0644))
	}

	stems, err := Stems(fsys, "anns")
	assert.Nil(t, err)
	assert.Equal(t, []string{"a", "b"}, stems)
}
