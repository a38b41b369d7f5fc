package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"
	RunLogName        = "run.log"

	// ratioTolerance is how far the split ratios may drift from summing
	// to exactly 1.0 before the configuration is rejected.
	ratioTolerance = 1e-5
)

type Configuration struct {
	workspaceFs afero.Fs

	// ClassNames is the ordered list of object classes; the index of a
	// name is its YOLO class id.
	ClassNames []string `json:"class_names" validate:"required,min=1,unique"`

	Layout Layout `json:"layout"`

	Split SplitRatios `json:"split"`

	// ShuffleSeed seeds the split shuffle so partitions are reproducible.
	ShuffleSeed int64 `json:"shuffle_seed"`

	Fix FixRules `json:"fix"`
}

// Layout holds the dataset directory layout, relative to the workspace.
type Layout struct {
	VOCAnnotations string `json:"voc_annotations" validate:"required"`
	VOCImages      string `json:"voc_images" validate:"required"`
	YOLOAll        string `json:"yolo_all" validate:"required"`
	YOLOSplit      string `json:"yolo_split" validate:"required"`
}

// SplitRatios is the train/val/test partition of the dataset.
type SplitRatios struct {
	Train float64 `json:"train" validate:"gte=0,lte=1"`
	Val   float64 `json:"val" validate:"gte=0,lte=1"`
	Test  float64 `json:"test" validate:"gte=0,lte=1"`
}

func (s SplitRatios) Sum() float64 {
	return s.Train + s.Val + s.Test
}

// Check verifies the ratios sum to 1.0.
func (s SplitRatios) Check() error {
	if math.Abs(s.Sum()-1.0) > ratioTolerance {
		return fmt.Errorf("split ratios must sum to 1.0, got %g", s.Sum())
	}
	return nil
}

// FixRules configures the annotation repair stage.
type FixRules struct {
	// ClassSwaps lists pairs of class names whose labels were entered
	// swapped at annotation time and should be exchanged.
	ClassSwaps []ClassSwap `json:"class_swaps"`
}

type ClassSwap struct {
	A string `json:"a" validate:"required"`
	B string `json:"b" validate:"required"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	if err := validate.Struct(c); err != nil {
		return err
	}
	return c.Split.Check()
}

// ClassID returns the YOLO class id for a class name.
func (c *Configuration) ClassID(name string) (int, bool) {
	for i, n := range c.ClassNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// ValidClassID reports whether id indexes a configured class.
func (c *Configuration) ValidClassID(id int) bool {
	return id >= 0 && id < len(c.ClassNames)
}

// ClassName returns the name of the class with the given id, or a
// placeholder for unknown ids.
func (c *Configuration) ClassName(id int) string {
	if !c.ValidClassID(id) {
		return fmt.Sprintf("unknown(%d)", id)
	}
	return c.ClassNames[id]
}

// Fs returns the filesystem rooted at the workspace directory.
func (c *Configuration) Fs() afero.Fs {
	return c.workspaceFs
}

// SetFs overrides the workspace filesystem, for tests.
func (c *Configuration) SetFs(fsys afero.Fs) {
	c.workspaceFs = fsys
}

// OpenRunLog opens the pipeline run log in an append only state.
func (c *Configuration) OpenRunLog() (afero.File, error) {
	return c.Fs().OpenFile(RunLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
