package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize scaffolds a dataset workspace at path: the default
// config.yaml plus the input directory skeleton. It refuses to
// overwrite an existing configuration.
func Initialize(fsys afero.Fs, path string, logger *log.Logger) (*Configuration, error) {
	configPath := filepath.Join(path, ConfigurationName)
	if exists, err := afero.Exists(fsys, configPath); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%s already exists, refusing to overwrite", configPath)
	}

	logger.Printf("Writing %s", configPath)
	if err := afero.WriteFile(fsys, configPath, defaultConfigData, 0644); err != nil {
		return nil, err
	}

	cfg, err := Load(fsys, path)
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{cfg.Layout.VOCAnnotations, cfg.Layout.VOCImages} {
		logger.Printf("Creating %s", filepath.Join(path, dir))
		if err := cfg.Fs().MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
