package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// DefaultDir returns the directory the configuration is read from when none
// is given.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DirName), nil
}

// Load loads the configuration from the directory.
func Load(path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	fsys, err := dirFs(path)
	if err != nil {
		return nil, err
	}
	return LoadFs(fsys)
}

// dirFs roots a filesystem at the directory. The base must be absolute for
// BasePathFs to resolve paths within it.
func dirFs(path string) (afero.Fs, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return afero.NewBasePathFs(afero.NewOsFs(), abs), nil
}

// LoadFs loads the configuration from the root of the filesystem. Fields
// missing in the file keep their default values.
func LoadFs(fsys afero.Fs) (*Configuration, error) {
	configContents, err := afero.ReadFile(fsys, ConfigurationName)
	if err != nil {
		return nil, err
	}

	out := defaultConfig()
	if err := yaml.UnmarshalStrict(configContents, out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	out.configFs = fsys
	return out, nil
}

// LoadOrDefault loads the configuration from the directory, falling back to
// the built-in defaults if there's no configuration file.
func LoadOrDefault(path string, logger *log.Logger) (*Configuration, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Printf("No configuration in %q, using defaults. Run init to create one.", path)
		if err := os.MkdirAll(path, 0700); err != nil {
			return nil, err
		}
		fsys, err := dirFs(path)
		if err != nil {
			return nil, err
		}
		return Default(fsys), nil
	}
	return cfg, err
}

// Initialize writes the default configuration to the directory if there
// isn't one already.
func Initialize(path string, logger *log.Logger) (*Configuration, error) {
	fsys, err := dirFs(path)
	if err != nil {
		return nil, err
	}
	if err := fsys.MkdirAll("/", 0700); err != nil {
		return nil, err
	}

	exists, err := afero.Exists(fsys, ConfigurationName)
	switch {
	case err != nil:
		return nil, err
	case exists:
		logger.Printf("Configuration %q already exists, leaving it alone.", filepath.Join(path, ConfigurationName))
	default:
		logger.Printf("Writing %q", filepath.Join(path, ConfigurationName))
		if err := afero.WriteFile(fsys, ConfigurationName, defaultConfigData, 0600); err != nil {
			return nil, err
		}
	}

	return LoadFs(fsys)
}
