package conda

import (
	"gopkg.in/yaml.v3"

	"github.com/yamaton/condax/pkg/errors"
	"github.com/yamaton/condax/pkg/types"
)

// EnvFile is a conda environment file as written by `conda env export`.
// Dependencies holds match specs as strings and nested sections such as
// `pip:` as maps.
type EnvFile struct {
	Name         string        `yaml:"name,omitempty"`
	Channels     []string      `yaml:"channels,omitempty"`
	Dependencies []interface{} `yaml:"dependencies"`
	Prefix       string        `yaml:"prefix,omitempty"`
}

// ReadEnvFile parses the environment file at path.
func ReadEnvFile(fsys types.FS, path string) (*EnvFile, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read environment file %s", path)
	}
	var f EnvFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "failed to parse environment file %s", path)
	}
	return &f, nil
}

// Specs returns the conda match specs among the dependencies.
func (f *EnvFile) Specs() []string {
	specs := make([]string, 0, len(f.Dependencies))
	for _, dep := range f.Dependencies {
		if s, ok := dep.(string); ok {
			specs = append(specs, s)
		}
	}
	return specs
}

// PackageNames returns the package names of Specs.
func (f *EnvFile) PackageNames() []string {
	specs := f.Specs()
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, PackageName(s))
	}
	return names
}

// Marshal encodes the file as YAML.
func (f *EnvFile) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}
