package main

import (
	"os"

	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"
)

const manifestFile = "smpl.yaml"

// manifest is the project file read by build when no inputs are given.
type manifest struct {
	Package  string   `yaml:"package"`
	Inputs   []string `yaml:"inputs"`
	Backend  int      `yaml:"backend"`
	Output   string   `yaml:"output,omitempty"`
	LogLevel string   `yaml:"log-level,omitempty"`
}

func readManifest(path string) (m manifest, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return manifest{}, tracerr.Wrap(err)
	}

	err = yaml.UnmarshalStrict(data, &m)
	if err != nil {
		return manifest{}, tracerr.Errorf("reading %s: %w", path, err)
	}
	return m, nil
}

// writeManifest creates path and fails if it already exists.
func writeManifest(path string, m manifest) error {
	out, err := yaml.Marshal(m)
	if err != nil {
		return tracerr.Wrap(err)
	}

	fi, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer fi.Close()

	_, err = fi.Write(out)
	return tracerr.Wrap(err)
}
