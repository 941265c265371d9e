package config

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotlink/pkg/errors"
)

//go:embed embedded/dotlink.toml
var sampleConfig []byte

// SampleContent returns the starter configuration written by init.
func SampleContent() string {
	return string(sampleConfig)
}

// WriteSample writes the starter configuration to path. An existing file is
// only replaced when overwrite is set.
func WriteSample(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return errors.Newf(errors.ErrInvalidInput, "%s already exists", path).WithDetail("path", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, sampleConfig, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path)
	}
	return nil
}
