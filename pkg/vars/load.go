package vars

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/filesystem"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// SystemOverlayName names the built-in lowest-precedence overlay
const SystemOverlayName = "system"

// LoadFile reads a variable file and flattens it. The format follows the
// extension: .toml, .yaml/.yml or .json.
func LoadFile(fsys filesystem.FS, path string) (Overlay, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return Overlay{}, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read variable file %s", path)
	}

	raw := make(map[string]interface{})
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&raw)
	default:
		return Overlay{}, errors.Newf(errors.ErrConfigInvalid, "unsupported variable file format %q: %s", ext, path)
	}
	if err != nil {
		return Overlay{}, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse variable file %s", path)
	}

	return Flatten(path, raw)
}

// System returns the built-in overlay describing the current host.
func System(home string) Overlay {
	values := map[string]string{
		"system.home": home,
		"system.os":   runtime.GOOS,
		"system.arch": runtime.GOARCH,
	}
	if user := os.Getenv("USER"); user != "" {
		values["system.user"] = user
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		values["system.shell"] = shell
	}
	if hostname, err := os.Hostname(); err == nil {
		values["system.hostname"] = hostname
	}
	return Overlay{Name: SystemOverlayName, Values: values}
}
