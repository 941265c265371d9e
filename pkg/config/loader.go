package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/logging"
	"github.com/arthur-debert/dotlink/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides
const EnvPrefix = "DOTLINK_"

// LoadOptions controls Load.
type LoadOptions struct {
	// Path of the main document. Empty means paths.ConfigFile().
	Path string
	// DotfilesDir overrides the repository root from the document and the
	// environment.
	DotfilesDir string
}

// Load reads the main document, applies environment overrides, resolves
// the repository root and merges every imported document.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")

	path := opts.Path
	if path == "" {
		path = paths.ConfigFile()
	}
	path = paths.ExpandHome(path)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrConfigLoad, "no configuration found at %s (run 'dotlink init' to create one)", path).
				WithDetail("path", path)
		}
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to access %s", path)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", path)
	}

	// DOTLINK_DOTFILES_DIR is the only environment override.
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if key != "dotfiles_dir" {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	main, err := decode(k, path)
	if err != nil {
		return nil, err
	}

	dotfilesDir := main.DotfilesDir
	if opts.DotfilesDir != "" {
		dotfilesDir = opts.DotfilesDir
	}
	p, err := paths.New(dotfilesDir)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Path:        path,
		DotfilesDir: p.DotfilesRoot(),
		Profiles:    make(map[string]Profile),
	}

	if p.UsedFallback() {
		msg := "dotfiles_dir is not set; using the current directory " + cfg.DotfilesDir
		cfg.Warnings = append(cfg.Warnings, msg)
		logger.Warn().Str("dotfiles_dir", cfg.DotfilesDir).Msg("dotfiles_dir is not set, using the current directory")
	}

	seen := map[string]bool{path: true}
	cfg.merge(main, path)
	if err := cfg.loadImports(main.Import, seen); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("path", path).
		Str("dotfiles_dir", cfg.DotfilesDir).
		Strs("documents", cfg.Documents).
		Int("profiles", len(cfg.Profiles)).
		Msg("Configuration loaded")

	return cfg, nil
}

// loadImports merges imported documents depth first. Each document is merged
// at most once; a missing one is only a warning.
func (c *Config) loadImports(refs []ImportRef, seen map[string]bool) error {
	for _, ref := range refs {
		if ref.Path == "" {
			return errors.New(errors.ErrConfigInvalid, "import without a path")
		}
		path := c.resolveImport(ref.Path)
		if seen[path] {
			continue
		}
		seen[path] = true

		if _, err := os.Stat(path); os.IsNotExist(err) {
			c.Warnings = append(c.Warnings, "imported configuration not found: "+path)
			logger := logging.GetLogger("config")
			logger.Warn().Str("path", path).Msg("Imported configuration not found")
			continue
		}

		k := koanf.New(".")
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", path)
		}
		doc, err := decode(k, path)
		if err != nil {
			return err
		}
		if doc.DotfilesDir != "" {
			c.Warnings = append(c.Warnings, "dotfiles_dir in imported "+path+" is ignored")
		}

		c.merge(doc, path)
		if err := c.loadImports(doc.Import, seen); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) resolveImport(path string) string {
	path = paths.ExpandHome(path)
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.DotfilesDir, path)
}

// merge folds doc into c: list settings are appended, variables deep
// merged, and profiles replaced by name.
func (c *Config) merge(doc *Document, path string) {
	c.Documents = append(c.Documents, path)
	if doc.GpgUserID != "" {
		c.Warnings = append(c.Warnings, "gpg_user_id in "+path+" is ignored: encrypted secrets are not supported")
	}

	s := &c.Settings
	s.Import = append(s.Import, doc.Settings.Import...)
	s.Vars = append(s.Vars, doc.Settings.Vars...)
	s.Prehooks = append(s.Prehooks, doc.Settings.Prehooks...)
	s.Posthooks = append(s.Posthooks, doc.Settings.Posthooks...)
	s.Dots = append(s.Dots, doc.Settings.Dots...)
	if len(doc.Settings.Variables) > 0 {
		if s.Variables == nil {
			s.Variables = make(map[string]interface{})
		}
		mergeMaps(s.Variables, doc.Settings.Variables)
	}

	for name, profile := range doc.Profiles {
		c.Profiles[name] = profile
	}
}

func decode(k *koanf.Koanf, path string) (*Document, error) {
	var doc Document
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &doc,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				stringToImportRefHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &doc, unmarshalConf); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigInvalid, "invalid configuration in %s", path)
	}
	return &doc, nil
}

// mergeMaps deep merges src into dest; src wins on scalar collisions.
func mergeMaps(dest, src map[string]interface{}) {
	for key, srcVal := range src {
		destVal, destOk := dest[key]
		if !destOk {
			dest[key] = srcVal
			continue
		}

		// Merge maps
		if srcMap, srcOk := srcVal.(map[string]interface{}); srcOk {
			if destMap, destOk := destVal.(map[string]interface{}); destOk {
				mergeMaps(destMap, srcMap)
				continue
			}
		}

		// Otherwise, overwrite
		dest[key] = srcVal
	}
}

// stringToImportRefHookFunc accepts `import = ["a.toml"]` as shorthand for
// `import = [{ path = "a.toml" }]`.
func stringToImportRefHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() == reflect.String && t == reflect.TypeOf(ImportRef{}) {
			return ImportRef{Path: data.(string)}, nil
		}
		return data, nil
	}
}
