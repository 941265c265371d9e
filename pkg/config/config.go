package config

// Document is one configuration file as written on disk.
type Document struct {
	DotfilesDir string             `koanf:"dotfiles_dir"`
	Import      []ImportRef        `koanf:"import"`
	Settings    Profile            `koanf:"settings"`
	Profiles    map[string]Profile `koanf:"profiles"`
	// GpgUserID is accepted for compatibility and ignored.
	GpgUserID string `koanf:"gpg_user_id"`
}

// ImportRef names another document to merge in.
type ImportRef struct {
	Path string `koanf:"path"`
}

// Profile is the shape shared by the base settings and named profiles.
type Profile struct {
	Import    []string               `koanf:"import"`
	Vars      []string               `koanf:"vars"`
	Variables map[string]interface{} `koanf:"variables"`
	Prehooks  []string               `koanf:"prehooks"`
	Posthooks []string               `koanf:"posthooks"`
	Dots      []Dot                  `koanf:"dots"`
}

// Dot is a dot declaration.
type Dot struct {
	Name   string   `koanf:"name"`
	Source string   `koanf:"source"`
	Target string   `koanf:"target"`
	Render bool     `koanf:"render"`
	Hooks  []string `koanf:"hooks"`
	Ignore []string `koanf:"ignore"`
}

// Config is the merged result of a document and all of its imports.
type Config struct {
	// Path is the main document.
	Path string
	// DotfilesDir is the absolute repository root.
	DotfilesDir string
	Settings    Profile
	Profiles    map[string]Profile
	// Documents lists every file merged, in merge order.
	Documents []string
	// Warnings collects non-fatal problems such as missing imports.
	Warnings []string
}
