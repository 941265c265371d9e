package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainDoc = `
dotfiles_dir = "%s"

[settings]
vars = ["vars.toml"]
prehooks = ["echo start"]

[settings.variables]
colors.background = "#000000"
font.size = 12

[[settings.dots]]
name = "git"
source = "git/gitconfig"
target = ".gitconfig"
render = true
hooks = ["git config --list", "echo done"]

[[settings.dots]]
source = "nvim"
target = ".config/nvim"
ignore = ["*.bak", "**/.cache/**"]

[profiles.work]
import = ["corp"]
vars = ["work/vars.yaml"]

[profiles.work.variables]
colors.background = "#101010"

[[profiles.work.dots]]
name = "git"
source = "git/gitconfig.work"

[profiles.corp]
`

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	return testutil.CreateFile(t, dir, name, content)
}

func TestLoad_Document(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "dotlink.toml", fmt.Sprintf(mainDoc, dir))

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, dir, cfg.DotfilesDir)
	assert.Equal(t, []string{path}, cfg.Documents)
	assert.Empty(t, cfg.Warnings)

	s := cfg.Settings
	assert.Equal(t, []string{"vars.toml"}, s.Vars)
	assert.Equal(t, []string{"echo start"}, s.Prehooks)
	assert.Equal(t, map[string]interface{}{"background": "#000000"}, s.Variables["colors"])

	require.Len(t, s.Dots, 2)
	assert.Equal(t, Dot{
		Name:   "git",
		Source: "git/gitconfig",
		Target: ".gitconfig",
		Render: true,
		Hooks:  []string{"git config --list", "echo done"},
	}, s.Dots[0])
	assert.Equal(t, []string{"*.bak", "**/.cache/**"}, s.Dots[1].Ignore)
	assert.False(t, s.Dots[1].Render)

	require.Contains(t, cfg.Profiles, "work")
	require.Contains(t, cfg.Profiles, "corp")
	work := cfg.Profiles["work"]
	assert.Equal(t, []string{"corp"}, work.Import)
	assert.Equal(t, []string{"work/vars.yaml"}, work.Vars)
	require.Len(t, work.Dots, 1)
	assert.Equal(t, "git/gitconfig.work", work.Dots[0].Source)
}

func TestLoad_DotfilesDirPrecedence(t *testing.T) {
	dir := t.TempDir()
	fromDoc := filepath.Join(dir, "from-doc")
	fromEnv := filepath.Join(dir, "from-env")
	fromFlag := filepath.Join(dir, "from-flag")
	path := writeDoc(t, dir, "dotlink.toml", `dotfiles_dir = "`+fromDoc+`"`)

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)
	assert.Equal(t, fromDoc, cfg.DotfilesDir)

	t.Setenv("DOTLINK_DOTFILES_DIR", fromEnv)
	cfg, err = Load(LoadOptions{Path: path})
	require.NoError(t, err)
	assert.Equal(t, fromEnv, cfg.DotfilesDir)

	cfg, err = Load(LoadOptions{Path: path, DotfilesDir: fromFlag})
	require.NoError(t, err)
	assert.Equal(t, fromFlag, cfg.DotfilesDir)
}

func TestLoad_Imports(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "dotlink.toml", `
dotfiles_dir = "`+dir+`"
import = ["machines/extra.toml", "missing.toml"]

[settings]
prehooks = ["echo main"]
[settings.variables]
colors.fg = "white"
colors.bg = "black"
[[settings.dots]]
source = "a"
target = ".a"

[profiles.work]
vars = ["old.toml"]
`)
	writeDoc(t, dir, "machines/extra.toml", `
import = [{ path = "machines/more.toml" }, { path = "dotlink.toml" }]
[settings]
prehooks = ["echo extra"]
[settings.variables]
colors.bg = "navy"
[[settings.dots]]
source = "b"
target = ".b"

[profiles.work]
vars = ["new.toml"]
`)
	writeDoc(t, dir, "machines/more.toml", `
dotfiles_dir = "/elsewhere"
[[settings.dots]]
source = "c"
target = ".c"
`)

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)

	assert.Equal(t, []string{
		path,
		filepath.Join(dir, "machines/extra.toml"),
		filepath.Join(dir, "machines/more.toml"),
	}, cfg.Documents)
	assert.Equal(t, dir, cfg.DotfilesDir)
	assert.Len(t, cfg.Warnings, 2)

	assert.Equal(t, []string{"echo main", "echo extra"}, cfg.Settings.Prehooks)
	var sources []string
	for _, d := range cfg.Settings.Dots {
		sources = append(sources, d.Source)
	}
	assert.Equal(t, []string{"a", "b", "c"}, sources)
	assert.Equal(t, map[string]interface{}{"fg": "white", "bg": "navy"}, cfg.Settings.Variables["colors"])
	assert.Equal(t, []string{"new.toml"}, cfg.Profiles["work"].Vars)
}

func TestLoad_WarnsWhenDotfilesDirFallsBack(t *testing.T) {
	dir := t.TempDir()
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	path := writeDoc(t, dir, "dotlink.toml", "[settings]\n")
	t.Setenv("DOTFILES_ROOT", "")
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DotfilesDir)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "dotfiles_dir is not set")
}

func TestLoad_IgnoresGpgUserID(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "dotlink.toml",
		"dotfiles_dir = \""+dir+"\"\ngpg_user_id = \"ada@example.com\"\n[settings]\n")

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0], "gpg_user_id")
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		code    errors.ErrorCode
	}{
		{"syntax error", "[settings\nvars = ", errors.ErrConfigParse},
		{"unknown key", "[settings]\nvarz = []\n", errors.ErrConfigInvalid},
		{"wrong type", "[settings]\ndots = 3\n", errors.ErrConfigInvalid},
		{"import without path", "import = [{ name = \"x\" }]\n", errors.ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDoc(t, dir, tt.name+".toml", "dotfiles_dir = \""+dir+"\"\n"+tt.content)
			_, err := Load(LoadOptions{Path: path})
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetErrorCode(err))
			assert.True(t, errors.IsGlobal(err))
		})
	}

	_, err := Load(LoadOptions{Path: filepath.Join(dir, "absent.toml")})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestLoad_DefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOTLINK_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	writeDoc(t, dir, "dotlink/dotlink.toml", `dotfiles_dir = "`+dir+`"`)

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dotlink", "dotlink.toml"), cfg.Path)
}

func TestSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "dotlink.toml")

	require.NoError(t, WriteSample(path, false))
	testutil.AssertFileContent(t, path, SampleContent())

	err := WriteSample(path, false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	require.NoError(t, WriteSample(path, true))

	cfg, err := Load(LoadOptions{Path: path, DotfilesDir: dir})
	require.NoError(t, err)
	assert.Len(t, cfg.Settings.Dots, 2)
	assert.Empty(t, cfg.Profiles)
}
