package vars

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	overlay, err := Flatten("inline", map[string]interface{}{
		"colors": map[string]interface{}{
			"background": "#000",
			"term": map[string]interface{}{
				"cursor": "block",
			},
		},
		"font.size": int64(12),
		"ratio":     1.5,
		"enabled":   true,
		"count":     3,
	})
	require.NoError(t, err)

	assert.Equal(t, "inline", overlay.Name)
	assert.Equal(t, map[string]string{
		"colors.background":  "#000",
		"colors.term.cursor": "block",
		"font.size":          "12",
		"ratio":              "1.5",
		"enabled":            "true",
		"count":              "3",
	}, overlay.Values)
}

func TestFlatten_Errors(t *testing.T) {
	tests := []struct {
		name string
		data map[string]interface{}
	}{
		{"list value", map[string]interface{}{"plugins": []interface{}{"a", "b"}}},
		{"null value", map[string]interface{}{"x": nil}},
		{"invalid key", map[string]interface{}{"user-name": "ada"}},
		{"duplicate path", map[string]interface{}{
			"a":   map[string]interface{}{"b": "1"},
			"a.b": "2",
		}},
		{"unsupported type", map[string]interface{}{"x": struct{}{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Flatten("test", tt.data)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	fsys := filesystem.NewOS()

	files := map[string]string{
		"vars.toml": "[colors]\nbackground = \"#1d1f21\"\nalpha = 0.9\n[font]\nsize = 11\n",
		"vars.yaml": "colors:\n  background: \"#ffffff\"\nfont:\n  size: 14\n  bold: false\n",
		"vars.json": `{"colors": {"background": "#222"}, "font": {"size": 10.0}}`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	tests := []struct {
		file string
		want map[string]string
	}{
		{"vars.toml", map[string]string{"colors.background": "#1d1f21", "colors.alpha": "0.9", "font.size": "11"}},
		{"vars.yaml", map[string]string{"colors.background": "#ffffff", "font.size": "14", "font.bold": "false"}},
		{"vars.json", map[string]string{"colors.background": "#222", "font.size": "10.0"}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			overlay, err := LoadFile(fsys, path)
			require.NoError(t, err)
			assert.Equal(t, path, overlay.Name)
			assert.Equal(t, tt.want, overlay.Values)
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	fsys := filesystem.NewOS()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("this is = = not toml"), 0644))
	ini := filepath.Join(dir, "vars.ini")
	require.NoError(t, os.WriteFile(ini, []byte("a=b"), 0644))

	_, err := LoadFile(fsys, filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))

	_, err = LoadFile(fsys, bad)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))

	_, err = LoadFile(fsys, ini)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
}

func TestSystem(t *testing.T) {
	t.Setenv("USER", "ada")
	t.Setenv("SHELL", "/bin/zsh")

	overlay := System("/home/ada")
	assert.Equal(t, SystemOverlayName, overlay.Name)
	assert.Equal(t, "/home/ada", overlay.Values["system.home"])
	assert.Equal(t, "ada", overlay.Values["system.user"])
	assert.Equal(t, "/bin/zsh", overlay.Values["system.shell"])
	assert.Equal(t, runtime.GOOS, overlay.Values["system.os"])
	assert.Equal(t, runtime.GOARCH, overlay.Values["system.arch"])
}
