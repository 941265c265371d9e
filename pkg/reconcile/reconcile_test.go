package reconcile

import (
	"os"
	"testing"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/arthur-debert/dotlink/pkg/registry"
	"github.com/arthur-debert/dotlink/pkg/template"
	"github.com/arthur-debert/dotlink/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testVars = template.Vars{
	"colors.bg": "#000000",
	"user.name": "Ada",
}

func newEnv(t *testing.T) *testutil.Environment {
	t.Helper()
	testutil.SkipOnWindows(t)
	return testutil.NewEnvironment(t).WithFileTree(testutil.FileTree{
		"git": testutil.FileTree{
			"gitconfig":  "[user]\n\tname = {{ user.name }}\n",
			"ignore":     "*.o\n",
			"broken.tpl": "name={{ user.name }} mail={{ user.mail }}\n",
		},
		"zsh": testutil.FileTree{
			"zshrc": "export BG={{colors.bg}}\n",
		},
	})
}

func newReconciler(env *testutil.Environment, opts Options) *Reconciler {
	return New(env.FS, env.Paths, testVars, opts)
}

func TestApply_CreatesLink(t *testing.T) {
	env := newEnv(t)
	r := newReconciler(env, Options{})

	out := r.Apply(registry.Dot{Source: "git/ignore", Target: ".config/git/ignore"})

	require.NoError(t, out.Err)
	assert.Equal(t, StatusLinked, out.Status)
	assert.Equal(t, ActionCreateLink, out.Action)
	assert.Equal(t, StateAbsent, out.State)
	testutil.AssertSymlink(t, env.Home(".config/git/ignore"), env.Repo("git/ignore"))
}

func TestApply_LinkIsIdempotent(t *testing.T) {
	env := newEnv(t)
	r := newReconciler(env, Options{})
	dot := registry.Dot{Source: "git/ignore", Target: ".gitignore"}

	require.NoError(t, r.Apply(dot).Err)
	assert.NotEmpty(t, env.FS.Mutations())
	env.FS.Reset()

	out := r.Apply(dot)
	require.NoError(t, out.Err)
	assert.Equal(t, StatusLinked, out.Status)
	assert.Equal(t, ActionNone, out.Action)
	assert.Equal(t, StateLinkedToSource, out.State)
	assert.Empty(t, env.FS.Mutations())
}

func TestApply_ReplacesLinkIntoRepository(t *testing.T) {
	env := newEnv(t)
	testutil.CreateSymlink(t, env.Repo("zsh/zshrc"), env.Home(".gitignore"))
	r := newReconciler(env, Options{})

	out := r.Apply(registry.Dot{Source: "git/ignore", Target: ".gitignore"})

	require.NoError(t, out.Err)
	assert.Equal(t, StateLinkedIntoRepo, out.State)
	assert.Equal(t, ActionReplaceLink, out.Action)
	testutil.AssertSymlink(t, env.Home(".gitignore"), env.Repo("git/ignore"))
	testutil.AssertNoFile(t, env.Home("."+".gitignore"+tmpSuffix))
}

func TestApply_ProtectedPaths(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, env *testutil.Environment)
		state State
		force bool
		// whether Force replaces it
		forceable bool
	}{
		{
			name: "regular file",
			setup: func(t *testing.T, env *testutil.Environment) {
				testutil.CreateFile(t, env.HomeDir, ".gitignore", "mine\n")
			},
			state:     StateRegularFile,
			forceable: true,
		},
		{
			name: "link elsewhere",
			setup: func(t *testing.T, env *testutil.Environment) {
				other := testutil.CreateFile(t, env.HomeDir, "elsewhere/ignore", "other\n")
				testutil.CreateSymlink(t, other, env.Home(".gitignore"))
			},
			state:     StateLinkedElsewhere,
			forceable: true,
		},
		{
			name: "directory",
			setup: func(t *testing.T, env *testutil.Environment) {
				testutil.CreateDir(t, env.HomeDir, ".gitignore")
			},
			state: StateDirectory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t)
			tt.setup(t, env)
			dot := registry.Dot{Source: "git/ignore", Target: ".gitignore"}

			out := newReconciler(env, Options{}).Apply(dot)
			require.Error(t, out.Err)
			assert.True(t, errors.IsErrorCode(out.Err, errors.ErrProtectedPath))
			assert.Equal(t, StatusSkipped, out.Status)
			assert.Equal(t, tt.state, out.State)
			assert.Empty(t, env.FS.Mutations())

			out = newReconciler(env, Options{Force: true}).Apply(dot)
			if !tt.forceable {
				assert.True(t, errors.IsErrorCode(out.Err, errors.ErrProtectedPath))
				return
			}
			require.NoError(t, out.Err)
			assert.Equal(t, ActionReplaceLink, out.Action)
			assert.NotEmpty(t, out.Warnings)
			testutil.AssertSymlink(t, env.Home(".gitignore"), env.Repo("git/ignore"))
		})
	}
}

func TestApply_RegularFileNeverOverwrittenWithoutForce(t *testing.T) {
	env := newEnv(t)
	path := testutil.CreateFile(t, env.HomeDir, ".gitignore", "precious\n")

	out := newReconciler(env, Options{}).Apply(registry.Dot{Source: "git/ignore", Target: ".gitignore"})

	assert.Equal(t, StatusSkipped, out.Status)
	testutil.AssertFileContent(t, path, "precious\n")
}

func TestApply_SourceErrors(t *testing.T) {
	env := newEnv(t)
	r := newReconciler(env, Options{})

	out := r.Apply(registry.Dot{Source: "nope/missing", Target: ".missing"})
	assert.True(t, errors.IsErrorCode(out.Err, errors.ErrSourceNotFound))
	assert.Equal(t, StatusSkipped, out.Status)

	out = r.Apply(registry.Dot{Source: "../outside", Target: ".outside"})
	assert.True(t, errors.IsErrorCode(out.Err, errors.ErrConfigInvalid))

	testutil.AssertNoFile(t, env.Home(".missing"))
}

func TestApply_DryRun(t *testing.T) {
	env := newEnv(t)
	r := newReconciler(env, Options{DryRun: true})

	link := r.Apply(registry.Dot{Source: "git/ignore", Target: ".gitignore"})
	render := r.Apply(registry.Dot{Source: "zsh/zshrc", Target: ".zshrc", Render: true})

	assert.True(t, link.Planned)
	assert.Equal(t, ActionCreateLink, link.Action)
	assert.Equal(t, ActionWrite, render.Action)
	assert.Empty(t, env.FS.Mutations())
	testutil.AssertNoFile(t, env.Home(".gitignore"))
	testutil.AssertNoFile(t, env.Home(".zshrc"))
}

func TestApply_Render(t *testing.T) {
	env := newEnv(t)
	r := newReconciler(env, Options{})
	dot := registry.Dot{Source: "git/gitconfig", Target: ".gitconfig", Render: true}

	out := r.Apply(dot)
	require.NoError(t, out.Err)
	assert.Equal(t, StatusRendered, out.Status)
	assert.Equal(t, ActionWrite, out.Action)
	testutil.AssertFileContent(t, env.Home(".gitconfig"), "[user]\n\tname = Ada\n")

	env.FS.Reset()
	out = r.Apply(dot)
	require.NoError(t, out.Err)
	assert.Equal(t, ActionNone, out.Action)
	assert.Equal(t, StateRegularFile, out.State)
	assert.Empty(t, env.FS.Mutations())
}

func TestApply_RenderUpdatesStaleContent(t *testing.T) {
	env := newEnv(t)
	testutil.CreateFile(t, env.HomeDir, ".zshrc", "export BG=#ffffff\n")

	out := newReconciler(env, Options{}).Apply(registry.Dot{Source: "zsh/zshrc", Target: ".zshrc", Render: true})

	require.NoError(t, out.Err)
	assert.Equal(t, ActionWrite, out.Action)
	testutil.AssertFileContent(t, env.Home(".zshrc"), "export BG=#000000\n")
}

func TestApply_RenderReplacesPreviousLink(t *testing.T) {
	env := newEnv(t)
	testutil.CreateSymlink(t, env.Repo("zsh/zshrc"), env.Home(".zshrc"))

	out := newReconciler(env, Options{}).Apply(registry.Dot{Source: "zsh/zshrc", Target: ".zshrc", Render: true})

	require.NoError(t, out.Err)
	assert.Equal(t, StateLinkedToSource, out.State)
	testutil.AssertFileContent(t, env.Home(".zshrc"), "export BG=#000000\n")
	// the source itself is untouched
	testutil.AssertFileContent(t, env.Repo("zsh/zshrc"), "export BG={{colors.bg}}\n")
}

func TestApply_RenderKeepsSourceMode(t *testing.T) {
	env := newEnv(t)
	script := testutil.CreateFile(t, env.DotfilesRoot, "bin/hello", "#!/bin/sh\necho {{ user.name }}\n")
	require.NoError(t, os.Chmod(script, 0755))

	out := newReconciler(env, Options{}).Apply(registry.Dot{Source: "bin/hello", Target: "bin/hello", Render: true})
	require.NoError(t, out.Err)

	info, err := os.Stat(env.Home("bin/hello"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestApply_UnresolvedRenderIsAtomic(t *testing.T) {
	t.Run("absent target stays absent", func(t *testing.T) {
		env := newEnv(t)
		out := newReconciler(env, Options{}).Apply(registry.Dot{Source: "git/broken.tpl", Target: ".broken", Render: true})

		require.Error(t, out.Err)
		assert.True(t, errors.IsErrorCode(out.Err, errors.ErrUnresolvedVariable))
		assert.Equal(t, StatusSkipped, out.Status)
		testutil.AssertNoFile(t, env.Home(".broken"))
		assert.Empty(t, env.FS.Mutations())
	})

	t.Run("existing target untouched", func(t *testing.T) {
		env := newEnv(t)
		testutil.CreateFile(t, env.HomeDir, ".broken", "old\n")
		out := newReconciler(env, Options{}).Apply(registry.Dot{Source: "git/broken.tpl", Target: ".broken", Render: true})

		assert.True(t, errors.IsErrorCode(out.Err, errors.ErrUnresolvedVariable))
		testutil.AssertFileContent(t, env.Home(".broken"), "old\n")
	})
}

func TestApply_ParseErrorSkipsDot(t *testing.T) {
	env := newEnv(t)
	testutil.CreateFile(t, env.DotfilesRoot, "bad.tpl", "x = {{ oops\n")

	out := newReconciler(env, Options{}).Apply(registry.Dot{Source: "bad.tpl", Target: ".bad", Render: true})

	assert.True(t, errors.IsErrorCode(out.Err, errors.ErrParse))
	testutil.AssertNoFile(t, env.Home(".bad"))
}

func TestApply_DirectorySource(t *testing.T) {
	env := newEnv(t)
	r := newReconciler(env, Options{})

	out := r.Apply(registry.Dot{Source: "zsh", Target: ".config/zsh"})

	require.NoError(t, out.Err)
	testutil.AssertSymlink(t, env.Home(".config/zsh"), env.Repo("zsh"))
}

func TestApply_RenderDirectory(t *testing.T) {
	env := newEnv(t).WithFileTree(testutil.FileTree{
		"nvim": testutil.FileTree{
			"init.lua": "vim.g.bg = '{{ colors.bg }}'\n",
			"init.bak": "{{ not.defined }}\n",
			"lua": testutil.FileTree{
				"user.lua": "-- {{ user.name }}\n",
			},
		},
	})
	r := newReconciler(env, Options{})
	dot := registry.Dot{Source: "nvim", Target: ".config/nvim", Render: true, Ignore: []string{"*.bak"}}

	out := r.Apply(dot)
	require.NoError(t, out.Err)
	assert.Equal(t, StatusRendered, out.Status)
	assert.Equal(t, ActionWrite, out.Action)
	assert.ElementsMatch(t, []string{env.Home(".config/nvim/init.lua"), env.Home(".config/nvim/lua/user.lua")}, out.Files)
	testutil.AssertFileContent(t, env.Home(".config/nvim/init.lua"), "vim.g.bg = '#000000'\n")
	testutil.AssertFileContent(t, env.Home(".config/nvim/lua/user.lua"), "-- Ada\n")
	testutil.AssertNoFile(t, env.Home(".config/nvim/init.bak"))

	env.FS.Reset()
	out = r.Apply(dot)
	require.NoError(t, out.Err)
	assert.Equal(t, ActionNone, out.Action)
	assert.Empty(t, env.FS.Mutations())
}

func TestApply_RenderDirectoryIsAllOrNothing(t *testing.T) {
	env := newEnv(t).WithFileTree(testutil.FileTree{
		"tmpl": testutil.FileTree{
			"a.conf": "ok {{ user.name }}\n",
			"b.conf": "broken {{ user.mail }}\n",
		},
	})

	out := newReconciler(env, Options{}).Apply(registry.Dot{Source: "tmpl", Target: ".tmpl", Render: true})

	assert.True(t, errors.IsErrorCode(out.Err, errors.ErrUnresolvedVariable))
	testutil.AssertNoFile(t, env.Home(".tmpl"))
	assert.Empty(t, env.FS.Mutations())
}

func TestApply_InvalidIgnorePattern(t *testing.T) {
	env := newEnv(t)
	out := newReconciler(env, Options{}).Apply(registry.Dot{Source: "zsh", Target: ".zsh", Render: true, Ignore: []string{"[a-"}})
	assert.True(t, errors.IsErrorCode(out.Err, errors.ErrConfigInvalid))
}

func TestInspect(t *testing.T) {
	env := newEnv(t)
	source := env.Repo("git/ignore")

	testutil.CreateSymlink(t, source, env.Home("to-source"))
	testutil.CreateSymlink(t, "../dotfiles/zsh/zshrc", env.Home("relative-into-repo"))
	testutil.CreateSymlink(t, "/nonexistent/place", env.Home("dangling"))
	testutil.CreateFile(t, env.HomeDir, "plain", "x")
	testutil.CreateDir(t, env.HomeDir, "dir")

	tests := []struct {
		name string
		want State
	}{
		{"missing", StateAbsent},
		{"to-source", StateLinkedToSource},
		{"relative-into-repo", StateLinkedIntoRepo},
		{"dangling", StateLinkedElsewhere},
		{"plain", StateRegularFile},
		{"dir", StateDirectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := Inspect(env.FS, env.Paths, env.Home(tt.name), source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, obs.State)
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "absent", StateAbsent.String())
	assert.Equal(t, "linked elsewhere", StateLinkedElsewhere.String())
	text, err := StateDirectory.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "directory", string(text))
}

func TestApply_LeftoverTmpFromInterruptedRun(t *testing.T) {
	source := "[user]\n\tname = {{ user.name }}\n"

	tests := []struct {
		name     string
		dot      registry.Dot
		existing string // content of the target, empty for absent
		tmpLink  bool   // leftover tmp is a link to the source
		check    func(t *testing.T, env *testutil.Environment)
	}{
		{
			name:    "render dot with tmp linked to source",
			dot:     registry.Dot{Source: "git/gitconfig", Target: ".gitconfig", Render: true},
			tmpLink: true,
			check: func(t *testing.T, env *testutil.Environment) {
				testutil.AssertFileContent(t, env.Home(".gitconfig"), "[user]\n\tname = Ada\n")
			},
		},
		{
			name:     "render dot over existing file with tmp linked to source",
			dot:      registry.Dot{Source: "git/gitconfig", Target: ".gitconfig", Render: true},
			existing: "old\n",
			tmpLink:  true,
			check: func(t *testing.T, env *testutil.Environment) {
				testutil.AssertFileContent(t, env.Home(".gitconfig"), "[user]\n\tname = Ada\n")
			},
		},
		{
			name: "render dot with tmp regular file",
			dot:  registry.Dot{Source: "git/gitconfig", Target: ".gitconfig", Render: true},
			check: func(t *testing.T, env *testutil.Environment) {
				testutil.AssertFileContent(t, env.Home(".gitconfig"), "[user]\n\tname = Ada\n")
			},
		},
		{
			name:    "link dot with tmp linked to source",
			dot:     registry.Dot{Source: "git/gitconfig", Target: ".gitconfig"},
			tmpLink: true,
			check: func(t *testing.T, env *testutil.Environment) {
				testutil.AssertSymlink(t, env.Home(".gitconfig"), env.Repo("git/gitconfig"))
			},
		},
		{
			name: "link dot with tmp regular file",
			dot:  registry.Dot{Source: "git/gitconfig", Target: ".gitconfig"},
			check: func(t *testing.T, env *testutil.Environment) {
				testutil.AssertSymlink(t, env.Home(".gitconfig"), env.Repo("git/gitconfig"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t)
			tmp := env.Home("." + ".gitconfig" + tmpSuffix)
			if tt.tmpLink {
				testutil.CreateSymlink(t, env.Repo("git/gitconfig"), tmp)
			} else {
				testutil.CreateFile(t, env.HomeDir, "."+".gitconfig"+tmpSuffix, "half written")
			}
			if tt.existing != "" {
				testutil.CreateFile(t, env.HomeDir, ".gitconfig", tt.existing)
			}
			r := newReconciler(env, Options{Force: true})

			out := r.Apply(tt.dot)

			require.NoError(t, out.Err)
			tt.check(t, env)
			testutil.AssertFileContent(t, env.Repo("git/gitconfig"), source)
			testutil.AssertNoFile(t, tmp)
		})
	}
}
