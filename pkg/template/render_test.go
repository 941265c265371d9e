package template

import (
	"strings"
	"testing"

	"github.com/arthur-debert/dotlink/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	vars := Vars{
		"a.b":               "X",
		"user.name":         "Ada",
		"user.email":        "ada@example.com",
		"colors.background": "#1d1f21",
		"empty":             "",
		"braces":            "{{not.a.directive}}",
	}

	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no directives", "plain\ntext\n", "plain\ntext\n"},
		{"round trip", "before {{a.b}} after", "before X after"},
		{"whitespace variant", "{{  a.b  }}", "X"},
		{"several per line", "[user]\n\tname = {{user.name}}\n\temail = {{ user.email }}\n", "[user]\n\tname = Ada\n\temail = ada@example.com\n"},
		{"empty value", "[{{empty}}]", "[]"},
		{"values are not rescanned", "{{braces}}", "{{not.a.directive}}"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render([]byte(tt.src), vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestRender_PreservesSurroundingBytes(t *testing.T) {
	prefix := "#!/bin/sh\r\n\tx='{' ; y='}'\n"
	suffix := "\n\n  trailing spaces  \n"
	src := prefix + "{{a.b}}" + suffix

	got, err := Render([]byte(src), Vars{"a.b": "X"})
	require.NoError(t, err)
	assert.Equal(t, prefix+"X"+suffix, string(got))
	assert.Equal(t, strings.Replace(src, "{{a.b}}", "X", 1), string(got))
}

func TestRender_FirstUnresolvedInDocumentOrder(t *testing.T) {
	src := []byte("{{known}} {{missing.one}} {{missing.two}}")

	got, err := Render(src, Vars{"known": "ok"})
	assert.Nil(t, got, "no partial output on failure")

	var uerr *UnresolvedError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "missing.one", uerr.Path)
	assert.Equal(t, 10, uerr.Offset)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnresolvedVariable))
}

func TestRender_ParseErrorWinsOverLaterUnresolved(t *testing.T) {
	_, err := Render([]byte("{{ok}} {{bad-name}} {{missing}}"), Vars{"ok": "1"})

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 7, perr.Offset)
}

func TestRender_IsDeterministic(t *testing.T) {
	src := []byte("{{a}}-{{b}}-{{a}}")
	vars := Vars{"a": "1", "b": "2"}

	first, err := Render(src, vars)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Render(src, vars)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "1-2-1", string(first))
}

func TestRenderTokens_ReusesSequence(t *testing.T) {
	seq := Scan([]byte("hi {{name}}"))

	a, err := RenderTokens(seq, Vars{"name": "a"})
	require.NoError(t, err)
	b, err := RenderTokens(seq, Vars{"name": "b"})
	require.NoError(t, err)

	assert.Equal(t, "hi a", string(a))
	assert.Equal(t, "hi b", string(b))
}

func TestReferences(t *testing.T) {
	refs, err := References([]byte("{{b}} {{a.x}} {{b}} {{c}}"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a.x", "c"}, refs)

	_, err = References([]byte("{{"))
	assert.Error(t, err)
}
