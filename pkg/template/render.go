package template

import (
	"bytes"
	"fmt"
	"iter"

	"github.com/arthur-debert/dotlink/pkg/errors"
)

// Resolver looks up the value of a dotted variable path.
type Resolver interface {
	Resolve(path string) (string, bool)
}

// Vars is a flat Resolver backed by a map.
type Vars map[string]string

// Resolve implements Resolver
func (v Vars) Resolve(path string) (string, bool) {
	value, ok := v[path]
	return value, ok
}

// UnresolvedError reports a directive whose path has no value.
type UnresolvedError struct {
	Path   string
	Offset int
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved variable %q at byte %d", e.Path, e.Offset)
}

// ErrorCode classifies unresolved variables for the errors package
func (e *UnresolvedError) ErrorCode() errors.ErrorCode {
	return errors.ErrUnresolvedVariable
}

// Render scans and renders src against vars.
func Render(src []byte, vars Resolver) ([]byte, error) {
	return RenderTokens(Scan(src), vars)
}

// RenderTokens renders a token sequence. On any error the returned buffer
// is nil.
func RenderTokens(tokens iter.Seq2[Token, error], vars Resolver) ([]byte, error) {
	var out bytes.Buffer
	for tok, err := range tokens {
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case Literal:
			out.WriteString(tok.Text)
		case Directive:
			value, ok := vars.Resolve(tok.Path)
			if !ok {
				return nil, &UnresolvedError{Path: tok.Path, Offset: tok.Offset}
			}
			out.WriteString(value)
		}
	}
	return out.Bytes(), nil
}

// References returns the distinct directive paths of src in document order.
func References(src []byte) ([]string, error) {
	seen := make(map[string]bool)
	var refs []string
	for tok, err := range Scan(src) {
		if err != nil {
			return nil, err
		}
		if tok.Kind == Directive && !seen[tok.Path] {
			seen[tok.Path] = true
			refs = append(refs, tok.Path)
		}
	}
	return refs, nil
}
