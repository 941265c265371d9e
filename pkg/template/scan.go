package template

import (
	"bytes"
	"fmt"
	"iter"

	"github.com/arthur-debert/dotlink/pkg/errors"
)

// Directive markers
const (
	OpenMarker  = "{{"
	CloseMarker = "}}"
)

// maxFragment bounds the fragment quoted in parse errors
const maxFragment = 40

var (
	openMarker  = []byte(OpenMarker)
	closeMarker = []byte(CloseMarker)
)

// Kind identifies a token type
type Kind int

const (
	// Literal is text passed through unchanged
	Literal Kind = iota
	// Directive is a {{ path }} placeholder
	Directive
)

// String returns the name of the token kind
func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Directive:
		return "directive"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Token is one element of a scanned buffer.
type Token struct {
	Kind Kind
	// Text is the literal text, or the raw directive including markers.
	Text string
	// Path is the dotted identifier of a Directive.
	Path string
	// Offset is the byte offset of the token in the source.
	Offset int
}

// ParseError reports a malformed directive.
type ParseError struct {
	Offset   int
	Fragment string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at byte %d: %s: %q", e.Offset, e.Reason, e.Fragment)
}

// ErrorCode classifies parse errors for the errors package
func (e *ParseError) ErrorCode() errors.ErrorCode {
	return errors.ErrParse
}

// Scan returns the token sequence of src. src must not be modified while
// the sequence is in use.
func Scan(src []byte) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		pos := 0
		for pos < len(src) {
			idx := bytes.Index(src[pos:], openMarker)
			if idx < 0 {
				yield(Token{Kind: Literal, Text: string(src[pos:]), Offset: pos}, nil)
				return
			}

			open := pos + idx
			if open > pos {
				if !yield(Token{Kind: Literal, Text: string(src[pos:open]), Offset: pos}, nil) {
					return
				}
			}

			tok, next, err := scanDirective(src, open)
			if err != nil {
				yield(Token{}, err)
				return
			}
			if !yield(tok, nil) {
				return
			}
			pos = next
		}
	}
}

// Parse scans src completely.
func Parse(src []byte) ([]Token, error) {
	var tokens []Token
	for tok, err := range Scan(src) {
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// scanDirective scans the directive whose open marker is at src[open:] and
// returns it together with the offset just past its close marker.
func scanDirective(src []byte, open int) (Token, int, error) {
	bodyStart := open + len(openMarker)
	idx := bytes.Index(src[bodyStart:], closeMarker)
	if idx < 0 {
		return Token{}, 0, &ParseError{
			Offset:   open,
			Fragment: fragment(src[open:]),
			Reason:   "unclosed directive",
		}
	}

	bodyEnd := bodyStart + idx
	end := bodyEnd + len(closeMarker)
	raw := src[open:end]
	path := string(trimSpace(src[bodyStart:bodyEnd]))

	if path == "" {
		return Token{}, 0, &ParseError{Offset: open, Fragment: string(raw), Reason: "empty directive"}
	}
	if !ValidPath(path) {
		return Token{}, 0, &ParseError{Offset: open, Fragment: string(raw), Reason: "invalid identifier"}
	}

	return Token{Kind: Directive, Text: string(raw), Path: path, Offset: open}, end, nil
}

// ValidPath reports whether s matches [A-Za-z0-9_]+(\.[A-Za-z0-9_]+)*
func ValidPath(s string) bool {
	if s == "" {
		return false
	}
	segment := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '.':
			if segment == 0 {
				return false
			}
			segment = 0
		case isIdentByte(c):
			segment++
		default:
			return false
		}
	}
	return segment > 0
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func trimSpace(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isSpace(b[start]) {
		start++
	}
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

// fragment returns the start of b, cut at the first newline or maxFragment bytes.
func fragment(b []byte) string {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		b = b[:i]
	}
	if len(b) > maxFragment {
		b = b[:maxFragment]
	}
	return string(b)
}
