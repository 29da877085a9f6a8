package tagexpr

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenAnd
	tokenNot
	tokenOr
	tokenLParen
	tokenRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokenWord:
		return "word"
	case tokenAnd:
		return "&&"
	case tokenNot:
		return "!"
	case tokenOr:
		return "||"
	case tokenLParen:
		return "("
	case tokenRParen:
		return ")"
	}
	return fmt.Sprintf("token(%d)", int(k))
}

type token struct {
	kind tokenKind
	text string
	pos  int // byte offset in the input
}

// SyntaxError reports a malformed expression. Pos is the byte offset of the
// offending token.
type SyntaxError struct {
	Pos     int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Message)
}

func isSpecial(c byte) bool {
	switch c {
	case '!', '&', '|', '(', ')', ' ', '\t', '\n', '"':
		return true
	}
	return false
}

// readQuoted reads the quoted word starting at input[start] == '"'. Inside
// quotes a backslash makes the next byte literal. next is the offset just past
// the closing quote.
func readQuoted(input string, start int) (word string, next int, ok bool) {
	var b strings.Builder
	for pos := start + 1; pos < len(input); pos++ {
		switch c := input[pos]; c {
		case '"':
			return b.String(), pos + 1, true
		case '\\':
			pos++
			if pos == len(input) {
				return "", 0, false
			}
			b.WriteByte(input[pos])
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, false
}

// tokenize splits an expression into tokens. Quoted strings become a single
// word so names containing spaces, operators or quotes can be written.
func tokenize(input string) ([]token, error) {
	var tokens []token
	for pos := 0; pos < len(input); {
		c := input[pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			pos++
		case c == '!':
			tokens = append(tokens, token{kind: tokenNot, text: "!", pos: pos})
			pos++
		case c == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", pos: pos})
			pos++
		case c == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", pos: pos})
			pos++
		case c == '&' || c == '|':
			if pos+1 >= len(input) || input[pos+1] != c {
				return nil, &SyntaxError{Pos: pos, Message: fmt.Sprintf("expected %q", string([]byte{c, c}))}
			}
			kind := tokenAnd
			if c == '|' {
				kind = tokenOr
			}
			tokens = append(tokens, token{kind: kind, text: input[pos : pos+2], pos: pos})
			pos += 2
		case c == '"':
			word, next, ok := readQuoted(input, pos)
			if !ok {
				return nil, &SyntaxError{Pos: pos, Message: "unterminated string literal"}
			}
			tokens = append(tokens, token{kind: tokenWord, text: word, pos: pos})
			pos = next
		default:
			start := pos
			for pos < len(input) && !isSpecial(input[pos]) {
				pos++
			}
			tokens = append(tokens, token{kind: tokenWord, text: input[start:pos], pos: start})
		}
	}
	return tokens, nil
}
