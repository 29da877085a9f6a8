package tagexpr

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/roach88/tagman/internal/tag"
)

// Expr is a parsed expression: the tag names that must be present and those
// that must be absent, in source order.
type Expr struct {
	Include []string
	Exclude []string
}

// IsEmpty reports whether the expression matches everything.
func (e Expr) IsEmpty() bool {
	return len(e.Include) == 0 && len(e.Exclude) == 0
}

// String renders the expression in canonical form.
func (e Expr) String() string {
	terms := make([]string, 0, len(e.Include)+len(e.Exclude))
	for _, name := range e.Include {
		terms = append(terms, quote(name))
	}
	for _, name := range e.Exclude {
		terms = append(terms, "!"+quote(name))
	}
	return strings.Join(terms, " && ")
}

// quote renders name so that tokenize reads it back as one word.
func quote(name string) string {
	if name == "" {
		return `""`
	}
	if !strings.ContainsFunc(name, func(r rune) bool { return r < utf8.RuneSelf && isSpecial(byte(r)) }) {
		return name
	}
	return `"` + quoteEscaper.Replace(name) + `"`
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Parse parses a conjunction of optionally negated tag names. The empty
// string parses to an empty Expr.
func Parse(input string) (Expr, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return Expr{}, err
	}

	var expr Expr
	expectTerm := true
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok.kind {
		case tokenOr:
			return Expr{}, &SyntaxError{Pos: tok.pos, Message: "'||' is not supported; searches are conjunctions only"}
		case tokenLParen, tokenRParen:
			return Expr{}, &SyntaxError{Pos: tok.pos, Message: "parentheses are not supported"}
		}

		if !expectTerm {
			if tok.kind != tokenAnd {
				return Expr{}, &SyntaxError{Pos: tok.pos, Message: fmt.Sprintf("expected '&&', found %s", describe(tok))}
			}
			expectTerm = true
			continue
		}

		negate := false
		if tok.kind == tokenNot {
			negate = true
			i++
			if i == len(tokens) {
				return Expr{}, &SyntaxError{Pos: len(input), Message: "expected tag name after '!'"}
			}
			tok = tokens[i]
		}
		if tok.kind != tokenWord {
			return Expr{}, &SyntaxError{Pos: tok.pos, Message: fmt.Sprintf("expected tag name, found %s", describe(tok))}
		}
		if negate {
			expr.Exclude = append(expr.Exclude, tok.text)
		} else {
			expr.Include = append(expr.Include, tok.text)
		}
		expectTerm = false
	}

	if expectTerm && len(tokens) > 0 {
		return Expr{}, &SyntaxError{Pos: len(input), Message: "expected tag name after '&&'"}
	}
	return expr, nil
}

func describe(tok token) string {
	if tok.kind == tokenWord {
		return fmt.Sprintf("%q", tok.text)
	}
	return fmt.Sprintf("'%s'", tok.kind)
}

// Resolver looks tags up by name. *store.Store satisfies it.
type Resolver interface {
	TagByName(ctx context.Context, name string) (tag.Tag, bool, error)
}

// UnknownTagError reports names that matched no tag.
type UnknownTagError struct {
	Names []string
}

func (e *UnknownTagError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("unknown tag %q", e.Names[0])
	}
	quoted := make([]string, len(e.Names))
	for i, n := range e.Names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return "unknown tags " + strings.Join(quoted, ", ")
}

// Resolve turns the expression into search criteria. Every unknown name is
// collected into a single *UnknownTagError.
func (e Expr) Resolve(ctx context.Context, r Resolver) (*tag.Search, error) {
	var unknown []string
	lookup := func(names []string) ([]tag.Tag, error) {
		tags := make([]tag.Tag, 0, len(names))
		for _, name := range names {
			t, ok, err := r.TagByName(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("resolve %q: %w", name, err)
			}
			if !ok {
				unknown = append(unknown, name)
				continue
			}
			tags = append(tags, t)
		}
		return tags, nil
	}

	include, err := lookup(e.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := lookup(e.Exclude)
	if err != nil {
		return nil, err
	}
	if len(unknown) > 0 {
		return nil, &UnknownTagError{Names: unknown}
	}
	return tag.NewSearch().Include(include...).Exclude(exclude...), nil
}
