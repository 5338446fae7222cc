package basic

import (
	"strings"
)

// Token is the classification of a single source line. Classification is
// pure: all nesting and CASE-group state lives in the formatting engine.
type Token struct {
	// Keyword is the matched table entry, nil for plain statements,
	// blank lines and directives.
	Keyword *Keyword

	// Opens and Closes are resolved for this specific line: an inline
	// keyword without its continuation does not open, a CASE that is a
	// single-line branch neither opens nor closes.
	Opens  bool
	Closes bool

	Kind Kind

	// Body is the comment- and string-stripped statement text (label
	// removed), kept for same-line checks such as UNTIL ... REPEAT and
	// the file-final bare END.
	Body string

	// OneLineLoop marks a LOOP, UNTIL or WHILE line whose statement ends
	// with REPEAT: the loop it would open is closed on the same line, so
	// the engine must not re-indent for it.
	OneLineLoop bool
}

// Directive reports whether the line is a conditional-compilation
// directive. Directives are emitted verbatim and never affect nesting.
func Directive(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "!")
}

// Classify inspects one line and decides whether it opens a block, closes
// a block, both, or neither. The keyword table is consulted in order and
// the first matching entry wins.
func Classify(line string) Token {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "!") {
		return Token{}
	}

	if _, rest := Label(trimmed); rest != trimmed {
		trimmed = strings.TrimSpace(rest)
	}

	body := strings.TrimSpace(RemoveTrailingComment(RemoveQuotedStrings(trimmed)))

	for _, kw := range keywords {
		if !kw.pattern.MatchString(trimmed) {
			continue
		}

		tok := Token{Keyword: kw, Kind: kw.Kind, Body: body}

		switch {
		case kw.Inline:
			if !continuationPattern.MatchString(body) {
				// Plain statement form, e.g. READ without ELSE.
				return Token{Body: body}
			}
			tok.Opens = true

		case kw.Kind == KindCase:
			if i := strings.Index(body, ";"); i >= 0 && i != len(body)-1 {
				// Single-line case branch with inline statements.
				return Token{Body: body}
			}
			tok.Opens = true

		default:
			tok.Opens = kw.Opens
			tok.Closes = kw.Closes
		}

		if (kw.Kind == KindLoop || kw.Kind == KindUntil) && repeatPattern.MatchString(body) {
			tok.OneLineLoop = true
			tok.Opens = false
			if kw.Kind == KindLoop {
				// LOOP ... UNTIL cond REPEAT on one physical line is
				// depth-neutral.
				tok.Closes = false
			}
		}

		return tok
	}

	return Token{Body: body}
}

// BlockStart reports whether the line opens a block, returning the matched
// keyword descriptor.
func BlockStart(line string) (*Keyword, bool) {
	tok := Classify(line)
	if tok.Opens {
		return tok.Keyword, true
	}
	return nil, false
}

// BlockEnd reports whether the line closes a block, returning the matched
// keyword descriptor.
func BlockEnd(line string) (*Keyword, bool) {
	tok := Classify(line)
	if tok.Closes {
		return tok.Keyword, true
	}
	return nil, false
}
