// Package format re-indents Pick BASIC source. Each call walks the
// document top to bottom, tracking block nesting depth and open CASE
// groups, and rewrites every line at its computed depth. Content is never
// changed beyond leading/trailing whitespace.
package format

import (
	"fmt"
	"strings"

	"github.com/DSI-Solutions/pick-formatter/internal/basic"
)

const (
	// DefaultMargin is the width of the label margin column.
	DefaultMargin = 5
	// DefaultIndent is the number of spaces per nesting level.
	DefaultIndent = 3
)

// Options control the rendered layout.
type Options struct {
	Margin int
	Indent int
}

func (o Options) withDefaults() Options {
	if o.Margin <= 0 {
		o.Margin = DefaultMargin
	}
	if o.Indent <= 0 {
		o.Indent = DefaultIndent
	}
	return o
}

// Edit is a single-line replacement. Line is 0-based.
type Edit struct {
	Line int
	Text string
}

// Result holds the rewritten document.
type Result struct {
	Lines []string
	edits []Edit
}

// Text returns the whole rewritten document.
func (r *Result) Text() string {
	return strings.Join(r.Lines, "\n")
}

// Edits returns one replacement per line whose text changed.
func (r *Result) Edits() []Edit {
	return r.edits
}

// Changed reports whether any line differs from the input.
func (r *Result) Changed() bool {
	return len(r.edits) > 0
}

func (r *Result) set(i int, original, formatted string) {
	r.Lines[i] = formatted
	if formatted != original {
		r.edits = append(r.edits, Edit{Line: i, Text: formatted})
	}
}

// NestingError reports a block end with no matching opener. The whole
// format pass is discarded.
type NestingError struct {
	Line int // 1-based
}

func (e *NestingError) Error() string {
	return fmt.Sprintf("line %d: block nesting went negative; unmatched block end", e.Line)
}

// CaseError reports a CASE with no enclosing BEGIN CASE.
type CaseError struct {
	Line int // 1-based
}

func (e *CaseError) Error() string {
	return fmt.Sprintf("line %d: CASE without an enclosing BEGIN CASE", e.Line)
}

// Format re-indents src and returns the rewritten document. On a nesting
// fault it returns a nil Result and a *NestingError or *CaseError naming
// the offending line; no partial output is produced.
func Format(src string, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	lines := strings.Split(src, "\n")
	res := &Result{Lines: make([]string, len(lines))}

	// The file-terminating END rule applies to the last line with content,
	// so a trailing newline does not defeat it.
	lastContent := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			lastContent = i
			break
		}
	}

	nest := 0
	var caseStack []bool

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			res.set(i, line, strings.TrimRight(line, " \t"))
			continue
		}

		tok := basic.Classify(line)
		branchOpen := len(caseStack) > 0 && caseStack[len(caseStack)-1]

		if tok.Closes || (tok.Kind == basic.KindCase && branchOpen) {
			// RETURN inside an open case branch leaves the branch alone.
			if !(tok.Kind == basic.KindReturn && branchOpen) {
				nest--
				if tok.Kind == basic.KindEndCase && branchOpen {
					// END CASE closes both the open branch and the
					// BEGIN CASE construct.
					nest--
				}
			}
		}

		switch tok.Kind {
		case basic.KindBeginCase:
			caseStack = append(caseStack, false)
		case basic.KindCase:
			if len(caseStack) == 0 {
				return nil, &CaseError{Line: i + 1}
			}
			caseStack[len(caseStack)-1] = true
		case basic.KindEndCase:
			if len(caseStack) > 0 {
				caseStack = caseStack[:len(caseStack)-1]
			}
		}

		// RETURN is always legal at top level even when block accounting
		// drifts.
		if tok.Kind == basic.KindReturn && nest < 0 {
			nest = 0
		}

		// The file-terminating bare END is rendered unindented.
		if i == lastContent && tok.Kind == basic.KindEnd && strings.EqualFold(tok.Body, "END") {
			nest = 0
		}

		if nest < 0 {
			return nil, &NestingError{Line: i + 1}
		}

		res.set(i, line, renderLine(line, nest, opts))

		if tok.Opens {
			nest++
		}
	}

	return res, nil
}
