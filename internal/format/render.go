package format

import (
	"strings"

	"github.com/DSI-Solutions/pick-formatter/internal/basic"
)

// renderLine produces the final text for one line at the given nesting
// depth: a fixed margin, a depth-proportional indent, and the trimmed
// content. Labels are re-attached left-aligned in the margin column and
// conditional-compilation directives pass through verbatim.
func renderLine(line string, depth int, opts Options) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	if basic.Directive(line) {
		return line
	}

	indent := strings.Repeat(" ", opts.Indent*depth)

	label, rest := basic.Label(trimmed)
	if label != "" {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return label
		}
		margin := label
		if len(label) < opts.Margin {
			margin = label + strings.Repeat(" ", opts.Margin-len(label))
		} else {
			margin = label + " "
		}
		return margin + indent + rest
	}

	return strings.Repeat(" ", opts.Margin) + indent + trimmed
}
