package basic

import (
	"regexp"
	"strings"
)

// Label patterns: a word label terminated by a colon, or a bare numeric
// label, at the very start of the line.
var (
	wordLabelPattern    = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9.$]*:)`)
	numericLabelPattern = regexp.MustCompile(`^(\d+)(?:\s|$)`)
)

// RemoveQuotedStrings blanks the interior of single- and double-quoted
// string literals so keyword and comment matching never fires inside
// string data. Delimiters are kept, escaped quotes are consumed with the
// literal, and an unterminated literal runs to the end of the line.
func RemoveQuotedStrings(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\'' && c != '"' {
			b.WriteByte(c)
			continue
		}

		b.WriteByte(c)
		i++
		for i < len(text) {
			if text[i] == '\\' && i+1 < len(text) {
				i += 2
				continue
			}
			if text[i] == c {
				b.WriteByte(c)
				break
			}
			i++
		}
	}

	return b.String()
}

// TrailingComment detects a trailing comment introduced by a semicolon
// followed by an asterisk. The text must already be string-stripped.
// Returns the comment including its marker.
func TrailingComment(text string) (string, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != ';' {
			continue
		}
		j := i + 1
		for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
			j++
		}
		if j < len(text) && text[j] == '*' {
			return text[i:], true
		}
	}
	return "", false
}

// RemoveTrailingComment strips the trailing comment, if any, and trims
// trailing whitespace.
func RemoveTrailingComment(text string) string {
	if comment, ok := TrailingComment(text); ok {
		text = text[:len(text)-len(comment)]
	}
	return strings.TrimRight(text, " \t")
}

// Label splits a leading line label from the formattable remainder.
// Returns ("", text) when the line carries no label.
func Label(text string) (label, rest string) {
	if m := wordLabelPattern.FindString(text); m != "" {
		return m, text[len(m):]
	}
	if m := numericLabelPattern.FindStringSubmatch(text); m != nil {
		return m[1], text[len(m[1]):]
	}
	return "", text
}
