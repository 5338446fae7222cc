package basic

import (
	"regexp"
	"strings"
)

// Kind identifies keywords the formatting engine treats specially.
type Kind int

const (
	KindNone Kind = iota
	KindBeginCase
	KindCase
	KindEndCase
	KindEnd
	KindLoop
	KindUntil // UNTIL and WHILE in a loop header
	KindReturn
)

// Keyword is one entry in the keyword table.
type Keyword struct {
	Text   string
	Opens  bool
	Closes bool
	// Inline keywords open a block only when the statement ends with a
	// continuation keyword (THEN, ELSE, DO, LOCKED).
	Inline bool
	Kind   Kind

	pattern *regexp.Regexp
}

// keywords is matched in order; the first entry whose pattern matches wins.
// Multi-word and longer spellings must precede their prefixes (END CASE and
// END ELSE before END, READVU before READV before READ, and so on).
var keywords = []*Keyword{
	{Text: "BEGIN CASE", Opens: true, Kind: KindBeginCase},
	{Text: "END CASE", Closes: true, Kind: KindEndCase},
	{Text: "END ELSE", Opens: true, Closes: true},
	{Text: "END", Closes: true, Kind: KindEnd},
	// CASE opens an implicit branch block; whether it also closes the
	// previous branch depends on the engine's case stack.
	{Text: "CASE", Opens: true, Kind: KindCase},
	{Text: "FOR", Opens: true},
	{Text: "NEXT", Closes: true},
	{Text: "LOOP", Opens: true, Kind: KindLoop},
	{Text: "REPEAT", Closes: true},
	{Text: "UNTIL", Opens: true, Closes: true, Kind: KindUntil},
	{Text: "WHILE", Opens: true, Closes: true, Kind: KindUntil},
	{Text: "ELSE", Opens: true, Closes: true},
	{Text: "RETURN", Closes: true, Kind: KindReturn},

	{Text: "IF", Inline: true},
	{Text: "OPENSEQ", Inline: true},
	{Text: "OPENPATH", Inline: true},
	{Text: "OPEN", Inline: true},
	{Text: "MATREADU", Inline: true},
	{Text: "MATREADL", Inline: true},
	{Text: "MATREAD", Inline: true},
	{Text: "READNEXT", Inline: true},
	{Text: "READSEQ", Inline: true},
	{Text: "READLIST", Inline: true},
	{Text: "READVU", Inline: true},
	{Text: "READVL", Inline: true},
	{Text: "READV", Inline: true},
	{Text: "READU", Inline: true},
	{Text: "READL", Inline: true},
	{Text: "READT", Inline: true},
	{Text: "READ", Inline: true},
	{Text: "WRITESEQ", Inline: true},
	{Text: "WRITEVU", Inline: true},
	{Text: "WRITEV", Inline: true},
	{Text: "WRITEU", Inline: true},
	{Text: "WRITET", Inline: true},
	{Text: "WRITE", Inline: true},
	{Text: "DELETEU", Inline: true},
	{Text: "DELETE", Inline: true},
	{Text: "LOCATE", Inline: true},
	{Text: "LOCK", Inline: true},
	{Text: "FINDSTR", Inline: true},
	{Text: "FIND", Inline: true},
	{Text: "REMOVE", Inline: true},
	{Text: "INPUT", Inline: true},
	{Text: "GET", Inline: true},
	{Text: "PROCREAD", Inline: true},
	{Text: "PROCWRITE", Inline: true},
}

var (
	// Statement ends with a continuation keyword, optionally followed by a
	// statement separator.
	continuationPattern = regexp.MustCompile(`(?i)\b(THEN|ELSE|DO|LOCKED)\s*;?\s*$`)

	// UNTIL/WHILE (and one-line LOOP) terminating the loop on the same line.
	repeatPattern = regexp.MustCompile(`(?i)\bREPEAT\s*;?\s*$`)
)

func init() {
	for _, kw := range keywords {
		words := strings.Split(kw.Text, " ")
		kw.pattern = regexp.MustCompile(`(?i)^` + strings.Join(words, `\s+`) + `(?:[\s(]|$)`)
	}
}

// Keywords returns the keyword table in match order.
func Keywords() []*Keyword {
	return keywords
}

func (k *Keyword) String() string {
	return k.Text
}
