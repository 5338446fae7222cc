package lsp

import (
	"strings"
	"testing"

	"github.com/DSI-Solutions/pick-formatter/internal/format"
)

func TestFormatEdits(t *testing.T) {
	s := NewServer(format.Options{})

	content := strings.Join([]string{
		"FOR I = 1 TO 10",
		"     PRINT I",
		"NEXT I",
	}, "\n")

	edits, err := s.formatEdits(content, FormattingOptions{})
	if err != nil {
		t.Fatalf("formatEdits failed: %v", err)
	}

	// Lines 0 and 2 gain the margin, line 1 gains the loop-body indent.
	if len(edits) != 3 {
		t.Fatalf("got %d edits, want 3", len(edits))
	}

	first := edits[0]
	if first.Range.Start.Line != 0 || first.Range.Start.Character != 0 {
		t.Errorf("edit range starts at %d:%d, want 0:0", first.Range.Start.Line, first.Range.Start.Character)
	}
	if first.Range.End.Character != uint32(len("FOR I = 1 TO 10")) {
		t.Errorf("edit range end character = %d, want %d", first.Range.End.Character, len("FOR I = 1 TO 10"))
	}
	if first.NewText != "     FOR I = 1 TO 10" {
		t.Errorf("edit text = %q", first.NewText)
	}
}

func TestFormatEditsSkipsFormattedLines(t *testing.T) {
	s := NewServer(format.Options{})

	content := strings.Join([]string{
		"     FOR I = 1 TO 10",
		"PRINT I",
		"     NEXT I",
	}, "\n")

	edits, err := s.formatEdits(content, FormattingOptions{})
	if err != nil {
		t.Fatalf("formatEdits failed: %v", err)
	}
	if len(edits) != 1 {
		t.Fatalf("got %d edits, want 1", len(edits))
	}
	if edits[0].Range.Start.Line != 1 {
		t.Errorf("edit on line %d, want 1", edits[0].Range.Start.Line)
	}
	if edits[0].NewText != "        PRINT I" {
		t.Errorf("edit text = %q", edits[0].NewText)
	}
}

func TestFormatEditsTabSizeOverride(t *testing.T) {
	s := NewServer(format.Options{})

	content := "FOR I = 1 TO 10\nPRINT I\nNEXT I"
	edits, err := s.formatEdits(content, FormattingOptions{TabSize: 6, InsertSpaces: true})
	if err != nil {
		t.Fatalf("formatEdits failed: %v", err)
	}

	for _, e := range edits {
		if e.Range.Start.Line == 1 {
			want := strings.Repeat(" ", format.DefaultMargin+6) + "PRINT I"
			if e.NewText != want {
				t.Errorf("indented line = %q, want %q", e.NewText, want)
			}
			return
		}
	}
	t.Fatal("no edit produced for the loop body line")
}

func TestFormatEditsNestingError(t *testing.T) {
	s := NewServer(format.Options{})

	edits, err := s.formatEdits("PRINT X\nNEXT I", FormattingOptions{})
	if err == nil {
		t.Fatal("expected an error for unmatched NEXT")
	}
	if edits != nil {
		t.Fatalf("expected no edits on failure, got %d", len(edits))
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q does not name the offending line", err.Error())
	}
}

func TestDocumentStoreLifecycle(t *testing.T) {
	ds := NewDocumentStore()
	uri := "file:///src/BP/INVOICE.b"

	ds.Open(uri, 1, "X = 1")
	if !ds.IsOpen(uri) {
		t.Fatal("document should be open")
	}

	ds.Update(uri, 2, "X = 2")
	doc, ok := ds.Get(uri)
	if !ok || doc.Content != "X = 2" || doc.Version != 2 {
		t.Errorf("after update got %+v", doc)
	}

	ds.Close(uri)
	if ds.IsOpen(uri) {
		t.Fatal("document should be closed")
	}
}

func TestGetDocumentContentPrefersOpenDocument(t *testing.T) {
	s := NewServer(format.Options{})
	uri := "file:///nonexistent/FILE.b"

	if _, ok := s.getDocumentContent(uri); ok {
		t.Fatal("expected miss for unopened, nonexistent file")
	}

	s.docs.Open(uri, 1, "GOSUB MAIN")
	content, ok := s.getDocumentContent(uri)
	if !ok || content != "GOSUB MAIN" {
		t.Errorf("got (%q, %v), want the open document content", content, ok)
	}
}

func TestURIHelpers(t *testing.T) {
	if got := uriToPath("file:///src/BP/TEST.b"); got != "/src/BP/TEST.b" {
		t.Errorf("uriToPath = %q", got)
	}
	if got := uriToPath("/already/a/path"); got != "/already/a/path" {
		t.Errorf("uriToPath passthrough = %q", got)
	}
	if got := pathToURI("/src/BP/TEST.b"); got != "file:///src/BP/TEST.b" {
		t.Errorf("pathToURI = %q", got)
	}
	if got := pathToURI("file:///src/BP/TEST.b"); got != "file:///src/BP/TEST.b" {
		t.Errorf("pathToURI passthrough = %q", got)
	}
}
