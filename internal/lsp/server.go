package lsp

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"strings"

	"go.lsp.dev/jsonrpc2"

	"github.com/DSI-Solutions/pick-formatter/internal/format"
)

// Server exposes the formatting engine as an LSP document formatter
type Server struct {
	docs *DocumentStore
	opts format.Options
	conn jsonrpc2.Conn
}

// NewServer creates a new LSP server using opts as the base layout; the
// client's tabSize overrides the indent width per request.
func NewServer(opts format.Options) *Server {
	return &Server{
		docs: NewDocumentStore(),
		opts: opts,
	}
}

// Serve starts the LSP server on the given reader/writer
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)
	s.conn = conn

	conn.Go(ctx, s.handler)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-conn.Done():
		return conn.Err()
	}
}

func (s *Server) handler(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	log.Printf("LSP request: %s", req.Method())

	switch req.Method() {
	case "initialize":
		return s.handleInitialize(ctx, reply, req)
	case "initialized":
		return reply(ctx, nil, nil)
	case "shutdown":
		return reply(ctx, nil, nil)
	case "exit":
		return nil
	case "textDocument/formatting":
		return s.handleFormatting(ctx, reply, req)
	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, reply, req)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, reply, req)
	case "textDocument/didClose":
		return s.handleDidClose(ctx, reply, req)
	default:
		// Method not found
		return reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.MethodNotFound,
			Message: "method not supported: " + req.Method(),
		})
	}
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    TextDocumentSyncKindFull,
			},
			DocumentFormattingProvider: true,
		},
		ServerInfo: &ServerInfo{
			Name:    "pick-formatter",
			Version: "0.1.0",
		},
	}
	return reply(ctx, result, nil)
}

func (s *Server) handleFormatting(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DocumentFormattingParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, &jsonrpc2.Error{
			Code:    jsonrpc2.InvalidParams,
			Message: err.Error(),
		})
	}

	uri := params.TextDocument.URI
	content, ok := s.getDocumentContent(uri)
	if !ok {
		return reply(ctx, nil, nil)
	}

	edits, err := s.formatEdits(content, params.Options)
	if err != nil {
		// The document is left untouched; the failure is surfaced to the
		// user instead of the protocol layer.
		log.Printf("formatting %s failed: %v", uri, err)
		s.showMessage(ctx, MessageTypeError, "pick-formatter: "+err.Error())
		return reply(ctx, nil, nil)
	}

	log.Printf("formatting %s: %d edits", uri, len(edits))
	return reply(ctx, edits, nil)
}

// formatEdits runs the engine over content and converts changed lines into
// whole-line LSP text edits.
func (s *Server) formatEdits(content string, fopts FormattingOptions) ([]TextEdit, error) {
	opts := s.opts
	if fopts.TabSize > 0 {
		opts.Indent = int(fopts.TabSize)
	}

	res, err := format.Format(content, opts)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(content, "\n")
	edits := make([]TextEdit, 0, len(res.Edits()))
	for _, e := range res.Edits() {
		edits = append(edits, TextEdit{
			Range: Range{
				Start: Position{Line: uint32(e.Line), Character: 0},
				End:   Position{Line: uint32(e.Line), Character: uint32(len(lines[e.Line]))},
			},
			NewText: e.Text,
		})
	}
	return edits, nil
}

func (s *Server) showMessage(ctx context.Context, mt MessageType, message string) {
	if s.conn == nil {
		return
	}
	if err := s.conn.Notify(ctx, "window/showMessage", ShowMessageParams{
		Type:    mt,
		Message: message,
	}); err != nil {
		log.Printf("showMessage failed: %v", err)
	}
}

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	doc := params.TextDocument
	s.docs.Open(doc.URI, doc.Version, doc.Text)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	if len(params.ContentChanges) > 0 {
		// Full sync mode - just take the last content
		last := params.ContentChanges[len(params.ContentChanges)-1]
		s.docs.Update(params.TextDocument.URI, params.TextDocument.Version, last.Text)
	}
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	s.docs.Close(params.TextDocument.URI)
	return reply(ctx, nil, nil)
}

func (s *Server) getDocumentContent(uri string) (string, bool) {
	// Check open documents first
	if doc, ok := s.docs.Get(uri); ok {
		return doc.Content, true
	}

	// Fall back to reading from disk
	path := uriToPath(uri)
	content, err := readFile(path)
	if err != nil {
		log.Printf("failed to read file %s: %v", path, err)
		return "", false
	}
	return content, true
}

// readWriteCloser wraps reader and writer into a ReadWriteCloser
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	return nil
}
