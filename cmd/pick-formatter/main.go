package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/DSI-Solutions/pick-formatter/internal/catalog"
	"github.com/DSI-Solutions/pick-formatter/internal/format"
	"github.com/DSI-Solutions/pick-formatter/internal/lsp"
	"github.com/DSI-Solutions/pick-formatter/internal/watcher"
)

func main() {
	var (
		stdio    bool
		rootPath string
		logFile  string
		debug    bool
		write    bool
		check    bool
		showDiff bool
		watch    bool
		indent   int
		margin   int
	)

	flag.BoolVar(&stdio, "stdio", false, "Run as an LSP server on stdin/stdout")
	flag.StringVar(&rootPath, "root", "", "Root path of the BASIC sources (defaults to current directory)")
	flag.StringVar(&logFile, "log", "", "Log file path (defaults to stderr)")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&write, "write", false, "Rewrite files in place instead of printing to stdout")
	flag.BoolVar(&check, "check", false, "List files that need formatting and exit non-zero")
	flag.BoolVar(&showDiff, "diff", false, "Print unified diffs instead of rewriting")
	flag.BoolVar(&watch, "watch", false, "Keep running and reformat files as they change")
	flag.IntVar(&indent, "indent", format.DefaultIndent, "Spaces per nesting level")
	flag.IntVar(&margin, "margin", format.DefaultMargin, "Width of the label margin column")
	flag.Parse()

	// Default to current directory
	if rootPath == "" {
		var err error
		rootPath, err = os.Getwd()
		if err != nil {
			log.Fatalf("failed to get current directory: %v", err)
		}
	}

	// Setup logging
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	if debug {
		log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	}

	opts := format.Options{Margin: margin, Indent: indent}

	switch {
	case stdio:
		runServer(opts)
	case flag.NArg() > 0:
		os.Exit(formatFiles(flag.Args(), opts, write, check, showDiff))
	default:
		os.Exit(runCatalog(rootPath, opts, write, check, watch))
	}
}

// runServer serves LSP requests over stdio until the client disconnects or
// a shutdown signal arrives.
func runServer(opts format.Options) {
	log.Println("pick-formatter LSP server starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	server := lsp.NewServer(opts)
	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("LSP server error: %v", err)
	}

	log.Println("pick-formatter shutdown complete")
}

// formatFiles processes explicitly named files. Without -write, -check or
// -diff the formatted text goes to stdout.
func formatFiles(paths []string, opts format.Options, write, check, showDiff bool) int {
	exit := 0

	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			exit = 1
			continue
		}

		res, err := format.Format(string(content), opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			exit = 1
			continue
		}

		switch {
		case showDiff:
			if !res.Changed() {
				continue
			}
			diff := difflib.UnifiedDiff{
				A:        difflib.SplitLines(string(content)),
				B:        difflib.SplitLines(res.Text()),
				FromFile: path,
				ToFile:   path + " (formatted)",
				Context:  3,
			}
			text, err := difflib.GetUnifiedDiffString(diff)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				exit = 1
				continue
			}
			fmt.Print(text)

		case check:
			if res.Changed() {
				fmt.Println(path)
				exit = 1
			}

		case write:
			if !res.Changed() {
				continue
			}
			info, err := os.Stat(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				exit = 1
				continue
			}
			if err := os.WriteFile(path, []byte(res.Text()), info.Mode().Perm()); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				exit = 1
				continue
			}

		default:
			fmt.Print(res.Text())
		}
	}

	return exit
}

// runCatalog formats or checks every BASIC file under the root, optionally
// staying resident and reprocessing files as they change.
func runCatalog(rootPath string, opts format.Options, write, check, watch bool) int {
	cat := catalog.New(rootPath, opts, write)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := cat.Build(ctx); err != nil {
		log.Printf("failed to build catalog: %v", err)
		return 1
	}

	for _, e := range cat.Entries() {
		switch e.Status {
		case catalog.StatusDirty:
			fmt.Println(e.Path)
		case catalog.StatusRewritten:
			log.Printf("rewrote %s", e.Path)
		case catalog.StatusFailed:
			fmt.Fprintf(os.Stderr, "%s: %v\n", e.Path, e.Err)
		}
	}

	if watch {
		w, err := watcher.New(rootPath, func(changed, removed []string) {
			for _, path := range removed {
				cat.RemoveFile(path)
			}
			for _, path := range changed {
				if err := cat.UpdateFile(path); err != nil {
					log.Printf("failed to update file %s: %v", path, err)
				}
			}
		})
		if err != nil {
			log.Printf("failed to create watcher: %v", err)
			return 1
		}
		defer w.Close()

		if err := w.Start(); err != nil {
			log.Printf("failed to start watcher: %v", err)
			return 1
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("shutdown signal received")
		return 0
	}

	_, dirty, _, failed := cat.Counts()
	if failed > 0 || (check && dirty > 0) {
		return 1
	}
	return 0
}
