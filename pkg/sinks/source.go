package sinks

import (
	"embed"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"sync"
)

//go:embed processors.go providers.go injectors.go library.go challenges.go
var sourceFiles embed.FS

// ErrUnknownFunction is returned by Source for keys nobody registered.
var ErrUnknownFunction = errors.New("unknown sink function")

var (
	sourceOnce sync.Once
	sources    map[string]string
	sourceErr  error
)

// Source returns the Go source of the function registered under key,
// including its doc comment.
func Source(key string) (string, error) {
	sourceOnce.Do(func() {
		sources, sourceErr = parseSources()
	})
	if sourceErr != nil {
		return "", sourceErr
	}
	src, ok := sources[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrUnknownFunction)
	}
	return src, nil
}

func parseSources() (map[string]string, error) {
	entries, err := sourceFiles.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("reading embedded sources: %w", err)
	}

	out := make(map[string]string)
	fset := token.NewFileSet()
	for _, entry := range entries {
		data, err := sourceFiles.ReadFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		file, err := parser.ParseFile(fset, entry.Name(), data, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}

		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Recv != nil || !registered(fn.Name.Name) {
				continue
			}
			start := fn.Pos()
			if fn.Doc != nil {
				start = fn.Doc.Pos()
			}
			from := fset.Position(start).Offset
			to := fset.Position(fn.End()).Offset
			out[fn.Name.Name] = string(data[from:to])
		}
	}
	return out, nil
}

func registered(key string) bool {
	if _, ok := processors[key]; ok {
		return true
	}
	if _, ok := sourceProviders[key]; ok {
		return true
	}
	if _, ok := domInjectors[key]; ok {
		return true
	}
	_, ok := libraryInjectors[key]
	return ok
}
