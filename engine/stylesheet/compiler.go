// Package stylesheet is the reference implementation of the compilation
// engine spec.md treats as an external collaborator (§6.1): a small,
// real stylesheet language with selectors, declarations, dimension
// arithmetic, @import, and custom-function dispatch through the host.
package stylesheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/loom/protocol"
)

// Compile runs one compilation to completion. It never panics for
// well-formed inputs; callers (package host) are still expected to guard
// against unexpected panics, per spec.md's worker-isolation design note.
func Compile(req *protocol.CompileRequest, host HostCallbacks) (*protocol.CompileSuccess, *protocol.CompileFailure, error) {
	style := ParseOutputStyle(req.Style)

	source, baseDir, sourceURL, failure := readInput(req)
	if failure != nil {
		return nil, failure, nil
	}

	sheet, err := NewParser(source).ParseStyleSheet()
	if err != nil {
		return nil, failureFromError(err, sourceURL), nil
	}

	importers := effectiveImporters(req)
	ctx := &evalContext{host: host}

	var loadedURLs []string
	var blocks []string

	for _, imp := range sheet.Imports {
		resolved, err := resolveImport(imp.URL, baseDir, importers, host)
		if err != nil {
			return nil, &protocol.CompileFailure{
				Message:   fmt.Sprintf("Can't find stylesheet to import.\n%v", err),
				Span:      protocol.SourceSpan{URL: sourceURL, StartLine: imp.Pos.Line, StartColumn: imp.Pos.Column},
				Formatted: fmt.Sprintf("Error: Can't find stylesheet to import.\n  ,\n%d | @import %q;\n  '\n  %s", imp.Pos.Line, imp.URL, sourceURL),
			}, nil
		}
		loadedURLs = append(loadedURLs, resolved.url)

		css, nested, failure := compileNested(resolved.contents, resolved.url, style, importers, ctx)
		if failure != nil {
			return nil, failure, nil
		}
		loadedURLs = append(loadedURLs, nested...)
		if css != "" {
			blocks = append(blocks, css)
		}
	}

	for _, rule := range sheet.Rules {
		css, failure := renderRuleNode(rule, style, ctx, sourceURL)
		if failure != nil {
			return nil, failure, nil
		}
		blocks = append(blocks, css)
	}

	sep := "\n"
	if style == StyleCompressed {
		sep = ""
	}
	return &protocol.CompileSuccess{CSS: strings.Join(blocks, sep), LoadedURLs: loadedURLs}, nil, nil
}

// compileNested parses and renders an imported document's own rules and
// (recursively) its own imports.
func compileNested(source, url string, style OutputStyle, importers []protocol.Importer, ctx *evalContext) (string, []string, *protocol.CompileFailure) {
	sheet, err := NewParser(source).ParseStyleSheet()
	if err != nil {
		return "", nil, failureFromError(err, url)
	}

	var loadedURLs []string
	var blocks []string
	for _, imp := range sheet.Imports {
		resolved, err := resolveImport(imp.URL, filepath.Dir(strings.TrimPrefix(url, "file://")), importers, ctx.host)
		if err != nil {
			return "", nil, &protocol.CompileFailure{
				Message: fmt.Sprintf("Can't find stylesheet to import.\n%v", err),
				Span:    protocol.SourceSpan{URL: url, StartLine: imp.Pos.Line, StartColumn: imp.Pos.Column},
			}
		}
		loadedURLs = append(loadedURLs, resolved.url)
		css, nested, failure := compileNested(resolved.contents, resolved.url, style, importers, ctx)
		if failure != nil {
			return "", nil, failure
		}
		loadedURLs = append(loadedURLs, nested...)
		if css != "" {
			blocks = append(blocks, css)
		}
	}
	for _, rule := range sheet.Rules {
		css, failure := renderRuleNode(rule, style, ctx, url)
		if failure != nil {
			return "", nil, failure
		}
		blocks = append(blocks, css)
	}

	sep := "\n"
	if style == StyleCompressed {
		sep = ""
	}
	return strings.Join(blocks, sep), loadedURLs, nil
}

func renderRuleNode(rule *Rule, style OutputStyle, ctx *evalContext, url string) (string, *protocol.CompileFailure) {
	decls := make([]string, 0, len(rule.Declarations))
	for _, d := range rule.Declarations {
		v, err := ctx.evalExpr(d.Value)
		if err != nil {
			return "", failureFromError(err, url)
		}
		decls = append(decls, renderDeclaration(style, d.Property, formatValue(v)))
	}
	return renderRule(style, rule.Selector, decls), nil
}

// readInput materializes the compile's source text and, for path inputs,
// the directory used for bare filesystem @import resolution.
func readInput(req *protocol.CompileRequest) (source, baseDir, sourceURL string, failure *protocol.CompileFailure) {
	switch {
	case req.Input.Path != nil:
		path := req.Input.Path.Path
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", "", &protocol.CompileFailure{
				Message:   fmt.Sprintf("Error reading %s: %v", path, err),
				Span:      protocol.SourceSpan{URL: fileURL(path)},
				Formatted: fmt.Sprintf("Error: Error reading %s: %v", path, err),
			}
		}
		return string(data), filepath.Dir(path), fileURL(path), nil
	case req.Input.String != nil:
		url := req.Input.String.URL
		if url == "" {
			url = "stdin"
		}
		return req.Input.String.Source, "", url, nil
	default:
		return "", "", "", &protocol.CompileFailure{Message: "CompileRequest.input is not set."}
	}
}

// effectiveImporters returns the ordered importer search list: the
// input's own inline importer (if any) first, then the request-level
// importer list.
func effectiveImporters(req *protocol.CompileRequest) []protocol.Importer {
	var importers []protocol.Importer
	if req.Input.String != nil && req.Input.String.Importer != nil {
		importers = append(importers, *req.Input.String.Importer)
	}
	importers = append(importers, req.Importers...)
	return importers
}

func failureFromError(err error, url string) *protocol.CompileFailure {
	pos := Position{}
	switch e := err.(type) {
	case *ParseError:
		pos = e.Pos
	case *RuntimeError:
		pos = e.Pos
	}
	return &protocol.CompileFailure{
		Message:   err.Error(),
		Span:      protocol.SourceSpan{URL: url, StartLine: pos.Line, StartColumn: pos.Column},
		Formatted: fmt.Sprintf("Error: %s\n  at %s:%d:%d", err.Error(), url, pos.Line, pos.Column),
	}
}
