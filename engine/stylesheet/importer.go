package stylesheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/loom/protocol"
)

// HostCallbacks is the full set of blocking callbacks a compilation may
// need. It is defined structurally here (rather than imported from
// package engine) so this package has no dependency on engine, which
// depends on this package to build its default Engine.
type HostCallbacks interface {
	FunctionCaller
	Canonicalize(importerID uint32, url string, fromImport bool) (canonicalURL string, found bool, err error)
	Load(importerID uint32, canonicalURL string) (protocol.ImportResult, bool, error)
	FileImport(importerID uint32, url string, fromImport bool) (fileURL string, found bool, err error)
	Log(level protocol.LogLevel, message string, span *protocol.SourceSpan, stackTrace string)
}

// resolvedImport is the outcome of successfully resolving one @import URL.
type resolvedImport struct {
	contents string
	url      string // canonical / file URL recorded in loaded_urls
}

// resolveImport tries importers in order: a filesystem base directory
// (the PathInput's directory, or the importing document's directory for a
// nested import; no host round trip per spec.md §6.1), then each entry of
// importers in turn.
func resolveImport(url string, baseDir string, importers []protocol.Importer, host HostCallbacks) (*resolvedImport, error) {
	if baseDir != "" {
		if r, ok := tryFilesystemImport(baseDir, url); ok {
			return r, nil
		}
	}

	for _, imp := range importers {
		switch {
		case imp.Path != nil:
			if r, ok := tryFilesystemImport(*imp.Path, url); ok {
				return r, nil
			}
		case imp.ImporterID != nil:
			canonical, found, err := host.Canonicalize(*imp.ImporterID, url, true)
			if err != nil {
				return nil, err
			}
			if !found {
				continue
			}
			result, found, err := host.Load(*imp.ImporterID, canonical)
			if err != nil {
				return nil, err
			}
			if !found {
				continue
			}
			return &resolvedImport{contents: result.Contents, url: canonical}, nil
		case imp.FileImporterID != nil:
			fileURL, found, err := host.FileImport(*imp.FileImporterID, url, true)
			if err != nil {
				return nil, err
			}
			if !found {
				continue
			}
			contents, err := os.ReadFile(strings.TrimPrefix(fileURL, "file://"))
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", fileURL, err)
			}
			return &resolvedImport{contents: string(contents), url: fileURL}, nil
		}
	}

	return nil, fmt.Errorf("Can't find stylesheet to import.")
}

// tryFilesystemImport looks for url directly under dir, then with a .css
// suffix, matching the common "partial or bare name" resolution shape of
// filesystem importers.
func tryFilesystemImport(dir, url string) (*resolvedImport, bool) {
	candidates := []string{
		filepath.Join(dir, url),
		filepath.Join(dir, url+".css"),
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return &resolvedImport{contents: string(data), url: fileURL(path)}, true
		}
	}
	return nil, false
}

// fileURL renders a filesystem path as a file: URI, as required for the
// missing-file failure span in spec.md §4.C step 4.
func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs)
}
