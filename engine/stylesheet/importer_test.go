package stylesheet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/loom/protocol"
)

func TestTryFilesystemImportExactMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.style")
	if err := os.WriteFile(path, []byte("x{y:1}"), 0o644); err != nil {
		t.Fatal(err)
	}
	r, ok := tryFilesystemImport(dir, "a.style")
	if !ok {
		t.Fatal("want ok")
	}
	if r.contents != "x{y:1}" {
		t.Errorf("contents = %q", r.contents)
	}
}

func TestTryFilesystemImportCSSSuffix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.css")
	if err := os.WriteFile(path, []byte("x{y:1}"), 0o644); err != nil {
		t.Fatal(err)
	}
	r, ok := tryFilesystemImport(dir, "a")
	if !ok {
		t.Fatal("want ok")
	}
	if r.contents != "x{y:1}" {
		t.Errorf("contents = %q", r.contents)
	}
}

func TestTryFilesystemImportNotFound(t *testing.T) {
	dir := t.TempDir()
	if _, ok := tryFilesystemImport(dir, "missing"); ok {
		t.Fatal("want not ok")
	}
}

func TestResolveImportViaImporterPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.css"), []byte("a{b:1}"), 0o644); err != nil {
		t.Fatal(err)
	}
	importers := []protocol.Importer{{Path: &dir}}
	r, err := resolveImport("x", "", importers, fakeHost{})
	if err != nil {
		t.Fatalf("resolveImport: %v", err)
	}
	if r.contents != "a{b:1}" {
		t.Errorf("contents = %q", r.contents)
	}
}

func TestResolveImportViaFileImporter(t *testing.T) {
	dir := t.TempDir()
	fpath := filepath.Join(dir, "y.css")
	if err := os.WriteFile(fpath, []byte("a{b:2}"), 0o644); err != nil {
		t.Fatal(err)
	}
	fid := uint32(5)
	importers := []protocol.Importer{{FileImporterID: &fid}}
	host := fakeHost{}
	r, err := resolveImport("y", "", importers, fileImportHost{fid: fid, url: fileURL(fpath)})
	if err != nil {
		t.Fatalf("resolveImport: %v", err)
	}
	if r.contents != "a{b:2}" {
		t.Errorf("contents = %q", r.contents)
	}
	_ = host
}

func TestResolveImportFallsThroughOnNotFound(t *testing.T) {
	id1, id2 := uint32(1), uint32(2)
	importers := []protocol.Importer{
		{ImporterID: &id1},
		{ImporterID: &id2},
	}
	host := fakeHost{
		canonicalize: func(gotID uint32, url string, fromImport bool) (string, bool, error) {
			if gotID == id1 {
				return "", false, nil
			}
			return "u:" + url, true, nil
		},
		load: func(gotID uint32, canonicalURL string) (protocol.ImportResult, bool, error) {
			return protocol.ImportResult{Contents: "ok"}, true, nil
		},
	}
	r, err := resolveImport("z", "", importers, host)
	if err != nil {
		t.Fatalf("resolveImport: %v", err)
	}
	if r.contents != "ok" {
		t.Errorf("contents = %q", r.contents)
	}
}

func TestResolveImportNotFoundAnywhere(t *testing.T) {
	_, err := resolveImport("nope", t.TempDir(), nil, fakeHost{})
	if err == nil {
		t.Fatal("want error")
	}
}

func TestResolveImportPropagatesHostError(t *testing.T) {
	id := uint32(9)
	importers := []protocol.Importer{{ImporterID: &id}}
	wantErr := errors.New("host exploded")
	host := fakeHost{
		canonicalize: func(gotID uint32, url string, fromImport bool) (string, bool, error) {
			return "", false, wantErr
		},
	}
	_, err := resolveImport("w", "", importers, host)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

// fileImportHost answers FileImport for a single registered importer id,
// otherwise behaves like a zero-value fakeHost.
type fileImportHost struct {
	fid uint32
	url string
}

func (f fileImportHost) FunctionCall(name string, args []protocol.Value) (protocol.Value, error) {
	return protocol.Value{}, nil
}
func (f fileImportHost) Canonicalize(id uint32, url string, fromImport bool) (string, bool, error) {
	return "", false, nil
}
func (f fileImportHost) Load(id uint32, canonicalURL string) (protocol.ImportResult, bool, error) {
	return protocol.ImportResult{}, false, nil
}
func (f fileImportHost) FileImport(id uint32, url string, fromImport bool) (string, bool, error) {
	if id == f.fid {
		return f.url, true, nil
	}
	return "", false, nil
}
func (f fileImportHost) Log(level protocol.LogLevel, message string, span *protocol.SourceSpan, stackTrace string) {
}
