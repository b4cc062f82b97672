package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cascade/internal/core/cache"
	"cascade/internal/core/errors"
	"cascade/internal/engine/parser"
)

func TestCanonicalDocument(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"styles/_partial.scss", "styles/partial.scss"},
		{"styles/theme.scss", "styles/theme.scss"},
		{"_root.scss", "root.scss"},
	}
	for _, tc := range cases {
		if got := CanonicalDocument(tc.in); got != tc.want {
			t.Errorf("CanonicalDocument(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPartialSibling(t *testing.T) {
	if got := PartialSibling("styles/colors.scss"); got != "styles/_colors.scss" {
		t.Errorf("PartialSibling = %q, want styles/_colors.scss", got)
	}
	if got := PartialSibling("styles/_colors.scss"); got != "styles/_colors.scss" {
		t.Errorf("Expected existing partial to stay put, got %q", got)
	}
}

func TestExtractStoresUnderCanonicalDocument(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "_tokens.scss")
	writeFile(t, path, "$gap: 4px;\n")

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}

	store := cache.New()
	e := NewExtractor(parser.NewParser([]string{".scss"}), store)
	table, err := e.Extract(FileEntry{Filepath: path, Dir: root, CTime: info.ModTime()})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	wantDoc := filepath.Join(root, "tokens.scss")
	if table.Document != wantDoc {
		t.Errorf("Expected canonical document %s, got %s", wantDoc, table.Document)
	}
	if !table.CTime.Equal(info.ModTime()) {
		t.Errorf("Expected table stamped with entry mtime")
	}

	cached, ok := store.Get(wantDoc)
	if !ok {
		t.Fatal("Expected table published under canonical document")
	}
	if cached != table {
		t.Error("Expected cache to hold the extracted table pointer")
	}
}

func TestExtractReadFailure(t *testing.T) {
	root := t.TempDir()
	// Broken symlink: discovery sees a stylesheet, the read fails.
	path := filepath.Join(root, "b.scss")
	if err := os.Symlink(filepath.Join(root, "gone.scss"), path); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	e := NewExtractor(parser.NewParser([]string{".scss"}), cache.New())
	_, err := e.Extract(FileEntry{Filepath: path, Dir: root, CTime: time.Now()})
	if err == nil {
		t.Fatal("Expected read error")
	}
	if !errors.IsCode(err, errors.CodeIOError) {
		t.Errorf("Expected CodeIOError, got %v", err)
	}
}

func TestFresh(t *testing.T) {
	store := cache.New()
	e := NewExtractor(parser.NewParser([]string{".scss"}), store)

	stamp := time.Now().Truncate(time.Second)
	table := &parser.SymbolTable{Document: "a.scss", CTime: stamp}
	store.Set("a.scss", table)

	if cached, ok := e.Fresh("a.scss", stamp); !ok || cached != table {
		t.Error("Expected equal mtime to count as fresh")
	}
	if cached, ok := e.Fresh("a.scss", stamp.Add(-time.Second)); !ok || cached != table {
		t.Error("Expected older on-disk mtime to count as fresh")
	}
	if _, ok := e.Fresh("a.scss", stamp.Add(time.Second)); ok {
		t.Error("Expected strictly newer on-disk mtime to invalidate")
	}
	if _, ok := e.Fresh("missing.scss", stamp); ok {
		t.Error("Expected unknown document to be stale")
	}
}
