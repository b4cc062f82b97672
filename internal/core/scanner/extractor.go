package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"cascade/internal/core/cache"
	"cascade/internal/core/errors"
	"cascade/internal/engine/parser"
)

// CanonicalDocument rewrites partial basenames: a file on disk named
// "_foo.scss" is stored and reported as "foo.scss", matching how other
// stylesheets reference it.
func CanonicalDocument(path string) string {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "_") {
		return path
	}
	return filepath.Join(filepath.Dir(path), strings.TrimPrefix(base, "_"))
}

// PartialSibling inserts the partial underscore before the basename.
func PartialSibling(path string) string {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "_") {
		return path
	}
	return filepath.Join(filepath.Dir(path), "_"+base)
}

// Extractor turns one on-disk stylesheet into a cached symbol table.
type Extractor struct {
	parser *parser.Parser
	store  *cache.Store
}

func NewExtractor(p *parser.Parser, store *cache.Store) *Extractor {
	return &Extractor{parser: p, store: store}
}

// Extract reads and parses the entry, stamps the table with the entry's
// modification time, and publishes it under the canonical document path.
// Read and parse failures propagate; the caller decides whether that drops
// the file or aborts the scan.
func (e *Extractor) Extract(entry FileEntry) (*parser.SymbolTable, error) {
	content, err := os.ReadFile(entry.Filepath)
	if err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeIOError, "read stylesheet"),
			errors.CtxPath, entry.Filepath)
	}

	document := CanonicalDocument(entry.Filepath)
	table, err := e.parser.ParseFile(document, content)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, entry.Filepath)
	}

	table.CTime = entry.CTime
	e.store.Set(document, table)
	return table, nil
}

// Fresh returns the cached table for document unless the on-disk
// modification time is strictly newer than the cached one.
func (e *Extractor) Fresh(document string, ctime time.Time) (*parser.SymbolTable, bool) {
	cached, ok := e.store.Get(document)
	if !ok || cached.CTime.Before(ctime) {
		return nil, false
	}
	return cached, true
}
