package cache

import (
	"sync"

	"cascade/internal/engine/parser"
	"cascade/internal/shared/observability"
	"cascade/internal/shared/util"
)

// Store maps canonical document paths to their most recent symbol tables.
// Last-write-wins per key; freshness decisions belong to the callers.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*parser.SymbolTable
}

func New() *Store {
	return &Store{tables: make(map[string]*parser.SymbolTable)}
}

func (s *Store) Get(document string) (*parser.SymbolTable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.tables[document]
	return table, ok
}

func (s *Store) Set(document string, table *parser.SymbolTable) {
	s.mu.Lock()
	s.tables[document] = table
	size := len(s.tables)
	s.mu.Unlock()
	observability.DocumentsIndexed.Set(float64(size))
}

func (s *Store) Delete(document string) {
	s.mu.Lock()
	delete(s.tables, document)
	size := len(s.tables)
	s.mu.Unlock()
	observability.DocumentsIndexed.Set(float64(size))
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables)
}

// Documents returns the cached document paths in sorted order.
func (s *Store) Documents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return util.SortedStringKeys(s.tables)
}

// Tables returns all cached tables, ordered by document path.
func (s *Store) Tables() []*parser.SymbolTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*parser.SymbolTable, 0, len(s.tables))
	for _, document := range util.SortedStringKeys(s.tables) {
		out = append(out, s.tables[document])
	}
	return out
}
