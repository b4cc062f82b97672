// # internal/parser/types.go
package parser

import (
	"time"
)

// SymbolTable is the per-file extraction result. Document is the canonical
// path: partial files (basename starting with "_") are reported under the
// name without the underscore, matching how other files reference them.
type SymbolTable struct {
	Document  string     `json:"document"`
	Variables []Variable `json:"variables"`
	Mixins    []Mixin    `json:"mixins"`
	Functions []Function `json:"functions"`
	Imports   []Import   `json:"imports"`
	CTime     time.Time  `json:"ctime"` // source mtime at extraction, cache freshness only
}

type Variable struct {
	Name     string   `json:"name"`
	Value    string   `json:"value,omitempty"`
	Offset   int      `json:"offset"`
	Location Location `json:"location"`
}

type Mixin struct {
	Name       string   `json:"name"`
	Parameters []string `json:"parameters,omitempty"`
	Offset     int      `json:"offset"`
	Location   Location `json:"location"`
}

type Function struct {
	Name       string   `json:"name"`
	Parameters []string `json:"parameters,omitempty"`
	Offset     int      `json:"offset"`
	Location   Location `json:"location"`
}

type Import struct {
	// Filepath is the resolved target relative to the importing document's
	// directory, with the stylesheet extension appended when missing. It may
	// not exist verbatim on disk; resolution also probes the "_"-prefixed
	// sibling.
	Filepath string   `json:"filepath"`
	Raw      string   `json:"raw"`
	Dynamic  bool     `json:"dynamic"` // target built from interpolation, not statically resolvable
	CSS      bool     `json:"css"`     // plain CSS import, never inlined
	Location Location `json:"location"`
}

type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}
