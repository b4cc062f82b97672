// # internal/parser/parser.go
package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"cascade/internal/core/errors"
	"cascade/internal/shared/observability"
)

// Parser routes documents by extension: ".css" to the tree-sitter grammar,
// every other configured extension to the SCSS raw-text extractor.
type Parser struct {
	extensions map[string]string // ext -> syntax
	scss       *SCSSExtractor
	css        *CSSExtractor
}

func NewParser(extensions []string) *Parser {
	if len(extensions) == 0 {
		extensions = []string{".scss"}
	}
	p := &Parser{extensions: make(map[string]string, len(extensions))}
	primary := ""
	for _, ext := range extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if normalized == ".css" {
			p.extensions[normalized] = "css"
			continue
		}
		p.extensions[normalized] = "scss"
		if primary == "" {
			primary = normalized
		}
	}
	if primary == "" {
		primary = ".scss"
	}
	p.scss = NewSCSSExtractor(primary)
	if p.extensions[".css"] == "css" {
		p.css = NewCSSExtractor()
	}
	return p
}

func (p *Parser) ParseFile(path string, content []byte) (*SymbolTable, error) {
	syntax := p.detectSyntax(path)
	if syntax == "" {
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("unsupported stylesheet: %s", path))
	}

	started := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(syntax).Observe(time.Since(started).Seconds())
	}()

	if syntax == "css" {
		return p.css.Extract(content, path)
	}
	return p.scss.ExtractRaw(content, path)
}

func (p *Parser) detectSyntax(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return p.extensions[ext]
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.detectSyntax(path) != ""
}

// PrimaryExtension is the suffix appended to extension-less import targets.
func (p *Parser) PrimaryExtension() string {
	return p.scss.ext
}

func (p *Parser) SupportedExtensions() []string {
	out := make([]string, 0, len(p.extensions))
	for ext := range p.extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
