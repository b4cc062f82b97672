// # internal/parser/scss.go
package parser

import (
	"bytes"
	"path/filepath"
	"strings"
)

// SCSSExtractor is a raw-text extractor for SCSS sources. The CSS grammar
// binding cannot accept SCSS syntax ($-variables, mixin bodies,
// interpolation), so declarations are pulled out by a character scanner that
// honors comments, string literals, and nesting.
type SCSSExtractor struct {
	ext string
}

func NewSCSSExtractor(ext string) *SCSSExtractor {
	if ext == "" {
		ext = ".scss"
	}
	return &SCSSExtractor{ext: ext}
}

func (e *SCSSExtractor) ExtractRaw(source []byte, filePath string) (*SymbolTable, error) {
	s := &scssScanner{
		src: source,
		ext: e.ext,
		dir: filepath.Dir(filePath),
		table: &SymbolTable{
			Document:  filePath,
			Variables: make([]Variable, 0),
			Mixins:    make([]Mixin, 0),
			Functions: make([]Function, 0),
			Imports:   make([]Import, 0),
		},
	}
	s.run()
	return s.table, nil
}

type scssScanner struct {
	src   []byte
	pos   int
	line  int // 0-based
	col   int // 0-based
	paren int
	ext   string
	dir   string
	table *SymbolTable
}

func (s *scssScanner) run() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '/' && s.peek(1) == '/':
			s.skipLineComment()
		case c == '/' && s.peek(1) == '*':
			s.skipBlockComment()
		case c == '"' || c == '\'':
			s.skipString(c)
		case c == '(':
			s.paren++
			s.advance()
		case c == ')':
			if s.paren > 0 {
				s.paren--
			}
			s.advance()
		case c == '$' && s.paren == 0:
			s.scanVariable()
		case c == '@':
			s.scanAtRule()
		default:
			s.advance()
		}
	}
}

func (s *scssScanner) peek(n int) byte {
	if s.pos+n >= len(s.src) {
		return 0
	}
	return s.src[s.pos+n]
}

func (s *scssScanner) advance() {
	if s.pos >= len(s.src) {
		return
	}
	if s.src[s.pos] == '\n' {
		s.line++
		s.col = 0
	} else {
		s.col++
	}
	s.pos++
}

func (s *scssScanner) location() Location {
	return Location{Line: s.line + 1, Column: s.col + 1}
}

func (s *scssScanner) skipLineComment() {
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.advance()
	}
}

func (s *scssScanner) skipBlockComment() {
	s.advance()
	s.advance()
	for s.pos < len(s.src) {
		if s.src[s.pos] == '*' && s.peek(1) == '/' {
			s.advance()
			s.advance()
			return
		}
		s.advance()
	}
}

// skipString consumes a quoted literal including the closing quote.
func (s *scssScanner) skipString(quote byte) {
	s.advance()
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' {
			s.advance()
			s.advance()
			continue
		}
		s.advance()
		if c == quote {
			return
		}
	}
}

// readString consumes a quoted literal and returns its content.
func (s *scssScanner) readString(quote byte) string {
	s.advance()
	var b strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' && s.pos+1 < len(s.src) {
			b.WriteByte(s.peek(1))
			s.advance()
			s.advance()
			continue
		}
		s.advance()
		if c == quote {
			break
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func (s *scssScanner) readIdent() string {
	start := s.pos
	for s.pos < len(s.src) && isIdentByte(s.src[s.pos]) {
		s.advance()
	}
	return string(s.src[start:s.pos])
}

func (s *scssScanner) skipSpace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\r', '\n':
			s.advance()
		default:
			return
		}
	}
}

// scanVariable handles "$name: value". A bare "$name" with no following
// colon is a usage, not a declaration, and is skipped.
func (s *scssScanner) scanVariable() {
	offset := s.pos
	loc := s.location()
	s.advance()
	name := s.readIdent()
	if name == "" {
		return
	}
	mark := s.pos
	markLine, markCol := s.line, s.col
	s.skipSpace()
	if s.pos >= len(s.src) || s.src[s.pos] != ':' {
		s.pos, s.line, s.col = mark, markLine, markCol
		return
	}
	s.advance()
	value := s.readValue()
	s.table.Variables = append(s.table.Variables, Variable{
		Name:     "$" + name,
		Value:    value,
		Offset:   offset,
		Location: loc,
	})
}

// readValue consumes a declaration value up to the terminating ";" or a
// closing "}" at paren depth zero. The terminator is left in place for "}".
func (s *scssScanner) readValue() string {
	start := s.pos
	depth := 0
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '/' && s.peek(1) == '/':
			s.skipLineComment()
			continue
		case c == '/' && s.peek(1) == '*':
			s.skipBlockComment()
			continue
		case c == '"' || c == '\'':
			s.skipString(c)
			continue
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == ';' && depth == 0:
			value := strings.TrimSpace(string(s.src[start:s.pos]))
			s.advance()
			return value
		case c == '}' && depth == 0:
			return strings.TrimSpace(string(s.src[start:s.pos]))
		}
		s.advance()
	}
	return strings.TrimSpace(string(s.src[start:s.pos]))
}

func (s *scssScanner) scanAtRule() {
	offset := s.pos
	loc := s.location()
	s.advance()
	word := s.readIdent()
	switch word {
	case "mixin":
		s.scanCallable(offset, loc, true)
	case "function":
		s.scanCallable(offset, loc, false)
	case "import":
		s.scanImportList(loc)
	case "use", "forward":
		s.scanModuleRef(loc)
	}
}

func (s *scssScanner) scanCallable(offset int, loc Location, mixin bool) {
	s.skipSpace()
	name := s.readIdent()
	if name == "" {
		return
	}
	var params []string
	s.skipSpace()
	if s.pos < len(s.src) && s.src[s.pos] == '(' {
		params = s.readParameters()
	}
	if mixin {
		s.table.Mixins = append(s.table.Mixins, Mixin{Name: name, Parameters: params, Offset: offset, Location: loc})
	} else {
		s.table.Functions = append(s.table.Functions, Function{Name: name, Parameters: params, Offset: offset, Location: loc})
	}
}

// readParameters consumes "(...)" and splits on top-level commas.
func (s *scssScanner) readParameters() []string {
	s.advance()
	start := s.pos
	depth := 0
	params := make([]string, 0, 4)
	flush := func(end int) {
		p := strings.TrimSpace(string(s.src[start:end]))
		if p != "" {
			params = append(params, p)
		}
	}
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '"' || c == '\'':
			s.skipString(c)
			continue
		case c == '(':
			depth++
		case c == ')':
			if depth == 0 {
				flush(s.pos)
				s.advance()
				return params
			}
			depth--
		case c == ',' && depth == 0:
			flush(s.pos)
			s.advance()
			start = s.pos
			continue
		}
		s.advance()
	}
	flush(s.pos)
	return params
}

// scanImportList handles "@import a, b, c;" with one record per target.
func (s *scssScanner) scanImportList(loc Location) {
	for s.pos < len(s.src) {
		s.skipSpace()
		if s.pos >= len(s.src) {
			return
		}
		c := s.src[s.pos]
		switch {
		case c == ';':
			s.advance()
			return
		case c == '{' || c == '}':
			return
		case c == ',':
			s.advance()
		case c == '"' || c == '\'':
			target := s.readString(c)
			s.addImport(target, loc, false)
		case c == 'u' && bytes.HasPrefix(s.src[s.pos:], []byte("url(")):
			s.addImport(s.readURL(), loc, true)
		case c == '#' && s.peek(1) == '{':
			s.addImport(s.readInterpolated(), loc, false)
		default:
			// Media query or other trailing tokens; skip to terminator.
			s.advance()
		}
	}
}

func (s *scssScanner) scanModuleRef(loc Location) {
	s.skipSpace()
	if s.pos >= len(s.src) {
		return
	}
	c := s.src[s.pos]
	if c != '"' && c != '\'' {
		return
	}
	target := s.readString(c)
	s.addImport(target, loc, false)
}

func (s *scssScanner) readURL() string {
	for s.pos < len(s.src) && s.src[s.pos] != '(' {
		s.advance()
	}
	s.advance()
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != ')' {
		s.advance()
	}
	raw := strings.TrimSpace(string(s.src[start:s.pos]))
	s.advance()
	return strings.Trim(raw, "\"'")
}

// readInterpolated consumes "#{...}" and whatever is glued to it up to a
// list separator, producing the raw dynamic target.
func (s *scssScanner) readInterpolated() string {
	start := s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == ',' || c == ';' || c == ' ' || c == '\n' || c == '\t' {
			break
		}
		s.advance()
	}
	return string(s.src[start:s.pos])
}

func (s *scssScanner) addImport(raw string, loc Location, isURL bool) {
	target := strings.TrimSpace(raw)
	if target == "" {
		return
	}
	imp := Import{Raw: raw, Location: loc}
	switch {
	case strings.Contains(target, "#{"):
		imp.Dynamic = true
		imp.Filepath = target
	case isURL || IsCSSTarget(target):
		imp.CSS = true
		imp.Filepath = target
	default:
		if filepath.Ext(target) == "" {
			target += s.ext
		}
		imp.Filepath = filepath.Join(s.dir, target)
	}
	s.table.Imports = append(s.table.Imports, imp)
}

// IsCSSTarget reports whether an import target is a plain CSS reference,
// which the ecosystem never inlines.
func IsCSSTarget(target string) bool {
	return strings.HasSuffix(target, ".css") ||
		strings.HasPrefix(target, "http:") ||
		strings.HasPrefix(target, "https:") ||
		strings.HasPrefix(target, "//")
}
