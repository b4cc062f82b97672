package scanner

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"cascade/internal/core/errors"
	"cascade/internal/shared/util"

	"github.com/gobwas/glob"
)

// dirNamePattern matches "**/<name>" exclusions where <name> carries no
// separators or wildcards, i.e. a directory excluded by bare name.
var dirNamePattern = regexp.MustCompile(`^\*\*/[^/*?{}\[\]\\!]+$`)

// ExpandPatterns widens editor-style exclusions: "**/<name>" also excludes
// everything underneath a directory called <name>, and any "**/" pattern
// additionally applies at the workspace root (zero leading directories).
func ExpandPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns)*2)
	for _, p := range patterns {
		p = util.NormalizePatternPath(p)
		if p == "" {
			continue
		}
		out = append(out, p)
		if dirName := dirNamePattern.MatchString(p); dirName {
			out = append(out, p+"/**")
		}
		if rest, ok := strings.CutPrefix(p, "**/"); ok && rest != "" {
			out = append(out, rest)
			if dirNamePattern.MatchString(p) {
				out = append(out, rest+"/**")
			}
		}
	}
	return out
}

// Classifier decides which directory entries a scan visits and which leaf
// files it parses. Exclusion globs are matched against the workspace-relative
// slash path; the extension gate applies to leaf files only, so traversal
// continues beneath directories that merely fail the extension check.
type Classifier struct {
	exclude    []glob.Glob
	extensions map[string]bool
}

func NewClassifier(excludePatterns, extensions []string) (*Classifier, error) {
	expanded := ExpandPatterns(excludePatterns)
	compiled := make([]glob.Glob, 0, len(expanded))
	for _, p := range expanded {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError,
				fmt.Sprintf("invalid exclude pattern %q", p))
		}
		compiled = append(compiled, g)
	}

	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}

	return &Classifier{exclude: compiled, extensions: exts}, nil
}

// Excluded reports whether the workspace-relative path matches any
// exclusion pattern.
func (c *Classifier) Excluded(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, g := range c.exclude {
		if g.Match(relPath) {
			return true
		}
	}
	return false
}

// ShouldParse applies the stylesheet extension gate.
func (c *Classifier) ShouldParse(path string) bool {
	return c.extensions[strings.ToLower(filepath.Ext(path))]
}
