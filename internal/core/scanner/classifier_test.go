package scanner

import (
	"slices"
	"testing"
)

func TestExpandPatternsDirName(t *testing.T) {
	expanded := ExpandPatterns([]string{"**/vendor"})
	want := []string{"**/vendor", "**/vendor/**", "vendor", "vendor/**"}
	for _, p := range want {
		if !slices.Contains(expanded, p) {
			t.Errorf("Expected expansion to contain %q, got %v", p, expanded)
		}
	}
}

func TestExpandPatternsLeavesOtherPatternsAlone(t *testing.T) {
	expanded := ExpandPatterns([]string{"build/*.scss"})
	if len(expanded) != 1 || expanded[0] != "build/*.scss" {
		t.Errorf("Expected pattern untouched, got %v", expanded)
	}
}

func TestExpandPatternsSkipsEmpty(t *testing.T) {
	if got := ExpandPatterns([]string{"", "  "}); len(got) != 0 {
		t.Errorf("Expected no patterns, got %v", got)
	}
}

func TestExcludedDirectoryByName(t *testing.T) {
	c, err := NewClassifier([]string{"**/vendor"}, []string{".scss"})
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}

	excluded := []string{
		"vendor",
		"vendor/a.scss",
		"pkg/vendor",
		"pkg/vendor/deep/a.scss",
	}
	for _, p := range excluded {
		if !c.Excluded(p) {
			t.Errorf("Expected %q to be excluded", p)
		}
	}

	included := []string{
		"not-vendor/a.scss",
		"vendor-extra/a.scss",
		"src/a.scss",
	}
	for _, p := range included {
		if c.Excluded(p) {
			t.Errorf("Expected %q to be included", p)
		}
	}
}

func TestExcludedGlobDoesNotCrossSeparators(t *testing.T) {
	c, err := NewClassifier([]string{"build/*.scss"}, []string{".scss"})
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	if !c.Excluded("build/a.scss") {
		t.Error("Expected build/a.scss to be excluded")
	}
	if c.Excluded("build/nested/a.scss") {
		t.Error("Expected single star not to cross directory separators")
	}
}

func TestShouldParse(t *testing.T) {
	c, err := NewClassifier(nil, []string{".scss", ".css"})
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	if !c.ShouldParse("a/Theme.SCSS") {
		t.Error("Expected case-insensitive extension match")
	}
	if !c.ShouldParse("main.css") {
		t.Error("Expected .css to be parseable")
	}
	if c.ShouldParse("readme.md") {
		t.Error("Expected .md to be rejected")
	}
}

func TestNewClassifierRejectsInvalidPattern(t *testing.T) {
	if _, err := NewClassifier([]string{"["}, []string{".scss"}); err == nil {
		t.Error("Expected error for malformed glob pattern")
	}
}
