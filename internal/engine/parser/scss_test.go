package parser

import (
	"testing"
)

func extractSCSS(t *testing.T, source string) *SymbolTable {
	t.Helper()
	table, err := NewSCSSExtractor(".scss").ExtractRaw([]byte(source), "styles/theme.scss")
	if err != nil {
		t.Fatalf("ExtractRaw failed: %v", err)
	}
	return table
}

func TestExtractVariables(t *testing.T) {
	table := extractSCSS(t, `$primary: #336699;
$spacing: 8px !default;
$map: (small: 4px, large: 16px);
`)
	if len(table.Variables) != 3 {
		t.Fatalf("Expected 3 variables, got %d", len(table.Variables))
	}
	if table.Variables[0].Name != "$primary" || table.Variables[0].Value != "#336699" {
		t.Errorf("Unexpected first variable: %+v", table.Variables[0])
	}
	if table.Variables[1].Value != "8px !default" {
		t.Errorf("Expected !default to be preserved in value, got %q", table.Variables[1].Value)
	}
	if table.Variables[2].Value != "(small: 4px, large: 16px)" {
		t.Errorf("Expected map value to survive nested commas, got %q", table.Variables[2].Value)
	}
	if table.Variables[1].Location.Line != 2 {
		t.Errorf("Expected $spacing on line 2, got %d", table.Variables[1].Location.Line)
	}
}

func TestExtractNestedVariable(t *testing.T) {
	table := extractSCSS(t, `.card {
  $radius: 4px;
  border-radius: $radius;
}
`)
	if len(table.Variables) != 1 {
		t.Fatalf("Expected 1 variable, got %d", len(table.Variables))
	}
	if table.Variables[0].Name != "$radius" {
		t.Errorf("Expected $radius, got %s", table.Variables[0].Name)
	}
}

func TestVariableUsageIsNotADeclaration(t *testing.T) {
	table := extractSCSS(t, `.box { margin: $spacing; }`)
	if len(table.Variables) != 0 {
		t.Errorf("Expected no declarations for a variable usage, got %d", len(table.Variables))
	}
}

func TestVariableInsideParensIgnored(t *testing.T) {
	table := extractSCSS(t, `@mixin pad($x: 2px) { padding: $x; }
.a { width: calc(100% - $gap); }
`)
	if len(table.Variables) != 0 {
		t.Errorf("Expected no variables from parameter defaults or calc args, got %+v", table.Variables)
	}
}

func TestExtractMixinsAndFunctions(t *testing.T) {
	table := extractSCSS(t, `@mixin shadow($depth, $color: rgba(0, 0, 0, 0.2)) {
  box-shadow: 0 $depth $depth $color;
}

@mixin reset {
  margin: 0;
}

@function double($n) {
  @return $n * 2;
}
`)
	if len(table.Mixins) != 2 {
		t.Fatalf("Expected 2 mixins, got %d", len(table.Mixins))
	}
	shadow := table.Mixins[0]
	if shadow.Name != "shadow" {
		t.Errorf("Expected mixin shadow, got %s", shadow.Name)
	}
	if len(shadow.Parameters) != 2 {
		t.Fatalf("Expected 2 parameters, got %v", shadow.Parameters)
	}
	if shadow.Parameters[1] != "$color: rgba(0, 0, 0, 0.2)" {
		t.Errorf("Expected default with nested commas intact, got %q", shadow.Parameters[1])
	}
	if len(table.Mixins[1].Parameters) != 0 {
		t.Errorf("Expected parameterless mixin, got %v", table.Mixins[1].Parameters)
	}

	if len(table.Functions) != 1 {
		t.Fatalf("Expected 1 function, got %d", len(table.Functions))
	}
	if table.Functions[0].Name != "double" || len(table.Functions[0].Parameters) != 1 {
		t.Errorf("Unexpected function: %+v", table.Functions[0])
	}
}

func TestExtractImports(t *testing.T) {
	table := extractSCSS(t, `@import "base";
@import "mixins", "colors.scss";
`)
	if len(table.Imports) != 3 {
		t.Fatalf("Expected 3 imports, got %d", len(table.Imports))
	}
	if table.Imports[0].Filepath != "styles/base.scss" {
		t.Errorf("Expected extension appended and dir-relative path, got %s", table.Imports[0].Filepath)
	}
	if table.Imports[1].Filepath != "styles/mixins.scss" {
		t.Errorf("Expected second comma target resolved, got %s", table.Imports[1].Filepath)
	}
	if table.Imports[2].Filepath != "styles/colors.scss" {
		t.Errorf("Expected explicit extension kept, got %s", table.Imports[2].Filepath)
	}
	for _, imp := range table.Imports {
		if imp.Dynamic || imp.CSS {
			t.Errorf("Expected resolvable import, got %+v", imp)
		}
	}
}

func TestExtractUseAndForward(t *testing.T) {
	table := extractSCSS(t, `@use "sass:math";
@use "buttons" as btn;
@forward "tokens";
`)
	if len(table.Imports) != 3 {
		t.Fatalf("Expected 3 imports, got %d", len(table.Imports))
	}
	if table.Imports[1].Filepath != "styles/buttons.scss" {
		t.Errorf("Expected @use target resolved, got %s", table.Imports[1].Filepath)
	}
	if table.Imports[2].Filepath != "styles/tokens.scss" {
		t.Errorf("Expected @forward target resolved, got %s", table.Imports[2].Filepath)
	}
}

func TestDynamicImportFlagged(t *testing.T) {
	table := extractSCSS(t, `@import "themes/#{$name}";`)
	if len(table.Imports) != 1 {
		t.Fatalf("Expected 1 import, got %d", len(table.Imports))
	}
	imp := table.Imports[0]
	if !imp.Dynamic {
		t.Errorf("Expected interpolated target marked dynamic: %+v", imp)
	}
	if imp.CSS {
		t.Errorf("Dynamic import should not be CSS: %+v", imp)
	}
}

func TestCSSTargetsFlagged(t *testing.T) {
	table := extractSCSS(t, `@import "reset.css";
@import "https://example.com/fonts";
@import "//cdn.example.com/grid";
@import url(print.css) print;
`)
	if len(table.Imports) != 4 {
		t.Fatalf("Expected 4 imports, got %d", len(table.Imports))
	}
	for i, imp := range table.Imports {
		if !imp.CSS {
			t.Errorf("Import %d should be flagged CSS: %+v", i, imp)
		}
		if imp.Dynamic {
			t.Errorf("Import %d should not be dynamic: %+v", i, imp)
		}
	}
	if table.Imports[3].Filepath != "print.css" {
		t.Errorf("Expected url() argument unwrapped, got %s", table.Imports[3].Filepath)
	}
}

func TestCommentsAndStringsSkipped(t *testing.T) {
	table := extractSCSS(t, `// $commented: 1;
/* @mixin fake {} $also: 2; */
.sel::before { content: "$not-a-var: 3; @import \"ghost\";"; }
`)
	if len(table.Variables) != 0 {
		t.Errorf("Expected no variables, got %+v", table.Variables)
	}
	if len(table.Mixins) != 0 {
		t.Errorf("Expected no mixins, got %+v", table.Mixins)
	}
	if len(table.Imports) != 0 {
		t.Errorf("Expected no imports, got %+v", table.Imports)
	}
}

func TestVariableValueStopsAtBlockEnd(t *testing.T) {
	table := extractSCSS(t, `.a { $last: 10px }`)
	if len(table.Variables) != 1 {
		t.Fatalf("Expected 1 variable, got %d", len(table.Variables))
	}
	if table.Variables[0].Value != "10px" {
		t.Errorf("Expected value trimmed before closing brace, got %q", table.Variables[0].Value)
	}
}

func TestIsCSSTarget(t *testing.T) {
	cases := []struct {
		target string
		want   bool
	}{
		{"reset.css", true},
		{"http://example.com/a", true},
		{"https://example.com/a", true},
		{"//example.com/a", true},
		{"base", false},
		{"partials/colors", false},
	}
	for _, tc := range cases {
		if got := IsCSSTarget(tc.target); got != tc.want {
			t.Errorf("IsCSSTarget(%q) = %v, want %v", tc.target, got, tc.want)
		}
	}
}
