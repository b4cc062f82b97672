package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"cascade/internal/core/errors"
	"cascade/internal/engine/parser"
)

const (
	FormatTSV  = "tsv"
	FormatJSON = "json"
)

// WriteSymbols renders the current index to w: one row per symbol in TSV
// form, or the full symbol tables as JSON.
func (a *App) WriteSymbols(w io.Writer, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatTSV, "":
		return writeSymbolsTSV(w, a.Tables())
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a.Tables())
	default:
		return errors.New(errors.CodeValidationError,
			fmt.Sprintf("unknown output format %q (expected tsv or json)", format))
	}
}

func writeSymbolsTSV(w io.Writer, tables []*parser.SymbolTable) error {
	var buf strings.Builder

	buf.WriteString("Document\tKind\tName\tDetail\tLine\tColumn\n")
	for _, table := range tables {
		for _, v := range table.Variables {
			buf.WriteString(fmt.Sprintf("%s\tvariable\t%s\t%s\t%d\t%d\n",
				table.Document, v.Name, v.Value, v.Location.Line, v.Location.Column))
		}
		for _, m := range table.Mixins {
			buf.WriteString(fmt.Sprintf("%s\tmixin\t%s\t%s\t%d\t%d\n",
				table.Document, m.Name, strings.Join(m.Parameters, ", "), m.Location.Line, m.Location.Column))
		}
		for _, f := range table.Functions {
			buf.WriteString(fmt.Sprintf("%s\tfunction\t%s\t%s\t%d\t%d\n",
				table.Document, f.Name, strings.Join(f.Parameters, ", "), f.Location.Line, f.Location.Column))
		}
	}

	_, err := io.WriteString(w, buf.String())
	return err
}
