// Package report renders a human-readable summary of a generated chunk table.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/ianlancetaylor/demangle"

	"jitgen/internal/chunk"
)

// DisplayName returns name with its demangled form when it is a mangled C++ symbol.
func DisplayName(name string) string {
	d := demangle.Filter(name, demangle.NoClones)
	if d == name {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, d)
}

// Markdown builds the summary document for chunks.
func Markdown(outPath string, totalSize uint64, chunks []chunk.Chunk) string {
	var abs, rel, none int
	for i := range chunks {
		switch chunks[i].Kind() {
		case chunk.KindAbs:
			abs++
		case chunk.KindRel:
			rel++
		default:
			none++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Chunk table\n\n")
	fmt.Fprintf(&b, "Wrote `%s`: **%d** chunks covering 0x%x bytes.\n\n", outPath, len(chunks), totalSize)
	fmt.Fprintf(&b, "- absolute patch sites: %d\n- relative patch sites: %d\n- no patch site: %d\n\n", abs, rel, none)
	if len(chunks) == 0 {
		b.WriteString("_The table is empty._\n")
		return b.String()
	}

	b.WriteString("| Name | Offset | Length | Marker | Position |\n")
	b.WriteString("|---|---:|---:|---|---:|\n")
	for i := range chunks {
		c := &chunks[i]
		pos := "-"
		switch c.Kind() {
		case chunk.KindAbs:
			pos = c.Abs.String()
		case chunk.KindRel:
			pos = c.Rel.String()
		}
		fmt.Fprintf(&b, "| %s | 0x%x | %d | %s | %s |\n",
			strings.ReplaceAll(DisplayName(c.Name), "|", `\|`), c.Offset, c.Length, c.Kind(), pos)
	}
	return b.String()
}

// Render formats md for the terminal. Plain markdown is returned when color is false.
func Render(md string, width int, color bool) (string, error) {
	if !color {
		return md, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(Style()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md, fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return md, fmt.Errorf("render summary: %w", err)
	}
	return out, nil
}
