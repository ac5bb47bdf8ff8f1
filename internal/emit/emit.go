// Package emit writes classified chunks as a C array literal of
// jit_chunk_t records for the JIT patcher to consume.
package emit

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"jitgen/internal/chunk"
)

// Options controls the prologue and epilogue around the rows.
type Options struct {
	Header    string
	Table     string
	Type      string
	Namespace string
}

// Defaults match the chunks.h record layout.
var Defaults = Options{
	Header: "chunks.h",
	Table:  "chunk_table",
	Type:   "jit_chunk_t",
}

// Field widths are advisory; longer values are not truncated.
const (
	nameWidth   = 12
	lengthWidth = 2
	posWidth    = 2
)

func (o Options) withDefaults() Options {
	if o.Header == "" {
		o.Header = Defaults.Header
	}
	if o.Table == "" {
		o.Table = Defaults.Table
	}
	if o.Type == "" {
		o.Type = Defaults.Type
	}
	return o
}

// Escape renders b as a run of \xNN escapes.
func Escape(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 4)
	for _, c := range b {
		fmt.Fprintf(&sb, "\\x%02x", c)
	}
	return sb.String()
}

// Row formats the record for one chunk, without indentation or trailing comma.
func Row(c *chunk.Chunk) string {
	return fmt.Sprintf("{ %-*s, %*d, %*d, %*d, \"%s\" }",
		nameWidth, c.Name,
		lengthWidth, c.Length,
		posWidth, c.Abs.Value(),
		posWidth, c.Rel.Value(),
		Escape(c.Data))
}

// Write emits the complete source fragment for chunks to w.
func Write(w io.Writer, chunks []chunk.Chunk, opts Options) error {
	opts = opts.withDefaults()
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "#include \"%s\"\n\n", opts.Header)
	if opts.Namespace != "" {
		fmt.Fprintf(bw, "namespace %s {\n\n", opts.Namespace)
	}
	fmt.Fprintf(bw, "%s %s[] = {\n", opts.Type, opts.Table)
	for i := range chunks {
		fmt.Fprintf(bw, "  %s,\n", Row(&chunks[i]))
	}
	fmt.Fprint(bw, "};\n")
	if opts.Namespace != "" {
		fmt.Fprintf(bw, "\n}  // namespace %s\n", opts.Namespace)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}
