package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jitgen/internal/chunk"
	"jitgen/internal/emit"
	"jitgen/internal/report"
	"jitgen/internal/ui/colorize"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [table]",
		Short: "Summarize a previously generated chunk table",
		Long: `Read the rows of a generated chunk table, decode their payloads
and print the same summary as --summary.`,
		Example: `
# Show what an existing table contains
jitgen inspect chunks.cpp
  `,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open table: %w", err)
			}
			defer f.Close()

			recs, err := emit.ReadTable(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			chunks := recordChunks(recs)
			var total uint64
			for i := range chunks {
				total += chunks[i].Length
			}

			out := cmd.OutOrStdout()
			md := report.Markdown(args[0], total, chunks)
			rendered, err := report.Render(md, terminalWidth(out), isTerminal(out) && !colorize.Disabled())
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		},
	}
}

// recordChunks rebuilds chunks from table rows. Offsets are reconstructed
// by accumulating lengths, since the table does not carry them.
func recordChunks(recs []emit.Record) []chunk.Chunk {
	chunks := make([]chunk.Chunk, 0, len(recs))
	var off uint64
	for _, r := range recs {
		c := chunk.New(off, r.Name)
		c.Length = uint64(r.Length)
		c.Data = r.Data
		if r.Abs != chunk.NotFound {
			c.Abs = chunk.At(r.Abs)
		}
		if r.Rel != chunk.NotFound {
			c.Rel = chunk.At(r.Rel)
		}
		chunks = append(chunks, c)
		off += c.Length
	}
	return chunks
}
