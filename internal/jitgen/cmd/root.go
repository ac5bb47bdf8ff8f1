package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	pathpkg "path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"jitgen/internal/chunk"
	"jitgen/internal/jitgen"
	"jitgen/internal/jitgen/config"
	jlog "jitgen/internal/jitgen/log"
	"jitgen/internal/logging"
	"jitgen/internal/report"
	"jitgen/internal/ui/colorize"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitConflict = 2
)

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var conflict *chunk.MarkerConflictError
	if errors.As(err, &conflict) {
		return ExitConflict
	}
	return ExitFailure
}

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

// NewRootCmd builds the jitgen command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jitgen <map> <bin> <outpath>",
		Short: "Generate a JIT chunk table from a symbol map and flat binary",
		Long: `Jitgen cuts a flat binary into named chunks using the offsets in its
symbol map, locates the absolute (DD CC BB AA) and relative (BB AA) patch markers
in each chunk, and writes the result as a C array of jit_chunk_t records.

A map file named like a subcommand (inspect, schema) is still generated from
when three paths are given. Maps named help or completion need a directory
prefix, e.g. ./help.`,
		Example: `
# Generate the table consumed by the JIT
jitgen chunks.map chunks.bin chunks.cpp

# Wrap the table in a namespace and show a summary
jitgen --namespace cj -s chunks.map chunks.bin chunks.cpp
  `,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug, _ := cmd.Flags().GetBool("debug")
			jlog.Setup(debug || logging.IsDebug())
		},
		RunE: runGenerate,
	}

	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.PersistentFlags().String("config", "", "JSON config file (see `jitgen schema`)")
	rootCmd.PersistentFlags().String("header", "", "Header included by the generated file (default \"chunks.h\")")
	rootCmd.PersistentFlags().String("table", "", "Name of the generated array (default \"chunk_table\")")
	rootCmd.PersistentFlags().String("type", "", "Record type of the generated array (default \"jit_chunk_t\")")
	rootCmd.PersistentFlags().String("namespace", "", "Wrap the table in a C++ namespace")
	rootCmd.PersistentFlags().Bool("verify", false, "Decode the emitted rows and compare them with the chunk payloads")
	rootCmd.PersistentFlags().BoolP("summary", "s", false, "Print a summary of the generated table")
	rootCmd.PersistentFlags().BoolP("print", "p", false, "Echo the generated source to stdout")

	rootCmd.AddCommand(
		withMapFallback(newSchemaCmd()),
		withMapFallback(newInspectCmd()),
	)
	return rootCmd
}

// withMapFallback treats "<name> <bin> <outpath>" as a generator run whose map
// file happens to share the subcommand's name.
func withMapFallback(sub *cobra.Command) *cobra.Command {
	args, run := sub.Args, sub.RunE
	sub.Args = func(cmd *cobra.Command, a []string) error {
		if len(a) == 2 || args == nil {
			return nil
		}
		return args(cmd, a)
	}
	sub.RunE = func(cmd *cobra.Command, a []string) error {
		if len(a) == 2 {
			return runGenerate(cmd, append([]string{cmd.Name()}, a...))
		}
		return run(cmd, a)
	}
	return sub
}

// Usage prints the positional usage line.
func Usage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s map bin outpath\n", pathpkg.Base(os.Args[0]))
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if len(args) != 3 {
		Usage(cmd.OutOrStdout())
		return nil
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.NewLogger()
	defer logger.Close()
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	res, err := jitgen.Generate(jitgen.Request{
		MapPath: args[0],
		BinPath: args[1],
		OutPath: args[2],
		Emit:    cfg.EmitOptions(),
		Verify:  cfg.Verify,
	}, logger.Logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color := isTerminal(out) && !colorize.Disabled()

	if printSrc, _ := cmd.Flags().GetBool("print"); printSrc {
		src := string(res.Source)
		if color {
			if hl, err := colorize.ColorizeSource(src); err == nil {
				src = hl
			}
		}
		fmt.Fprint(out, src)
	}

	if summary, _ := cmd.Flags().GetBool("summary"); summary {
		md := report.Markdown(args[2], res.TotalSize, res.Chunks)
		rendered, err := report.Render(md, terminalWidth(out), color)
		if err != nil {
			logger.Warn("summary rendering failed", "err", err)
		}
		fmt.Fprint(out, rendered)
	}
	return nil
}

// resolveConfig loads --config and lets explicitly set flags override it.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := &config.Config{}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	if logging.IsDebug() {
		cfg.Debug = true
	}
	if flags.Changed("header") {
		cfg.Header, _ = flags.GetString("header")
	}
	if flags.Changed("table") {
		cfg.Table, _ = flags.GetString("table")
	}
	if flags.Changed("type") {
		cfg.Type, _ = flags.GetString("type")
	}
	if flags.Changed("namespace") {
		cfg.Namespace, _ = flags.GetString("namespace")
	}
	if flags.Changed("verify") {
		cfg.Verify, _ = flags.GetBool("verify")
	}
	return cfg, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(f.Fd()); err == nil && width > 0 {
			return width
		}
	}
	return 100
}

// Execute runs the command line and exits with the mapped status.
func Execute() {
	rootCmd := NewRootCmd()

	// Use fang only when attached to a terminal so piped output stays plain.
	var err error
	if term.IsTerminal(os.Stdout.Fd()) && term.IsTerminal(os.Stderr.Fd()) {
		err = fang.Execute(
			context.Background(),
			rootCmd,
			fang.WithNotifySignal(os.Interrupt),
		)
	} else {
		err = rootCmd.Execute()
		if err != nil {
			label := "error:"
			if term.IsTerminal(os.Stderr.Fd()) {
				label = errorStyle.Render(label)
			}
			fmt.Fprintln(os.Stderr, label, err)
		}
	}
	os.Exit(ExitCode(err))
}
