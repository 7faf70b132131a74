package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/acwasm/pkg/module"
)

var (
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "acwasm",
	Short: "acwasm - multi-pattern substring search",
	Long: `acwasm searches text for many literal patterns at once using an
Aho-Corasick automaton that lives behind a linear-memory boundary.

The matcher runs in-process by default, or inside a WebAssembly runtime
when --wasm points at the compiled module.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(setsCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// stderrLogger prints module debug messages when --verbose is set.
type stderrLogger struct {
	w io.Writer
}

func (l stderrLogger) Log(format string, args ...interface{}) {
	fmt.Fprintf(l.w, "[acwasm] "+format+"\n", args...)
}

func newLogger(cmd *cobra.Command) module.DebugLogger {
	if !verbose || quiet {
		return module.NoopLogger{}
	}
	return stderrLogger{w: cmd.ErrOrStderr()}
}

// status prints progress lines to stderr unless --quiet is set.
func status(cmd *cobra.Command, format string, args ...interface{}) {
	if quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

// isStdoutTerminal is replaced in tests.
var isStdoutTerminal = func() bool {
	return isTerminal(os.Stdout)
}

// commandContext returns the command's context, or a background context
// when the command is run directly.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
