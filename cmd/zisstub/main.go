package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zowe/zss/internal/version"
)

// errReported means the failure was already rendered as diagnostics.
var errReported = errors.New("errors reported")

const rootLong = `zisstub reads a ZIS stub header (usually zisstubs.h) and generates either
the HLASM trampolines that route calls through the ZIS stub vector, or the C
statements that fill the stub vector with the real implementations.

A stub header declares the vector size and one line per stub:

  #define MAX_ZIS_STUBS 1000
  #define ZIS_STUB_CMCPWDB 3 /* cmCopyWithDestinationBuffer */

Dispatch modes (asm only):
  r12   the stub vector is based off of GPR12 (default)
  zvte  the stub vector is based off of the ZVTE`

// newRootCmd assembles the command tree with its persistent flags.
func newRootCmd() *cobra.Command {
	cobra.EnableCaseInsensitive = true

	root := &cobra.Command{
		Use:           "zisstub",
		Short:         "ZIS stub trampoline and stub vector initializer generator",
		Long:          rootLong,
		Version:       version.Version(),
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// arguments are valid at this point; later failures are not usage errors
			cmd.SilenceUsage = true
			return setupProfiling(cmd)
		},
	}
	root.SetVersionTemplate("zisstub {{.Version}}\n")

	// Глобальные флаги
	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	pf.String("diagnostics", "pretty", "diagnostics format (pretty|json)")
	pf.String("encoding", "utf8", "header encoding (utf8|ebcdic)")
	pf.Bool("lenient", false, "skip malformed stub declarations with a warning")
	pf.String("trace", "", "write trace events to file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 1024, "events kept in memory for ring mode")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")

	root.AddCommand(newAsmCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newBuildCmd())
	root.AddCommand(newCleanCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// main runs the command tree and exits 1 on any failure.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if perr := stopProfiling(); perr != nil {
		fmt.Fprintf(os.Stderr, "profiling: %v\n", perr)
	}
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
