package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zowe/zss/internal/driver"
	"github.com/zowe/zss/internal/observ"
	"github.com/zowe/zss/internal/stubs"
)

func newAsmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "asm <header> [r12|zvte]",
		Short: "Generate the HLASM stub trampolines",
		Long: `Generate one HLASM trampoline per stub declared in the header. Each
trampoline loads the stub vector slot of its index and branches to it.
Use - as the header to read standard input.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dispatch := ""
			if len(args) > 1 {
				dispatch = args[1]
			}
			mode, err := stubs.ParseDispatchMode(dispatch)
			if err != nil {
				return err
			}
			return runGenerate(cmd, args[0], stubs.OutputASM, mode)
		},
	}
	cmd.Flags().StringP("output", "o", "", "write the artifact to this path instead of stdout")
	return cmd
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <header>",
		Short: "Generate the C stub vector initialization code",
		Long: `Generate one C statement per stub declared in the header, storing the
address of the implementing function in its stub vector slot.
Use - as the header to read standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], stubs.OutputInit, 0)
		},
	}
	cmd.Flags().StringP("output", "o", "", "write the artifact to this path instead of stdout")
	return cmd
}

// runGenerate is shared by asm and init. Nothing reaches stdout or the
// output file unless the whole header is valid.
func runGenerate(cmd *cobra.Command, header string, mode stubs.OutputMode, dispatch stubs.DispatchMode) (err error) {
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil) }()

	var timer *observ.Timer
	if g.timings {
		timer = observ.NewTimer()
	}
	res, genErr := driver.Generate(cmd.Context(), driver.Request{
		Header:         header,
		Input:          cmd.InOrStdin(),
		Encoding:       g.encoding,
		Mode:           mode,
		Dispatch:       dispatch,
		Lenient:        g.lenient,
		Output:         output,
		Writer:         cmd.OutOrStdout(),
		MaxDiagnostics: g.maxDiagnostics,
		Timer:          timer,
	})
	if err := reportDiagnostics(cmd.ErrOrStderr(), res.FileSet, res.Bag, g); err != nil {
		return err
	}
	if timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	return failure(genErr, res.Bag)
}
