package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zowe/zss/internal/source"
)

type globalOptions struct {
	color          bool
	quiet          bool
	timings        bool
	maxDiagnostics int
	diagFormat     string
	encoding       source.Encoding
	encodingSet    bool // --encoding given explicitly
	lenient        bool
}

func readGlobals(cmd *cobra.Command) (globalOptions, error) {
	pf := cmd.Root().PersistentFlags()
	var g globalOptions

	colorMode, err := pf.GetString("color")
	if err != nil {
		return g, fmt.Errorf("failed to get color flag: %w", err)
	}
	if g.color, err = resolveColor(colorMode, os.Stderr); err != nil {
		return g, err
	}
	if g.quiet, err = pf.GetBool("quiet"); err != nil {
		return g, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if g.timings, err = pf.GetBool("timings"); err != nil {
		return g, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if g.maxDiagnostics, err = pf.GetInt("max-diagnostics"); err != nil {
		return g, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if g.lenient, err = pf.GetBool("lenient"); err != nil {
		return g, fmt.Errorf("failed to get lenient flag: %w", err)
	}

	format, err := pf.GetString("diagnostics")
	if err != nil {
		return g, fmt.Errorf("failed to get diagnostics flag: %w", err)
	}
	switch g.diagFormat = strings.ToLower(format); g.diagFormat {
	case "pretty", "json":
	default:
		return g, fmt.Errorf("invalid --diagnostics value %q (expected pretty|json)", format)
	}

	enc, err := pf.GetString("encoding")
	if err != nil {
		return g, fmt.Errorf("failed to get encoding flag: %w", err)
	}
	if g.encoding, err = source.ParseEncoding(enc); err != nil {
		return g, err
	}
	g.encodingSet = pf.Changed("encoding")
	return g, nil
}

// resolveColor decides whether output written to f is colorized.
func resolveColor(mode string, f *os.File) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(mode)) {
	case "", "auto":
		return os.Getenv("NO_COLOR") == "" && isTerminal(f), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}
