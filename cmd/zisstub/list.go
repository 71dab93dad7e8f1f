package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zowe/zss/internal/diagfmt"
	"github.com/zowe/zss/internal/driver"
)

type listEntryJSON struct {
	Symbol   string `json:"symbol"`
	Index    int    `json:"index"`
	Function string `json:"function"`
	Mapped   bool   `json:"mapped,omitempty"`
	Line     uint32 `json:"line"`
}

type listPayload struct {
	Header      string                    `json:"header"`
	Bound       int                       `json:"max_zis_stubs"`
	Entries     []listEntryJSON           `json:"entries"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics"`
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <header>",
		Short: "Validate a stub header and print its stub table",
		Long: `Validate a stub header with the same rules as asm and init, then print
every stub in header order. The JSON form lets tooling check that stub
numbers are never reused.`,
		Args: cobra.ExactArgs(1),
		RunE: runList,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runList(cmd *cobra.Command, args []string) (err error) {
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil) }()

	res, listErr := driver.List(cmd.Context(), driver.Request{
		Header:         args[0],
		Input:          cmd.InOrStdin(),
		Encoding:       g.encoding,
		Lenient:        g.lenient,
		MaxDiagnostics: g.maxDiagnostics,
	})

	if format == "json" {
		res.Bag.Sort()
		payload := listPayload{
			Header:  args[0],
			Bound:   res.Bound,
			Entries: make([]listEntryJSON, 0, len(res.Entries)),
			Diagnostics: diagfmt.BuildDiagnosticsOutput(res.Bag, res.FileSet, diagfmt.JSONOpts{
				IncludePositions: true,
				IncludeNotes:     true,
			}),
		}
		for _, e := range res.Entries {
			start, _ := res.FileSet.Resolve(e.Span)
			payload.Entries = append(payload.Entries, listEntryJSON{
				Symbol:   e.Symbol,
				Index:    e.Index,
				Function: e.Function,
				Mapped:   e.Mapped,
				Line:     start.Line,
			})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return err
		}
		if listErr != nil {
			return errReported
		}
		return nil
	}

	if err := reportDiagnostics(cmd.ErrOrStderr(), res.FileSet, res.Bag, g); err != nil {
		return err
	}
	if listErr != nil {
		return failure(listErr, res.Bag)
	}
	printTable(cmd.OutOrStdout(), res)
	return nil
}

func printTable(w io.Writer, res *driver.ListResult) {
	fmt.Fprintf(w, "MAX_ZIS_STUBS %d\n", res.Bound)
	fmt.Fprintf(w, "%5s  %-8s %s\n", "INDEX", "SYMBOL", "FUNCTION")
	for _, e := range res.Entries {
		fn := e.Function
		if e.Mapped {
			fn += " (mapped)"
		}
		fmt.Fprintf(w, "%5d  %-8s %s\n", e.Index, e.Symbol, fn)
	}
}
