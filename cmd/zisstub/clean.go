package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zowe/zss/internal/driver"
	"github.com/zowe/zss/internal/project"
	"github.com/zowe/zss/internal/source"
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [dir]",
		Short: "Remove the generation cache",
		Long: `Remove every record of the generation cache. With --outputs, also remove
the artifacts of the targets listed in zisstub.toml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runClean,
	}
	cmd.Flags().Bool("outputs", false, "also remove the target outputs named in zisstub.toml")
	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	g, err := readGlobals(cmd)
	if err != nil {
		return err
	}
	outputs, err := cmd.Flags().GetBool("outputs")
	if err != nil {
		return fmt.Errorf("failed to get outputs flag: %w", err)
	}

	cache, err := driver.OpenDiskCache("zisstub")
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to remove %q: %w", cache.Dir(), err)
	}
	if !g.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", cache.Dir())
	}
	if !outputs {
		return nil
	}

	dir := "."
	if len(args) > 0 && args[0] != "" {
		dir = args[0]
	}
	m, ok, err := project.LoadFrom(dir)
	if err != nil {
		return reportManifestError(cmd.ErrOrStderr(), err, g)
	}
	if !ok {
		return fmt.Errorf("no %s found in %s or any parent directory", project.ManifestName, dir)
	}
	for _, t := range m.Targets {
		err := os.Remove(t.Output)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to remove %q: %w", t.Output, err)
		}
		if !g.quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", displayPath(m.Root, t.Output))
		}
	}
	return nil
}

func displayPath(base, path string) string {
	if rel, err := source.RelativePath(path, base); err == nil {
		return rel
	}
	return path
}
