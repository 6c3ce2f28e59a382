package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spritedeck/internal/faults"
	"spritedeck/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that configured directories and the catalog are usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cmdContext(cmd)
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root, err := ctx.sourceRoot(c)
			if err != nil {
				return err
			}
			docPath, _ := ctx.documentPath(c)

			results := preflight.RunAll(preflight.Targets{
				StateDir:      cfg.Paths.StateDir,
				LogDir:        cfg.Paths.LogDir,
				SourceRoot:    root,
				ThumbnailRoot: cfg.ThumbnailRootFor(root),
				Document:      docPath,
			})

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("spritedeck doctor", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			if docPath == "" {
				fmt.Fprintln(out, renderStatusLine("Catalog document", statusWarn, "not configured", colorize))
			}
			if preflight.Failed(results) {
				return faults.Wrap(faults.ErrConfiguration, "cli", "doctor", "one or more checks failed", nil)
			}
			return nil
		},
	}
}
