package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spritedeck/internal/config"
	"spritedeck/internal/sprite"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		folder string
		add    bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Find PNG files that are not yet in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			if format == formatYAML {
				return fmt.Errorf("scan supports table or json output")
			}
			dir, err := config.ExpandPath(folder)
			if err != nil {
				return err
			}
			doc, err := ctx.openDocument(cmdContext(cmd))
			if err != nil {
				return err
			}
			found, err := doc.Scan(dir)
			if err != nil {
				return err
			}

			if format == formatJSON {
				if found == nil {
					found = []sprite.Record{}
				}
				if err := writeJSON(cmd, found); err != nil {
					return err
				}
			} else {
				renderScan(cmd, found)
			}

			if !add || len(found) == 0 {
				return nil
			}
			positions := doc.AddScanned(found)
			if err := doc.Save(); err != nil {
				return err
			}
			if format != formatJSON {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %d record(s) at positions %s\n", len(positions), intsString(positions))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "Folder to scan (default: the source root)")
	cmd.Flags().BoolVar(&add, "add", false, "Append the discovered records and save")
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "Output format: table or json")
	return cmd
}

func renderScan(cmd *cobra.Command, found []sprite.Record) {
	out := cmd.OutOrStdout()
	if len(found) == 0 {
		fmt.Fprintln(out, "No new images found")
		return
	}
	rows := make([][]string, 0, len(found))
	for _, r := range found {
		src, _ := r.SourceID()
		rows = append(rows, []string{r.Category(), src, r.DisplayText(), formatSize(r)})
	}
	fmt.Fprintln(out, renderTable([]string{"Category", "Src", "Text", "Size"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
	fmt.Fprintf(out, "%d new image(s)\n", len(found))
}
