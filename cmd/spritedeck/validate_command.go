package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"spritedeck/internal/faults"
	"spritedeck/internal/validate"
)

type validationReport struct {
	Document string           `json:"document" yaml:"document"`
	Counts   validate.Counts  `json:"counts" yaml:"counts"`
	Issues   []validate.Issue `json:"issues" yaml:"issues"`
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var (
		output  string
		strict  bool
		minimum string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report structural and referential problems in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			floor, err := validate.ParseSeverity(minimum)
			if err != nil {
				return err
			}
			doc, err := ctx.openDocument(cmdContext(cmd))
			if err != nil {
				return err
			}

			all := doc.Validate()
			issues := validate.Filter(all, floor)
			report := validationReport{Document: doc.Path(), Counts: validate.Count(all), Issues: issues}

			handled, err := writeStructured(cmd, format, report)
			if err != nil {
				return err
			}
			if !handled {
				renderValidation(cmd, report)
			}

			if strict && validate.HasErrors(all) {
				return faults.Wrap(faults.ErrValidation, "cli", "validate",
					fmt.Sprintf("%d error(s) in %s", report.Counts.Errors, doc.Path()), nil)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "Output format: table, json, or yaml")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any error-level issue is found")
	cmd.Flags().StringVar(&minimum, "min-severity", "info", "Hide issues below this severity (info, warning, error)")
	return cmd
}

func renderValidation(cmd *cobra.Command, report validationReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	if len(report.Issues) == 0 {
		fmt.Fprintln(out, renderStatusLine("Validation", statusOK, "no issues", colorize))
	} else {
		rows := make([][]string, 0, len(report.Issues))
		for _, is := range report.Issues {
			index := "-"
			if is.Index != validate.GlobalIndex {
				index = strconv.Itoa(is.Index)
			}
			rows = append(rows, []string{
				colorText(is.Severity.String(), severityKind(is.Severity), colorize),
				index,
				is.Message,
			})
		}
		fmt.Fprintln(out, renderTable([]string{"Severity", "#", "Message"}, rows,
			[]columnAlignment{alignLeft, alignRight, alignLeft}))
	}
	c := report.Counts
	fmt.Fprintf(out, "%d error(s), %d warning(s), %d info\n", c.Errors, c.Warnings, c.Info)
}
