package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"spritedeck/internal/config"
	"spritedeck/internal/document"
	"spritedeck/internal/faults"
	"spritedeck/internal/settings"
	"spritedeck/internal/sprite"
	"spritedeck/internal/thumbnail"
)

func newOpenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "open <file>",
		Short: "Load a catalog, remember it as the last opened file, and summarize it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cmdContext(cmd)
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
			opts, err := ctx.documentOptions(c)
			if err != nil {
				return err
			}
			doc, err := document.Open(path, opts)
			if err != nil {
				return err
			}
			if err := ctx.remember(c, settings.KeyLastFile, path); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Opened %s\n", path)
			fmt.Fprintf(out, "  Records:     %d\n", doc.Len())
			fmt.Fprintf(out, "  Categories:  %d\n", len(doc.Categories()))
			fmt.Fprintf(out, "  Keys:        %s\n", strings.Join(doc.TopLevelKeys(), ", "))
			fmt.Fprintf(out, "  Source root: %s\n", orUnset(doc.SourceRoot()))
			return nil
		},
	}
}

func newRootDirCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "root [dir]",
		Short: "Show or remember the source image root",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cmdContext(cmd)
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				root, err := ctx.sourceRoot(c)
				if err != nil {
					return err
				}
				if root == "" {
					fmt.Fprintln(out, "Source root not set")
					return nil
				}
				fmt.Fprintln(out, root)
				return nil
			}

			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if abs, err := filepath.Abs(dir); err == nil {
				dir = abs
			}
			info, err := os.Stat(dir)
			if err != nil {
				return faults.Wrap(faults.ErrNotFound, "cli", "root", dir, err)
			}
			if !info.IsDir() {
				return faults.Wrap(faults.ErrConfiguration, "cli", "root", dir+" is not a directory", nil)
			}
			if err := ctx.remember(c, settings.KeySourceRoot, dir); err != nil {
				return err
			}
			fmt.Fprintf(out, "Source root set to %s\n", dir)
			return nil
		},
	}
}

type listedRecord struct {
	Index   int           `json:"index"`
	Unsaved bool          `json:"unsaved,omitempty"`
	Record  sprite.Record `json:"record"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var category string
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog records",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			if format == formatYAML {
				return fmt.Errorf("list supports table or json output")
			}
			doc, err := ctx.openDocument(cmdContext(cmd))
			if err != nil {
				return err
			}

			var entries []document.Entry
			if category != "" {
				entries = doc.SpritesByCategory(category)
			} else {
				for i, r := range doc.Records() {
					entries = append(entries, document.Entry{Index: i, Record: r})
				}
			}

			if format == formatJSON {
				listed := make([]listedRecord, 0, len(entries))
				for _, e := range entries {
					listed = append(listed, listedRecord{Index: e.Index, Unsaved: doc.IsUnsaved(e.Index), Record: e.Record})
				}
				return writeJSON(cmd, listed)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No records")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				src, _ := e.Record.SourceID()
				rows = append(rows, []string{
					strconv.Itoa(e.Index),
					sprite.ShortCategory(e.Record.Category()),
					src,
					e.Record.DisplayText(),
					formatSize(e.Record),
					recordFlags(e.Record, doc.IsUnsaved(e.Index)),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Category", "Src", "Text", "Size", "Flags"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only list records in this category (without the blocks/ prefix)")
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "Output format: table or json")
	return cmd
}

type categoryCount struct {
	Category string `json:"category" yaml:"category"`
	Count    int    `json:"count" yaml:"count"`
}

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories with record counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			doc, err := ctx.openDocument(cmdContext(cmd))
			if err != nil {
				return err
			}
			var counts []categoryCount
			for _, cat := range doc.Categories() {
				counts = append(counts, categoryCount{Category: cat, Count: len(doc.SpritesByCategory(cat))})
			}
			if handled, err := writeStructured(cmd, format, counts); handled {
				return err
			}
			rows := make([][]string, 0, len(counts))
			for _, c := range counts {
				rows = append(rows, []string{c.Category, strconv.Itoa(c.Count)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Category", "Records"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "Output format: table, json, or yaml")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <index|src>",
		Short: "Show one record with its source image and thumbnail state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			doc, err := ctx.openDocument(cmdContext(cmd))
			if err != nil {
				return err
			}
			i, err := recordArg(doc, args[0])
			if err != nil {
				return err
			}
			r, _ := doc.Get(i)

			switch format {
			case formatJSON:
				return writeJSON(cmd, r)
			case formatYAML:
				node, err := recordYAML(r)
				if err != nil {
					return err
				}
				return writeYAML(cmd, node)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			compact, err := r.MarshalJSON()
			if err != nil {
				return err
			}
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, compact, "", "  "); err != nil {
				return err
			}
			fmt.Fprintf(out, "Record #%d\n%s\n", i, pretty.String())
			if image, err := doc.ImagePath(i); err != nil {
				fmt.Fprintln(out, renderStatusLine("Source image", statusWarn, describeError(err), colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Source image", statusOK, image, colorize))
			}
			st := doc.Engine().Check(r)
			kind := statusOK
			message := st.State.String()
			switch {
			case len(st.Missing) > 0:
				kind = statusWarn
				message = "missing sizes " + intsString(st.Missing)
			case len(st.Outdated) > 0:
				kind = statusWarn
				message = "outdated sizes " + intsString(st.Outdated)
			case st.State == thumbnail.StateUnknown:
				kind = statusInfo
			}
			fmt.Fprintln(out, renderStatusLine("Thumbnails", kind, message, colorize))
			fmt.Fprintln(out, renderStatusLine("Unsaved", statusInfo, yesNo(doc.IsUnsaved(i)), colorize))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "Output format: table, json, or yaml")
	return cmd
}

func newDefaultsCommand(ctx *commandContext) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the catalog's blockDefaults object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			doc, err := ctx.openDocument(cmdContext(cmd))
			if err != nil {
				return err
			}
			raw := doc.Defaults()
			if format == formatYAML {
				node, err := jsonYAML(raw)
				if err != nil {
					return err
				}
				return writeYAML(cmd, node)
			}
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, raw, "", "  "); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "Output format: table, json, or yaml")
	return cmd
}
