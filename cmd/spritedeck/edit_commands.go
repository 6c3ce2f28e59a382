package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spritedeck/internal/document"
	"spritedeck/internal/logging"
	"spritedeck/internal/sprite"
)

// mutation changes an open document and returns a one-line description.
type mutation func(doc *document.Document) (string, error)

// applyMutation loads the catalog, applies fn, and saves unless dryRun.
func applyMutation(cmd *cobra.Command, ctx *commandContext, dryRun bool, fn mutation) error {
	doc, err := ctx.openDocument(cmdContext(cmd))
	if err != nil {
		return err
	}
	message, err := fn(doc)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if dryRun {
		fmt.Fprintf(out, "%s (dry run, not saved)\n", message)
		return nil
	}
	if doc.Dirty() {
		if err := doc.Save(); err != nil {
			logging.ErrorWithContext(ctx.log(), "catalog save failed", "catalog_save_failed",
				logging.String(logging.FieldPath, doc.Path()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the catalog directory is writable; the edit was not applied on disk"))
			return err
		}
	}
	fmt.Fprintln(out, message)
	return nil
}

func newEditCommands(ctx *commandContext) []*cobra.Command {
	cmds := []*cobra.Command{
		newAddCommand(ctx),
		newSetCommand(ctx),
		newUnsetCommand(ctx),
		newDeleteCommand(ctx),
		newDuplicateCommand(ctx),
		newMoveCommand(ctx),
	}
	for _, c := range cmds {
		c.Flags().Bool("dry-run", false, "Apply the change in memory only; do not save")
	}
	return cmds
}

func dryRunFlag(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("dry-run")
	return v
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var (
		category string
		src      string
		text     string
		width    int
		height   int
		hidden   bool
		otherbg  string
		at       int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(category) == "" || strings.TrimSpace(src) == "" {
				return fmt.Errorf("--category and --src are required")
			}
			return applyMutation(cmd, ctx, dryRunFlag(cmd), func(doc *document.Document) (string, error) {
				r := sprite.New(category, src, text)
				if width > 0 && height > 0 {
					r.SetInt(sprite.KeyWidth, width)
					r.SetInt(sprite.KeyHeight, height)
				}
				if cmd.Flags().Changed("hidden") {
					r.SetBool(sprite.KeyHidden, hidden)
				}
				if otherbg != "" {
					r.SetString(sprite.KeyBackgroundRef, otherbg)
				}
				if !cmd.Flags().Changed("at") {
					return fmt.Sprintf("Added %q at %d", src, doc.Append(r)), nil
				}
				pos, ok := doc.Insert(r, at)
				if !ok {
					return "", rejectedIndex(at, doc.Len()+1)
				}
				return fmt.Sprintf("Added %q at %d", src, pos), nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Category path (putUnder), e.g. blocks/ground")
	cmd.Flags().StringVar(&src, "src", "", "Source identifier")
	cmd.Flags().StringVar(&text, "text", "", "Display text")
	cmd.Flags().IntVar(&width, "width", 0, "Cached pixel width")
	cmd.Flags().IntVar(&height, "height", 0, "Cached pixel height")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "Mark the record hidden")
	cmd.Flags().StringVar(&otherbg, "otherbg", "", "Background record source identifier")
	cmd.Flags().IntVar(&at, "at", 0, "Insert position (default: append)")
	return cmd
}

func newSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <index|src> key=value...",
		Short: "Set fields on a record",
		Long: "Set fields on a record. putUnder, src, text and otherbg are always strings; " +
			"other values are stored as JSON when they parse as JSON (true, 16, {\"a\":1}) and as strings otherwise.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyMutation(cmd, ctx, dryRunFlag(cmd), func(doc *document.Document) (string, error) {
				i, err := recordArg(doc, args[0])
				if err != nil {
					return "", err
				}
				r, _ := doc.Get(i)
				keys := make([]string, 0, len(args)-1)
				for _, arg := range args[1:] {
					key, raw, err := parseAssignment(arg)
					if err != nil {
						return "", err
					}
					if err := r.SetRaw(key, raw); err != nil {
						return "", err
					}
					keys = append(keys, key)
				}
				doc.Update(i, r)
				return fmt.Sprintf("Updated record %d: %s", i, strings.Join(keys, ", ")), nil
			})
		},
	}
}

func newUnsetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <index|src> key...",
		Short: "Remove fields from a record",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyMutation(cmd, ctx, dryRunFlag(cmd), func(doc *document.Document) (string, error) {
				i, err := recordArg(doc, args[0])
				if err != nil {
					return "", err
				}
				r, _ := doc.Get(i)
				var removed []string
				for _, key := range args[1:] {
					if r.Delete(key) {
						removed = append(removed, key)
					}
				}
				if len(removed) == 0 {
					return fmt.Sprintf("Record %d unchanged", i), nil
				}
				doc.Update(i, r)
				return fmt.Sprintf("Removed from record %d: %s", i, strings.Join(removed, ", ")), nil
			})
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <index|src>",
		Short: "Delete a record (image files are left on disk)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyMutation(cmd, ctx, dryRunFlag(cmd), func(doc *document.Document) (string, error) {
				i, err := recordArg(doc, args[0])
				if err != nil {
					return "", err
				}
				r, _ := doc.Get(i)
				src, _ := r.SourceID()
				doc.Delete(i)
				return fmt.Sprintf("Deleted record %d (%s)", i, src), nil
			})
		},
	}
}

func newDuplicateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <index|src>",
		Short: "Insert a copy of a record right after it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyMutation(cmd, ctx, dryRunFlag(cmd), func(doc *document.Document) (string, error) {
				i, err := recordArg(doc, args[0])
				if err != nil {
					return "", err
				}
				pos, _ := doc.Duplicate(i)
				dup, _ := doc.Get(pos)
				src, _ := dup.SourceID()
				return fmt.Sprintf("Duplicated record %d to %d (%s)", i, pos, src), nil
			})
		},
	}
}

func newMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <index|src> <to>",
		Short: "Move a record to a new position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyMutation(cmd, ctx, dryRunFlag(cmd), func(doc *document.Document) (string, error) {
				from, err := recordArg(doc, args[0])
				if err != nil {
					return "", err
				}
				to, err := parseIndex(args[1], doc.Len())
				if err != nil {
					return "", err
				}
				if !doc.Reorder(from, to) {
					return fmt.Sprintf("Record %d already at %d", from, to), nil
				}
				return fmt.Sprintf("Moved record %d to %d", from, to), nil
			})
		},
	}
}
