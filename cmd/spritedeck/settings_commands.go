package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spritedeck/internal/faults"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and edit remembered settings (source_root, last_file)",
	}
	settingsCmd.AddCommand(newSettingsListCommand(ctx))
	settingsCmd.AddCommand(newSettingsGetCommand(ctx))
	settingsCmd.AddCommand(newSettingsSetCommand(ctx))
	settingsCmd.AddCommand(newSettingsUnsetCommand(ctx))
	return settingsCmd
}

func newSettingsListCommand(ctx *commandContext) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			store, err := ctx.settingsStore()
			if err != nil {
				return err
			}
			entries, err := store.All(cmdContext(cmd))
			if err != nil {
				return err
			}
			if handled, err := writeStructured(cmd, format, entries); handled {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No settings stored")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Key, e.Value, e.UpdatedAt.Local().Format("2006-01-02 15:04:05")})
			}
			fmt.Fprintln(out, renderTable([]string{"Key", "Value", "Updated"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "Output format: table, json, or yaml")
	return cmd
}

func newSettingsGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.settingsStore()
			if err != nil {
				return err
			}
			value, ok, err := store.Get(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return faults.Wrap(faults.ErrNotFound, "cli", "settings get", fmt.Sprintf("setting %q is not set", args[0]), nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newSettingsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.settingsStore()
			if err != nil {
				return err
			}
			if err := store.Set(cmdContext(cmd), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func newSettingsUnsetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.settingsStore()
			if err != nil {
				return err
			}
			removed, err := store.Delete(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was not set\n", args[0])
			}
			return nil
		},
	}
}
