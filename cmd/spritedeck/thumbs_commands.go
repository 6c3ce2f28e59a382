package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"spritedeck/internal/document"
	"spritedeck/internal/faults"
	"spritedeck/internal/logging"
	"spritedeck/internal/sprite"
	"spritedeck/internal/thumbnail"
	"spritedeck/internal/watch"
)

func newThumbsCommand(ctx *commandContext) *cobra.Command {
	thumbsCmd := &cobra.Command{
		Use:   "thumbs",
		Short: "Inspect and generate thumbnails",
	}
	thumbsCmd.AddCommand(newThumbsStatusCommand(ctx))
	thumbsCmd.AddCommand(newThumbsGenerateCommand(ctx))
	thumbsCmd.AddCommand(newThumbsWatchCommand(ctx))
	return thumbsCmd
}

func requireSourceRoot(doc *document.Document) error {
	if doc.SourceRoot() == "" {
		return faults.Wrap(faults.ErrConfiguration, "cli", "thumbs",
			"source root not set; pass --root, set paths.source_root, or run 'spritedeck root <dir>'", nil)
	}
	return nil
}

func newThumbsStatusCommand(ctx *commandContext) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report records with missing or outdated thumbnails",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			doc, err := ctx.openDocument(cmdContext(cmd))
			if err != nil {
				return err
			}
			if err := requireSourceRoot(doc); err != nil {
				return err
			}
			report := doc.Engine().ValidateAll(doc.Records())
			if handled, err := writeStructured(cmd, format, report); handled {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var rows [][]string
			for _, l := range report.Missing {
				rows = append(rows, []string{strconv.Itoa(l.Index), l.SourceID, colorText("missing", statusWarn, colorize), intsString(l.Sizes)})
			}
			for _, l := range report.Outdated {
				rows = append(rows, []string{strconv.Itoa(l.Index), l.SourceID, colorText("outdated", statusWarn, colorize), intsString(l.Sizes)})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"#", "Src", "State", "Sizes"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
			}
			fmt.Fprintln(out, renderStatusLine("Up to date", statusOK, strconv.Itoa(len(report.OK)), colorize))
			fmt.Fprintln(out, renderStatusLine("Missing", kindFor(len(report.Missing)), strconv.Itoa(len(report.Missing)), colorize))
			fmt.Fprintln(out, renderStatusLine("Outdated", kindFor(len(report.Outdated)), strconv.Itoa(len(report.Outdated)), colorize))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "Output format: table, json, or yaml")
	return cmd
}

func kindFor(count int) statusKind {
	if count > 0 {
		return statusWarn
	}
	return statusOK
}

func newThumbsGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		force       bool
		missingOnly bool
		workers     int
		output      string
	)
	cmd := &cobra.Command{
		Use:   "generate [index|src...]",
		Short: "Generate missing or outdated thumbnails",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			doc, err := ctx.openDocument(cmdContext(cmd))
			if err != nil {
				return err
			}
			if err := requireSourceRoot(doc); err != nil {
				return err
			}

			records, positions, err := selectRecords(doc, args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Thumbnails.Workers
			}
			opts := thumbnail.BatchOptions{
				ForceAll:    force,
				MissingOnly: missingOnly,
				Workers:     workers,
				Progress:    progressPrinter(cmd.ErrOrStderr(), format == formatTable),
			}

			runCtx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			summary := doc.Engine().Start(runCtx, records, opts).Wait()
			remapFailures(&summary, positions)

			if path := cfg.Thumbnails.MetricsTextfile; path != "" {
				if err := ctx.thumbnailMetrics().WriteTextfile(path); err != nil {
					logging.WarnWithContext(ctx.log(), "metrics textfile write failed", "metrics_write_failed",
						logging.String(logging.FieldPath, path),
						logging.Error(err),
						logging.String(logging.FieldImpact, "node_exporter keeps the previous batch metrics"))
				}
			}

			if handled, err := writeStructured(cmd, format, summary); handled {
				if err != nil {
					return err
				}
			} else {
				renderSummary(cmd.OutOrStdout(), summary)
			}
			if summary.Canceled {
				return context.Canceled
			}
			if summary.Failed > 0 {
				return faults.Wrap(faults.ErrImage, "cli", "thumbs generate",
					fmt.Sprintf("%d record(s) failed", summary.Failed), nil)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate every record regardless of state")
	cmd.Flags().BoolVar(&missingOnly, "missing-only", false, "Only fill in absent sizes; ignore outdated ones")
	cmd.Flags().IntVar(&workers, "workers", 1, "Records processed concurrently (default: thumbnails.workers)")
	cmd.Flags().StringVarP(&output, "output", "o", formatTable, "Output format: table, json, or yaml")
	return cmd
}

// selectRecords returns the records named by args (all when empty) and their
// document positions.
func selectRecords(doc *document.Document, args []string) ([]sprite.Record, []int, error) {
	if len(args) == 0 {
		all := doc.Records()
		positions := make([]int, len(all))
		for i := range positions {
			positions[i] = i
		}
		return all, positions, nil
	}
	records := make([]sprite.Record, 0, len(args))
	positions := make([]int, 0, len(args))
	for _, arg := range args {
		i, err := recordArg(doc, arg)
		if err != nil {
			return nil, nil, err
		}
		r, _ := doc.Get(i)
		records = append(records, r)
		positions = append(positions, i)
	}
	return records, positions, nil
}

// remapFailures rewrites batch-relative failure indices to document positions.
func remapFailures(s *thumbnail.Summary, positions []int) {
	for k := range s.Failures {
		if idx := s.Failures[k].Index; idx >= 0 && idx < len(positions) {
			s.Failures[k].Index = positions[idx]
		}
	}
}

func progressPrinter(w io.Writer, enabled bool) thumbnail.ProgressFunc {
	if !enabled || !shouldColorize(w) {
		return nil
	}
	return func(done, total int) {
		fmt.Fprintf(w, "\r%d/%d", done, total)
		if done == total {
			fmt.Fprintln(w)
		}
	}
}

func renderSummary(out io.Writer, s thumbnail.Summary) {
	colorize := shouldColorize(out)
	fmt.Fprintln(out, renderStatusLine("Generated", statusOK, strconv.Itoa(s.Generated), colorize))
	fmt.Fprintln(out, renderStatusLine("Skipped", statusInfo, strconv.Itoa(s.Skipped), colorize))
	fmt.Fprintln(out, renderStatusLine("Failed", kindFor(s.Failed), strconv.Itoa(s.Failed), colorize))
	if s.Canceled {
		fmt.Fprintln(out, renderStatusLine("Canceled", statusWarn, fmt.Sprintf("after %d of %d", s.Processed(), s.Total), colorize))
	}
	if len(s.Failures) > 0 {
		rows := make([][]string, 0, len(s.Failures))
		for _, f := range s.Failures {
			rows = append(rows, []string{strconv.Itoa(f.Index), f.SourceID, f.Error})
		}
		fmt.Fprintln(out, renderTable([]string{"#", "Src", "Error"}, rows, []columnAlignment{alignRight}))
	}
}

func newThumbsWatchCommand(ctx *commandContext) *cobra.Command {
	var catchUp bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate thumbnails as source images change",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lock := flock.New(cfg.WatchLockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return faults.Wrap(faults.ErrIO, "cli", "thumbs watch", "acquire lock "+cfg.WatchLockPath(), err)
			}
			if !locked {
				return faults.Wrap(faults.ErrConfiguration, "cli", "thumbs watch",
					"another 'thumbs watch' is already running for "+cfg.Paths.StateDir, nil)
			}
			defer func() { _ = lock.Unlock() }()

			runCtx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			doc, err := ctx.openDocument(runCtx)
			if err != nil {
				return err
			}
			if err := requireSourceRoot(doc); err != nil {
				return err
			}
			session := newWatchSession(doc, thumbnail.BatchOptions{Workers: cfg.Thumbnails.Workers}, ctx.log(), cmd.OutOrStdout())
			if catchUp {
				session.catchUp(runCtx)
			}

			w, err := watch.New(doc.SourceRoot(), session.handle, watch.Options{
				Debounce: cfg.DebounceInterval(),
				Logger:   ctx.log(),
			})
			if err != nil {
				return faults.Wrap(faults.ErrIO, "cli", "thumbs watch", doc.SourceRoot(), err)
			}
			if err := w.Start(runCtx); err != nil {
				return faults.Wrap(faults.ErrIO, "cli", "thumbs watch", doc.SourceRoot(), err)
			}
			defer w.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", doc.SourceRoot())
			<-runCtx.Done()
			if dropped := w.Dropped(); dropped > 0 {
				logging.WarnWithContext(ctx.log(), "watcher dropped file events", "watch_events_dropped",
					logging.Int("dropped", dropped),
					logging.String(logging.FieldImpact, "some source changes were not regenerated"),
					logging.String(logging.FieldErrorHint, "run 'spritedeck thumbs generate' to catch up"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&catchUp, "catch-up", true, "Generate missing or outdated thumbnails before watching")
	return cmd
}
