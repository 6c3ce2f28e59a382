package main

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/spf13/cobra"

	"spritedeck/internal/config"
	"spritedeck/internal/faults"
	"spritedeck/internal/fileutil"
	"spritedeck/internal/logging"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var (
		size   int
		target string
	)

	cmd := &cobra.Command{
		Use:   "preview <index|src>",
		Short: "Write a resized preview of a record's source image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(target) == "" {
				return fmt.Errorf("--out is required")
			}
			dest, err := config.ExpandPath(target)
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
			img, err := doc.Preview(i, size)
			if err != nil {
				return err
			}
			hits, misses := doc.Previews().Stats()
			ctx.log().Debug("preview rendered",
				logging.String(logging.FieldEventType, "preview_rendered"),
				logging.Int("index", i),
				logging.Int("size", size),
				logging.Any("cache_hits", hits),
				logging.Any("cache_misses", misses))
			var buf bytes.Buffer
			if err := png.Encode(&buf, img); err != nil {
				return faults.Wrap(faults.ErrImage, "cli", "preview", "encode", err)
			}
			if err := fileutil.WriteFileAtomic(dest, buf.Bytes(), 0o644); err != nil {
				return faults.Wrap(faults.ErrIO, "cli", "preview", dest, err)
			}
			b := img.Bounds()
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %dx%d preview to %s\n", b.Dx(), b.Dy(), dest)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "size", 64, "Longest edge in pixels")
	cmd.Flags().StringVar(&target, "out", "", "Destination PNG file")
	return cmd
}
