package main

import (
	"github.com/spf13/cobra"

	"github.com/grainlens/uploader/internal/adapter/display"
	"github.com/grainlens/uploader/internal/adapter/source"
)

// watchCmd classifies images as they appear in a directory
var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Classify images dropped into a directory",
	Long: `Watches a directory and classifies each image written to it.

A newer image supersedes one still being classified; only the latest
result is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	uc, err := newUploadClassifier(display.NewWriterOutput(cmd.OutOrStdout()), nil)
	if err != nil {
		return err
	}
	defer uc.Close()

	w, err := source.NewWatcher(args[0], uc, cfg.Watch, logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-w.Done():
	}
	return nil
}
