package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grainlens/uploader/internal/adapter/display"
	"github.com/grainlens/uploader/internal/adapter/tui"
)

// pickCmd opens a terminal file picker
var pickCmd = &cobra.Command{
	Use:   "pick [dir]",
	Short: "Pick images to classify in a terminal file browser",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPick,
}

func runPick(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	// The terminal belongs to the picker; only file logging survives.
	switch cfg.Log.Output {
	case "", "stderr", "stdout":
		logger = zap.NewNop()
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out := display.NewMemoryOutput()
	uc, err := newUploadClassifier(out, nil)
	if err != nil {
		return err
	}
	defer uc.Close()

	model := tui.New(ctx, uc, out, dir, cfg.Watch.Extensions)
	p := tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
