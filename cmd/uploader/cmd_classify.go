package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grainlens/uploader/internal/adapter/client"
	"github.com/grainlens/uploader/internal/adapter/display"
	"github.com/grainlens/uploader/internal/domain/entity"
)

var rawOutput bool

// classifyCmd classifies one image
var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Classify a single image",
	Long: `Uploads one image and prints the predicted rice type.

With --raw the service's status code and body are printed as received,
which is useful when checking what the service answers.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	file, err := entity.ReadSelectedFile(args[0])
	if err != nil {
		return err
	}

	if rawOutput {
		return runRawProbe(cmd, file)
	}

	uc, err := newUploadClassifier(display.NewWriterOutput(cmd.OutOrStdout()), nil)
	if err != nil {
		return err
	}
	defer uc.Close()

	pending := uc.Select(ctx, entity.NewSelection(file))
	if pending == nil {
		return nil
	}
	result, err := pending.Wait(ctx)
	if err != nil {
		return err
	}
	if !result.IsOk() {
		return fmt.Errorf("classification failed: %s", result.Kind)
	}
	return nil
}

func runRawProbe(cmd *cobra.Command, file *entity.SelectedFile) error {
	imageClient := client.NewImageClient(cfg.Classifier.Endpoint, cfg.Classifier.Timeout)

	resp, err := imageClient.Upload(cmd.Context(), file)
	if err != nil {
		logger.Error("Probe request failed", zap.String("endpoint", imageClient.Endpoint()), zap.Error(err))
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Status Code:", resp.StatusCode)
	fmt.Fprintln(out, "Response Text:", string(resp.Body))

	var parsed map[string]any
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		fmt.Fprintln(out, "Response is not valid JSON")
		return nil
	}
	fmt.Fprintln(out, "Response JSON:", parsed)
	return nil
}
