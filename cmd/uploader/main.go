package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grainlens/uploader/internal/infrastructure/config"
	applog "github.com/grainlens/uploader/internal/infrastructure/logger"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "uploader",
	Short: "Send rice grain images to a classification service",
	Long: `uploader posts an image to a remote classification service and shows
the predicted rice type, or the error the service reported.

Images can be classified one at a time, picked in a terminal file browser,
picked up from a watched directory, or uploaded through a web page.

Configuration is read from --config, a .env file and UPLOADER_* variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if verbose {
			cfg.Log.Level = "debug"
		}

		logger, err = applog.NewLogger(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	classifyCmd.Flags().BoolVar(&rawOutput, "raw", false, "Print the service's status code and raw body instead of the result")
	serveCmd.Flags().BoolVar(&withStub, "with-stub", false, "Also run the stub classification service")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
