package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mpetrenko/wine-bundler/internal/logger"
	"github.com/mpetrenko/wine-bundler/internal/service/bundler"
	"github.com/mpetrenko/wine-bundler/internal/version"
)

var (
	// configPath to the optional configuration YAML file.
	configPath string

	// logLevel controls diagnostic verbosity.
	logLevel string

	// rootCmd represents the base command assembling the bundle.
	rootCmd = &cobra.Command{
		Use:   "wine-bundler",
		Short: "Assemble a distributable Wine bundle for macOS",
		Long: "Fetch the latest Wine, MoltenVK, DXVK and winetricks releases, " +
			"apply the local patch overlay and produce a single compressed archive.",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			options := &bundler.Options{
				ConfigPath: configPath,
			}

			return bundler.Run(ctx, options)
		},
	}
)

// Execute runs the wine-bundler CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "diagnostic log level")
}
