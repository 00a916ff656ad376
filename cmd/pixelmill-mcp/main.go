// pixelmill-mcp is an MCP server exposing image manipulation, drawing,
// object detection and OCR tools over stdio or HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pixelmill/pixelmill-mcp/internal/config"
	"github.com/pixelmill/pixelmill-mcp/internal/logging"
	"github.com/pixelmill/pixelmill-mcp/internal/models"
	"github.com/pixelmill/pixelmill-mcp/internal/server"
)

// Set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Optional .env in the working directory; missing is fine.
	_ = godotenv.Load()

	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var (
		transport  string
		host       string
		port       int
		path       string
		configFile string
		logFile    string
	)

	root := &cobra.Command{
		Use:     "pixelmill-mcp",
		Short:   "MCP server for image manipulation, detection and OCR",
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(logFile)

			cfg, err := config.NewManager(configFile, log)
			if err != nil {
				return err
			}

			srv, err := server.New(cfg, log, version)
			if err != nil {
				return err
			}
			defer srv.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			switch transport {
			case "stdio":
				return srv.Run(ctx)
			case "http":
				return srv.RunHTTP(ctx, host, port, path)
			default:
				return fmt.Errorf("unknown transport %q: choose stdio or http", transport)
			}
		},
	}

	root.Flags().StringVar(&transport, "transport", "stdio", "transport to serve on (stdio or http)")
	root.Flags().StringVar(&host, "host", "127.0.0.1", "bind address for the http transport")
	root.Flags().IntVar(&port, "port", 8000, "port for the http transport")
	root.Flags().StringVar(&path, "path", "/mcp", "request path for the http transport")
	root.PersistentFlags().StringVar(&configFile, "config", config.DefaultFile, "configuration file")
	root.PersistentFlags().StringVar(&logFile, "log-file", logging.DefaultLogFile, "log file")

	root.AddCommand(postInstallCommand(&configFile, &logFile))
	root.AddCommand(downloadModelsCommand(&logFile))
	root.AddCommand(describeModelsCommand())

	return root
}

// postInstallCommand prepares a fresh working directory: configuration
// file, models directory, description manifest and the default detection
// model.
func postInstallCommand(configFile, logFile *string) *cobra.Command {
	var skipDownload bool

	cmd := &cobra.Command{
		Use:   "post-install",
		Short: "Create the config file and models directory, and fetch the default model",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(*logFile)

			cfg, err := config.NewManager(*configFile, log)
			if err != nil {
				return err
			}

			dir, err := models.EnsureDir()
			if err != nil {
				return err
			}
			manifest, err := models.WriteDescriptions()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Models directory: %s\nManifest: %s\n", dir, manifest)

			if skipDownload {
				return nil
			}
			name, err := models.Download(cfg.Current().Detection.DefaultModel, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default model ready: %s\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipDownload, "skip-download", false, "skip downloading the default detection model")
	return cmd
}

func downloadModelsCommand(logFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "download-models MODEL...",
		Short: "Download models by Ultralytics file name or Hugging Face 'owner/repo:file' spec",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(*logFile)
			for _, spec := range args {
				name, err := models.Download(spec, log)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Downloaded: %s\n", name)
			}
			return nil
		},
	}
}

func describeModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe-models",
		Short: "Write the built-in model descriptions to the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := models.WriteDescriptions()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Manifest written: %s\n", path)
			return nil
		},
	}
}
