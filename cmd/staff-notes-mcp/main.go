package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/staff-notes-mcp/internal/config"
	"github.com/ironsheep/staff-notes-mcp/internal/logging"
	"github.com/ironsheep/staff-notes-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "staff-notes-mcp",
	Short: "MCP server that names notes drawn on a music staff",
	Long: `staff-notes-mcp names the note a hand-drawn stroke represents on a
five-line staff.

Without a subcommand it serves the MCP protocol over stdin/stdout.
Configure it in your MCP client (e.g., Claude Desktop).

Environment variables (also read from a .env file):
  STAFF_MCP_LOG_LEVEL=debug        Log level (default info)
  STAFF_MCP_LOG_FILE=path          Also log to a rotating file
  STAFF_MCP_CONVENTION=treble      Default naming convention
  STAFF_MCP_INK_THRESHOLD=128      Gray level below which pixels are ink
  STAFF_MCP_HTTP_ADDR=:8080        Listen address for serve-http
  STAFF_MCP_SOUND_DIR=sound        Directory holding note samples`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, _, err := newServer()
		if err != nil {
			return err
		}
		return srv.Run()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("staff-notes-mcp %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
	},
}

var serveHTTPCmd = &cobra.Command{
	Use:   "serve-http",
	Short: "Serve the detection API over HTTP for browser drawing clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, cfg, err := newServer()
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.HTTPAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenHTTP(ctx, addr)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load when present")
	rootCmd.Version = Version

	serveHTTPCmd.Flags().String("addr", "", "Listen address (default from STAFF_MCP_HTTP_ADDR)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveHTTPCmd)
	rootCmd.AddCommand(detectCmd)
}

// newServer loads the configuration and builds a server logging to stderr,
// since stdout is reserved for the MCP protocol.
func newServer() (*server.Server, *config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(logging.Options{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
	})
	logger.WithFields(logrus.Fields{
		"version":    Version,
		"built":      BuildTime,
		"commit":     GitCommit,
		"convention": cfg.Convention.Name,
	}).Debug("staff notes MCP server starting")

	srv := server.New(
		server.WithLogger(logger),
		server.WithConvention(cfg.Convention),
		server.WithInkThreshold(cfg.InkThreshold),
		server.WithSoundDir(cfg.SoundDir),
		server.WithVersion(Version),
	)
	return srv, cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
