package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/asad/sandstack/internal/config"
	"github.com/asad/sandstack/internal/core"
	"github.com/asad/sandstack/internal/httpx"
	"github.com/asad/sandstack/internal/logging"
	"github.com/asad/sandstack/internal/services/comprehend"
	"github.com/asad/sandstack/internal/services/efs"
	"github.com/asad/sandstack/internal/services/events"
)

var (
	// Version is set at build time via ldflags.
	// Example: go build -ldflags "-X github.com/asad/sandstack/internal/cli.Version=1.0.0"
	Version = "dev"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sandstack",
	Short: "Local AWS service emulator",
	Long: `Sandstack is a local AWS service emulator that provides
minimal but realistic API implementations for local development and testing.

It exposes a single edge HTTP port that routes requests to emulated service
modules (Comprehend, EventBridge, EFS), each holding its state in memory
scoped per account and region.`,
}

// startCmd represents the start command.
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Sandstack server",
	Long: `Start the Sandstack edge server on the configured port.
The server will listen for HTTP requests and route them to enabled services.`,
	RunE: runStart,
}

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sandstack version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute is the entry point for the CLI. It should be called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runStart initializes and starts the HTTP server.
func runStart(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Initialize logger
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting sandstack",
		logging.String("version", Version),
		logging.Int("edge_port", cfg.EdgePort),
		logging.Strings("enabled_services", cfg.EnabledServices),
		logging.String("log_level", cfg.LogLevel),
	)

	// One backend registry per server instance; services register their
	// backend dicts so the control API can reset and inspect them.
	registry := core.NewRegistry()

	comprehendBackends := comprehend.NewBackends()
	eventsBackends := events.NewBackends()
	efsBackends := efs.NewBackends()
	registry.Add(comprehendBackends)
	registry.Add(eventsBackends)
	registry.Add(efsBackends)

	services := []core.Service{
		comprehend.New(comprehendBackends, logger),
		events.New(eventsBackends, logger),
		efs.New(efsBackends, logger),
	}

	// Create edge router
	router := httpx.NewEdgeRouter(cfg, logger, registry, services)

	// Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.EdgePort)
	logger.Info("listening on edge port",
		logging.String("address", addr),
	)

	if err := http.ListenAndServe(addr, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
