// Package cli provides the command-line interface for ramatrack.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dfrestrepo/ramatrack/internal/config"
	"github.com/dfrestrepo/ramatrack/internal/db"
	"github.com/dfrestrepo/ramatrack/internal/llm"
	"github.com/dfrestrepo/ramatrack/internal/metrics"
	"github.com/dfrestrepo/ramatrack/internal/rama"
	"github.com/dfrestrepo/ramatrack/internal/service"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, logger and db client
	cfg         config.Config
	logger      *slog.Logger
	closeLogger func() error
	dbClient    *db.Client

	collector = metrics.NewCollector()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ramatrack",
	Short: "Track Colombian judicial processes with AI-assisted triage",
	Long: `Ramatrack follows processes published by the Rama Judicial consultation
API. It ingests a process and its procedural actions (actuaciones) into a
local store, summarizes each action and classifies its urgency with an LLM,
so you can see at a glance which cases need attention.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		logger, closeLogger = config.SetupLogger(cfg)
		slog.SetDefault(logger)

		ctx := context.Background()
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		var err error
		dbClient, err = db.NewClient(ctx, dbCfg, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if closeLogger != nil {
			_ = closeLogger()
		}
	},
}

// getPipeline wires the reconciler and facade against the shared db client.
// Commands that never enrich pass requireOracle=false and get the disabled
// backend without touching provider credentials.
func getPipeline(ctx context.Context, requireOracle bool) (*service.Reconciler, *service.Facade, *rama.Client, error) {
	source := rama.NewClient(cfg.RamaBaseURL, cfg.RamaTimeout, logger)

	oracle := llm.Oracle(llm.Disabled{})
	if requireOracle {
		var err error
		oracle, err = llm.NewOracle(ctx, cfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("init enrichment backend: %w", err)
		}
	}

	reconciler := service.NewReconciler(dbClient, source, oracle, logger, collector, cfg.LLMTimeout)
	return reconciler, service.NewFacade(dbClient), source, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(actionsCmd)
	rootCmd.AddCommand(reenrichCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(statsCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
