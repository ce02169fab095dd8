// newspulse: portfolio-aware Indian market news with keyword sentiment.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/newspulse/api"
	"github.com/seenimoa/newspulse/internal/config"
	"github.com/seenimoa/newspulse/internal/dashboard"
	"github.com/seenimoa/newspulse/internal/logger"
	"github.com/seenimoa/newspulse/internal/portfolio"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	err := rootCmd.Execute()
	logger.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "newspulse",
	Short: "newspulse — portfolio news relevance and sentiment",
	Long: `newspulse tracks a portfolio of NSE holdings, filters the market news
feed down to items that mention them, and scores each item's sentiment
into a single portfolio verdict.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		return logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("newspulse %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}
		portfolioFile, _ := cmd.Flags().GetString("portfolio")

		svc, err := newDashboard(cfg)
		if err != nil {
			return err
		}
		if portfolioFile != "" {
			inputs, err := portfolio.LoadHoldingsFile(portfolioFile)
			if err != nil {
				return err
			}
			for _, in := range inputs {
				if _, err := svc.AddHolding(in.Symbol, in.Quantity, in.Price); err != nil {
					return fmt.Errorf("%s: %w", portfolioFile, err)
				}
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		if err := svc.Prime(ctx); err != nil {
			// The server is still useful with an empty feed; a refresh can retry.
			logger.Log.WithError(err).Warn("initial news load failed")
		}

		api.Version = version
		srv := api.NewServer(cfg, svc, logger.Log)
		fmt.Printf("🌐 Starting newspulse API server on %s\n", cfg.API.Addr())
		return srv.ListenAndServe(cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "override api.port")
	serveCmd.Flags().String("portfolio", "", "YAML file of holdings to load at startup")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  newspulse — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Market Status: %s\n", utils.MarketStatus())
		fmt.Printf("  Time (IST):    %s\n", utils.FormatDateTimeIST(utils.NowIST()))
		fmt.Println()

		// Config summary
		fmt.Println("  Configuration:")
		fmt.Printf("    Feed Provider: %s\n", cfg.Feed.Provider)
		if src, err := newSource(cfg, logger.Log); err == nil {
			fmt.Printf("    Feed Source:   %s\n", src.Name())
		}
		fmt.Printf("    Refresh Delay: %dms\n", cfg.Feed.RefreshDelayMS)
		fmt.Printf("    News Alerts:   %t\n", cfg.Alerts.Enabled)
		fmt.Printf("    API Server:    %s\n", cfg.API.Addr())
		fmt.Printf("    Logging:       %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)
		fmt.Println()

		// API keys status
		fmt.Println("  API Keys:")
		keys := config.CheckAPIKeys(cfg)
		for _, k := range keys {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// newDashboard wires a tracker and news source from configuration.
func newDashboard(cfg *config.Config) (*dashboard.Service, error) {
	src, err := newSource(cfg, logger.Log)
	if err != nil {
		return nil, err
	}
	tracker := portfolio.NewTracker(newConfidence(cfg.Scoring))
	return dashboard.New(tracker, src, dashboard.Options{
		RefreshDelay:  time.Duration(cfg.Feed.RefreshDelayMS) * time.Millisecond,
		AlertsEnabled: cfg.Alerts.Enabled,
		Logger:        logger.Log,
	}), nil
}
