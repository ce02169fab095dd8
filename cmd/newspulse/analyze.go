package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/newspulse/internal/logger"
	"github.com/seenimoa/newspulse/internal/portfolio"
)

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score the current news feed against a portfolio",
	Long: `Load the configured news feed once, keep the items that mention the
given holdings, and print a sentiment verdict for each plus the overall
portfolio sentiment.

Examples:
  newspulse analyze --holding RELIANCE:10:2450 --holding TCS:5:3500
  newspulse analyze --portfolio holdings.yaml --seed 7
  newspulse analyze --holding HDFC:10:1500 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, _ := cmd.Flags().GetStringArray("holding")
		portfolioFile, _ := cmd.Flags().GetString("portfolio")
		asJSON, _ := cmd.Flags().GetBool("json")
		if cmd.Flags().Changed("seed") {
			cfg.Scoring.Seed, _ = cmd.Flags().GetInt64("seed")
		}

		var inputs []portfolio.HoldingInput
		if portfolioFile != "" {
			loaded, err := portfolio.LoadHoldingsFile(portfolioFile)
			if err != nil {
				return err
			}
			inputs = append(inputs, loaded...)
		}
		for _, spec := range specs {
			in, err := portfolio.ParseHoldingSpec(spec)
			if err != nil {
				return err
			}
			inputs = append(inputs, in)
		}

		svc, err := newDashboard(cfg)
		if err != nil {
			return err
		}
		if err := svc.Tracker().AddAll(inputs); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		if err := svc.Prime(ctx); err != nil {
			return fmt.Errorf("load news: %w", err)
		}

		st := svc.State()
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		}
		renderState(os.Stdout, st)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringArray("holding", nil, "holding as SYMBOL:QUANTITY:PRICE (repeatable)")
	analyzeCmd.Flags().String("portfolio", "", "YAML file of holdings")
	analyzeCmd.Flags().Int64("seed", 0, "seed for reproducible confidence values")
	analyzeCmd.Flags().Bool("json", false, "print the result as JSON")
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Print the configured news feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := newSource(cfg, logger.Log)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		items, err := src.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", src.Name(), err)
		}
		renderNews(os.Stdout, "📰 "+src.Name(), items)
		return nil
	},
}
