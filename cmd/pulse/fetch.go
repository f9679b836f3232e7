package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/pulse/internal/core"
	"github.com/mkarlsen/pulse/internal/logger"
)

var (
	fetchFrom    string
	fetchTo      string
	fetchRefresh bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [symbol]",
	Short: "Fetch daily prices for a symbol",
	Long:  "Resolve a daily price window through the cache tiers, going remote when needed, and print it",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "Start date YYYY-MM-DD (required)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "End date YYYY-MM-DD (required)")
	fetchCmd.Flags().BoolVar(&fetchRefresh, "refresh", false, "Bypass local tiers and refetch")

	fetchCmd.MarkFlagRequired("from")
	fetchCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	symbol := args[0]

	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	start, err := core.ParseDate(fetchFrom)
	if err != nil {
		return fmt.Errorf("invalid from date format (expected YYYY-MM-DD): %w", err)
	}
	end, err := core.ParseDate(fetchTo)
	if err != nil {
		return fmt.Errorf("invalid to date format (expected YYYY-MM-DD): %w", err)
	}

	l, store, err := buildLoader(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	series, err := l.GetPrices(ctx, symbol, start, end, fetchRefresh)
	if err != nil {
		return fmt.Errorf("fetching prices: %w", err)
	}

	fmt.Printf("%s: %d rows\n", symbol, len(series))
	for _, p := range series {
		fmt.Printf("%s  %12.4f\n", core.DateKey(p.Date), p.Value)
	}
	return nil
}
