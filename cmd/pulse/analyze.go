package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/pulse/internal/analytics"
	"github.com/mkarlsen/pulse/internal/archive"
	"github.com/mkarlsen/pulse/internal/core"
	"github.com/mkarlsen/pulse/internal/logger"
)

var (
	analyzeEquity  string
	analyzeTrades  string
	analyzeSymbol  string
	analyzeArchive bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compute a performance summary from CSV files",
	Long: `Compute growth, risk-adjusted and trade statistics from an equity
curve CSV (value per line, or date,value rows) and an optional trade
log CSV with a pnl column.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeEquity, "equity", "", "Equity curve CSV path (required)")
	analyzeCmd.Flags().StringVar(&analyzeTrades, "trades", "", "Trade log CSV path")
	analyzeCmd.Flags().StringVar(&analyzeSymbol, "symbol", "", "Symbol label for archived reports")
	analyzeCmd.Flags().BoolVar(&analyzeArchive, "archive", false, "Archive the summary as a report")

	analyzeCmd.MarkFlagRequired("equity")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	equity, err := readEquityCSV(analyzeEquity)
	if err != nil {
		return fmt.Errorf("reading equity curve: %w", err)
	}

	var trades []core.Trade
	if analyzeTrades != "" {
		trades, err = readTradesCSV(analyzeTrades)
		if err != nil {
			return fmt.Errorf("reading trade log: %w", err)
		}
	}

	engine := analytics.NewEngine(log)
	summary := engine.Summary(equity, trades, cfg.Analytics.RiskFree, cfg.Analytics.PeriodsPerYear)

	printSummary(summary)

	if analyzeArchive {
		if analyzeSymbol == "" {
			return fmt.Errorf("--symbol is required with --archive")
		}
		reports, err := buildReports(cfg, log)
		if err != nil {
			return err
		}
		if reports == nil {
			return fmt.Errorf("no archive backend configured")
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		path, err := reports.Save(ctx, analyzeSymbol, summary)
		if err != nil {
			return fmt.Errorf("archiving report: %w", err)
		}
		fmt.Printf("\nReport archived to %s\n", path)
	}
	return nil
}

func printSummary(summary core.Summary) {
	encoded := archive.EncodeSummary(summary)

	keys := make([]string, 0, len(encoded))
	for k := range encoded {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println("=== Performance Summary ===")
	for _, k := range keys {
		switch v := encoded[k].(type) {
		case string:
			fmt.Printf("%-22s %s\n", k, v)
		case float64:
			fmt.Printf("%-22s %.4f\n", k, v)
		}
	}
}

// readEquityCSV reads an equity curve. Rows may be a bare value or a
// date,value pair; a header row is skipped.
func readEquityCSV(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	var dated []core.PricePoint
	var plain []float64

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 {
			continue
		}

		if len(rec) >= 2 {
			d, derr := core.ParseDate(strings.TrimSpace(rec[0]))
			v, verr := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
			if derr == nil && verr == nil {
				dated = append(dated, core.PricePoint{Date: d, Value: v})
				continue
			}
		}

		v, verr := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if verr == nil {
			plain = append(plain, v)
			continue
		}
		// Header or junk row, skip it.
	}

	if len(dated) > 0 {
		return dated, nil
	}
	return plain, nil
}

// readTradesCSV reads a trade log with a pnl column.
func readTradesCSV(path string) ([]core.Trade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, err
	}

	pnlCol := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "pnl") {
			pnlCol = i
		}
	}
	if pnlCol < 0 {
		return nil, core.WrapError(core.ErrSchema, fmt.Errorf("no pnl column in %v", header))
	}

	var out []core.Trade
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) <= pnlCol {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[pnlCol]), 64)
		if err != nil {
			return nil, core.WrapError(core.ErrSchema, fmt.Errorf("bad pnl value %q", rec[pnlCol]))
		}
		out = append(out, core.Trade{PnL: v})
	}
	return out, nil
}
