// Fin-Pulse: credit scoring for listed Indian companies from balance-sheet
// ratios, market capitalisation and news sentiment.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fin-pulse-engine/internal/market"
	"fin-pulse-engine/internal/report"
	"fin-pulse-engine/internal/resolver"
	"fin-pulse-engine/internal/store"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var cfg *store.Config

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer shutdownSystem()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		return exitCode(err)
	}
	return 0
}

var rootCmd = &cobra.Command{
	Use:           "finpulse",
	Short:         "Credit scores for listed Indian companies",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeSystem(); err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("config")
		var err error
		cfg, err = loadConfig(cmd.Context(), path)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().String("news-key", "", "NewsAPI key (default: $NEWSAPI_KEY or the env var named in config)")

	analyzeCmd.Flags().StringP("format", "f", "text", "output format: text, json, markdown, html")
	analyzeCmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	companiesCmd.Flags().Bool("kite", false, "import the equity catalogue from Kite Connect as a companies table")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(companiesCmd)
	rootCmd.AddCommand(versionCmd)
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze TICKER",
	Short: "Score a company by ticker, bare symbol or name",
	Example: `  finpulse analyze TCS.NS
  finpulse analyze infosys --format markdown
  finpulse analyze RELIANCE -f html -o reliance.html`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatName, _ := cmd.Flags().GetString("format")
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")

		ctx := cmd.Context()
		analyzer, closeNews, err := initializeAnalyzer(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeNews()

		newsKey, _ := cmd.Flags().GetString("news-key")
		if newsKey == "" {
			newsKey = cfg.NewsAPIKey()
		}

		r, err := analyzer.Analyze(ctx, report.Request{Ticker: args[0], NewsAPIKey: newsKey})
		if err != nil {
			return err
		}

		if output == "" {
			return report.Render(cmd.OutOrStdout(), r, format)
		}
		return writeFile(output, func(w io.Writer) error {
			return report.Render(w, r, format)
		})
	},
}

// --- Companies Command ---

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List the companies the resolver knows",
	Long: `List the configured companies table. With --kite, fetch the exchange's
equity instruments from Kite Connect and print them as a YAML companies
section ready to paste into config.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		useKite, _ := cmd.Flags().GetBool("kite")
		if useKite {
			companies, err := importKiteCompanies(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(out)
			defer enc.Close()
			return enc.Encode(map[string]map[string]string{"companies": resolver.ToTable(companies)})
		}

		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Symbol", "Company"})
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, c := range initializeResolver(cfg).Companies() {
			table.Append([]string{c.Symbol, c.Name})
		}
		table.Render()
		return nil
	},
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "finpulse %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit:  %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:   %s\n", date)
	},
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// userMessage turns known failures into a line a user can act on.
func userMessage(err error) string {
	switch {
	case errors.Is(err, market.ErrDataUnavailable):
		return fmt.Sprintf("No financial data found: %v\nCheck the ticker, e.g. TCS.NS or RELIANCE.NS.", err)
	case errors.Is(err, report.ErrUnsupportedExchange):
		return fmt.Sprintf("Unsupported ticker: %v\nAdd the exchange suffix, e.g. TCS.NS.", err)
	case errors.Is(err, report.ErrEmptyTicker):
		return "Please provide a ticker, e.g. finpulse analyze TCS.NS"
	}
	return "Error: " + err.Error()
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, market.ErrDataUnavailable):
		return 2
	case errors.Is(err, report.ErrUnsupportedExchange), errors.Is(err, report.ErrEmptyTicker):
		return 3
	}
	return 1
}
