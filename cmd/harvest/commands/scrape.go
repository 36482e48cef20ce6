package commands

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spergel/princeton-academic-events/internal/aggregate"
	"github.com/spergel/princeton-academic-events/internal/fetcher"
	"github.com/spergel/princeton-academic-events/internal/logger"
	"github.com/spergel/princeton-academic-events/internal/output"
	"github.com/spergel/princeton-academic-events/internal/pipeline"
	"github.com/spergel/princeton-academic-events/internal/schema"
	"github.com/spergel/princeton-academic-events/internal/source"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Harvest events from configured sources",
	Long: `Scrape each configured source, normalize the events, and write one
dataset file per source.

Examples:
  # Everything in the sources file
  harvest scrape --sources configs/sources.yaml -o data/

  # One department, with verbose logging
  harvest scrape --sources configs/sources.yaml --only "Physics" -o data/ --debug

  # Route challenged sites through FlareSolverr
  harvest scrape --sources configs/sources.yaml -o data/ \
      --flaresolverr-url http://localhost:8191/v1`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	flags.StringP("sources", "s", "", "path to sources YAML file (required)")
	flags.StringSlice("only", nil, "harvest only the named source(s) (can be repeated)")

	// Output settings
	flags.StringP("output", "o", "data", "output directory for per-source datasets")
	flags.String("format", "json", "output format: json, jsonl, yaml")
	flags.String("combined", "", "also write a combined corpus to this file")

	// Fetch settings
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.String("flaresolverr-url", "", "FlareSolverr API URL for challenge bypass (e.g., http://localhost:8191/v1)")
	flags.Bool("no-browser", false, "disable the headless-browser fallback")

	// Politeness and pacing
	flags.Duration("page-delay", 1*time.Second, "delay between listing pages")
	flags.Duration("detail-delay", 500*time.Millisecond, "delay between detail pages")
	flags.Duration("source-timeout", 5*time.Minute, "per-source harvest deadline")
	flags.IntP("concurrency", "c", 3, "sources harvested in parallel")

	// Date handling
	flags.String("reference", "", "reference date for year inference (YYYY-MM-DD, default today)")

	_ = scrapeCmd.MarkFlagRequired("sources")

	_ = viper.BindPFlag("flaresolverr_url", flags.Lookup("flaresolverr-url"))
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sourcesPath, _ := cmd.Flags().GetString("sources")
	sources, err := source.Load(sourcesPath)
	if err != nil {
		logError("failed to load sources: %v", err)
		return err
	}

	only, _ := cmd.Flags().GetStringSlice("only")
	sources = filterSources(sources, only)
	if len(sources) == 0 {
		return fmt.Errorf("no sources match the requested names")
	}
	logger.Debug("sources loaded", "count", len(sources))

	formatStr, _ := cmd.Flags().GetString("format")
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	noBrowser, _ := cmd.Flags().GetBool("no-browser")
	f := fetcher.NewChallenge(fetcher.ChallengeConfig{
		Static:          fetcher.StaticConfig{Timeout: timeout},
		FlareSolverrURL: viper.GetString("flaresolverr_url"),
		DisableBrowser:  noBrowser,
	})
	defer f.Close()

	opts := pipeline.DefaultOptions()
	opts.PageDelay, _ = cmd.Flags().GetDuration("page-delay")
	opts.DetailDelay, _ = cmd.Flags().GetDuration("detail-delay")
	opts.SourceTimeout, _ = cmd.Flags().GetDuration("source-timeout")
	opts.Concurrency, _ = cmd.Flags().GetInt("concurrency")

	if refStr, _ := cmd.Flags().GetString("reference"); refStr != "" {
		ref, err := time.Parse("2006-01-02", refStr)
		if err != nil {
			return fmt.Errorf("invalid reference date %q: %w", refStr, err)
		}
		opts.Reference = ref
	}

	runner := pipeline.New(f, nil, opts)
	results := runner.RunAll(ctx, sources)

	outDir, _ := cmd.Flags().GetString("output")
	failures := writeResults(results, outDir, format)

	if combinedPath, _ := cmd.Flags().GetString("combined"); combinedPath != "" {
		if err := writeCombined(results, combinedPath, format); err != nil {
			return err
		}
	}

	if failures == len(results) {
		return fmt.Errorf("all %d sources failed", len(results))
	}
	if failures > 0 {
		logInfo("%d of %d sources failed; see log for details", failures, len(results))
	}
	return nil
}

// writeResults writes one dataset file per source that produced events and
// returns how many sources failed. A source that both errored and failed its
// write counts once.
func writeResults(results []pipeline.Result, outDir string, format output.Format) int {
	failures := 0
	for _, res := range results {
		failed := res.Err != nil
		if res.Dataset != nil && len(res.Dataset.Events) > 0 {
			path := filepath.Join(outDir, slugify(res.Source)+"."+string(format))
			if err := output.WriteFile(path, format, res.Dataset); err != nil {
				logError("failed to write %s: %v", path, err)
				failed = true
			} else {
				logInfo("wrote %s (%d events)", path, len(res.Dataset.Events))
			}
		}
		if failed {
			failures++
		}
	}
	return failures
}

func writeCombined(results []pipeline.Result, path string, format output.Format) error {
	var datasets []*schema.Dataset
	for i := range results {
		if results[i].Dataset != nil {
			datasets = append(datasets, results[i].Dataset)
		}
	}
	combined := aggregate.Combine(datasets, time.Now())
	if err := output.WriteFile(path, format, combined); err != nil {
		logError("failed to write combined corpus: %v", err)
		return err
	}
	logInfo("wrote %s (%d events)", path, combined.Metadata.TotalEvents)
	return nil
}

func filterSources(sources []source.Config, only []string) []source.Config {
	if len(only) == 0 {
		return sources
	}
	want := make(map[string]bool, len(only))
	for _, name := range only {
		want[strings.ToLower(strings.TrimSpace(name))] = true
	}
	var out []source.Config
	for _, s := range sources {
		if want[strings.ToLower(s.Name)] {
			out = append(out, s)
		}
	}
	return out
}

func slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	return b.String()
}
