package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/spergel/princeton-academic-events/internal/aggregate"
	"github.com/spergel/princeton-academic-events/internal/logger"
	"github.com/spergel/princeton-academic-events/internal/output"
	"github.com/spergel/princeton-academic-events/internal/schema"
)

var combineCmd = &cobra.Command{
	Use:   "combine [dataset files...]",
	Short: "Merge per-source datasets into one corpus",
	Long: `Combine merges dataset files into a single deduplicated corpus,
sorted by date, with per-category and per-department counts in the
metadata. When the same event appears in multiple files, later files win.

Examples:
  harvest combine data/*.json -o data/all_events.json
  harvest combine data/*.json -o corpus.yaml --format yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCombine,
}

func init() {
	rootCmd.AddCommand(combineCmd)

	flags := combineCmd.Flags()
	flags.StringP("output", "o", "all_events.json", "output file for the combined corpus")
	flags.String("format", "", "output format: json, jsonl, yaml (default: from extension)")
}

func runCombine(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})

	var datasets []*schema.Dataset
	for _, path := range args {
		ds, err := loadDataset(path)
		if err != nil {
			logError("failed to load %s: %v", path, err)
			return err
		}
		logger.Debug("dataset loaded", "path", path, "events", len(ds.Events))
		datasets = append(datasets, ds)
	}

	combined := aggregate.Combine(datasets, time.Now())

	outPath, _ := cmd.Flags().GetString("output")
	formatStr, _ := cmd.Flags().GetString("format")
	var format output.Format
	if formatStr != "" {
		var err error
		if format, err = output.ParseFormat(formatStr); err != nil {
			return err
		}
	}

	if err := output.WriteFile(outPath, format, combined); err != nil {
		logError("failed to write corpus: %v", err)
		return err
	}
	logInfo("wrote %s (%d events from %d files)", outPath, combined.Metadata.TotalEvents, len(args))
	return nil
}

// loadDataset reads a dataset file, accepting both JSON and YAML.
func loadDataset(path string) (*schema.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ds schema.Dataset
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &ds)
	default:
		err = json.Unmarshal(data, &ds)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return &ds, nil
}
