package commands

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spergel/princeton-academic-events/internal/output"
	"github.com/spergel/princeton-academic-events/internal/pipeline"
	"github.com/spergel/princeton-academic-events/internal/schema"
)

func testDataset() *schema.Dataset {
	return schema.NewDataset([]*schema.Event{
		{ID: "physics_20250924_Colloquium", Title: "Colloquium on Dark Matter"},
	}, time.Date(2025, time.September, 24, 12, 0, 0, 0, time.UTC))
}

func TestWriteResults_CountsEachSourceOnce(t *testing.T) {
	// outDir is an existing file, so every write fails. A source that errored
	// and then fails its write must still count as one failure.
	blocker := filepath.Join(t.TempDir(), "out")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := []pipeline.Result{
		{Source: "Physics", Dataset: testDataset(), Err: errors.New("page 3 fetch failed")},
		{Source: "History", Dataset: testDataset()},
	}
	if got := writeResults(results, blocker, output.FormatJSON); got != 2 {
		t.Errorf("failures = %d, want 2 (one per source)", got)
	}
}

func TestWriteResults_SuccessfulSources(t *testing.T) {
	outDir := t.TempDir()
	results := []pipeline.Result{
		{Source: "Physics", Dataset: testDataset()},
		{Source: "Near Eastern Studies", Err: errors.New("blocked")},
	}
	if got := writeResults(results, outDir, output.FormatJSON); got != 1 {
		t.Errorf("failures = %d, want 1", got)
	}
	if _, err := os.Stat(filepath.Join(outDir, "physics.json")); err != nil {
		t.Errorf("expected per-source dataset file: %v", err)
	}
}

func TestWriteResults_EmptyDatasetIsNotAFailure(t *testing.T) {
	results := []pipeline.Result{
		{Source: "Physics", Dataset: schema.NewDataset(nil, time.Now())},
	}
	if got := writeResults(results, t.TempDir(), output.FormatJSON); got != 0 {
		t.Errorf("failures = %d, want 0", got)
	}
}
