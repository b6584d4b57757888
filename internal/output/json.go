package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/stressray/stressray/internal/collector"
	"github.com/stressray/stressray/internal/engine"
	"github.com/stressray/stressray/internal/stats"
)

// ReportFile is the persisted shape of a run: the derived report plus the
// raw outcome population it was computed from.
type ReportFile struct {
	Timestamp time.Time           `json:"timestamp"`
	RunID     string              `json:"runId"`
	Target    string              `json:"target"`
	Strategy  string              `json:"strategy"`
	Partial   bool                `json:"partial,omitempty"`
	Results   stats.Report        `json:"results"`
	Outcomes  []collector.Outcome `json:"outcomes"`
}

// WriteJSON persists the run result to path as indented JSON.
func WriteJSON(path string, result *engine.Result) error {
	file := ReportFile{
		Timestamp: result.EndTime,
		RunID:     result.RunID,
		Target:    result.Target,
		Strategy:  string(result.Strategy),
		Partial:   result.Partial,
		Results:   result.Report,
		Outcomes:  result.Outcomes,
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	return nil
}
