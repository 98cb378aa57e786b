package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ktp/internal/domain"
)

// Save converts summary to the stored format, writes it, and returns what was written.
func (s *JSONStorage) Save(summary *domain.RunSummary) (*domain.TestResultsOutput, error) {
	passed, failed := summary.Counts()

	output := &domain.TestResultsOutput{
		Meta: domain.TestResultsMeta{
			RunID:           uuid.NewString(),
			WorkspaceRoot:   summary.Root,
			TotalItems:      len(summary.Outcomes),
			PassedItems:     passed,
			FailedItems:     failed,
			Cancelled:       summary.Cancelled,
			Duration:        summary.Duration.String(),
			DurationSeconds: summary.Duration.Seconds(),
			Timestamp:       time.Now().Format(time.RFC3339),
		},
		Details: []domain.TestFailure{},
	}

	for _, o := range summary.Outcomes {
		if o.Status != domain.StatusFailed {
			continue
		}
		f := domain.TestFailure{
			Selector: o.Selector.String(),
			Message:  o.Message,
		}
		if o.Node != nil {
			f.ID = o.Node.ID
			f.FilePath = o.Node.Location.Path
			if r := o.Node.Location.Range; r != nil {
				f.Line = r.StartLine
			}
		}
		output.Details = append(output.Details, f)
	}

	if err := s.SaveOutput(output); err != nil {
		return nil, err
	}
	return output, nil
}

// Load reads the last test results from the JSON output file.
func (s *JSONStorage) Load() (*domain.TestResultsOutput, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var output domain.TestResultsOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &output, nil
}

// SaveOutput writes the full output to the JSON file.
func (s *JSONStorage) SaveOutput(output *domain.TestResultsOutput) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
