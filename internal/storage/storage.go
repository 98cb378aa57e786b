package storage

import (
	"ktp/internal/domain"
)

// Storage persists and loads the outcome of the last run (e.g. for the failures viewer).
type Storage interface {
	Save(summary *domain.RunSummary) (*domain.TestResultsOutput, error)
	Load() (*domain.TestResultsOutput, error)
	// SaveOutput writes the full output (e.g. after marking failures resolved).
	SaveOutput(output *domain.TestResultsOutput) error
}

// JSONStorage stores results in a JSON file at a fixed path.
type JSONStorage struct {
	path string
}

// NewJSONStorage returns a Storage that reads/writes path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the file results are written to
func (s *JSONStorage) Path() string {
	return s.path
}
