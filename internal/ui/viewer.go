package ui

import "ktp/internal/domain"

// Viewer displays stored run failures in an interactive TUI
type Viewer interface {
	View(results *domain.TestResultsOutput) error
}
