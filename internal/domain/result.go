package domain

import "time"

// Status is the outcome of one dispatched run item
type Status string

const (
	StatusStarted Status = "started"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome is reported once per leaf item. Node is nil for run-level failures such as a
// missing workspace folder.
type Outcome struct {
	Node     *TestNode
	Selector Selector
	Status   Status
	Message  string
	Duration time.Duration
}

// TestResultsMeta contains metadata about a test run
type TestResultsMeta struct {
	RunID           string  `json:"run_id"`
	WorkspaceRoot   string  `json:"workspace_root"`
	TotalItems      int     `json:"total_items"`
	PassedItems     int     `json:"passed_items"`
	FailedItems     int     `json:"failed_items"`
	Cancelled       bool    `json:"cancelled"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta    TestResultsMeta `json:"meta"`
	Details []TestFailure   `json:"details"`
}

// RunSummary collects the outcomes of one run in dispatch order
type RunSummary struct {
	Root      string
	Outcomes  []Outcome
	Cancelled bool
	Duration  time.Duration
}

// Counts returns the number of passed and failed outcomes
func (s *RunSummary) Counts() (passed, failed int) {
	for _, o := range s.Outcomes {
		switch o.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		}
	}
	return passed, failed
}
