package domain

// TestFailure represents a failed run item
type TestFailure struct {
	ID       string `json:"id,omitempty"`
	Selector string `json:"selector"`
	FilePath string `json:"file_path,omitempty"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message"`
	Resolved bool   `json:"resolved,omitempty"` // Track if the failure is marked as resolved
}
