package execution

import (
	"context"
	"errors"

	"ktp/internal/domain"
)

// Verdict is the build tool's answer to an invocation
type Verdict int

const (
	// Accepted means the command was handed to the session
	Accepted Verdict = iota
	// Unsupported means the workspace has no recognized build tool
	Unsupported
)

func (v Verdict) String() string {
	if v == Accepted {
		return "accepted"
	}
	return "unsupported"
}

// Invoker runs the tests named by a selector in the given workspace root.
// Acceptance only means the command was issued; its exit status is not observed.
type Invoker interface {
	Invoke(ctx context.Context, root string, sel domain.Selector) (Verdict, error)
}

// Terminal accepts command lines for an interactive session
type Terminal interface {
	Send(ctx context.Context, line string) error
}

var (
	// ErrNoWorkspace is returned when a run is requested with no workspace folder open
	ErrNoWorkspace = errors.New("no workspace folder is open")
	// ErrNoManifest describes build-tool-incompatible run items
	ErrNoManifest = errors.New("no Gradle build file found")
)
