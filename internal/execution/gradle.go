package execution

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"ktp/internal/domain"
	"ktp/internal/logging"
)

// GradleInvoker sends `<tool> test --tests <selector>` to a terminal session when the
// workspace root carries a Gradle build file.
type GradleInvoker struct {
	terminal      Terminal
	command       string
	preferWrapper bool
	manifests     []string
	logger        *zap.Logger
}

// NewGradleInvoker creates an invoker. When preferWrapper is set and the root has a
// gradlew script, ./gradlew is used instead of command.
func NewGradleInvoker(terminal Terminal, command string, preferWrapper bool, manifests []string, logger *zap.Logger) *GradleInvoker {
	return &GradleInvoker{
		terminal:      terminal,
		command:       command,
		preferWrapper: preferWrapper,
		manifests:     manifests,
		logger:        logging.OrNop(logger),
	}
}

// Invoke implements Invoker
func (g *GradleInvoker) Invoke(ctx context.Context, root string, sel domain.Selector) (Verdict, error) {
	if !g.Supports(root) {
		return Unsupported, nil
	}

	line := g.CommandLine(root, sel)
	g.logger.Info("dispatch", zap.String("selector", sel.String()), zap.String("command", line))
	if err := g.terminal.Send(ctx, line); err != nil {
		return Unsupported, fmt.Errorf("send %q: %w", line, err)
	}
	return Accepted, nil
}

// Supports reports whether root has one of the recognized build files
func (g *GradleInvoker) Supports(root string) bool {
	for _, m := range g.manifests {
		if fileExists(filepath.Join(root, m)) {
			return true
		}
	}
	return false
}

// CommandLine renders the command sent for sel
func (g *GradleInvoker) CommandLine(root string, sel domain.Selector) string {
	tool := g.command
	if g.preferWrapper && fileExists(filepath.Join(root, "gradlew")) {
		tool = "./gradlew"
	}
	return fmt.Sprintf("%s test --tests %s", tool, shellQuote(sel.String()))
}

// ManifestError explains why a root is not runnable
func (g *GradleInvoker) ManifestError(root string) error {
	return fmt.Errorf("%w in %s (expected one of %s)", ErrNoManifest, root, strings.Join(g.manifests, ", "))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// shellQuote leaves plain identifiers alone and single-quotes anything else
func shellQuote(s string) string {
	safe := s != ""
	for _, r := range s {
		if !isPlain(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isPlain(r rune) bool {
	return r == '_' || r == '.' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}
