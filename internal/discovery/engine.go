// Package discovery finds test declarations in Kotlin sources and keeps the test tree in
// step with the filesystem.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ktp/internal/domain"
	"ktp/internal/logging"
	"ktp/internal/tree"
)

// Engine populates a tree.Store from workspace files
type Engine struct {
	store      *tree.Store
	classifier *Classifier
	extractor  Extractor
	scanner    *Scanner
	roots      []string
	logger     *zap.Logger
}

// NewEngine creates an Engine over the given workspace roots
func NewEngine(store *tree.Store, classifier *Classifier, extractor Extractor, scanner *Scanner, roots []string, logger *zap.Logger) *Engine {
	return &Engine{
		store:      store,
		classifier: classifier,
		extractor:  extractor,
		scanner:    scanner,
		roots:      roots,
		logger:     logging.OrNop(logger),
	}
}

// Store returns the tree the engine writes to
func (e *Engine) Store() *tree.Store {
	return e.store
}

// Roots returns the workspace roots the engine scans
func (e *Engine) Roots() []string {
	return e.roots
}

// DiscoverAll clears the store and rescans every file under every root. Roots are scanned
// concurrently and joined before returning; files within a root are scanned in order.
// Per-file and per-root failures are logged, only cancellation is returned.
func (e *Engine) DiscoverAll(ctx context.Context) error {
	e.store.Clear()

	g, gctx := errgroup.WithContext(ctx)
	for _, root := range e.roots {
		g.Go(func() error {
			err := e.scanner.Scan(gctx, root, func(path string) {
				_ = e.RescanFile(gctx, path)
			})
			if err == nil {
				return nil
			}
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			e.logger.Warn("workspace scan failed", zap.String("root", root), zap.Error(err))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	e.logger.Debug("discovery complete", zap.Int("nodes", e.store.Len()))
	return nil
}

// RescanFile rebuilds the subtree for path from its current content. Whatever the file
// contributed before is discarded first, so deleted or no longer matching files simply
// drop out. A failed scan leaves the file with no nodes and returns the error.
func (e *Engine) RescanFile(ctx context.Context, path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	node, err := e.buildFile(ctx, path)
	e.store.ReplaceFile(path, node)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotCandidate), errors.Is(err, fs.ErrNotExist):
		e.logger.Debug("file contributes no tests", zap.String("path", path), zap.Error(err))
		return nil
	default:
		e.logger.Warn("scan failed", zap.String("path", path), zap.Error(err))
		return err
	}
}

// ErrNotCandidate is returned internally for files the classifier rejects
var ErrNotCandidate = errors.New("not a candidate test file")

func (e *Engine) buildFile(ctx context.Context, path string) (root *domain.TestNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			root, err = nil, fmt.Errorf("extractor panic: %v", r)
		}
	}()

	if !e.classifier.HasExtension(path) {
		return nil, ErrNotCandidate
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if !e.classifier.IsCandidate(path, content) {
		return nil, ErrNotCandidate
	}

	decls, err := e.extractor.Extract(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	root = domain.NewFileNode(path)
	for d := range decls {
		rng := d.Range
		class := root.AddChild(domain.KindClass, d.ClassName, &rng)
		for _, m := range d.Methods {
			class.AddChild(domain.KindMethod, m.Name, &domain.Range{StartLine: m.Line, EndLine: m.Line})
		}
	}
	return root, nil
}
