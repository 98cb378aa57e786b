package execution

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ktp/internal/domain"
	"ktp/internal/logging"
	"ktp/internal/tree"
)

// Reporter receives outcomes as they happen
type Reporter interface {
	Report(o domain.Outcome)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(domain.Outcome)

// Report implements Reporter
func (f ReporterFunc) Report(o domain.Outcome) { f(o) }

// Request selects what to run. An empty Include runs every root in the store.
type Request struct {
	Include []*domain.TestNode
	Exclude []*domain.TestNode
}

// manifestExplainer is implemented by invokers that can say why a root is unsupported
type manifestExplainer interface {
	ManifestError(root string) error
}

// Scheduler expands a run request into leaf items and dispatches them one at a time
type Scheduler struct {
	store   *tree.Store
	invoker Invoker
	root    string
	logger  *zap.Logger
}

// NewScheduler creates a Scheduler. root is the workspace folder build commands run in;
// an empty root fails every run.
func NewScheduler(store *tree.Store, invoker Invoker, root string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		store:   store,
		invoker: invoker,
		root:    root,
		logger:  logging.OrNop(logger),
	}
}

// Run walks the request breadth first. Containers are expanded into their children, nodes
// inside an excluded subtree are dropped, and leaves are dispatched in queue order.
// Cancellation is checked once per queue step; items already dispatched are not recalled.
func (s *Scheduler) Run(ctx context.Context, req Request, rep Reporter) (*domain.RunSummary, error) {
	start := time.Now()
	summary := &domain.RunSummary{Root: s.root}
	emit := s.emitter(summary, rep)

	if s.root == "" {
		emit(domain.Outcome{Status: domain.StatusFailed, Message: ErrNoWorkspace.Error()})
		return summary, ErrNoWorkspace
	}

	queue := req.Include
	if len(queue) == 0 {
		queue = s.store.Roots()
	}
	excluded := excludeSet(req.Exclude)

	for len(queue) > 0 {
		if ctx.Err() != nil {
			summary.Cancelled = true
			s.logger.Info("run cancelled", zap.Int("remaining", len(queue)))
			break
		}

		n := queue[0]
		queue = queue[1:]

		if n.IsWithin(excluded) {
			continue
		}
		if !n.IsLeaf() {
			queue = append(queue, n.Children()...)
			continue
		}
		s.dispatch(ctx, n, emit)
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

// Plan returns the leaves Run would dispatch for req, in dispatch order
func (s *Scheduler) Plan(req Request) []*domain.TestNode {
	queue := req.Include
	if len(queue) == 0 {
		queue = s.store.Roots()
	}
	excluded := excludeSet(req.Exclude)

	var leaves []*domain.TestNode
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		switch {
		case n.IsWithin(excluded):
		case n.IsLeaf():
			leaves = append(leaves, n)
		default:
			queue = append(queue, n.Children()...)
		}
	}
	return leaves
}

func excludeSet(nodes []*domain.TestNode) map[string]bool {
	set := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		set[n.ID] = true
	}
	return set
}

// RunSelector dispatches a single class or method that need not be in the tree
func (s *Scheduler) RunSelector(ctx context.Context, sel domain.Selector, rep Reporter) (*domain.RunSummary, error) {
	start := time.Now()
	summary := &domain.RunSummary{Root: s.root}
	emit := s.emitter(summary, rep)

	if s.root == "" {
		emit(domain.Outcome{Status: domain.StatusFailed, Selector: sel, Message: ErrNoWorkspace.Error()})
		return summary, ErrNoWorkspace
	}

	s.invoke(ctx, nil, sel, emit)
	summary.Duration = time.Since(start)
	return summary, nil
}

func (s *Scheduler) emitter(summary *domain.RunSummary, rep Reporter) func(domain.Outcome) {
	return func(o domain.Outcome) {
		if o.Status != domain.StatusStarted {
			summary.Outcomes = append(summary.Outcomes, o)
		}
		if rep != nil {
			rep.Report(o)
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, n *domain.TestNode, emit func(domain.Outcome)) {
	sel, err := domain.SelectorFor(n)
	if err != nil {
		emit(domain.Outcome{Node: n, Status: domain.StatusFailed, Message: err.Error()})
		return
	}
	s.invoke(ctx, n, sel, emit)
}

func (s *Scheduler) invoke(ctx context.Context, n *domain.TestNode, sel domain.Selector, emit func(domain.Outcome)) {
	start := time.Now()
	fail := func(msg string) {
		s.logger.Warn("run item failed", zap.String("selector", sel.String()), zap.String("reason", msg))
		emit(domain.Outcome{Node: n, Selector: sel, Status: domain.StatusFailed, Message: msg, Duration: time.Since(start)})
	}

	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Sprint(r))
		}
	}()

	verdict, err := s.invoker.Invoke(ctx, s.root, sel)
	switch {
	case err != nil:
		fail(err.Error())
	case verdict == Unsupported:
		fail(s.unsupportedMessage())
	default:
		emit(domain.Outcome{Node: n, Selector: sel, Status: domain.StatusStarted})
		// the session does not report exit status; acceptance counts as a pass
		emit(domain.Outcome{Node: n, Selector: sel, Status: domain.StatusPassed, Duration: time.Since(start)})
	}
}

func (s *Scheduler) unsupportedMessage() string {
	if ex, ok := s.invoker.(manifestExplainer); ok {
		return ex.ManifestError(s.root).Error()
	}
	return fmt.Sprintf("%v in %s", ErrNoManifest, s.root)
}
