// Package refresh owns the directory snapshot and runs fetch cycles against
// the office providers.
//
// Overlapping triggers follow a cancel-and-restart rule: starting a cycle
// cancels the one in flight and waits for it to exit. A cancelled or failed
// cycle never replaces the published snapshot.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"employee-directory/internal/contacts"
	"employee-directory/internal/directory"
	"employee-directory/internal/domain"
	"employee-directory/internal/providers"
)

// ErrSuperseded is returned by a cycle that was cancelled by a newer one.
var ErrSuperseded = errors.New("refresh superseded by a newer cycle")

// ErrNoSnapshot is returned by reads before the first successful cycle.
var ErrNoSnapshot = errors.New("no directory snapshot yet")

// Snapshot is the deduplicated, contact-flagged list of the last successful cycle.
type Snapshot struct {
	Employees []domain.Employee
	FetchedAt time.Time
	Cycle     uint64
}

// Result describes one cycle. On failure Employees holds whatever was fetched
// before the error, deduplicated, and is not published.
type Result struct {
	Cycle     uint64
	Employees []domain.Employee
	// Fetched counts employees per provider name, successful providers only.
	Fetched map[string]int
	Took    time.Duration
}

type Refresher struct {
	providers []providers.EmployeeProvider
	matcher   contacts.Matcher
	parallel  bool
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	snapshot *Snapshot
	cycle    uint64
	cancel   context.CancelFunc
	done     chan struct{}
}

type Option func(*Refresher)

func WithMatcher(m contacts.Matcher) Option {
	return func(r *Refresher) {
		if m != nil {
			r.matcher = m
		}
	}
}

// WithParallel fetches all providers at once instead of one after another.
func WithParallel(parallel bool) Option {
	return func(r *Refresher) { r.parallel = parallel }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Refresher) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(provs []providers.EmployeeProvider, opts ...Option) *Refresher {
	r := &Refresher{
		providers: provs,
		matcher:   contacts.None{},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Refresh runs one full fetch cycle and publishes it on success.
func (r *Refresher) Refresh(ctx context.Context) (Result, error) {
	cycleCtx, id, finish := r.begin(ctx)
	defer finish()

	log := r.logger.With(zap.Uint64("cycle", id))
	start := r.now()
	log.Info("refresh started", zap.Bool("parallel", r.parallel), zap.Int("providers", len(r.providers)))

	lists, fetched, fetchErr := r.fetch(cycleCtx)
	res := Result{
		Cycle:     id,
		Employees: directory.Deduplicate(directory.Merge(lists...)),
		Fetched:   fetched,
	}

	if fetchErr != nil {
		res.Took = time.Since(start)
		if cycleCtx.Err() != nil && ctx.Err() == nil {
			log.Info("refresh superseded")
			return res, fmt.Errorf("%w: %w", ErrSuperseded, fetchErr)
		}
		log.Warn("refresh failed, keeping previous snapshot",
			zap.Error(fetchErr),
			zap.Int("partial", len(res.Employees)),
		)
		return res, fmt.Errorf("refresh: %w", fetchErr)
	}

	keys, err := r.matcher.MatchKeys(cycleCtx, res.Employees)
	if err != nil {
		log.Warn("contact matching failed", zap.Error(err))
		keys = nil
	}
	res.Employees = directory.ApplyContacts(res.Employees, keys)
	res.Took = time.Since(start)

	if err := r.publish(cycleCtx, id, res.Employees); err != nil {
		log.Info("refresh superseded before publish")
		return res, err
	}

	log.Info("refresh completed",
		zap.Int("employees", len(res.Employees)),
		zap.Int("matched_contacts", len(keys)),
		zap.Duration("took", res.Took),
	)
	return res, nil
}

// begin cancels any cycle in flight, waits for it, and registers a new one.
func (r *Refresher) begin(ctx context.Context) (context.Context, uint64, func()) {
	r.mu.Lock()
	for r.done != nil {
		r.cancel()
		done := r.done
		r.mu.Unlock()
		<-done
		r.mu.Lock()
	}

	cycleCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cycle++
	id := r.cycle
	r.cancel = cancel
	r.done = done
	r.mu.Unlock()

	return cycleCtx, id, func() {
		cancel()
		r.mu.Lock()
		if r.done == done {
			r.cancel = nil
			r.done = nil
		}
		r.mu.Unlock()
		close(done)
	}
}

func (r *Refresher) publish(cycleCtx context.Context, id uint64, employees []domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := cycleCtx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSuperseded, err)
	}
	r.snapshot = &Snapshot{
		Employees: employees,
		FetchedAt: r.now(),
		Cycle:     id,
	}
	return nil
}

// fetch returns the successful lists in provider order and the first error.
func (r *Refresher) fetch(ctx context.Context) ([][]domain.Employee, map[string]int, error) {
	if r.parallel {
		return r.fetchParallel(ctx)
	}
	return r.fetchSequential(ctx)
}

// fetchSequential stops at the first failing provider.
func (r *Refresher) fetchSequential(ctx context.Context) ([][]domain.Employee, map[string]int, error) {
	lists := make([][]domain.Employee, 0, len(r.providers))
	fetched := make(map[string]int, len(r.providers))
	for _, p := range r.providers {
		list, err := p.ListEmployees(ctx)
		if err != nil {
			return lists, fetched, err
		}
		lists = append(lists, list)
		fetched[p.Name()] = len(list)
	}
	return lists, fetched, nil
}

func (r *Refresher) fetchParallel(ctx context.Context) ([][]domain.Employee, map[string]int, error) {
	results := make([][]domain.Employee, len(r.providers))
	ok := make([]bool, len(r.providers))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, p := range r.providers {
		eg.Go(func() error {
			list, err := p.ListEmployees(egCtx)
			if err != nil {
				return err
			}
			results[i] = list
			ok[i] = true
			return nil
		})
	}
	err := eg.Wait()

	lists := make([][]domain.Employee, 0, len(r.providers))
	fetched := make(map[string]int, len(r.providers))
	for i, p := range r.providers {
		if !ok[i] {
			continue
		}
		lists = append(lists, results[i])
		fetched[p.Name()] = len(results[i])
	}
	return lists, fetched, err
}

// Loop runs a cycle every interval until ctx is done. Failures are logged
// and the previous snapshot keeps being served.
func (r *Refresher) Loop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
				r.logger.Warn("periodic refresh failed", zap.Error(err))
			}
		}
	}
}

// Refreshing reports whether a cycle is in flight.
func (r *Refresher) Refreshing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done != nil
}

// Snapshot returns the last published snapshot.
func (r *Refresher) Snapshot() (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.snapshot == nil {
		return Snapshot{}, ErrNoSnapshot
	}
	return *r.snapshot, nil
}

// View filters and groups the current snapshot.
func (r *Refresher) View(opts directory.Options) (directory.Result, error) {
	s, err := r.Snapshot()
	if err != nil {
		return directory.Result{}, err
	}
	return directory.View(s.Employees, opts), nil
}

// Employee looks up one employee in the current snapshot by identity key.
func (r *Refresher) Employee(key string) (domain.Employee, bool, error) {
	s, err := r.Snapshot()
	if err != nil {
		return domain.Employee{}, false, err
	}
	e, ok := directory.Find(s.Employees, key)
	return e, ok, nil
}
