package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/crease/internal/apperrors"
	"github.com/roach88/crease/internal/archive"
	"github.com/roach88/crease/internal/match"
	"github.com/roach88/crease/internal/roster"
	"github.com/roach88/crease/internal/store"
)

const tracerName = "github.com/roach88/crease/internal/engine"

// Archive receives completed matches. Implemented by *archive.Archive.
type Archive interface {
	Save(rec archive.Record) error
	Purge(id string) error
}

// Engine serializes scoring calls per match and persists each one as a
// single store batch.
//
// Thread-safety model:
//   - every exported method is safe from any goroutine
//   - calls for one match run one at a time, in arrival order, on that
//     match's lane
//   - the cached match is replaced only after its batch commits
type Engine struct {
	store   *store.Store
	clock   *Clock
	ids     IDGenerator
	now     func() time.Time
	archive Archive
	tracer  trace.Tracer

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex
	lanes    map[string]*lane
	cache    map[string]*match.Match
	closed   bool
}

// EngineOption allows configuration of engine collaborators.
type EngineOption func(*Engine)

// WithClock sets the logical clock. By default the clock resumes after the
// store's last seq.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithIDGenerator sets the id source (default: UUIDv7Generator).
func WithIDGenerator(g IDGenerator) EngineOption {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithNow sets the wall clock used for delivery and audit timestamps.
func WithNow(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithArchive writes completed matches to a.
func WithArchive(a Archive) EngineOption {
	return func(e *Engine) {
		e.archive = a
	}
}

// New creates an engine over s. Lanes live until Close is called or ctx is
// cancelled.
func New(ctx context.Context, s *store.Store, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		store:  s,
		ids:    UUIDv7Generator{},
		now:    time.Now,
		tracer: otel.Tracer(tracerName),
		stop:   make(chan struct{}),
		lanes:  make(map[string]*lane),
		cache:  make(map[string]*match.Match),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.clock == nil {
		last, err := s.GetLastSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("resume clock: %w", err)
		}
		e.clock = NewClockAt(last)
	}

	go func() {
		select {
		case <-ctx.Done():
			e.shutdown()
		case <-e.stop:
		}
	}()

	slog.Debug("engine started", "seq", e.clock.Current())
	return e, nil
}

// Close stops accepting calls, lets queued calls finish and waits for every
// lane to drain.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	for _, l := range e.lanes {
		l.close()
	}
	e.mu.Unlock()

	e.wg.Wait()
	e.stopOnce.Do(func() { close(e.stop) })
	slog.Debug("engine stopped", "seq", e.clock.Current())
	return nil
}

// shutdown is Close for a cancelled context: queued calls fail with ErrClosed.
func (e *Engine) shutdown() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()
	e.stopOnce.Do(func() { close(e.stop) })
	e.wg.Wait()
}

// Clock exposes the logical clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// submit runs fn on matchID's lane and waits for its result.
func (e *Engine) submit(ctx context.Context, matchID string, fn func(ctx context.Context) error) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	l, ok := e.lanes[matchID]
	if !ok {
		l = newLane()
		e.lanes[matchID] = l
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			l.drain(e.stop)
		}()
	}
	j := job{ctx: ctx, run: fn, done: make(chan error, 1)}
	queued := l.enqueue(j)
	e.mu.Unlock()

	if !queued {
		return ErrClosed
	}
	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// load returns the live match, reading and replaying it from the store on a
// cache miss. Called only from the match's lane.
func (e *Engine) load(ctx context.Context, matchID string) (*match.Match, error) {
	e.mu.Lock()
	m, ok := e.cache[matchID]
	e.mu.Unlock()
	if ok {
		return m, nil
	}

	h, err := e.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, loadError(matchID, err)
	}
	snaps, err := e.store.GetInningsByMatch(ctx, matchID)
	if err != nil {
		return nil, loadError(matchID, err)
	}
	log, err := e.store.GetAllDeliveries(ctx, matchID)
	if err != nil {
		return nil, loadError(matchID, err)
	}
	m, err = match.Restore(h, snaps, log)
	if err != nil {
		return nil, err
	}

	slog.Debug("match restored", "match_id", matchID, "deliveries", len(log))
	e.setCached(m)
	return m, nil
}

func (e *Engine) setCached(m *match.Match) {
	e.mu.Lock()
	e.cache[m.ID] = m
	e.mu.Unlock()
}

// mutate runs one state-changing operation: load, clone, apply, commit,
// swap. The cached match is untouched unless the commit succeeds.
func (e *Engine) mutate(ctx context.Context, op, matchID string, apply func(m *match.Match, b *store.Batch) error) error {
	ctx, span := e.tracer.Start(ctx, "engine."+op, trace.WithAttributes(
		attribute.String("match.id", matchID),
	))
	defer span.End()

	err := e.submit(ctx, matchID, func(ctx context.Context) error {
		cur, err := e.load(ctx, matchID)
		if err != nil {
			return err
		}
		next := cur.Clone()
		var b store.Batch
		if err := apply(next, &b); err != nil {
			return tagMatch(err, matchID)
		}

		b.Match = next.Header
		b.Innings = next.Innings
		b.ReplaceInnings = true
		b.Fixture = fixtureUpdate(cur, next)
		if err := e.store.Commit(ctx, b); err != nil {
			slog.Error("commit failed",
				"match_id", matchID,
				"op", op,
				"error", err,
			)
			return apperrors.Persistence(op, err).ForMatch(matchID)
		}
		e.setCached(next)
		e.archiveResult(cur, next)

		slog.Info("operation committed",
			"match_id", matchID,
			"op", op,
			"seq", e.clock.Current(),
			"score", score(next),
		)
		span.SetAttributes(attribute.String("match.phase", string(next.Phase)))
		return nil
	})
	if err != nil {
		recordError(span, op, matchID, err)
	}
	return err
}

// read runs fn against the live match on its lane.
func (e *Engine) read(ctx context.Context, op, matchID string, fn func(m *match.Match) error) error {
	ctx, span := e.tracer.Start(ctx, "engine."+op, trace.WithAttributes(
		attribute.String("match.id", matchID),
	))
	defer span.End()

	err := e.submit(ctx, matchID, func(ctx context.Context) error {
		m, err := e.load(ctx, matchID)
		if err != nil {
			return err
		}
		return fn(m)
	})
	if err != nil {
		recordError(span, op, matchID, err)
	}
	return err
}

func recordError(span trace.Span, op, matchID string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if code := apperrors.CodeOf(err); code != "" {
		span.SetAttributes(attribute.String("error.code", string(code)))
	}
	if apperrors.IsPrecondition(err) {
		slog.Debug("operation rejected",
			"match_id", matchID,
			"op", op,
			"code", apperrors.CodeOf(err),
			"error", err,
		)
	}
}

// fixtureUpdate moves the fixture along with the match status.
func fixtureUpdate(cur, next *match.Match) *store.FixtureUpdate {
	id := next.Setup.FixtureID
	if id == "" || cur.Status == next.Status {
		return nil
	}
	switch next.Status {
	case match.StatusInProgress:
		return &store.FixtureUpdate{FixtureID: id, Status: roster.FixtureInProgress, MatchID: next.ID}
	case match.StatusCompleted:
		return &store.FixtureUpdate{FixtureID: id, Status: roster.FixtureCompleted, MatchID: next.ID}
	case match.StatusCancelled, match.StatusDeleted:
		return &store.FixtureUpdate{FixtureID: id, Status: roster.FixturePending}
	}
	return nil
}

// archiveResult keeps the archive in step with the result. Archive failures
// are logged; the match itself is already committed.
func (e *Engine) archiveResult(cur, next *match.Match) {
	if e.archive == nil {
		return
	}
	switch {
	case next.Status == match.StatusCompleted:
		if err := e.archive.Save(archive.FromMatch(next, e.now())); err != nil {
			slog.Error("archive save failed", "match_id", next.ID, "error", err)
			return
		}
		slog.Debug("match archived", "match_id", next.ID)
	case cur.Status == match.StatusCompleted:
		if err := e.archive.Purge(next.ID); err != nil {
			slog.Error("archive purge failed", "match_id", next.ID, "error", err)
		}
	}
}

func score(m *match.Match) string {
	in := m.Current()
	if in == nil {
		return "-"
	}
	return fmt.Sprintf("%d/%d (%s)", in.Runs, in.Wickets, in.Overs())
}
