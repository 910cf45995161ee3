package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/crease/internal/apperrors"
	"github.com/roach88/crease/internal/delivery"
	"github.com/roach88/crease/internal/match"
	"github.com/roach88/crease/internal/roster"
	"github.com/roach88/crease/internal/store"
)

// CreateMatch records a new match at the confirmed toss. When the setup
// names a fixture, the teams must be the fixture's and the fixture must not
// already be underway.
func (e *Engine) CreateMatch(ctx context.Context, setup match.Setup) (match.Header, error) {
	if setup.FixtureID != "" {
		if err := e.checkFixture(ctx, setup); err != nil {
			return match.Header{}, err
		}
	}
	m, err := match.New(e.ids.Generate(), setup)
	if err != nil {
		return match.Header{}, err
	}

	ctx, span := e.tracer.Start(ctx, "engine.create_match")
	defer span.End()

	err = e.submit(ctx, m.ID, func(ctx context.Context) error {
		b := store.Batch{Match: m.Header, ReplaceInnings: true}
		if setup.FixtureID != "" {
			b.Fixture = &store.FixtureUpdate{FixtureID: setup.FixtureID, Status: roster.FixturePending, MatchID: m.ID}
		}
		if err := e.store.Commit(ctx, b); err != nil {
			return apperrors.Persistence("create_match", err).ForMatch(m.ID)
		}
		e.setCached(m)
		return nil
	})
	if err != nil {
		recordError(span, "create_match", m.ID, err)
		return match.Header{}, err
	}
	slog.Info("match created",
		"match_id", m.ID,
		"team1", setup.Team1ID,
		"team2", setup.Team2ID,
		"overs", setup.Rules.Overs,
	)
	return m.Header, nil
}

func (e *Engine) checkFixture(ctx context.Context, setup match.Setup) error {
	f, err := e.store.GetFixture(ctx, setup.FixtureID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.Precondition(apperrors.CodeInvalidRecord, "fixture %s not found", setup.FixtureID)
	}
	if err != nil {
		return apperrors.Persistence("load fixture", err)
	}
	same := (f.Team1ID == setup.Team1ID && f.Team2ID == setup.Team2ID) ||
		(f.Team1ID == setup.Team2ID && f.Team2ID == setup.Team1ID)
	if !same {
		return apperrors.Precondition(apperrors.CodeUnknownTeam,
			"fixture %s is %s v %s", f.ID, f.Team1ID, f.Team2ID)
	}
	if f.Status != roster.FixturePending {
		return apperrors.Precondition(apperrors.CodeMatchClosed,
			"fixture %s is %s", f.ID, f.Status).ForMatch(f.MatchID)
	}
	return nil
}

// StartInnings begins the next innings of a match.
func (e *Engine) StartInnings(ctx context.Context, matchID string, is match.InningsSetup) error {
	return e.mutate(ctx, "start_innings", matchID, func(m *match.Match, _ *store.Batch) error {
		_, err := m.StartInnings(is)
		return err
	})
}

// RecordDelivery bowls the next ball and returns it as logged.
func (e *Engine) RecordDelivery(ctx context.Context, matchID string, o delivery.Outcome) (delivery.Delivery, error) {
	var d delivery.Delivery
	err := e.mutate(ctx, "record_delivery", matchID, func(m *match.Match, b *store.Batch) error {
		var err error
		d, err = m.Bowl(delivery.Stamp{Seq: e.clock.Next(), ID: e.ids.Generate(), At: e.now()}, o)
		if err != nil {
			return err
		}
		b.Append = []delivery.Delivery{d}
		return nil
	})
	return d, err
}

// SelectBatter fills the vacant end after a wicket.
func (e *Engine) SelectBatter(ctx context.Context, matchID, playerID string) error {
	return e.mutate(ctx, "select_batter", matchID, func(m *match.Match, _ *store.Batch) error {
		return m.SelectBatter(playerID)
	})
}

// SelectBowler chooses the bowler for the next over.
func (e *Engine) SelectBowler(ctx context.Context, matchID, playerID string) error {
	return e.mutate(ctx, "select_bowler", matchID, func(m *match.Match, _ *store.Batch) error {
		return m.SelectBowler(playerID)
	})
}

// SetupSuperOver moves a tied match to the Super Over break.
func (e *Engine) SetupSuperOver(ctx context.Context, matchID string) error {
	return e.mutate(ctx, "setup_super_over", matchID, func(m *match.Match, _ *store.Batch) error {
		return m.SetupSuperOver()
	})
}

// Undo removes the most recent ball of the open innings.
func (e *Engine) Undo(ctx context.Context, matchID string) (delivery.Delivery, error) {
	var d delivery.Delivery
	err := e.mutate(ctx, "undo", matchID, func(m *match.Match, b *store.Batch) error {
		before := m.Snapshot()
		var err error
		if d, err = m.Undo(); err != nil {
			return err
		}
		b.Remove = []string{d.ID}
		b.Edit = e.edit(m, store.ActionUndoBall, before,
			fmt.Sprintf("undo %s by %s off %s (seq %d)", d.Notation(), d.StrikerID, d.BowlerID, d.Seq))
		return nil
	})
	return d, err
}

// DeleteBall removes a ball from the current over.
func (e *Engine) DeleteBall(ctx context.Context, matchID string, seq int64) (delivery.Delivery, error) {
	var d delivery.Delivery
	err := e.mutate(ctx, "delete_ball", matchID, func(m *match.Match, b *store.Batch) error {
		before := m.Snapshot()
		var err error
		if d, err = m.DeleteBall(seq); err != nil {
			return err
		}
		b.Remove = []string{d.ID}
		b.Edit = e.edit(m, store.ActionDeleteBall, before,
			fmt.Sprintf("delete %s at %d.%d (seq %d)", d.Notation(), d.Over, d.Ball, d.Seq))
		return nil
	})
	return d, err
}

// Reopen puts the latest completed innings back in progress.
func (e *Engine) Reopen(ctx context.Context, matchID string) error {
	return e.mutate(ctx, "reopen", matchID, func(m *match.Match, b *store.Batch) error {
		before := m.Snapshot()
		if err := m.Reopen(); err != nil {
			return err
		}
		b.Edit = e.edit(m, store.ActionReopenMatch, before,
			fmt.Sprintf("reopen innings %d", m.Current().Setup.Number))
		return nil
	})
}

// Cancel abandons a match that has not finished and drops its log.
func (e *Engine) Cancel(ctx context.Context, matchID string) error {
	return e.mutate(ctx, "cancel", matchID, func(m *match.Match, b *store.Batch) error {
		before := m.Snapshot()
		n := m.DeliveryCount()
		if err := m.Cancel(); err != nil {
			return err
		}
		b.ClearDeliveries = true
		b.Edit = e.edit(m, store.ActionCancelMatch, before,
			fmt.Sprintf("cancel match, %d deliveries dropped", n))
		return nil
	})
}

// DeleteResult discards a completed match's result and log.
func (e *Engine) DeleteResult(ctx context.Context, matchID string) error {
	return e.mutate(ctx, "delete_result", matchID, func(m *match.Match, b *store.Batch) error {
		before := m.Snapshot()
		summary := ""
		if m.Result != nil {
			summary = m.Result.Summary(nil)
		}
		if err := m.DeleteResult(); err != nil {
			return err
		}
		b.ClearDeliveries = true
		b.Edit = e.edit(m, store.ActionDeleteMatch, before, "delete result: "+summary)
		return nil
	})
}

func (e *Engine) edit(m *match.Match, action store.Action, before match.Snapshot, desc string) *store.EditEntry {
	return &store.EditEntry{
		ID:          e.ids.Generate(),
		MatchID:     m.ID,
		Seq:         e.clock.Next(),
		Action:      action,
		Description: desc,
		Before:      before,
		After:       m.Snapshot(),
		At:          e.now(),
	}
}

// Match returns a copy of the live match.
func (e *Engine) Match(ctx context.Context, matchID string) (*match.Match, error) {
	var out *match.Match
	err := e.read(ctx, "match", matchID, func(m *match.Match) error {
		out = m.Clone()
		return nil
	})
	return out, err
}

// Matches lists every stored match header.
func (e *Engine) Matches(ctx context.Context) ([]match.Header, error) {
	hs, err := e.store.ListMatches(ctx)
	if err != nil {
		return nil, apperrors.Persistence("list matches", err)
	}
	return hs, nil
}

// History returns a match's audit trail.
func (e *Engine) History(ctx context.Context, matchID string) ([]store.EditEntry, error) {
	edits, err := e.store.ListEdits(ctx, matchID)
	if err != nil {
		return nil, apperrors.Persistence("list edits", err).ForMatch(matchID)
	}
	return edits, nil
}

// Verify re-folds a match's stored log and compares it with the stored
// innings snapshots, bypassing the cache.
func (e *Engine) Verify(ctx context.Context, matchID string) error {
	ctx, span := e.tracer.Start(ctx, "engine.verify")
	defer span.End()

	err := e.submit(ctx, matchID, func(ctx context.Context) error {
		h, err := e.store.GetMatch(ctx, matchID)
		if err != nil {
			return loadError(matchID, err)
		}
		snaps, err := e.store.GetInningsByMatch(ctx, matchID)
		if err != nil {
			return loadError(matchID, err)
		}
		log, err := e.store.GetAllDeliveries(ctx, matchID)
		if err != nil {
			return loadError(matchID, err)
		}
		return match.Verify(h, snaps, log)
	})
	if err != nil {
		recordError(span, "verify", matchID, err)
	}
	return err
}
