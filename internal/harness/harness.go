package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/crease/internal/apperrors"
	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/match"
	"github.com/roach88/crease/internal/roster"
	"github.com/roach88/crease/internal/scorecard"
	"github.com/roach88/crease/internal/store"
	"github.com/roach88/crease/internal/testutil"
)

// Option configures a run.
type Option func(*options)

type options struct {
	engine []engine.EngineOption
	rules  *match.Rules
}

// WithEngineOptions passes options to the engine, after the deterministic
// defaults so they can replace them.
func WithEngineOptions(opts ...engine.EngineOption) Option {
	return func(o *options) {
		o.engine = append(o.engine, opts...)
	}
}

// WithDefaultRules sets the rules used when the scenario names none.
func WithDefaultRules(r match.Rules) Option {
	return func(o *options) {
		o.rules = &r
	}
}

// harness drives one scenario through an engine.
type harness struct {
	sc     *Scenario
	eng    *engine.Engine
	result *Result
	id     string
	logger *slog.Logger
}

// Run plays a scenario against st and returns the result.
//
// The engine uses sequential ids prefixed with the scenario name and a wall
// clock that steps one minute per reading from testutil.Kickoff, so the same
// scenario run against an empty store always produces the same log.
//
// A step that fails unexpectedly stops the run and is reported in the
// result; the returned error is reserved for failures outside the scenario
// (an invalid setup or a persistence failure).
func Run(ctx context.Context, sc *Scenario, st *store.Store, opts ...Option) (*Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := saveRoster(ctx, sc, st); err != nil {
		return nil, err
	}

	engOpts := append([]engine.EngineOption{
		engine.WithIDGenerator(testutil.NewSequentialIDs(sc.Name)),
		engine.WithNow(testutil.NewStepClock(testutil.Kickoff, time.Minute).Now),
	}, o.engine...)
	eng, err := engine.New(ctx, st, engOpts...)
	if err != nil {
		return nil, fmt.Errorf("start engine: %w", err)
	}
	defer eng.Close()

	rules := sc.Rules
	if rules == (match.Rules{}) {
		rules = match.DefaultRules()
		if o.rules != nil {
			rules = *o.rules
		}
	}
	hdr, err := eng.CreateMatch(ctx, match.Setup{
		Team1ID:      sc.Teams[0].ID,
		Team2ID:      sc.Teams[1].ID,
		TossWinnerID: sc.Toss.Winner,
		TossDecision: sc.Toss.Decision,
		Rules:        rules,
	})
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}

	h := &harness{
		sc:     sc,
		eng:    eng,
		result: NewResult(sc.Name),
		id:     hdr.ID,
		logger: slog.Default().With("scenario", sc.Name, "match_id", hdr.ID),
	}
	h.result.MatchID = hdr.ID

	if err := h.play(ctx); err != nil {
		return nil, err
	}
	if err := h.finish(ctx); err != nil {
		return nil, err
	}
	return h.result, nil
}

// saveRoster upserts the scenario's teams and players.
func saveRoster(ctx context.Context, sc *Scenario, st *store.Store) error {
	for _, t := range sc.Teams {
		if err := st.SaveTeam(ctx, roster.Team{ID: t.ID, Name: sc.name(t.ID)}); err != nil {
			return fmt.Errorf("save team %s: %w", t.ID, err)
		}
		for _, p := range t.Players {
			if err := st.SavePlayer(ctx, roster.Player{ID: p, TeamID: t.ID, Name: sc.name(p)}); err != nil {
				return fmt.Errorf("save player %s: %w", p, err)
			}
		}
	}
	return nil
}

func (h *harness) play(ctx context.Context) error {
	for i, s := range h.sc.Steps {
		label := fmt.Sprintf("step %d (%s)", i+1, s.Describe())
		err := h.do(ctx, s)
		if apperrors.IsPersistence(err) {
			return fmt.Errorf("%s: %w", label, err)
		}

		sr := StepResult{Index: i + 1, Action: s.Describe(), Score: h.score(ctx)}
		if err != nil {
			sr.Error = string(apperrors.CodeOf(err))
			if sr.Error == "" {
				sr.Error = err.Error()
			}
		}
		h.result.Steps = append(h.result.Steps, sr)

		switch {
		case s.ExpectError != "" && err == nil:
			h.result.AddError(fmt.Sprintf("%s: expected %s, got success", label, s.ExpectError))
			return nil
		case s.ExpectError != "" && apperrors.CodeOf(err) != s.ExpectError:
			h.result.AddError(fmt.Sprintf("%s: expected %s, got %v", label, s.ExpectError, err))
			return nil
		case s.ExpectError == "" && err != nil:
			h.result.AddError(fmt.Sprintf("%s: %v", label, err))
			return nil
		}
		h.logger.Debug("step", "index", i+1, "action", sr.Action, "score", sr.Score, "error", sr.Error)
	}
	return nil
}

func (h *harness) do(ctx context.Context, s Step) error {
	if o, ok := s.outcome(); ok {
		if h.sc.AutoSelect {
			if err := h.autoSelect(ctx); err != nil {
				return err
			}
		}
		_, err := h.eng.RecordDelivery(ctx, h.id, o)
		return err
	}

	switch {
	case s.Start != nil:
		is, err := h.inningsSetup(ctx, *s.Start)
		if err != nil {
			return err
		}
		return h.eng.StartInnings(ctx, h.id, is)
	case s.Batter != "":
		return h.eng.SelectBatter(ctx, h.id, s.Batter)
	case s.Bowler != "":
		return h.eng.SelectBowler(ctx, h.id, s.Bowler)
	case s.Undo:
		_, err := h.eng.Undo(ctx, h.id)
		return err
	case s.Delete != 0:
		seq, err := h.ballInOver(ctx, s.Delete)
		if err != nil {
			return err
		}
		_, err = h.eng.DeleteBall(ctx, h.id, seq)
		return err
	case s.SuperOver:
		return h.eng.SetupSuperOver(ctx, h.id)
	case s.Reopen:
		return h.eng.Reopen(ctx, h.id)
	case s.Cancel:
		return h.eng.Cancel(ctx, h.id)
	case s.DeleteResult:
		return h.eng.DeleteResult(ctx, h.id)
	}
	return fmt.Errorf("step has no action")
}

// autoSelect fills pending selections with the first eligible players.
func (h *harness) autoSelect(ctx context.Context) error {
	m, err := h.eng.Match(ctx, h.id)
	if err != nil {
		return err
	}
	in := m.Current()
	if in == nil || !in.Open() {
		return nil
	}
	if in.NeedsBatter() {
		if ids := in.EligibleBatters(); len(ids) > 0 {
			if err := h.eng.SelectBatter(ctx, h.id, ids[0]); err != nil {
				return err
			}
		}
	}
	if in.NeedsBowler() {
		if ids := in.AvailableBowlers(); len(ids) > 0 {
			if err := h.eng.SelectBowler(ctx, h.id, ids[0]); err != nil {
				return err
			}
		}
	}
	return nil
}

// inningsSetup fills omitted XIs. A normal innings takes the full squads of
// the striker's and bowler's teams; a Super Over takes the opening pair and
// the bowler.
func (h *harness) inningsSetup(ctx context.Context, is match.InningsSetup) (match.InningsSetup, error) {
	m, err := h.eng.Match(ctx, h.id)
	if err != nil {
		return is, err
	}
	superOver := m.Phase == match.PhaseSuperOverBreak || m.Phase == match.PhaseSuperOver2Break

	if len(is.BattingXI) == 0 {
		if superOver {
			is.BattingXI = []string{is.Striker, is.NonStriker}
		} else if t, ok := h.sc.team(is.Striker); ok {
			is.BattingXI = append([]string(nil), t.Players...)
		}
	}
	if len(is.BowlingXI) == 0 {
		if superOver {
			is.BowlingXI = []string{is.Bowler}
		} else if t, ok := h.sc.team(is.Bowler); ok {
			is.BowlingXI = append([]string(nil), t.Players...)
		}
	}
	return is, nil
}

// ballInOver maps a 1-based position in the current over to its sequence
// number. Out of range positions map to 0, which no delivery carries.
func (h *harness) ballInOver(ctx context.Context, pos int) (int64, error) {
	m, err := h.eng.Match(ctx, h.id)
	if err != nil {
		return 0, err
	}
	in := m.Current()
	if in == nil || pos < 1 || pos > len(in.BallsThisOver) {
		return 0, nil
	}
	return in.BallsThisOver[pos-1], nil
}

func (h *harness) score(ctx context.Context) string {
	m, err := h.eng.Match(ctx, h.id)
	if err != nil {
		return ""
	}
	in := m.Current()
	if in == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d (%s)", in.Runs, in.Wickets, in.Overs())
}

// finish builds the scorecard, replays the stored log and checks the
// expectations.
func (h *harness) finish(ctx context.Context) error {
	m, err := h.eng.Match(ctx, h.id)
	if err != nil {
		return fmt.Errorf("load final match: %w", err)
	}
	h.result.Card = scorecard.Build(m, scorecard.WithNames(h.sc.Names))

	edits, err := h.eng.History(ctx, h.id)
	if err != nil {
		return err
	}
	for _, e := range edits {
		h.result.Audit = append(h.result.Audit, e.Action)
	}

	if err := h.eng.Verify(ctx, h.id); err != nil {
		if apperrors.IsPersistence(err) {
			return err
		}
		h.result.AddError(fmt.Sprintf("replay: %v", err))
	}

	if h.sc.Expect != nil {
		for _, msg := range evaluate(h.sc.Expect, m, h.result) {
			h.result.AddError(msg)
		}
	}
	return nil
}
