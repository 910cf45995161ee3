package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/crease/internal/archive"
	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/match"
	"github.com/roach88/crease/internal/store"
)

// session is an open database with an engine over it.
type session struct {
	store   *store.Store
	engine  *engine.Engine
	archive *archive.Archive
}

// dbPath returns the --db flag value, or the configured database.
func (o *RootOptions) dbPath(flag string) string {
	if flag != "" {
		return flag
	}
	return o.Config.DB
}

// openArchive opens the configured archive, or returns nil when none is
// configured.
func (o *RootOptions) openArchive() (*archive.Archive, error) {
	if o.Config.ArchiveDir == "" {
		return nil, nil
	}
	return archive.Open(o.Config.ArchiveDir, o.Config.MasterKey)
}

// archiveOptions wires the configured archive into an engine.
func archiveOptions(a *archive.Archive) []engine.EngineOption {
	if a == nil {
		return nil
	}
	return []engine.EngineOption{engine.WithArchive(a)}
}

// openSession opens the database and starts an engine with the configured
// archive.
func (o *RootOptions) openSession(ctx context.Context, db string) (*session, error) {
	st, err := store.Open(o.dbPath(db))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	a, err := o.openArchive()
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to open archive", err)
	}
	eng, err := engine.New(ctx, st, archiveOptions(a)...)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to start engine", err)
	}
	return &session{store: st, engine: eng, archive: a}, nil
}

// Close drains the engine and closes the database.
func (s *session) Close() {
	if err := s.engine.Close(); err != nil && !errors.Is(err, engine.ErrClosed) {
		slog.Warn("engine close failed", "error", err)
	}
	if err := s.store.Close(); err != nil {
		slog.Warn("store close failed", "error", err)
	}
}

// names maps the match's team and player ids to their roster names.
// Unknown ids are left out, so callers fall back to the id.
func (s *session) names(ctx context.Context, m *match.Match) map[string]string {
	out := map[string]string{}
	for _, teamID := range []string{m.Setup.Team1ID, m.Setup.Team2ID} {
		if t, err := s.store.GetTeam(ctx, teamID); err == nil {
			out[t.ID] = t.Name
		}
		players, err := s.store.ListPlayers(ctx, teamID)
		if err != nil {
			continue
		}
		for _, p := range players {
			out[p.ID] = p.Name
		}
	}
	return out
}
