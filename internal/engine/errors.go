package engine

import (
	"database/sql"
	"errors"

	"github.com/roach88/crease/internal/apperrors"
)

// ErrClosed is returned for calls made after Close.
var ErrClosed = errors.New("engine is closed")

// loadError maps a store read failure to the error taxonomy.
func loadError(matchID string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.Precondition(apperrors.CodeMatchNotFound, "match %s not found", matchID).ForMatch(matchID)
	}
	return apperrors.Persistence("load match", err).ForMatch(matchID)
}

// tagMatch attaches the match id to taxonomy errors that lack one.
func tagMatch(err error, matchID string) error {
	var ae *apperrors.Error
	if errors.As(err, &ae) && ae.MatchID == "" {
		return ae.ForMatch(matchID)
	}
	return err
}
