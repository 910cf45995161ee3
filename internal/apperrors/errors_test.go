package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryHelpers(t *testing.T) {
	pre := Precondition(CodeFielderRequired, "caught needs a fielder")
	inv := Invariant(CodeNothingToUndo, "no deliveries")
	per := Persistence("write delivery", errors.New("disk full"))

	assert.True(t, IsPrecondition(pre))
	assert.False(t, IsInvariant(pre))
	assert.True(t, IsInvariant(inv))
	assert.True(t, IsPersistence(per))
	assert.False(t, IsPrecondition(errors.New("plain")))
}

func TestWrappedErrorsStillClassify(t *testing.T) {
	base := Precondition(CodeBowlerOverQuota, "bowler %s has no overs left", "p9")
	wrapped := fmt.Errorf("select bowler: %w", base)

	assert.True(t, IsPrecondition(wrapped))
	assert.Equal(t, CodeBowlerOverQuota, CodeOf(wrapped))
	assert.True(t, errors.Is(wrapped, &Error{Code: CodeBowlerOverQuota}))
	assert.False(t, errors.Is(wrapped, &Error{Code: CodeXISize}))
}

func TestPersistenceUnwrapsCause(t *testing.T) {
	cause := errors.New("database is locked")
	err := Persistence("commit", cause).ForMatch("m1")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "PERSISTENCE_FAILED: commit (match=m1): database is locked", err.Error())
}

func TestWithCopiesDetails(t *testing.T) {
	base := Precondition(CodeNotInXI, "not in XI")
	a := base.With("player", "p1")
	b := a.With("team", "t1")

	assert.Nil(t, base.Details)
	assert.Equal(t, "player=p1", a.DetailString())
	assert.Equal(t, "player=p1 team=t1", b.DetailString())
}

func TestCodeOfNonAppError(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(errors.New("x")))
	assert.Equal(t, Code(""), CodeOf(nil))
}
