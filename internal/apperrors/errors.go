// Package apperrors defines the error taxonomy shared by the scoring core,
// the store and the engine.
//
// Every failure falls in one of three categories:
//   - precondition: the caller asked for something the current state forbids
//     (rejected synchronously, nothing mutated)
//   - invariant: a logic error that correct phase checks should make unreachable
//   - persistence: the store failed; in-memory state is unchanged and the call
//     may be retried
package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Category groups error codes by how callers should react.
type Category string

const (
	// CategoryPrecondition marks a rejected request.
	CategoryPrecondition Category = "precondition"

	// CategoryInvariant marks an internal consistency failure.
	CategoryInvariant Category = "invariant"

	// CategoryPersistence marks a store read/write failure.
	CategoryPersistence Category = "persistence"
)

// Code names a specific failure.
type Code string

// Precondition codes.
const (
	CodeMatchNotFound     Code = "MATCH_NOT_FOUND"
	CodeMatchClosed       Code = "MATCH_CLOSED"
	CodeWrongPhase        Code = "WRONG_PHASE"
	CodeNoActiveInnings   Code = "NO_ACTIVE_INNINGS"
	CodeInningsClosed     Code = "INNINGS_CLOSED"
	CodeInningsOver       Code = "INNINGS_OVER"
	CodeDuplicateTeam     Code = "DUPLICATE_TEAM"
	CodeUnknownTeam       Code = "UNKNOWN_TEAM"
	CodeXISize            Code = "XI_SIZE"
	CodeNotInXI           Code = "NOT_IN_XI"
	CodeDuplicatePlayer   Code = "DUPLICATE_PLAYER"
	CodeInvalidRules      Code = "INVALID_RULES"
	CodeInvalidDelivery   Code = "INVALID_DELIVERY"
	CodeDismissalRequired Code = "DISMISSAL_REQUIRED"
	CodeFielderRequired   Code = "FIELDER_REQUIRED"
	CodeFielderNotAllowed Code = "FIELDER_NOT_ALLOWED"
	CodeBatterRequired    Code = "BATTER_REQUIRED"
	CodeBowlerRequired    Code = "BOWLER_REQUIRED"
	CodeBowlerOverQuota   Code = "BOWLER_OVER_QUOTA"
	CodeBowlerMidOver     Code = "BOWLER_MID_OVER"
	CodeBatterNotEligible Code = "BATTER_NOT_ELIGIBLE"
	CodeBallNotInOver     Code = "BALL_NOT_IN_OVER"
	CodeNotCompleted      Code = "NOT_COMPLETED"
	CodeInvalidRecord     Code = "INVALID_RECORD"
)

// Invariant codes.
const (
	CodeNothingToUndo     Code = "NOTHING_TO_UNDO"
	CodeNoBatterAvailable Code = "NO_BATTER_AVAILABLE"
	CodeLogMismatch       Code = "LOG_MISMATCH"
	CodeReplayDiverged    Code = "REPLAY_DIVERGED"
)

// CodePersistenceFailed is the only persistence code; the cause carries detail.
const CodePersistenceFailed Code = "PERSISTENCE_FAILED"

// Error is a categorised, coded failure.
type Error struct {
	// Category decides how the caller should react.
	Category Category

	// Code identifies the failure.
	Code Code

	// Message is a human-readable description.
	Message string

	// MatchID identifies the affected match, when known.
	MatchID string

	// Details carries structured context (player ids, counts).
	Details map[string]string

	// Cause is the wrapped error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.MatchID != "" {
		fmt.Fprintf(&b, " (match=%s)", e.MatchID)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code, so errors.Is(err, &Error{Code: X}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// With returns a copy of e carrying an extra detail.
func (e *Error) With(key, value string) *Error {
	c := *e
	c.Details = make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		c.Details[k] = v
	}
	c.Details[key] = value
	return &c
}

// ForMatch returns a copy of e tagged with a match id.
func (e *Error) ForMatch(matchID string) *Error {
	c := *e
	c.MatchID = matchID
	return &c
}

// Wrap returns a copy of e with cause attached.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.Cause = cause
	return &c
}

// DetailString renders details as sorted key=value pairs.
func (e *Error) DetailString() string {
	if len(e.Details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + e.Details[k]
	}
	return strings.Join(parts, " ")
}

// Precondition creates a precondition error.
func Precondition(code Code, format string, args ...any) *Error {
	return &Error{
		Category: CategoryPrecondition,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Invariant creates an invariant-violation error.
func Invariant(code Code, format string, args ...any) *Error {
	return &Error{
		Category: CategoryInvariant,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Persistence wraps a store failure for the named operation.
func Persistence(op string, err error) *Error {
	return &Error{
		Category: CategoryPersistence,
		Code:     CodePersistenceFailed,
		Message:  op,
		Cause:    err,
	}
}

// IsPrecondition reports whether err is a precondition violation.
// Uses errors.As to handle wrapped errors.
func IsPrecondition(err error) bool {
	return categoryOf(err) == CategoryPrecondition
}

// IsInvariant reports whether err is an invariant violation.
func IsInvariant(err error) bool {
	return categoryOf(err) == CategoryInvariant
}

// IsPersistence reports whether err is a persistence failure.
func IsPersistence(err error) bool {
	return categoryOf(err) == CategoryPersistence
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

func categoryOf(err error) Category {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Category
	}
	return ""
}
