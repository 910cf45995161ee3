package delivery

import "fmt"

// Kind classifies a delivery. Exactly one kind applies to every ball.
type Kind string

const (
	KindRun    Kind = "run"
	KindWide   Kind = "wide"
	KindNoBall Kind = "no_ball"
	KindBye    Kind = "bye"
	KindLegBye Kind = "leg_bye"
	KindWicket Kind = "wicket"
)

var kinds = []Kind{KindRun, KindWide, KindNoBall, KindBye, KindLegBye, KindWicket}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown delivery kind %q", s)
}

// IsLegal reports whether the kind counts toward the six-ball over.
func (k Kind) IsLegal() bool {
	return k != KindWide && k != KindNoBall
}

// FielderRule says whether a dismissal names a fielder.
type FielderRule int

const (
	FielderAbsent FielderRule = iota
	FielderOptional
	FielderRequired
)

// DismissalKind is the closed set of ways a batter can be out.
type DismissalKind string

const (
	Bowled           DismissalKind = "bowled"
	Caught           DismissalKind = "caught"
	LBW              DismissalKind = "lbw"
	Stumped          DismissalKind = "stumped"
	RunOut           DismissalKind = "run_out"
	HitWicket        DismissalKind = "hit_wicket"
	HitSix           DismissalKind = "hit_six"
	HitBallTwice     DismissalKind = "hit_ball_twice"
	ObstructingField DismissalKind = "obstructing_field"
	HandledBall      DismissalKind = "handled_ball"
	TimedOut         DismissalKind = "timed_out"
)

type dismissalRule struct {
	fielder       FielderRule
	creditsBowler bool
	allowsRuns    bool
	label         string
}

var dismissalRules = map[DismissalKind]dismissalRule{
	Bowled:           {FielderAbsent, true, true, "b"},
	Caught:           {FielderRequired, true, true, "c"},
	LBW:              {FielderAbsent, true, true, "lbw"},
	Stumped:          {FielderRequired, true, true, "st"},
	RunOut:           {FielderOptional, false, true, "run out"},
	HitWicket:        {FielderAbsent, true, true, "hit wicket"},
	HitSix:           {FielderAbsent, true, false, "hit six"},
	HitBallTwice:     {FielderAbsent, true, true, "hit the ball twice"},
	ObstructingField: {FielderAbsent, false, true, "obstructing the field"},
	HandledBall:      {FielderAbsent, false, true, "handled the ball"},
	TimedOut:         {FielderAbsent, false, true, "timed out"},
}

// DismissalKinds lists every dismissal kind in a stable order.
func DismissalKinds() []DismissalKind {
	return []DismissalKind{
		Bowled, Caught, LBW, Stumped, RunOut, HitWicket,
		HitSix, HitBallTwice, ObstructingField, HandledBall, TimedOut,
	}
}

// ParseDismissalKind converts a string to a DismissalKind.
func ParseDismissalKind(s string) (DismissalKind, error) {
	if _, ok := dismissalRules[DismissalKind(s)]; ok {
		return DismissalKind(s), nil
	}
	return "", fmt.Errorf("unknown dismissal kind %q", s)
}

// Valid reports whether k is one of the known kinds.
func (k DismissalKind) Valid() bool {
	_, ok := dismissalRules[k]
	return ok
}

// FielderRule reports whether a fielder must, may or must not be named.
func (k DismissalKind) FielderRule() FielderRule {
	return dismissalRules[k].fielder
}

// CreditsBowler reports whether the bowler is credited with the wicket.
func (k DismissalKind) CreditsBowler() bool {
	return dismissalRules[k].creditsBowler
}

// AllowsRuns reports whether runs can be scored on the dismissal ball.
func (k DismissalKind) AllowsRuns() bool {
	return dismissalRules[k].allowsRuns
}

// Label is the short scorecard form ("c", "st", "run out").
func (k DismissalKind) Label() string {
	return dismissalRules[k].label
}
