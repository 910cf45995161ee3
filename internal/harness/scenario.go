package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/crease/internal/apperrors"
	"github.com/roach88/crease/internal/delivery"
	"github.com/roach88/crease/internal/match"
	"github.com/roach88/crease/internal/store"
)

// Scenario is a scripted match: the teams, the toss, and the umpire's
// calls in order, plus what the final state must look like.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario covers.
	Description string `yaml:"description"`

	Rules match.Rules `yaml:"rules"`

	// Teams are exactly two sides. The first is Team1 in the match setup.
	Teams []TeamSpec `yaml:"teams"`

	Toss TossSpec `yaml:"toss"`

	// Names maps team and player ids to display names on the scorecard.
	Names map[string]string `yaml:"names,omitempty"`

	// AutoSelect fills a pending batter or bowler selection with the first
	// eligible player before each delivery.
	AutoSelect bool `yaml:"auto_select,omitempty"`

	Steps []Step `yaml:"steps"`

	Expect *Expectation `yaml:"expect,omitempty"`
}

// TeamSpec is a side and its squad.
type TeamSpec struct {
	ID      string   `yaml:"id"`
	Players []string `yaml:"players"`
}

// TossSpec is the confirmed toss.
type TossSpec struct {
	Winner   string             `yaml:"winner"`
	Decision match.TossDecision `yaml:"decision"`
}

// Step is one call. Exactly one action field is set.
type Step struct {
	Start  *match.InningsSetup `yaml:"start,omitempty"`
	Run    *int                `yaml:"run,omitempty"`
	Wide   *int                `yaml:"wide,omitempty"`
	NoBall *int                `yaml:"no_ball,omitempty"`
	Bye    *int                `yaml:"bye,omitempty"`
	LegBye *int                `yaml:"leg_bye,omitempty"`
	Wicket *WicketSpec         `yaml:"wicket,omitempty"`
	Batter string              `yaml:"batter,omitempty"`
	Bowler string              `yaml:"bowler,omitempty"`
	Undo   bool                `yaml:"undo,omitempty"`

	// Delete removes the nth ball (1-based) of the current over.
	Delete int `yaml:"delete,omitempty"`

	SuperOver    bool `yaml:"super_over,omitempty"`
	Reopen       bool `yaml:"reopen,omitempty"`
	Cancel       bool `yaml:"cancel,omitempty"`
	DeleteResult bool `yaml:"delete_result,omitempty"`

	// ExpectError is the error code the call must fail with. The match must
	// be unchanged afterwards.
	ExpectError apperrors.Code `yaml:"expect_error,omitempty"`
}

// WicketSpec is a dismissal of the striker.
type WicketSpec struct {
	Kind    delivery.DismissalKind `yaml:"kind"`
	Fielder string                 `yaml:"fielder,omitempty"`
	Runs    int                    `yaml:"runs,omitempty"`
}

// Expectation is checked against the match once every step has run.
// Unset fields are not checked.
type Expectation struct {
	Phase  match.Phase  `yaml:"phase,omitempty"`
	Status match.Status `yaml:"status,omitempty"`

	// Result is the rendered summary, e.g. "A won by 5 runs".
	Result string `yaml:"result,omitempty"`

	// Scores are innings totals in order, as "runs/wickets".
	Scores []string `yaml:"scores,omitempty"`

	// Overs are innings overs in order, as "o.b".
	Overs []string `yaml:"overs,omitempty"`

	Target int `yaml:"target,omitempty"`

	// Audit lists the audit trail actions in order.
	Audit []store.Action `yaml:"audit,omitempty"`
}

// outcome converts a delivery step; ok is false for every other action.
func (s Step) outcome() (delivery.Outcome, bool) {
	switch {
	case s.Run != nil:
		return delivery.Run(*s.Run), true
	case s.Wide != nil:
		return delivery.Wide(*s.Wide), true
	case s.NoBall != nil:
		return delivery.NoBall(*s.NoBall), true
	case s.Bye != nil:
		return delivery.Bye(*s.Bye), true
	case s.LegBye != nil:
		return delivery.LegBye(*s.LegBye), true
	case s.Wicket != nil:
		return delivery.Wicket(s.Wicket.Kind, s.Wicket.Fielder, s.Wicket.Runs), true
	}
	return delivery.Outcome{}, false
}

// Actions names the action fields that are set, in declaration order.
func (s Step) Actions() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(s.Start != nil, "start")
	add(s.Run != nil, "run")
	add(s.Wide != nil, "wide")
	add(s.NoBall != nil, "no_ball")
	add(s.Bye != nil, "bye")
	add(s.LegBye != nil, "leg_bye")
	add(s.Wicket != nil, "wicket")
	add(s.Batter != "", "batter")
	add(s.Bowler != "", "bowler")
	add(s.Undo, "undo")
	add(s.Delete != 0, "delete")
	add(s.SuperOver, "super_over")
	add(s.Reopen, "reopen")
	add(s.Cancel, "cancel")
	add(s.DeleteResult, "delete_result")
	return out
}

// Describe is a short label for error messages, e.g. "run 4".
func (s Step) Describe() string {
	switch {
	case s.Start != nil:
		return fmt.Sprintf("start %s/%s, %s bowling", s.Start.Striker, s.Start.NonStriker, s.Start.Bowler)
	case s.Run != nil:
		return fmt.Sprintf("run %d", *s.Run)
	case s.Wide != nil:
		return fmt.Sprintf("wide %d", *s.Wide)
	case s.NoBall != nil:
		return fmt.Sprintf("no_ball %d", *s.NoBall)
	case s.Bye != nil:
		return fmt.Sprintf("bye %d", *s.Bye)
	case s.LegBye != nil:
		return fmt.Sprintf("leg_bye %d", *s.LegBye)
	case s.Wicket != nil:
		return fmt.Sprintf("wicket %s", s.Wicket.Kind)
	case s.Batter != "":
		return "batter " + s.Batter
	case s.Bowler != "":
		return "bowler " + s.Bowler
	case s.Delete != 0:
		return fmt.Sprintf("delete %d", s.Delete)
	}
	if a := s.Actions(); len(a) > 0 {
		return a[0]
	}
	return "empty"
}

// LoadScenario reads and validates a scenario file. Unknown keys are
// rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}
	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

func validateScenario(sc *Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if sc.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(sc.Teams) != 2 {
		return fmt.Errorf("exactly two teams are required, got %d", len(sc.Teams))
	}
	for i, t := range sc.Teams {
		if t.ID == "" {
			return fmt.Errorf("teams[%d]: id is required", i)
		}
		if len(t.Players) == 0 {
			return fmt.Errorf("team %s: players are required", t.ID)
		}
	}
	if len(sc.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, s := range sc.Steps {
		switch a := s.Actions(); len(a) {
		case 1:
		case 0:
			return fmt.Errorf("steps[%d]: no action", i)
		default:
			return fmt.Errorf("steps[%d]: one action per step, got %s", i, strings.Join(a, ", "))
		}
	}
	return nil
}

// team returns the side whose squad includes playerID.
func (sc *Scenario) team(playerID string) (TeamSpec, bool) {
	for _, t := range sc.Teams {
		for _, p := range t.Players {
			if p == playerID {
				return t, true
			}
		}
	}
	return TeamSpec{}, false
}

// name resolves a display name, falling back to the id.
func (sc *Scenario) name(id string) string {
	if n, ok := sc.Names[id]; ok && n != "" {
		return n
	}
	return id
}
