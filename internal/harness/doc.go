// Package harness plays scripted matches through the engine and checks the
// result.
//
// A scenario is the umpire's calls for one match, in order. The harness
// saves the roster, creates the match, runs each call through the same
// engine operations a live scorer uses, then replays the stored log to check
// that it still folds to the stored innings.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: short_match
//	description: "One over a side, three players each"
//	rules:
//	  overs: 1
//	  max_overs_per_bowler: 1
//	  players_per_side: 3
//	teams:
//	  - id: a
//	    players: [a1, a2, a3]
//	  - id: b
//	    players: [b1, b2, b3]
//	names: { a: A, b: B }
//	toss: { winner: a, decision: bat }
//	auto_select: true
//	steps:
//	  - start: { striker: a1, non_striker: a2, bowler: b1 }
//	  - run: 4
//	  - wide: 1
//	  - wicket: { kind: caught, fielder: b2 }
//	  - batter: a3
//	  - undo: true
//	  - delete: 2
//	  - bowler: b2
//	    expect_error: BOWLER_MID_OVER
//	expect:
//	  phase: complete
//	  result: "B won by 2 wickets"
//	  scores: ["17/1", "18/0"]
//	  audit: [UNDO_BALL]
//
// Each step carries exactly one action:
//
//   - start: opens the next innings. Omitted XIs default to the full squads
//     of the striker's and bowler's teams, or to the opening pair and the
//     bowler for a Super Over.
//   - run, wide, no_ball, bye, leg_bye, wicket: records a delivery.
//   - batter, bowler: fills a pending selection.
//   - undo, delete: corrects the current over; delete takes the 1-based
//     position of the ball in the over.
//   - super_over, reopen, cancel, delete_result: lifecycle changes.
//
// A step with expect_error must fail with that code. A step without one
// must succeed; the first unexpected outcome stops the run.
//
// # Deterministic Runs
//
// Ids are sequential and prefixed with the scenario name, and the wall clock
// steps one minute per reading, so a scenario run against an empty database
// always produces the same log and the same golden scorecard.
//
// # Usage
//
//	sc, err := harness.LoadScenario("testdata/scenarios/short_match.yaml")
//	if err != nil {
//	    return err
//	}
//	result, err := harness.Run(ctx, sc, st)
//
// In tests, RunWithGolden compares the rendered scorecard with
// testdata/golden/{name}.golden.
package harness
