package scorecard

import (
	"fmt"
	"io"
	"strings"
)

const (
	battingHead = "%-20s %-26s %4s %4s %3s %3s %7s\n"
	battingRow  = "%-20s %-26s %4d %4d %3d %3d %7s\n"
	bowlingHead = "%-20s %5s %3s %4s %3s %3s %3s %6s\n"
	bowlingRow  = "%-20s %5s %3d %4d %3d %3d %3d %6s\n"
)

// Render writes the card as plain text.
func Render(w io.Writer, c *Card) error {
	var b strings.Builder
	b.WriteString(c.Title + "\n")
	if c.Result != "" {
		b.WriteString(c.Result + "\n")
	}

	for _, in := range c.Innings {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s: %s %s (%s ov, RR %s)\n", in.Label, in.BattingTeam, in.Total, in.Overs, in.RunRate)
		if in.Target > 0 {
			fmt.Fprintf(&b, "Target %d", in.Target)
			if in.RequiredRate != "" {
				fmt.Fprintf(&b, ", required rate %s", in.RequiredRate)
			}
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, battingHead, "Batter", "Dismissal", "R", "B", "4s", "6s", "SR")
		for _, r := range in.Batting {
			name := r.Name
			if r.OnStrike {
				name += "*"
			}
			fmt.Fprintf(&b, battingRow, name, r.Dismissal, r.Runs, r.Balls, r.Fours, r.Sixes, r.StrikeRate)
		}
		e := in.Extras
		fmt.Fprintf(&b, "Extras %d (wd %d, nb %d, b %d, lb %d)\n", e.Total, e.Wides, e.NoBalls, e.Byes, e.LegByes)

		fmt.Fprintf(&b, bowlingHead, "Bowler", "O", "M", "R", "W", "wd", "nb", "Econ")
		for _, r := range in.Bowling {
			fmt.Fprintf(&b, bowlingRow, r.Name, r.Overs, r.Maidens, r.Runs, r.Wickets, r.Wides, r.NoBalls, r.Economy)
		}

		if len(in.FallOfWickets) > 0 {
			b.WriteString("Fall of wickets: " + strings.Join(in.FallOfWickets, ", ") + "\n")
		}
		if len(in.Partnerships) > 0 {
			stands := make([]string, len(in.Partnerships))
			for i, p := range in.Partnerships {
				unbroken := ""
				if p.Wicket == 0 {
					unbroken = "*"
				}
				stands[i] = fmt.Sprintf("%s %d%s (%d)", p.Batters, p.Runs, unbroken, p.Balls)
			}
			b.WriteString("Partnerships: " + strings.Join(stands, "; ") + "\n")
		}
		if len(in.ThisOver) > 0 {
			b.WriteString("This over: " + strings.Join(in.ThisOver, " ") + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
