package terminal

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/format"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/view"
)

const chartRows = 8

// Palette wraps text in ANSI colors. The zero value prints plain text.
type Palette struct {
	Color bool
}

func (p Palette) ansi(code, s string) string {
	if !p.Color {
		return s
	}
	return code + s + "\033[0m"
}

func (p Palette) red(s string) string    { return p.ansi("\033[91m", s) }
func (p Palette) yellow(s string) string { return p.ansi("\033[93m", s) }
func (p Palette) green(s string) string  { return p.ansi("\033[32m", s) }
func (p Palette) cyan(s string) string   { return p.ansi("\033[36m", s) }
func (p Palette) dim(s string) string    { return p.ansi("\033[90m", s) }
func (p Palette) bold(s string) string   { return p.ansi("\033[1m", s) }

func (p Palette) tier(t format.Tier, s string) string {
	switch t {
	case format.TierCritical:
		return p.red(s)
	case format.TierHigh:
		return p.yellow(s)
	case format.TierMedium:
		return p.cyan(s)
	default:
		return p.green(s)
	}
}

// Frame is everything one repaint needs.
type Frame struct {
	Snapshot view.Snapshot
	Hours    int
	Choices  []int
	State    string
}

// Paint writes one full board. It never clears the screen itself.
func Paint(w io.Writer, f Frame, p Palette) {
	snap := f.Snapshot

	updated := "never"
	if !snap.Updated.IsZero() {
		updated = format.Time(snap.Updated)
	}
	fmt.Fprintf(w, "  %s  %s  %s\n", p.bold("SUPPLY SHOCK DASHBOARD"), p.dim("•"), p.dim("Updated: "+updated))
	fmt.Fprintf(w, "  %s %s  %s %s\n\n", p.dim("Window:"), fmt.Sprintf("%dh", f.Hours), p.dim("State:"), f.State)

	if snap.Notice != "" {
		fmt.Fprintf(w, "  %s %s\n\n", p.red("✗"), snap.Notice)
	}

	for _, card := range snap.Summary.Cards {
		fmt.Fprintf(w, "  %s %s", p.dim(card.Label+":"), p.bold(card.Value))
	}
	fmt.Fprint(w, "\n\n")

	fmt.Fprintf(w, "  %s\n", p.bold("TREND"))
	paintTrend(w, snap.Trend, p)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s\n", p.bold("HOTSPOTS"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  COUNTRY\tREGION\tCOMMODITY\tAVG RISK\tACTIVE ALERTS")
	for _, h := range snap.Hotspots {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%d\n", h.Country, h.Region, h.Commodity, h.AvgRisk, h.ActiveAlerts)
	}
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s\n", p.bold("OPEN ALERTS"))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tCREATED\tLOCATION\tCOMMODITY\tRISK\tACTIONS")
	for _, a := range snap.Alerts.Rows {
		controls := make([]string, 0, len(a.Controls))
		for _, c := range a.Controls {
			label := "[" + strings.ToLower(c.Label) + "]"
			if c.Disabled {
				label = p.dim("[…]")
			}
			controls = append(controls, label)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.CreatedAt, a.Location, a.Commodity, p.tier(a.Severity, a.Score), strings.Join(controls, " "))
	}
	tw.Flush()
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s\n", p.bold("RECENT RISK EVENTS"))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  TIME\tCOUNTRY\tREGION\tCOMMODITY\tRISK")
	for _, r := range snap.Risks {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", r.Timestamp, r.Country, r.Region, r.Commodity, p.tier(r.Severity, r.Score))
	}
	tw.Flush()

	fmt.Fprintf(w, "\n  %s\n", p.dim("─────────────────────────────────────────────"))
	fmt.Fprintf(w, "  %s\n", p.dim(commandHelp(f.Choices)))
}

// paintTrend draws one column per bar. Bars above 100% are cut at the top
// of the chart.
func paintTrend(w io.Writer, t view.TrendView, p Palette) {
	if t.Empty {
		fmt.Fprintf(w, "  %s\n", p.dim(t.Message))
		return
	}
	heights := make([]int, len(t.Bars))
	for i, b := range t.Bars {
		heights[i] = int(math.Ceil(b.HeightPercent / 100 * chartRows))
	}
	for row := chartRows; row >= 1; row-- {
		var line strings.Builder
		for _, h := range heights {
			if h >= row {
				line.WriteString("█")
			} else {
				line.WriteString(" ")
			}
		}
		fmt.Fprintf(w, "  │%s\n", p.cyan(line.String()))
	}
	fmt.Fprintf(w, "  └%s\n", strings.Repeat("─", len(heights)))
	fmt.Fprintf(w, "  %s\n", p.dim("first: "+t.Bars[0].Tip))
	fmt.Fprintf(w, "  %s\n", p.dim("last:  "+t.Bars[len(t.Bars)-1].Tip))
}

func commandHelp(choices []int) string {
	opts := make([]string, 0, len(choices))
	for _, c := range choices {
		opts = append(opts, fmt.Sprint(c))
	}
	return "r refresh · w <" + strings.Join(opts, "|") + "> window · ack <id> · resolve <id> · d dismiss · q quit"
}
