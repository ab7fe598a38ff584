package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/initializ/skyci/pipeline"
)

// RenderSummary renders a bordered table of stage outcomes followed by any
// warnings and the overall verdict.
func RenderSummary(run *pipeline.Run, warnings []string, styles *StyleSet, width int) string {
	boxWidth := width - 4
	if boxWidth < 40 {
		boxWidth = 40
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", styles.Title.Render("skyci"), styles.DimTxt.Render("build "+run.ID))
	b.WriteString("\n")

	for _, o := range run.Outcomes {
		mark := styles.SuccessTxt.Render("✓")
		if !o.Success {
			mark = styles.ErrorTxt.Render("✗")
		}
		line := fmt.Sprintf("%s %s %s", mark, styles.StageName.Render(o.Name), styles.DimTxt.Render(formatDuration(o.Duration)))
		if o.Reason != "" {
			line += "  " + styles.ErrorTxt.Render(o.Reason)
		}
		b.WriteString(line + "\n")
	}
	if len(run.Outcomes) == 0 {
		b.WriteString(styles.DimTxt.Render("no stages ran") + "\n")
	}

	if len(warnings) > 0 {
		b.WriteString("\n")
		for _, w := range warnings {
			b.WriteString(styles.WarningTxt.Render("! "+w) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(verdict(run, styles))

	return styles.BorderedBox.Width(boxWidth).Render(b.String()) + "\n"
}

func verdict(run *pipeline.Run, styles *StyleSet) string {
	elapsed := styles.DimTxt.Render("in " + formatDuration(run.Duration()))
	switch {
	case !run.Success():
		n := len(run.Failures())
		return fmt.Sprintf("%s %s %s", styles.BadgeFailed.Render("FAILED"),
			styles.PrimaryTxt.Render(fmt.Sprintf("%d of %d stages failed", n, len(run.Outcomes))), elapsed)
	case run.State == pipeline.StateAbortedEarly:
		return fmt.Sprintf("%s %s %s", styles.BadgeSkipped.Render("SKIPPED"),
			styles.PrimaryTxt.Render("skip marker found in commit message"), elapsed)
	default:
		return fmt.Sprintf("%s %s %s", styles.BadgePassed.Render("PASSED"),
			styles.PrimaryTxt.Render(fmt.Sprintf("%d stages", len(run.Outcomes))), elapsed)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
