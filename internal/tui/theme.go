package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TermTheme holds all color values for a terminal theme.
type TermTheme struct {
	Name string

	Accent lipgloss.Color

	// Semantic
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	// Text
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Dim       lipgloss.Color

	Border lipgloss.Color
}

// DarkTheme is the default dark terminal theme.
var DarkTheme = TermTheme{
	Name:      "dark",
	Accent:    lipgloss.Color("#38bdf8"),
	Success:   lipgloss.Color("#22c55e"),
	Warning:   lipgloss.Color("#eab308"),
	Error:     lipgloss.Color("#ef4444"),
	Primary:   lipgloss.Color("#e0e0e8"),
	Secondary: lipgloss.Color("#888888"),
	Dim:       lipgloss.Color("#5a5a70"),
	Border:    lipgloss.Color("#2a2a3a"),
}

// LightTheme is the light terminal theme.
var LightTheme = TermTheme{
	Name:      "light",
	Accent:    lipgloss.Color("#0369a1"),
	Success:   lipgloss.Color("#15803d"),
	Warning:   lipgloss.Color("#a16207"),
	Error:     lipgloss.Color("#b91c1c"),
	Primary:   lipgloss.Color("#0f172a"),
	Secondary: lipgloss.Color("#374151"),
	Dim:       lipgloss.Color("#4b5563"),
	Border:    lipgloss.Color("#d1d5db"),
}

// DetectTheme returns the appropriate theme based on flag, env, or detection.
func DetectTheme(flagVal string) TermTheme {
	// 1. --theme flag
	if t, ok := themeByName(flagVal); ok {
		return t
	}

	// 2. SKYCI_THEME env
	if t, ok := themeByName(os.Getenv("SKYCI_THEME")); ok {
		return t
	}

	// 3. COLORFGBG heuristic (format: "fg;bg")
	if colorfgbg := os.Getenv("COLORFGBG"); colorfgbg != "" {
		parts := strings.Split(colorfgbg, ";")
		if len(parts) >= 2 {
			bg := parts[len(parts)-1]
			// bg 7 and 15 are light backgrounds
			if bg == "15" || bg == "7" {
				return LightTheme
			}
		}
	}

	return DarkTheme
}

func themeByName(name string) (TermTheme, bool) {
	switch strings.ToLower(name) {
	case "dark":
		return DarkTheme, true
	case "light":
		return LightTheme, true
	}
	return TermTheme{}, false
}

// StyleSet contains pre-computed lipgloss styles derived from a theme.
type StyleSet struct {
	Theme TermTheme

	Title      lipgloss.Style
	DimTxt     lipgloss.Style
	SuccessTxt lipgloss.Style
	WarningTxt lipgloss.Style
	ErrorTxt   lipgloss.Style
	PrimaryTxt lipgloss.Style

	StageName   lipgloss.Style
	BorderedBox lipgloss.Style

	BadgePassed  lipgloss.Style
	BadgeFailed  lipgloss.Style
	BadgeSkipped lipgloss.Style
}

// NewStyleSet creates a StyleSet from a theme. Styles are bound to r so the
// colour profile follows the output they are written to; a nil r uses the
// lipgloss default renderer.
func NewStyleSet(theme TermTheme, r *lipgloss.Renderer) *StyleSet {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	badge := r.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true).Padding(0, 1)
	return &StyleSet{
		Theme: theme,

		Title:      r.NewStyle().Foreground(theme.Accent).Bold(true),
		DimTxt:     r.NewStyle().Foreground(theme.Dim),
		SuccessTxt: r.NewStyle().Foreground(theme.Success),
		WarningTxt: r.NewStyle().Foreground(theme.Warning),
		ErrorTxt:   r.NewStyle().Foreground(theme.Error),
		PrimaryTxt: r.NewStyle().Foreground(theme.Primary),

		StageName: r.NewStyle().
			Foreground(theme.Primary).
			Width(16),
		BorderedBox: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		BadgePassed:  badge.Background(theme.Success),
		BadgeFailed:  badge.Background(theme.Error),
		BadgeSkipped: badge.Background(theme.Secondary),
	}
}
