// Package ui provides the terminal configuration surface for the emote idler.
package ui

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Colors defines a colour scheme.
type Colors struct {
	Subtle    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Special   lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
	Locked    lipgloss.AdaptiveColor
}

var defaultColors = Colors{
	Subtle:    lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"},
	Highlight: lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"},
	Special:   lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"},
	Error:     lipgloss.AdaptiveColor{Light: "#FF0000", Dark: "#FF4040"},
	Locked:    lipgloss.AdaptiveColor{Light: "#B08800", Dark: "#D4A017"},
}

var contrastColors = Colors{
	Subtle:    lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"},
	Highlight: lipgloss.AdaptiveColor{Light: "#0000AA", Dark: "#FFFF00"},
	Special:   lipgloss.AdaptiveColor{Light: "#006600", Dark: "#00FF00"},
	Error:     lipgloss.AdaptiveColor{Light: "#AA0000", Dark: "#FF5555"},
	Locked:    lipgloss.AdaptiveColor{Light: "#884400", Dark: "#FFAA00"},
}

// Style is a collection of styles used by the surface.
type Style struct {
	Title       lipgloss.Style
	Tab         lipgloss.Style
	ActiveTab   lipgloss.Style
	Selected    lipgloss.Style
	Unselected  lipgloss.Style
	Chosen      lipgloss.Style
	Locked      lipgloss.Style
	Badge       lipgloss.Style
	InputBox    lipgloss.Style
	Help        lipgloss.Style
	Error       lipgloss.Style
	Idle        lipgloss.Style
	Active      lipgloss.Style
	Frame       lipgloss.Style
	FrameColors []string
}

// borderGradient is cycled through by the animated frame while idling.
var borderGradient = []string{
	"#7D56F4", "#6E5AF5", "#5F5FF7", "#5063F8", "#4168FA",
	"#326CFB", "#2371FD", "#1475FE", "#057AFF", "#007FF5",
	"#0087E1", "#008FCD", "#0097B9", "#009FA5", "#00A791",
	"#00AF7D", "#00B769", "#00BF55", "#43BF6D", "#00B769",
	"#00AF7D", "#00A791", "#009FA5", "#0097B9", "#008FCD",
	"#0087E1", "#007FF5", "#057AFF", "#1475FE", "#2371FD",
	"#326CFB", "#4168FA", "#5063F8", "#5F5FF7", "#6E5AF5",
}

var contrastGradient = []string{"#FFFF00", "#FFFFFF", "#00FF00", "#FFFFFF"}

func newStyle(c Colors, gradient []string) Style {
	base := lipgloss.NewStyle().
		PaddingLeft(1).
		PaddingRight(1)

	return Style{
		Title: base.
			Bold(true).
			Foreground(c.Highlight),

		Tab: base.
			Foreground(c.Subtle),

		ActiveTab: base.
			Bold(true).
			Underline(true).
			Foreground(c.Highlight),

		Selected: base.
			Bold(true).
			Foreground(c.Highlight),

		Unselected: base,

		Chosen: base.
			Foreground(c.Special),

		Locked: base.
			Foreground(c.Locked),

		Badge: lipgloss.NewStyle().
			Foreground(c.Subtle),

		InputBox: base.
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Highlight).
			Padding(0, 1),

		Help: base.
			Foreground(c.Subtle),

		Error: base.
			Foreground(c.Error),

		Idle: base.
			Bold(true).
			Foreground(c.Special),

		Active: base.
			Foreground(c.Subtle),

		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.Highlight).
			Padding(0, 1),

		FrameColors: gradient,
	}
}

// DefaultStyle returns the default theme.
func DefaultStyle() Style {
	return newStyle(defaultColors, borderGradient)
}

// ContrastStyle returns the high-contrast theme.
func ContrastStyle() Style {
	return newStyle(contrastColors, contrastGradient)
}

// Themes maps theme names to constructors.
var Themes = map[string]func() Style{
	"default":  DefaultStyle,
	"contrast": ContrastStyle,
}

// ThemeNames lists the available themes, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(Themes))
	for name := range Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UseTheme switches Current to the named theme. Unknown names keep the
// current theme and return false.
func UseTheme(name string) bool {
	fn, ok := Themes[name]
	if !ok {
		return false
	}
	Current = fn()
	return true
}

// Current holds the active style configuration.
var Current = DefaultStyle()
