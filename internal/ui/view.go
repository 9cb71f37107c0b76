package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/stigoleg/emote-idler/internal/emote"
	"github.com/stigoleg/emote-idler/internal/host"
	"github.com/stigoleg/emote-idler/internal/idle"
	"github.com/stigoleg/emote-idler/internal/util"
)

// pickerRows is how many emotes the picker shows at once.
const pickerRows = 10

// chatRows is how many chat lines are shown under the surface.
const chatRows = 5

// View renders the current state of the model to a string.
func View(m Model) string {
	if m.State == stateHelp {
		return helpView()
	}

	var b strings.Builder
	if m.Surface.Visible() {
		b.WriteString(m.frameStyle().Render(surfaceView(m)))
	} else {
		b.WriteString(Current.Help.Render("Emote idler is hidden. Type /idler to open it."))
	}
	b.WriteString("\n")
	b.WriteString(statusView(m))
	b.WriteString("\n")
	b.WriteString(chatView(m))

	if m.State == stateConsole {
		b.WriteString("\n" + m.Console.View())
	}
	if m.ErrorMessage != "" {
		b.WriteString("\n" + Current.Error.Render(m.ErrorMessage))
	} else if m.Notice != "" {
		b.WriteString("\n" + Current.Help.Render(m.Notice))
	}

	b.WriteString("\n" + m.help.View(m.keys.ForState(m.State, m.Surface.Visible())))
	return b.String()
}

// frameStyle animates the border while the character idles and the
// emote has not fired yet.
func (m Model) frameStyle() lipgloss.Style {
	style := Current.Frame
	if m.Idle.Phase == idle.PhaseIdle && !m.Idle.Fired && len(Current.FrameColors) > 0 {
		color := Current.FrameColors[m.frame%len(Current.FrameColors)]
		style = style.BorderForeground(lipgloss.Color(color))
	}
	return style
}

func surfaceView(m Model) string {
	var b strings.Builder

	title := "Emote Idler"
	if m.version != "" {
		title += " " + m.version
	}
	b.WriteString(Current.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(tabsView(m))
	b.WriteString("\n\n")

	active := m.State
	if !active.isTab() {
		active = m.prev
	}
	switch active {
	case statePicker:
		b.WriteString(pickerView(m))
	case stateOptions:
		b.WriteString(optionsView(m))
	case stateCharacter:
		b.WriteString(characterView(m))
	}
	return b.String()
}

func tabsView(m Model) string {
	active := m.State
	if !active.isTab() {
		active = m.prev
	}
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		if t == active {
			parts = append(parts, Current.ActiveTab.Render(t.String()))
		} else {
			parts = append(parts, Current.Tab.Render(t.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func pickerView(m Model) string {
	var b strings.Builder

	b.WriteString(m.Search.View())
	b.WriteString("\n\n")

	rows := m.emotes()
	if len(rows) == 0 {
		if m.Catalog.Len() == 0 {
			b.WriteString(Current.Error.Render("No emotes loaded."))
		} else {
			b.WriteString(Current.Unselected.Render("No emotes match."))
		}
		return b.String()
	}

	chosen := m.snapshot().EmoteID
	start := 0
	if m.Selected >= pickerRows {
		start = m.Selected - pickerRows + 1
	}
	end := min(start+pickerRows, len(rows))

	for i := start; i < end; i++ {
		b.WriteString(emoteLine(m, rows[i], i == m.Selected, rows[i].ID == chosen))
		b.WriteString("\n")
	}
	if len(rows) > pickerRows {
		b.WriteString(Current.Help.Render(fmt.Sprintf("%d of %d", m.Selected+1, len(rows))))
	}
	return b.String()
}

func emoteLine(m Model, def emote.Definition, cursor, chosen bool) string {
	prefix := "  "
	if cursor {
		prefix = "> "
	}
	mark := " "
	if chosen {
		mark = "✓"
	}
	badge := Current.Badge.Render(fmt.Sprintf("[%06d]", def.IconID))
	label := fmt.Sprintf("%s%s %s %s", prefix, mark, def.Name, def.Command)

	switch {
	case !m.Catalog.IsUnlocked(def.ID, m.checker()):
		label += " (locked)"
		return badge + Current.Locked.Render(label)
	case cursor:
		return badge + Current.Selected.Render(label)
	case chosen:
		return badge + Current.Chosen.Render(label)
	default:
		return badge + Current.Unselected.Render(label)
	}
}

func optionsView(m Model) string {
	var b strings.Builder
	cur := m.snapshot()

	delay := util.FormatDelay(cur.IdleDelay())
	if m.State == stateDelayInput {
		delay = Current.InputBox.Render(m.Delay.View())
	}
	chosen := "none"
	if def, ok := m.selectedEmote(); ok {
		chosen = def.Name
	}

	rows := []string{
		fmt.Sprintf("Trigger while weapon drawn  %s", checkbox(cur.TriggerWhileWeaponDrawn)),
		fmt.Sprintf("Idle delay                  %s", delay),
		fmt.Sprintf("Hide locked emotes          %s", checkbox(cur.HideLockedEmotes)),
		fmt.Sprintf("Clear selected emote        (%s)", chosen),
	}
	for i, row := range rows {
		if i == m.Option {
			b.WriteString(Current.Selected.Render("> " + row))
		} else {
			b.WriteString(Current.Unselected.Render("  " + row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func characterView(m Model) string {
	var b strings.Builder
	if m.Sim == nil {
		b.WriteString(Current.Unselected.Render("No client attached."))
		return b.String()
	}

	b.WriteString(Current.Unselected.Render(fmt.Sprintf("Logged in   %s", checkbox(m.Sim.PlayerPresent()))))
	b.WriteString("\n")
	for i, f := range host.Flags {
		b.WriteString(Current.Unselected.Render(fmt.Sprintf("%d %-10s %s", i+1, f, checkbox(m.Sim.Flag(f)))))
		b.WriteString("\n")
	}
	return b.String()
}

func statusView(m Model) string {
	now := m.now()
	var parts []string

	def, ok := m.selectedEmote()
	if !ok {
		parts = append(parts, Current.Active.Render("No emote selected"))
	} else {
		parts = append(parts, Current.Chosen.Render(def.Name+" "+def.Command))
	}

	delay := m.snapshot().IdleDelay()
	switch {
	case m.Idle.Phase != idle.PhaseIdle:
		parts = append(parts, Current.Active.Render("Active"))
	case m.Idle.Fired:
		parts = append(parts, Current.Idle.Render("Idle, emote played"))
	default:
		remaining := delay - m.Idle.Elapsed(now)
		if remaining < 0 {
			remaining = 0
		}
		parts = append(parts, Current.Idle.Render(fmt.Sprintf("Idle %s, fires in %s",
			util.FormatDelay(m.Idle.Elapsed(now)), util.FormatDelay(remaining))))
	}

	if !m.LastFired.IsZero() {
		parts = append(parts, Current.Help.Render(fmt.Sprintf("last %s %s (%d total)",
			m.LastCommand, humanize.RelTime(m.LastFired, now, "ago", "from now"), m.FireCount)))
	}
	return strings.Join(parts, Current.Help.Render("•"))
}

func chatView(m Model) string {
	if m.Sim == nil {
		return ""
	}
	lines := m.Sim.Chat()
	if len(lines) > chatRows {
		lines = lines[len(lines)-chatRows:]
	}
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(Current.Badge.Render(l.At.Format(time.TimeOnly) + " " + l.Text))
		b.WriteString("\n")
	}
	return b.String()
}

// HelpText returns the usage text shared by -h and the help view.
func HelpText() string {
	return `Emote Idler Help

Usage:
  idler [flags]

Flags:
  -data-dir string   Directory for settings and logs (env IDLER_DATA_DIR)
  -sheet string      Emote sheet, .json or .db/.sqlite (env IDLER_SHEET)
  -frame duration    Frame interval of the idle check (env IDLER_FRAME, default 100ms)
  -theme string      Colour theme: default, contrast (env IDLER_THEME)
  -log string        Log file name inside the data dir (env IDLER_LOG)
  -v, -version       Show version information
  -h, -help          Show help message

Examples:
  idler                          # Start with the bundled emote sheet
  idler -sheet emotes.db         # Load emotes from a SQLite sheet
  idler -theme contrast          # Use the high-contrast theme

Commands:
  /idler     Show or hide the configuration surface
  /<emote>   Anything else starting with / is sent as chat

Navigation:
  tab/shift+tab : Switch tabs
  ↑/↓           : Move the cursor
  Enter         : Select emote or option
  ctrl+x        : Clear the selected emote
  Esc           : Clear search, then hide
  ?             : Show this help
  ctrl+c        : Quit`
}

func helpView() string {
	return Current.Help.Render(HelpText() + "\n\nPress '?' or 'Esc' to close help")
}
