package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stigoleg/emote-idler/internal/emote"
	"github.com/stigoleg/emote-idler/internal/host"
	"github.com/stigoleg/emote-idler/internal/idle"
	"github.com/stigoleg/emote-idler/internal/idler"
	"github.com/stigoleg/emote-idler/internal/settings"
)

// animInterval drives the animated frame.
const animInterval = 120 * time.Millisecond

// optionCount is the number of rows on the Options tab.
const optionCount = 4

// RunnerEventMsg carries a runner event into the program.
type RunnerEventMsg idler.Event

// animMsg advances the frame animation.
type animMsg time.Time

// Deps are the collaborators the surface reads and writes.
type Deps struct {
	Catalog  *emote.Catalog
	Store    *settings.Store
	Sim      *host.Sim
	Commands *host.Commands
	Surface  *Surface
	Version  string
}

// Model holds the UI state.
type Model struct {
	State        state
	prev         state
	Selected     int
	Option       int
	ErrorMessage string
	Notice       string

	Search  textinput.Model
	Delay   textinput.Model
	Console textinput.Model

	Catalog  *emote.Catalog
	Store    *settings.Store
	Sim      *host.Sim
	Commands *host.Commands
	Surface  *Surface

	Idle        idle.State
	LastFired   time.Time
	LastCommand string
	FireCount   int

	keys    KeyMap
	help    help.Model
	frame   int
	width   int
	version string
	now     func() time.Time
}

// NewModel returns the initial model.
func NewModel(d Deps) Model {
	search := textinput.New()
	search.Placeholder = "search emotes"
	search.Prompt = "🔍 "
	search.CharLimit = 32
	search.Focus()

	delay := textinput.New()
	delay.Placeholder = "30, 90s, 2m"
	delay.CharLimit = 12

	console := textinput.New()
	console.Prompt = "> "
	console.Placeholder = "/idler"
	console.CharLimit = 64

	surface := d.Surface
	if surface == nil {
		surface = NewSurface(true)
	}

	return Model{
		State:    statePicker,
		prev:     statePicker,
		Search:   search,
		Delay:    delay,
		Console:  console,
		Catalog:  d.Catalog,
		Store:    d.Store,
		Sim:      d.Sim,
		Commands: d.Commands,
		Surface:  surface,
		keys:     DefaultKeys(),
		help:     NewHelpModel(),
		version:  d.Version,
		now:      time.Now,
	}
}

// SetVersion sets the version shown in the title.
func (m *Model) SetVersion(v string) {
	m.version = v
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, animate())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := Update(msg, m)
	return newModel, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	return View(m)
}

// snapshot returns the current settings, or defaults without a store.
func (m Model) snapshot() settings.Settings {
	if m.Store == nil {
		return settings.Defaults()
	}
	return m.Store.Snapshot()
}

// checker returns the unlock checker, nil when no host is wired.
func (m Model) checker() emote.UnlockChecker {
	if m.Sim == nil {
		return nil
	}
	return m.Sim
}

// emotes returns the picker rows for the current search and filter.
func (m Model) emotes() []emote.Definition {
	return m.Catalog.Filter(m.Search.Value(), m.snapshot().HideLockedEmotes, m.checker())
}

// selectedEmote returns the configured emote, if it resolves.
func (m Model) selectedEmote() (emote.Definition, bool) {
	return m.Catalog.ByID(m.snapshot().EmoteID)
}

func animate() tea.Cmd {
	return tea.Tick(animInterval, func(t time.Time) tea.Msg {
		return animMsg(t)
	})
}
