package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines key bindings for the surface.
type KeyMap struct {
	// Common
	Quit       key.Binding
	ForceQuit  key.Binding
	ToggleHelp key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	Console    key.Binding
	Hide       key.Binding

	// Lists
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Clear  key.Binding

	// Inputs
	Submit key.Binding
	Back   key.Binding

	// Character
	ToggleMoving  key.Binding
	ToggleCombat  key.Binding
	ToggleJumping key.Binding
	ToggleZone    key.Binding
	ToggleWeapon  key.Binding
	TogglePlayer  key.Binding
	Unlock        key.Binding
}

// DefaultKeys returns the default key bindings.
func DefaultKeys() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		ToggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev tab"),
		),
		Console: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "command"),
		),
		Hide: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "hide"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "clear emote"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		ToggleMoving: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "move"),
		),
		ToggleCombat: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "combat"),
		),
		ToggleJumping: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "jump"),
		),
		ToggleZone: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "zone"),
		),
		ToggleWeapon: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "weapon"),
		),
		TogglePlayer: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "log in/out"),
		),
		Unlock: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unlock all"),
		),
	}
}

// NewHelpModel returns a configured help model.
func NewHelpModel() help.Model {
	return help.New()
}

// stateKeyMap adapts bindings to the current state for contextual help.
type stateKeyMap struct {
	keys    KeyMap
	state   state
	visible bool
}

// ForState returns a contextual key map implementing help.KeyMap.
func (k KeyMap) ForState(s state, visible bool) help.KeyMap {
	return stateKeyMap{keys: k, state: s, visible: visible}
}

// ShortHelp implements help.KeyMap.
func (s stateKeyMap) ShortHelp() []key.Binding {
	k := s.keys
	if !s.visible && s.state != stateConsole {
		return []key.Binding{k.Console, k.ToggleHelp, k.Quit}
	}
	switch s.state {
	case statePicker:
		return []key.Binding{k.Up, k.Down, k.Select, k.Clear, k.NextTab, k.ForceQuit}
	case stateOptions:
		return []key.Binding{k.Up, k.Down, k.Select, k.NextTab, k.Console, k.Quit}
	case stateCharacter:
		return []key.Binding{k.ToggleMoving, k.ToggleCombat, k.ToggleJumping, k.ToggleZone, k.ToggleWeapon, k.TogglePlayer, k.NextTab}
	case stateDelayInput, stateConsole:
		return []key.Binding{k.Submit, k.Back}
	default:
		return []key.Binding{k.ToggleHelp, k.Quit}
	}
}

// FullHelp implements help.KeyMap.
func (s stateKeyMap) FullHelp() [][]key.Binding {
	k := s.keys
	switch s.state {
	case statePicker:
		return [][]key.Binding{{k.Up, k.Down, k.Select, k.Clear}, {k.NextTab, k.PrevTab, k.Hide, k.ForceQuit}}
	case stateOptions:
		return [][]key.Binding{{k.Up, k.Down, k.Select}, {k.NextTab, k.PrevTab, k.Console, k.Hide, k.Quit}}
	case stateCharacter:
		return [][]key.Binding{
			{k.ToggleMoving, k.ToggleCombat, k.ToggleJumping, k.ToggleZone, k.ToggleWeapon},
			{k.TogglePlayer, k.Unlock, k.NextTab, k.Console, k.Quit},
		}
	default:
		return [][]key.Binding{s.ShortHelp()}
	}
}
