package ui

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stigoleg/emote-idler/internal/host"
	"github.com/stigoleg/emote-idler/internal/idler"
	"github.com/stigoleg/emote-idler/internal/util"
)

// Update handles messages and updates the model accordingly.
func Update(msg tea.Msg, m Model) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case animMsg:
		m.frame++
		return m, animate()

	case RunnerEventMsg:
		m.applyEvent(idler.Event(msg))
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.State == stateHelp {
			if key.Matches(msg, m.keys.ToggleHelp, m.keys.Back, m.keys.Quit) {
				m.State = m.prev
			}
			return m, nil
		}
		switch m.State {
		case stateConsole:
			return updateConsole(msg, m)
		case stateDelayInput:
			return updateDelayInput(msg, m)
		}
		if !m.Surface.Visible() {
			return updateHidden(msg, m)
		}
		switch m.State {
		case statePicker:
			return updatePicker(msg, m)
		case stateOptions:
			return updateOptions(msg, m)
		case stateCharacter:
			return updateCharacter(msg, m)
		}
	}

	return m, nil
}

func (m *Model) applyEvent(ev idler.Event) {
	m.Idle = ev.State
	switch ev.Kind {
	case idler.EventFired:
		m.LastFired = ev.At
		m.LastCommand = ev.Command.Text
		m.FireCount++
	case idler.EventDispatchFailed:
		m.ErrorMessage = fmt.Sprintf("could not send %s: %v", ev.Command.Text, ev.Err)
	}
}

// enter switches to a modal state, remembering where to return.
func (m Model) enter(s state) (Model, tea.Cmd) {
	if m.State.isTab() {
		m.prev = m.State
	}
	m.State = s
	m.Search.Blur()

	switch s {
	case stateConsole:
		m.Console.SetValue("/")
		m.Console.CursorEnd()
		cmd := m.Console.Focus()
		return m, cmd
	case stateDelayInput:
		m.Delay.SetValue(strconv.Itoa(m.snapshot().IdleDelaySeconds))
		m.Delay.CursorEnd()
		cmd := m.Delay.Focus()
		return m, cmd
	}
	return m, nil
}

// leave returns from a modal state.
func (m Model) leave() (Model, tea.Cmd) {
	m.Console.Blur()
	m.Delay.Blur()
	m.State = m.prev
	if m.State == statePicker && m.Surface.Visible() {
		cmd := m.Search.Focus()
		return m, cmd
	}
	return m, nil
}

func (m Model) switchTab(step int) (Model, tea.Cmd) {
	m.State = nextTab(m.State, step)
	m.prev = m.State
	m.ErrorMessage = ""
	if m.State == statePicker {
		cmd := m.Search.Focus()
		return m, cmd
	}
	m.Search.Blur()
	return m, nil
}

func updateHidden(msg tea.KeyMsg, m Model) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Console):
		return m.enter(stateConsole)
	case key.Matches(msg, m.keys.ToggleHelp):
		return m.enter(stateHelp)
	case key.Matches(msg, m.keys.Quit, m.keys.Back):
		return m, tea.Quit
	}
	return m, nil
}

func updatePicker(msg tea.KeyMsg, m Model) (Model, tea.Cmd) {
	rows := m.emotes()

	switch {
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(-1)
	case msg.Type == tea.KeyUp:
		if m.Selected > 0 {
			m.Selected--
		}
		return m, nil
	case msg.Type == tea.KeyDown:
		if m.Selected < len(rows)-1 {
			m.Selected++
		}
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.setEmote(0)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if m.Selected < 0 || m.Selected >= len(rows) {
			return m, nil
		}
		def := rows[m.Selected]
		if !m.Catalog.IsUnlocked(def.ID, m.checker()) {
			m.ErrorMessage = fmt.Sprintf("%s is locked for this character", def.Name)
			return m, nil
		}
		m.setEmote(def.ID)
		return m, nil
	case key.Matches(msg, m.keys.Hide):
		if m.Search.Value() != "" {
			m.Search.Reset()
			m.Selected = 0
			return m, nil
		}
		m.Surface.Toggle()
		m.Search.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Console) && m.Search.Value() == "":
		return m.enter(stateConsole)
	case key.Matches(msg, m.keys.ToggleHelp) && m.Search.Value() == "":
		return m.enter(stateHelp)
	}

	before := m.Search.Value()
	var cmd tea.Cmd
	m.Search, cmd = m.Search.Update(msg)
	if m.Search.Value() != before {
		m.Selected = 0
		m.ErrorMessage = ""
	}
	return m, cmd
}

func updateOptions(msg tea.KeyMsg, m Model) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(-1)
	case key.Matches(msg, m.keys.Up):
		if m.Option > 0 {
			m.Option--
		}
	case key.Matches(msg, m.keys.Down):
		if m.Option < optionCount-1 {
			m.Option++
		}
	case key.Matches(msg, m.keys.Select):
		return m.activateOption()
	case key.Matches(msg, m.keys.Console):
		return m.enter(stateConsole)
	case key.Matches(msg, m.keys.ToggleHelp):
		return m.enter(stateHelp)
	case key.Matches(msg, m.keys.Hide):
		m.Surface.Toggle()
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) activateOption() (Model, tea.Cmd) {
	if m.Store == nil {
		m.ErrorMessage = "settings are not available"
		return m, nil
	}
	cur := m.snapshot()
	var err error
	switch m.Option {
	case 0:
		err = m.Store.SetTriggerWhileWeaponDrawn(!cur.TriggerWhileWeaponDrawn)
	case 1:
		return m.enter(stateDelayInput)
	case 2:
		err = m.Store.SetHideLocked(!cur.HideLockedEmotes)
		m.Selected = 0
	case 3:
		m.setEmote(0)
		return m, nil
	}
	m.reportSave(err)
	return m, nil
}

func updateCharacter(msg tea.KeyMsg, m Model) (Model, tea.Cmd) {
	toggles := []struct {
		binding key.Binding
		flag    host.Flag
	}{
		{m.keys.ToggleMoving, host.FlagMoving},
		{m.keys.ToggleCombat, host.FlagCombat},
		{m.keys.ToggleJumping, host.FlagJumping},
		{m.keys.ToggleZone, host.FlagZone},
		{m.keys.ToggleWeapon, host.FlagWeapon},
	}
	for _, t := range toggles {
		if key.Matches(msg, t.binding) {
			if m.Sim != nil {
				m.Sim.Toggle(t.flag)
			}
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.TogglePlayer):
		if m.Sim != nil {
			m.Sim.SetPresent(!m.Sim.PlayerPresent())
		}
	case key.Matches(msg, m.keys.Unlock):
		if m.Sim != nil {
			var ids []uint32
			for _, def := range m.Catalog.All() {
				if def.Gated() {
					ids = append(ids, def.ID)
				}
			}
			m.Sim.Unlock(ids...)
			m.Notice = fmt.Sprintf("unlocked %d emotes", len(ids))
		}
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(-1)
	case key.Matches(msg, m.keys.Console):
		return m.enter(stateConsole)
	case key.Matches(msg, m.keys.ToggleHelp):
		return m.enter(stateHelp)
	case key.Matches(msg, m.keys.Hide):
		m.Surface.Toggle()
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func updateDelayInput(msg tea.KeyMsg, m Model) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.ErrorMessage = ""
		return m.leave()
	case key.Matches(msg, m.keys.Submit):
		seconds, err := util.ParseDelay(m.Delay.Value())
		if err != nil {
			m.ErrorMessage = strings.SplitN(err.Error(), "\n", 2)[0]
			return m, nil
		}
		if m.Store == nil {
			m.ErrorMessage = "settings are not available"
			return m.leave()
		}
		m.reportSave(m.Store.SetIdleDelay(seconds))
		return m.leave()
	}

	var cmd tea.Cmd
	m.Delay, cmd = m.Delay.Update(msg)
	return m, cmd
}

func updateConsole(msg tea.KeyMsg, m Model) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.leave()
	case key.Matches(msg, m.keys.Submit):
		m.runLine(strings.TrimSpace(m.Console.Value()))
		return m.leave()
	}

	var cmd tea.Cmd
	m.Console, cmd = m.Console.Update(msg)
	return m, cmd
}

// runLine executes a console line: registered commands first, anything
// else is sent as chat.
func (m *Model) runLine(line string) {
	if line == "" {
		return
	}
	if m.Commands != nil && m.Commands.Run(line) {
		m.ErrorMessage = ""
		return
	}
	if !strings.HasPrefix(line, "/") {
		m.ErrorMessage = fmt.Sprintf("unknown input %q, commands start with /", line)
		return
	}
	if m.Sim == nil {
		return
	}
	if err := m.Sim.SendChat(line); err != nil {
		m.ErrorMessage = err.Error()
	}
}

func (m *Model) setEmote(id uint32) {
	if m.Store == nil {
		m.ErrorMessage = "settings are not available"
		return
	}
	m.ErrorMessage = ""
	m.reportSave(m.Store.SetEmote(id))
}

func (m *Model) reportSave(err error) {
	if err != nil {
		log.Printf("ui: %v", err)
		m.ErrorMessage = "settings not saved: " + err.Error()
		return
	}
	m.ErrorMessage = ""
}
