// Package idle decides when the selected emote fires.
//
// The machine has two phases. Active means the character is doing
// something (or the weapon rule blocks idling). Idle records when the
// current idle episode started and whether the emote already fired in it.
// At most one emote fires per idle episode.
package idle

import (
	"time"

	"github.com/stigoleg/emote-idler/internal/emote"
	"github.com/stigoleg/emote-idler/internal/settings"
)

// Signals are the per-frame game-state inputs.
type Signals struct {
	Moving         bool
	InCombat       bool
	Jumping        bool
	ZoneTransition bool
	WeaponDrawn    bool
}

// Disqualified reports whether any signal other than the weapon ends idling.
func (s Signals) Disqualified() bool {
	return s.InCombat || s.Jumping || s.ZoneTransition || s.Moving
}

// Phase is the coarse machine state.
type Phase int

const (
	PhaseActive Phase = iota
	PhaseIdle
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "Active"
	case PhaseIdle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// State is the ephemeral idle session. The zero value is Active.
type State struct {
	Phase Phase
	Since time.Time
	Fired bool
}

// Elapsed returns how long the current idle episode has lasted.
func (s State) Elapsed(now time.Time) time.Duration {
	if s.Phase != PhaseIdle {
		return 0
	}
	return now.Sub(s.Since)
}

// Lookup resolves the selected emote.
type Lookup interface {
	ByID(id uint32) (emote.Definition, bool)
}

// Command is a chat command to emit.
type Command struct {
	EmoteID uint32
	Text    string
}

// Input bundles what one tick consumes. SignalErr is set when the host
// could not report the signals; it counts as a disqualifier.
type Input struct {
	Now       time.Time
	Signals   Signals
	SignalErr error
	Settings  settings.Settings
}

// Step computes the next state for one tick. ok is true when cmd must be sent.
func Step(st State, in Input, emotes Lookup) (next State, cmd Command, ok bool) {
	if in.Settings.EmoteID == 0 || emotes == nil {
		return st, Command{}, false
	}
	def, found := emotes.ByID(in.Settings.EmoteID)
	if !found {
		return st, Command{}, false
	}

	if in.SignalErr != nil {
		return State{}, Command{}, false
	}

	sig := in.Signals
	if sig.WeaponDrawn && !in.Settings.TriggerWhileWeaponDrawn {
		if sig.Moving {
			return State{}, Command{}, false
		}
		// Frozen: keep the idle timer as it is without firing.
		return st, Command{}, false
	}

	if sig.Disqualified() {
		return State{}, Command{}, false
	}

	if st.Phase != PhaseIdle {
		st = State{Phase: PhaseIdle, Since: in.Now}
	}
	if st.Fired || in.Now.Sub(st.Since) < in.Settings.IdleDelay() {
		return st, Command{}, false
	}

	st.Fired = true
	if def.Command == "" {
		return st, Command{}, false
	}
	return st, Command{EmoteID: def.ID, Text: def.Command}, true
}

// Machine holds the idle session between ticks. It is not safe for
// concurrent use.
type Machine struct {
	state  State
	emotes Lookup
}

// NewMachine returns a machine in the Active phase.
func NewMachine(emotes Lookup) *Machine {
	return &Machine{emotes: emotes}
}

// Tick advances the machine by one frame.
func (m *Machine) Tick(in Input) (Command, bool) {
	next, cmd, ok := Step(m.state, in, m.emotes)
	m.state = next
	return cmd, ok
}

// State returns the current idle session.
func (m *Machine) State() State {
	return m.state
}

// Reset discards the idle session.
func (m *Machine) Reset() {
	m.state = State{}
}
