package host

import (
	"strings"
	"sync"
	"time"

	"github.com/stigoleg/emote-idler/internal/idle"
)

// Flag names one toggleable character signal.
type Flag int

const (
	FlagMoving Flag = iota
	FlagCombat
	FlagJumping
	FlagZone
	FlagWeapon
)

func (f Flag) String() string {
	switch f {
	case FlagMoving:
		return "Moving"
	case FlagCombat:
		return "In combat"
	case FlagJumping:
		return "Jumping"
	case FlagZone:
		return "Zoning"
	case FlagWeapon:
		return "Weapon drawn"
	default:
		return "Unknown"
	}
}

// Flags lists every toggleable flag in display order.
var Flags = []Flag{FlagMoving, FlagCombat, FlagJumping, FlagZone, FlagWeapon}

// maxChatLines bounds the simulated chat log.
const maxChatLines = 50

// ChatLine is one entry of the simulated chat log.
type ChatLine struct {
	At   time.Time
	Text string
}

// Sim is a simulated client. It is safe for concurrent use.
type Sim struct {
	mu       sync.RWMutex
	signals  idle.Signals
	present  bool
	unlocked map[uint32]bool
	fault    error
	chat     []ChatLine
	now      func() time.Time
}

// NewSim returns a simulated client with a player present and nothing unlocked.
func NewSim() *Sim {
	return &Sim{
		present:  true,
		unlocked: make(map[uint32]bool),
		now:      time.Now,
	}
}

// Signals implements SignalSource.
func (s *Sim) Signals() (idle.Signals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fault != nil {
		return idle.Signals{}, s.fault
	}
	if !s.present {
		return idle.Signals{}, ErrNoPlayer
	}
	return s.signals, nil
}

// SetSignals replaces every signal at once.
func (s *Sim) SetSignals(sig idle.Signals) {
	s.mu.Lock()
	s.signals = sig
	s.mu.Unlock()
}

// Toggle flips one signal and returns its new value.
func (s *Sim) Toggle(f Flag) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.flagPtr(f)
	if p == nil {
		return false
	}
	*p = !*p
	return *p
}

// Flag reports the current value of one signal.
func (s *Sim) Flag(f Flag) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p := s.flagPtr(f); p != nil {
		return *p
	}
	return false
}

func (s *Sim) flagPtr(f Flag) *bool {
	switch f {
	case FlagMoving:
		return &s.signals.Moving
	case FlagCombat:
		return &s.signals.InCombat
	case FlagJumping:
		return &s.signals.Jumping
	case FlagZone:
		return &s.signals.ZoneTransition
	case FlagWeapon:
		return &s.signals.WeaponDrawn
	}
	return nil
}

// SetFault makes signal reads fail with err until cleared with nil.
func (s *Sim) SetFault(err error) {
	s.mu.Lock()
	s.fault = err
	s.mu.Unlock()
}

// SetPresent logs the simulated player in or out.
func (s *Sim) SetPresent(present bool) {
	s.mu.Lock()
	s.present = present
	s.mu.Unlock()
}

// PlayerPresent implements emote.UnlockChecker.
func (s *Sim) PlayerPresent() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.present
}

// Unlock marks emotes as earned by the player.
func (s *Sim) Unlock(ids ...uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.unlocked[id] = true
	}
}

// IsEmoteUnlocked implements emote.UnlockChecker.
func (s *Sim) IsEmoteUnlocked(id uint32) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.present {
		return false, ErrNoPlayer
	}
	return s.unlocked[id], nil
}

// SendChat implements Dispatcher by appending to the chat log.
func (s *Sim) SendChat(command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = append(s.chat, ChatLine{At: s.now(), Text: command})
	if len(s.chat) > maxChatLines {
		s.chat = s.chat[len(s.chat)-maxChatLines:]
	}
	return nil
}

// Chat returns a copy of the chat log, oldest first.
func (s *Sim) Chat() []ChatLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ChatLine, len(s.chat))
	copy(out, s.chat)
	return out
}
