// Package host describes what the idler needs from the game client and
// provides a simulated client for local use and tests.
package host

import (
	"errors"

	"github.com/stigoleg/emote-idler/internal/emote"
	"github.com/stigoleg/emote-idler/internal/idle"
)

// ErrNoPlayer is returned by queries that need a logged-in character.
var ErrNoPlayer = errors.New("no player present")

// SignalSource reports the per-frame game state of the local character.
type SignalSource interface {
	Signals() (idle.Signals, error)
}

// Dispatcher sends a chat command. No response is awaited.
type Dispatcher interface {
	SendChat(command string) error
}

// Host is everything the idler consumes from the client.
type Host interface {
	SignalSource
	Dispatcher
	emote.UnlockChecker
}
