package idler

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stigoleg/emote-idler/internal/emote"
	"github.com/stigoleg/emote-idler/internal/host"
	"github.com/stigoleg/emote-idler/internal/idle"
	"github.com/stigoleg/emote-idler/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookup map[uint32]emote.Definition

func (l lookup) ByID(id uint32) (emote.Definition, bool) {
	d, ok := l[id]
	return d, ok
}

var testEmotes = lookup{16: {ID: 16, Name: "Wave", Command: "/wave"}}

type fixedSettings settings.Settings

func (f fixedSettings) Snapshot() settings.Settings { return settings.Settings(f) }

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type failingDispatcher struct{}

func (failingDispatcher) SendChat(string) error { return errors.New("chat box closed") }

type panickingSignals struct{}

func (panickingSignals) Signals() (idle.Signals, error) { panic("object table gone") }

func TestStepFiresOncePerEpisode(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	sim := host.NewSim()

	var events []Event
	r := NewRunner(testEmotes, sim, sim, fixedSettings{EmoteID: 16, IdleDelaySeconds: 2},
		WithClock(clock.Now),
		OnEvent(func(ev Event) { events = append(events, ev) }),
	)

	for i := 0; i < 50; i++ {
		r.Step()
		clock.Advance(100 * time.Millisecond)
	}

	chat := sim.Chat()
	require.Len(t, chat, 1)
	assert.Equal(t, "/wave", chat[0].Text)
	assert.Equal(t, int64(1), r.Fired())
	assert.True(t, r.State().Fired)

	var kinds []EventKind
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	assert.Equal(t, []EventKind{EventStateChanged, EventStateChanged, EventFired}, kinds)

	sim.Toggle(host.FlagMoving)
	r.Step()
	assert.Equal(t, idle.PhaseActive, r.State().Phase)
	sim.Toggle(host.FlagMoving)

	for i := 0; i < 30; i++ {
		clock.Advance(100 * time.Millisecond)
		r.Step()
	}
	assert.Len(t, sim.Chat(), 2)
}

func TestStepBackToBackEpisodes(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	sim := host.NewSim()
	r := NewRunner(testEmotes, sim, sim, fixedSettings{EmoteID: 16}, WithClock(clock.Now))

	r.Step()
	require.Len(t, sim.Chat(), 1)

	sim.Toggle(host.FlagMoving)
	clock.Advance(100 * time.Millisecond)
	r.Step()
	assert.Equal(t, idle.PhaseActive, r.State().Phase)

	sim.Toggle(host.FlagMoving)
	clock.Advance(100 * time.Millisecond)
	r.Step()

	assert.Len(t, sim.Chat(), 2, "a new episode fires even right after the last one")
	assert.Equal(t, int64(2), r.Fired())
	assert.Equal(t, idle.State{Phase: idle.PhaseIdle, Since: clock.Now(), Fired: true}, r.State())
}

func TestSignalFailureLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	sim := host.NewSim()
	sim.SetPresent(false)
	r := NewRunner(testEmotes, sim, sim, fixedSettings{EmoteID: 16})

	for i := 0; i < 20; i++ {
		r.Step()
	}

	assert.Equal(t, 1, strings.Count(buf.String(), "signals unavailable"))
	assert.Contains(t, buf.String(), host.ErrNoPlayer.Error())
}

func TestStepDispatchFailure(t *testing.T) {
	sim := host.NewSim()
	var failed []Event
	r := NewRunner(testEmotes, sim, failingDispatcher{}, fixedSettings{EmoteID: 16},
		OnEvent(func(ev Event) {
			if ev.Kind == EventDispatchFailed {
				failed = append(failed, ev)
			}
		}),
	)

	r.Step()
	require.Len(t, failed, 1)
	assert.Error(t, failed[0].Err)
	assert.Equal(t, int64(0), r.Fired())
}

func TestStepSignalFailuresDisqualify(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}

	t.Run("signal error", func(t *testing.T) {
		sim := host.NewSim()
		sim.SetFault(errors.New("condition flags unreadable"))
		r := NewRunner(testEmotes, sim, sim, fixedSettings{EmoteID: 16}, WithClock(clock.Now))
		r.Step()
		assert.Empty(t, sim.Chat())
		assert.Equal(t, idle.PhaseActive, r.State().Phase)
	})

	t.Run("no player", func(t *testing.T) {
		sim := host.NewSim()
		sim.SetPresent(false)
		r := NewRunner(testEmotes, sim, sim, fixedSettings{EmoteID: 16}, WithClock(clock.Now))
		r.Step()
		assert.Empty(t, sim.Chat())
	})

	t.Run("panicking source", func(t *testing.T) {
		sim := host.NewSim()
		r := NewRunner(testEmotes, panickingSignals{}, sim, fixedSettings{EmoteID: 16}, WithClock(clock.Now))
		assert.NotPanics(t, r.Step)
		assert.Empty(t, sim.Chat())
	})

	t.Run("nil source", func(t *testing.T) {
		sim := host.NewSim()
		r := NewRunner(testEmotes, nil, sim, fixedSettings{EmoteID: 16}, WithClock(clock.Now))
		r.Step()
		assert.Empty(t, sim.Chat())
	})
}

func TestStartStop(t *testing.T) {
	sim := host.NewSim()
	r := NewRunner(testEmotes, sim, sim, fixedSettings{EmoteID: 16}, WithInterval(5*time.Millisecond))

	assert.False(t, r.IsRunning())
	require.NoError(t, r.Start(context.Background()))
	assert.True(t, r.IsRunning())
	assert.ErrorIs(t, r.Start(context.Background()), ErrAlreadyRunning)

	require.Eventually(t, func() bool { return len(sim.Chat()) == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, r.Stop())
	assert.False(t, r.IsRunning())
	assert.Equal(t, idle.State{}, r.State(), "idle session is discarded on stop")
	require.NoError(t, r.Stop())
}

func TestStopsWithParentContext(t *testing.T) {
	sim := host.NewSim()
	r := NewRunner(testEmotes, sim, sim, fixedSettings{}, WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))
	cancel()

	require.Eventually(t, func() bool { return !r.IsRunning() }, time.Second, 5*time.Millisecond)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "fired", EventFired.String())
	assert.Equal(t, "unknown", EventKind(42).String())
}
