package integration

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stigoleg/emote-idler/internal/emote"
	"github.com/stigoleg/emote-idler/internal/host"
	"github.com/stigoleg/emote-idler/internal/idle"
	"github.com/stigoleg/emote-idler/internal/idler"
	"github.com/stigoleg/emote-idler/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type harness struct {
	catalog *emote.Catalog
	store   *settings.Store
	sim     *host.Sim
	clock   *clock
	runner  *idler.Runner
	events  []idler.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cat, err := emote.Load(context.Background(), emote.EmbeddedSheet())
	require.NoError(t, err, "embedded sheet should load")

	store, err := settings.Open(filepath.Join(t.TempDir(), settings.FileName), settings.WithCatalog(cat))
	require.NoError(t, err, "fresh settings should open")

	h := &harness{
		catalog: cat,
		store:   store,
		sim:     host.NewSim(),
		clock:   &clock{now: time.Date(2024, 5, 4, 20, 0, 0, 0, time.UTC)},
	}
	h.runner = idler.NewRunner(cat, h.sim, h.sim, store,
		idler.WithClock(h.clock.Now),
		idler.OnEvent(func(ev idler.Event) { h.events = append(h.events, ev) }),
	)
	return h
}

// frames steps the runner n times, one frame interval apart.
func (h *harness) frames(n int) {
	for i := 0; i < n; i++ {
		h.runner.Step()
		h.clock.Advance(idler.DefaultFrameInterval)
	}
}

func (h *harness) chat() []string {
	var out []string
	for _, l := range h.sim.Chat() {
		out = append(out, l.Text)
	}
	return out
}

func TestIdleSessionEndToEnd(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetEmote(11))
	require.NoError(t, h.store.SetIdleDelay(2))

	// 2s of idling at 100ms frames, then some margin.
	h.frames(25)
	assert.Equal(t, []string{"/dance"}, h.chat(), "emote should fire once after the delay")
	assert.Equal(t, int64(1), h.runner.Fired())
	assert.True(t, h.runner.State().Fired)

	h.frames(50)
	assert.Len(t, h.chat(), 1, "emote must not repeat within one idle episode")

	h.sim.Toggle(host.FlagMoving)
	h.frames(1)
	assert.Equal(t, idle.PhaseActive, h.runner.State().Phase)

	h.sim.Toggle(host.FlagMoving)
	h.frames(25)
	assert.Equal(t, []string{"/dance", "/dance"}, h.chat(), "a new idle episode fires again")
}

func TestSettingsChangesApplyLive(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetEmote(11))
	require.NoError(t, h.store.SetIdleDelay(2))

	h.frames(10)
	require.NoError(t, h.store.SetEmote(16))
	h.frames(15)

	assert.Equal(t, []string{"/wave"}, h.chat(), "the emote selected at fire time is sent")
}

func TestWeaponDrawnRule(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetEmote(16))
	require.NoError(t, h.store.SetIdleDelay(1))
	require.NoError(t, h.store.SetTriggerWhileWeaponDrawn(false))

	h.sim.Toggle(host.FlagWeapon)
	h.frames(30)
	assert.Empty(t, h.chat(), "weapon drawn freezes idling when the option is off")

	require.NoError(t, h.store.SetTriggerWhileWeaponDrawn(true))
	h.frames(15)
	assert.Equal(t, []string{"/wave"}, h.chat())
}

func TestQuickEpisodesEachFire(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetEmote(16))

	// Default settings: no delay, weapon allowed.
	h.sim.Toggle(host.FlagWeapon)
	for i := 0; i < 3; i++ {
		h.frames(1)
		h.sim.Toggle(host.FlagMoving)
		h.frames(1)
		h.sim.Toggle(host.FlagMoving)
	}
	h.frames(1)

	assert.Equal(t, []string{"/wave", "/wave", "/wave", "/wave"}, h.chat(),
		"every idle episode fires, however short the gap")
	assert.Equal(t, int64(4), h.runner.Fired())
}

func TestNoEmoteSelected(t *testing.T) {
	h := newHarness(t)
	h.frames(400)

	assert.Empty(t, h.chat())
	assert.Empty(t, h.events, "nothing happens without a selection")
}

func TestEmptyCommandEmote(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetEmote(51))
	require.NoError(t, h.store.SetIdleDelay(0))

	h.frames(5)
	assert.Empty(t, h.chat(), "an emote without a command sends nothing")
	assert.True(t, h.runner.State().Fired, "the episode still counts as fired")
}

func TestPlayerLogoutResetsIdle(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetEmote(16))
	require.NoError(t, h.store.SetIdleDelay(1))

	h.frames(5)
	h.sim.SetPresent(false)
	h.frames(1)
	assert.Equal(t, idle.PhaseActive, h.runner.State().Phase, "missing player counts as active")

	h.sim.SetPresent(true)
	h.frames(5)
	assert.Empty(t, h.chat(), "the idle timer restarts after logout")
	h.frames(10)
	assert.Equal(t, []string{"/wave"}, h.chat())
}

func TestLegacySettingsMigration(t *testing.T) {
	cat, err := emote.Load(context.Background(), emote.EmbeddedSheet())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), settings.FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"emoteCommand": "/WAVE"}`), 0o644))

	store, err := settings.Open(path, settings.WithCatalog(cat))
	require.NoError(t, err)

	got := store.Snapshot()
	assert.Equal(t, uint32(16), got.EmoteID, "legacy command should resolve through the catalog")
	assert.True(t, got.TriggerWhileWeaponDrawn, "a record without unsheathed triggers with the weapon drawn")
	assert.Equal(t, 0, got.IdleDelaySeconds, "a record without a delay fires immediately")

	require.NoError(t, store.Save())
	reopened, err := settings.Open(path, settings.WithCatalog(cat))
	require.NoError(t, err)
	assert.Equal(t, got, reopened.Snapshot(), "migrated settings should survive a save")
}

func TestRunnerLifecycle(t *testing.T) {
	cat, err := emote.Load(context.Background(), emote.EmbeddedSheet())
	require.NoError(t, err)
	store, err := settings.Open(filepath.Join(t.TempDir(), settings.FileName), settings.WithCatalog(cat))
	require.NoError(t, err)
	require.NoError(t, store.SetEmote(16))
	require.NoError(t, store.SetIdleDelay(0))

	sim := host.NewSim()
	runner := idler.NewRunner(cat, sim, sim, store, idler.WithInterval(10*time.Millisecond))

	shutdown := idler.NewShutdown(time.Second)
	shutdown.Add("settings", store.Save)
	shutdown.Add("runner", runner.Stop)

	require.NoError(t, runner.Start(context.Background()))
	assert.ErrorIs(t, runner.Start(context.Background()), idler.ErrAlreadyRunning)

	assert.Eventually(t, func() bool { return runner.Fired() == 1 }, 2*time.Second, 10*time.Millisecond,
		"zero delay should fire on the first idle frame")

	assert.Empty(t, shutdown.Run(), "shutdown should be clean")
	assert.False(t, runner.IsRunning())
	assert.Equal(t, idle.State{}, runner.State(), "stopping discards the idle session")
}
