// Package settings persists the idler configuration as a versioned JSON record.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stigoleg/emote-idler/internal/emote"
)

const (
	// Version is written to every saved record.
	Version = 2

	// DefaultIdleDelaySeconds applies when a record has no delay: fire as
	// soon as the character goes idle.
	DefaultIdleDelaySeconds = 0

	// DefaultTriggerWhileWeaponDrawn applies when a record has no
	// "unsheathed" key.
	DefaultTriggerWhileWeaponDrawn = true

	// FileName is the default settings file name inside the data directory.
	FileName = "idler.json"
)

// Settings is an immutable snapshot of the configuration.
type Settings struct {
	EmoteID                 uint32
	TriggerWhileWeaponDrawn bool
	IdleDelaySeconds        int
	HideLockedEmotes        bool
}

// Defaults returns the configuration used when nothing is stored.
func Defaults() Settings {
	return Settings{
		TriggerWhileWeaponDrawn: DefaultTriggerWhileWeaponDrawn,
		IdleDelaySeconds:        DefaultIdleDelaySeconds,
	}
}

// IdleDelay returns the idle delay as a duration.
func (s Settings) IdleDelay() time.Duration {
	if s.IdleDelaySeconds <= 0 {
		return 0
	}
	return time.Duration(s.IdleDelaySeconds) * time.Second
}

// record is the on-disk layout. Pointer fields distinguish missing from zero.
type record struct {
	Version          int    `json:"version"`
	EmoteCommand     string `json:"emoteCommand,omitempty"`
	EmoteID          uint32 `json:"emoteId"`
	Unsheathed       *bool  `json:"unsheathed,omitempty"`
	IdleDelaySeconds *int   `json:"idleDelaySeconds,omitempty"`
	HideLockedEmotes *bool  `json:"hideLockedEmotes,omitempty"`
}

// Lookup resolves emotes for legacy migration and for the command mirror.
type Lookup interface {
	ByID(id uint32) (emote.Definition, bool)
	ByCommand(cmd string) (emote.Definition, bool)
}

// Option configures a Store.
type Option func(*Store)

// WithCatalog lets the store resolve legacy emote commands.
func WithCatalog(l Lookup) Option {
	return func(s *Store) { s.emotes = l }
}

// Store owns the settings file. Writers are serialised; readers take
// lock-free snapshots.
type Store struct {
	path    string
	emotes  Lookup
	mu      sync.Mutex
	current atomic.Pointer[Settings]
}

// Open loads the store at path. A missing file yields defaults without
// error. A malformed file yields defaults and an error.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := s.load()
	s.publish(loaded)
	return s, err
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns the current settings.
func (s *Store) Snapshot() Settings {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return Defaults()
}

func (s *Store) publish(v Settings) {
	if v.IdleDelaySeconds < 0 {
		v.IdleDelaySeconds = 0
	}
	s.current.Store(&v)
}

func (s *Store) load() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("settings: no file at %s, using defaults", s.path)
		return Defaults(), nil
	}
	if err != nil {
		return Defaults(), fmt.Errorf("read settings: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Defaults(), fmt.Errorf("decode settings: %w", err)
	}
	return s.fromRecord(rec), nil
}

func (s *Store) fromRecord(rec record) Settings {
	out := Defaults()
	out.EmoteID = rec.EmoteID
	if rec.Unsheathed != nil {
		out.TriggerWhileWeaponDrawn = *rec.Unsheathed
	}
	if rec.IdleDelaySeconds != nil {
		out.IdleDelaySeconds = max(*rec.IdleDelaySeconds, 0)
	}
	if rec.HideLockedEmotes != nil {
		out.HideLockedEmotes = *rec.HideLockedEmotes
	}

	if out.EmoteID == 0 && rec.EmoteCommand != "" {
		if s.emotes == nil {
			log.Printf("settings: legacy emote command %q kept unresolved, no catalog", rec.EmoteCommand)
		} else if def, ok := s.emotes.ByCommand(rec.EmoteCommand); ok {
			out.EmoteID = def.ID
			log.Printf("settings: migrated v%d emote command %q to id %d", rec.Version, rec.EmoteCommand, def.ID)
		} else {
			log.Printf("settings: legacy emote command %q not in catalog", rec.EmoteCommand)
		}
	}
	return out
}

func (s *Store) toRecord(v Settings) record {
	rec := record{
		Version:          Version,
		EmoteID:          v.EmoteID,
		Unsheathed:       &v.TriggerWhileWeaponDrawn,
		IdleDelaySeconds: &v.IdleDelaySeconds,
		HideLockedEmotes: &v.HideLockedEmotes,
	}
	if s.emotes != nil && v.EmoteID != 0 {
		if def, ok := s.emotes.ByID(v.EmoteID); ok {
			rec.EmoteCommand = def.Command
		}
	}
	return rec
}

// Save writes the current snapshot to disk.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(s.Snapshot())
}

func (s *Store) saveLocked(v Settings) error {
	data, err := json.MarshalIndent(s.toRecord(v), "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Update applies fn to a copy of the current settings, publishes the
// result and saves it. On a failed save the new value stays in memory.
func (s *Store) Update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.Snapshot()
	fn(&next)
	s.publish(next)

	if err := s.saveLocked(s.Snapshot()); err != nil {
		log.Printf("settings: save failed: %v", err)
		return err
	}
	return nil
}

// SetEmote selects the emote to fire. Zero clears the selection.
func (s *Store) SetEmote(id uint32) error {
	return s.Update(func(v *Settings) { v.EmoteID = id })
}

// SetTriggerWhileWeaponDrawn sets whether idling counts with a weapon out.
func (s *Store) SetTriggerWhileWeaponDrawn(on bool) error {
	return s.Update(func(v *Settings) { v.TriggerWhileWeaponDrawn = on })
}

// SetIdleDelay sets the idle delay in seconds, clamped to zero.
func (s *Store) SetIdleDelay(seconds int) error {
	return s.Update(func(v *Settings) { v.IdleDelaySeconds = max(seconds, 0) })
}

// SetHideLocked sets whether the picker hides emotes the player lacks.
func (s *Store) SetHideLocked(on bool) error {
	return s.Update(func(v *Settings) { v.HideLockedEmotes = on })
}
