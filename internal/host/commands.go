package host

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
)

// ErrCommandConflict is returned when a command name is already taken.
var ErrCommandConflict = errors.New("command already registered")

// Handler runs a slash command with the text after its name.
type Handler func(args string)

// Commands is a case-insensitive slash command registry. The first owner
// to register a name keeps it.
type Commands struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	owners   map[string]string
}

// NewCommands returns an empty registry.
func NewCommands() *Commands {
	return &Commands{
		handlers: make(map[string]Handler),
		owners:   make(map[string]string),
	}
}

func normalizeCommand(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
}

// Register adds a command under owner.
func (c *Commands) Register(owner, name string, h Handler) error {
	key := normalizeCommand(name)
	if key == "" || h == nil {
		return fmt.Errorf("register %q: empty name or handler", name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.owners[key]; ok {
		log.Printf("commands: conflict: /%s already registered by %s", key, prev)
		return fmt.Errorf("/%s: %w", key, ErrCommandConflict)
	}
	c.handlers[key] = h
	c.owners[key] = owner
	return nil
}

// Unregister removes every command registered by owner.
func (c *Commands) Unregister(owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, o := range c.owners {
		if o == owner {
			delete(c.owners, key)
			delete(c.handlers, key)
		}
	}
}

// Run executes line if it names a registered command. It reports whether
// a handler ran.
func (c *Commands) Run(line string) bool {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return false
	}
	name, args, _ := strings.Cut(line, " ")

	c.mu.RLock()
	h, ok := c.handlers[normalizeCommand(name)]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	h(strings.TrimSpace(args))
	return true
}
