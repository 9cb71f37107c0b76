package emote

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// MaxResults caps the number of definitions returned by FindByName.
const MaxResults = 14

// Catalog is an immutable id-indexed set of emote definitions.
type Catalog struct {
	byID    map[uint32]Definition
	ordered []Definition
	folded  []string
	cmds    []string
}

// Load builds a catalog from src. Bad entries are skipped. If the source
// itself fails, an empty catalog is returned along with the error.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	c := &Catalog{byID: make(map[uint32]Definition)}
	if src == nil {
		return c, fmt.Errorf("no emote source configured")
	}

	rows, err := src.Rows(ctx)
	if err != nil {
		return c, fmt.Errorf("load %s: %w", src.Name(), err)
	}

	skipped := 0
	for _, row := range rows {
		def, ok := definitionFromRow(row)
		if !ok {
			skipped++
			continue
		}
		if _, dup := c.byID[def.ID]; dup {
			log.Printf("catalog: duplicate emote id %d at row %d, keeping first", def.ID, row.Index)
			skipped++
			continue
		}
		c.byID[def.ID] = def
	}

	c.ordered = make([]Definition, 0, len(c.byID))
	for _, def := range c.byID {
		c.ordered = append(c.ordered, def)
	}
	sort.Slice(c.ordered, func(i, j int) bool { return c.ordered[i].ID < c.ordered[j].ID })

	fold := cases.Fold()
	c.folded = make([]string, len(c.ordered))
	c.cmds = make([]string, len(c.ordered))
	for i, def := range c.ordered {
		c.folded[i] = fold.String(def.Name)
		c.cmds[i] = fold.String(def.Command)
	}

	log.Printf("catalog: loaded %d emotes from %s (%d skipped)", len(c.ordered), src.Name(), skipped)
	return c, nil
}

func definitionFromRow(row Row) (Definition, bool) {
	if row.Err != nil {
		log.Printf("catalog: skipping row %d: %v", row.Index, row.Err)
		return Definition{}, false
	}
	if row.ID <= 0 || row.ID > math.MaxUint32 {
		return Definition{}, false
	}
	name := strings.TrimSpace(row.Name)
	if name == "" {
		return Definition{}, false
	}
	return Definition{
		ID:                uint32(row.ID),
		Name:              name,
		Command:           strings.TrimSpace(row.Command),
		IconID:            row.IconID,
		UnlockRequirement: row.UnlockLink,
	}, true
}

// Len returns the number of loaded definitions.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ordered)
}

// All returns every definition in id order.
func (c *Catalog) All() []Definition {
	if c == nil {
		return nil
	}
	out := make([]Definition, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// ByID looks up a definition.
func (c *Catalog) ByID(id uint32) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	def, ok := c.byID[id]
	return def, ok
}

// ByCommand finds the definition whose chat command matches cmd, ignoring case.
func (c *Catalog) ByCommand(cmd string) (Definition, bool) {
	cmd = strings.TrimSpace(cmd)
	if c == nil || cmd == "" {
		return Definition{}, false
	}
	for _, def := range c.ordered {
		if def.Command != "" && strings.EqualFold(def.Command, cmd) {
			return def, true
		}
	}
	return Definition{}, false
}

// FindByName returns up to MaxResults definitions whose name contains query,
// ignoring case. Exact matches come first. Definitions sharing a name with an
// earlier result are left out.
func (c *Catalog) FindByName(query string) []Definition {
	return c.search(query, false)
}

// Search is FindByName that also matches the chat command, so "/wave"
// finds Wave.
func (c *Catalog) Search(query string) []Definition {
	return c.search(query, true)
}

func (c *Catalog) search(query string, commands bool) []Definition {
	query = strings.TrimSpace(query)
	if c == nil || query == "" {
		return nil
	}
	q := cases.Fold().String(query)

	var exact, partial []int
	for i, name := range c.folded {
		cmd := ""
		if commands {
			cmd = c.cmds[i]
		}
		switch {
		case name == q, cmd != "" && cmd == q:
			exact = append(exact, i)
		case strings.Contains(name, q), cmd != "" && strings.Contains(cmd, q):
			partial = append(partial, i)
		}
	}

	seen := make(map[string]struct{}, MaxResults)
	out := make([]Definition, 0, MaxResults)
	for _, idx := range append(exact, partial...) {
		if len(out) == MaxResults {
			break
		}
		if _, dup := seen[c.folded[idx]]; dup {
			continue
		}
		seen[c.folded[idx]] = struct{}{}
		out = append(out, c.ordered[idx])
	}
	return out
}

// IsUnlocked reports whether the current player may use the emote. Any
// failure to answer is reported as locked.
func (c *Catalog) IsUnlocked(id uint32, checker UnlockChecker) (unlocked bool) {
	def, ok := c.ByID(id)
	if !ok {
		return false
	}
	if !def.Gated() {
		return true
	}
	if checker == nil {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("catalog: unlock query for %d panicked: %v", id, r)
			unlocked = false
		}
	}()

	if !checker.PlayerPresent() {
		return false
	}
	ok, err := checker.IsEmoteUnlocked(id)
	if err != nil {
		log.Printf("catalog: unlock query for %d failed: %v", id, err)
		return false
	}
	return ok
}

// Filter returns the definitions the picker should list. An empty query
// lists everything; otherwise Search applies. With hideLocked set,
// emotes the player cannot use are dropped.
func (c *Catalog) Filter(query string, hideLocked bool, checker UnlockChecker) []Definition {
	var defs []Definition
	if strings.TrimSpace(query) == "" {
		defs = c.All()
	} else {
		defs = c.Search(query)
	}
	if !hideLocked {
		return defs
	}
	out := defs[:0]
	for _, def := range defs {
		if c.IsUnlocked(def.ID, checker) {
			out = append(out, def)
		}
	}
	return out
}
