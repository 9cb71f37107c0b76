// Package emote provides the emote catalog and the sheets it is loaded from.
package emote

// Definition describes a single emote as read from a sheet.
type Definition struct {
	ID                uint32
	Name              string
	Command           string
	IconID            uint32
	UnlockRequirement uint32
}

// Gated reports whether the emote has to be earned before use.
func (d Definition) Gated() bool {
	return d.UnlockRequirement != 0
}

// Row is one raw sheet entry. Err is set when the entry could not be decoded.
type Row struct {
	Index      int
	ID         int64
	Name       string
	Command    string
	IconID     uint32
	UnlockLink uint32
	Err        error
}

// UnlockChecker answers per-player unlock queries.
type UnlockChecker interface {
	PlayerPresent() bool
	IsEmoteUnlocked(id uint32) (bool, error)
}
