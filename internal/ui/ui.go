package ui

import (
	"github.com/stigoleg/emote-idler/internal/host"
)

// CommandName is the slash command that toggles the surface.
const CommandName = "idler"

// CommandOwner identifies the surface in the command registry.
const CommandOwner = "emote-idler"

// Surface is the visibility switch shared by the model and the /idler
// command. It is only touched from the UI goroutine.
type Surface struct {
	visible bool
}

// NewSurface returns a surface, initially shown or hidden.
func NewSurface(visible bool) *Surface {
	return &Surface{visible: visible}
}

// Visible reports whether the configuration surface is shown.
func (s *Surface) Visible() bool {
	return s != nil && s.visible
}

// Toggle flips visibility.
func (s *Surface) Toggle() {
	if s != nil {
		s.visible = !s.visible
	}
}

// RegisterCommands adds /idler to cmds.
func RegisterCommands(cmds *host.Commands, s *Surface) error {
	return cmds.Register(CommandOwner, CommandName, func(string) { s.Toggle() })
}
