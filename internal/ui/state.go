package ui

// state represents the different states of the TUI.
type state int

const (
	statePicker state = iota
	stateOptions
	stateCharacter
	stateDelayInput
	stateConsole
	stateHelp
)

// tabs lists the states reachable with tab, in order.
var tabs = []state{statePicker, stateOptions, stateCharacter}

func (s state) String() string {
	switch s {
	case statePicker:
		return "Emotes"
	case stateOptions:
		return "Options"
	case stateCharacter:
		return "Character"
	case stateDelayInput:
		return "DelayInput"
	case stateConsole:
		return "Console"
	case stateHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// isTab reports whether s is one of the tabbed views.
func (s state) isTab() bool {
	for _, t := range tabs {
		if t == s {
			return true
		}
	}
	return false
}

func nextTab(s state, step int) state {
	for i, t := range tabs {
		if t == s {
			return tabs[(i+step+len(tabs))%len(tabs)]
		}
	}
	return statePicker
}
