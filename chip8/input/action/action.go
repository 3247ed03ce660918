package action

import "fmt"

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// Hex keypad, Key0 through KeyF map 1:1 to the key latch indexes
	Key0 Action = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF

	// Emulator features
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorReset
	EmulatorSnapshot
	EmulatorQuit

	// Log pane filter, terminal backend only
	EmulatorLogLevelIncrease
	EmulatorLogLevelDecrease
)

// Category groups actions by who consumes them.
type Category int

const (
	CategoryKeypad Category = iota
	CategoryEmulator
)

// Info describes an action for logs and key help.
type Info struct {
	Description string
	Category    Category
}

var emulatorInfo = map[Action]Info{
	EmulatorPauseToggle: {Description: "Pause/Resume", Category: CategoryEmulator},
	EmulatorStepFrame:   {Description: "Step frame", Category: CategoryEmulator},
	EmulatorReset:       {Description: "Reset", Category: CategoryEmulator},
	EmulatorSnapshot:    {Description: "Snapshot", Category: CategoryEmulator},
	EmulatorQuit:        {Description: "Quit", Category: CategoryEmulator},

	EmulatorLogLevelIncrease: {Description: "More log detail", Category: CategoryEmulator},
	EmulatorLogLevelDecrease: {Description: "Less log detail", Category: CategoryEmulator},
}

// GetInfo returns the description and category of an action.
func GetInfo(act Action) Info {
	if IsKeypad(act) {
		return Info{Description: fmt.Sprintf("Key %X", int(act)), Category: CategoryKeypad}
	}
	if info, ok := emulatorInfo[act]; ok {
		return info
	}
	return Info{Description: "Unknown", Category: CategoryEmulator}
}

// IsKeypad reports whether act is one of the 16 hex keys.
func IsKeypad(act Action) bool {
	return act >= Key0 && act <= KeyF
}

// KeyIndex returns the latch index of a keypad action.
func KeyIndex(act Action) (uint8, bool) {
	if !IsKeypad(act) {
		return 0, false
	}
	return uint8(act - Key0), true
}
