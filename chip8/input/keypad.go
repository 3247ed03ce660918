package input

// KeyCount is the number of keys on the hex keypad.
const KeyCount = 16

// Keypad is the 16 key latch. Input collaborators write it, the interpreter
// only reads it. Key indexes are masked to 4 bits.
type Keypad struct {
	keys [KeyCount]bool
}

// NewKeypad creates a keypad with every key released.
func NewKeypad() *Keypad {
	return &Keypad{}
}

// Press latches key as pressed.
func (k *Keypad) Press(key uint8) {
	k.keys[key&0x0F] = true
}

// Release latches key as released.
func (k *Keypad) Release(key uint8) {
	k.keys[key&0x0F] = false
}

// IsPressed reports whether key is currently down.
func (k *Keypad) IsPressed(key uint8) bool {
	return k.keys[key&0x0F]
}

// FirstPressed returns the lowest pressed key, if any.
func (k *Keypad) FirstPressed() (uint8, bool) {
	for i, pressed := range k.keys {
		if pressed {
			return uint8(i), true
		}
	}
	return 0, false
}

// Reset releases every key.
func (k *Keypad) Reset() {
	k.keys = [KeyCount]bool{}
}

// State returns a copy of the latch.
func (k *Keypad) State() [KeyCount]bool {
	return k.keys
}
