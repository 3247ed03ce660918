package video

const (
	FramebufferWidth  = 64
	FramebufferHeight = 32
	FramebufferSize   = FramebufferWidth * FramebufferHeight

	// SpriteWidth is the number of columns in every sprite row.
	SpriteWidth = 8
)

// Color is an RGBA value (0xRRGGBBAA) used by renderers.
type Color uint32

const (
	OnColor  Color = 0xE0F8D0FF
	OffColor Color = 0x081820FF
)

// FrameBuffer is the 64x32 monochrome screen. Each pixel is stored as a byte
// that is always 0 or 1. The dirty flag records whether the content changed
// since a renderer last consumed it.
type FrameBuffer struct {
	buffer [FramebufferSize]byte
	dirty  bool
}

// NewFrameBuffer creates a blank frame buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

func index(x, y uint) uint {
	return (y%FramebufferHeight)*FramebufferWidth + x%FramebufferWidth
}

// GetPixel returns 1 if the pixel at x, y is lit. Coordinates wrap.
func (fb *FrameBuffer) GetPixel(x, y uint) byte {
	return fb.buffer[index(x, y)]
}

// SetPixel lights (any non zero value) or clears the pixel at x, y.
func (fb *FrameBuffer) SetPixel(x, y uint, value byte) {
	if value != 0 {
		value = 1
	}
	fb.buffer[index(x, y)] = value
	fb.dirty = true
}

// Clear turns off every pixel and marks the frame dirty.
func (fb *FrameBuffer) Clear() {
	fb.buffer = [FramebufferSize]byte{}
	fb.dirty = true
}

// DrawSprite XORs an 8 pixel wide sprite onto the screen with its top left
// corner at x, y. Every row byte is drawn MSB first. Pixels past an edge wrap
// to the opposite one. Returns true if any lit pixel was turned off.
func (fb *FrameBuffer) DrawSprite(x, y uint8, rows []byte) bool {
	collision := false

	for row, line := range rows {
		for col := 0; col < SpriteWidth; col++ {
			if line&(0x80>>col) == 0 {
				continue
			}

			i := index(uint(x)+uint(col), uint(y)+uint(row))
			if fb.buffer[i] == 1 {
				collision = true
			}
			fb.buffer[i] ^= 1
		}
	}

	fb.dirty = true
	return collision
}

// Dirty reports whether a redraw is owed since the last ClearDirty.
func (fb *FrameBuffer) Dirty() bool {
	return fb.dirty
}

// ClearDirty is called by renderers once they consumed the frame.
func (fb *FrameBuffer) ClearDirty() {
	fb.dirty = false
}

// ToSlice returns the pixels in row-major order. Callers must not modify it.
func (fb *FrameBuffer) ToSlice() []byte {
	return fb.buffer[:]
}

// Snapshot returns a copy of the pixels in row-major order.
func (fb *FrameBuffer) Snapshot() []byte {
	pixels := make([]byte, FramebufferSize)
	copy(pixels, fb.buffer[:])
	return pixels
}

// ColorAt maps the pixel at x, y to its display color.
func (fb *FrameBuffer) ColorAt(x, y uint) Color {
	if fb.GetPixel(x, y) != 0 {
		return OnColor
	}
	return OffColor
}

// RGBA splits a color in its components.
func (c Color) RGBA() (r, g, b, a uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}
