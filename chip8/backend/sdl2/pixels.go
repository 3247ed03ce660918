package sdl2

import "github.com/valerio/go-chip8/chip8/video"

// bytesPerPixel of the streaming texture format.
const bytesPerPixel = 4

// framePixels converts frame to the byte layout of an RGBA8888 texture on a
// little-endian host, that is A, B, G, R. dst is reused when large enough.
func framePixels(frame *video.FrameBuffer, dst []byte) []byte {
	size := video.FramebufferSize * bytesPerPixel
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]

	onR, onG, onB, onA := video.OnColor.RGBA()
	offR, offG, offB, offA := video.OffColor.RGBA()

	for i, pixel := range frame.ToSlice() {
		idx := i * bytesPerPixel
		if pixel != 0 {
			dst[idx], dst[idx+1], dst[idx+2], dst[idx+3] = onA, onB, onG, onR
		} else {
			dst[idx], dst[idx+1], dst[idx+2], dst[idx+3] = offA, offB, offG, offR
		}
	}

	return dst
}
