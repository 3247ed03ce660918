package timing

import "time"

// Limiter controls frame rate timing for emulation.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// TimerFrequency is the rate of the delay and sound timers, one frame per tick.
const TimerFrequency = 60

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Second / TimerFrequency
}

// FrameDurationAt returns the frame duration for a speed multiplier, values
// below or equal to zero mean normal speed.
func FrameDurationAt(speed float64) time.Duration {
	if speed <= 0 {
		return FrameDuration()
	}
	return time.Duration(float64(FrameDuration()) / speed)
}
