package timing

import "time"

// TickerLimiter uses time.Ticker for simple, consistent frame timing.
// Less accurate than AdaptiveLimiter but good enough for a 60Hz display.
type TickerLimiter struct {
	ticker   *time.Ticker
	ch       <-chan time.Time
	interval time.Duration
}

func NewTickerLimiter() *TickerLimiter {
	return NewTickerLimiterWithInterval(FrameDuration())
}

// NewTickerLimiterWithInterval paces frames at a custom interval, used by
// fast-forward.
func NewTickerLimiterWithInterval(interval time.Duration) *TickerLimiter {
	ticker := time.NewTicker(interval)
	return &TickerLimiter{
		ticker:   ticker,
		ch:       ticker.C,
		interval: interval,
	}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ch
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.interval)
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
