package hal

import "time"

// FrameLimiter paces a host loop at a fixed frame rate.
type FrameLimiter struct {
	ticker *time.Ticker
}

func NewFrameLimiter(fps int) *FrameLimiter {
	return &FrameLimiter{
		ticker: time.NewTicker(time.Second / time.Duration(fps)),
	}
}

// Wait blocks until the next frame is due.
func (l *FrameLimiter) Wait() {
	<-l.ticker.C
}

func (l *FrameLimiter) Stop() {
	l.ticker.Stop()
}
