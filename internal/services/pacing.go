package services

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/qiqi-070707/council-ai/internal/models"
)

// Pacing controls how fast a finished transcript is replayed.
type Pacing struct {
	Base       time.Duration // wait before every message
	PerChar    time.Duration // extra wait per character of the message
	Pause      time.Duration // gap after a message that is not the last one
	TypingTick time.Duration // one character of the newest message per tick; 0 disables typing
}

func DefaultPacing() Pacing {
	return Pacing{
		Base:       600 * time.Millisecond,
		PerChar:    6 * time.Millisecond,
		Pause:      400 * time.Millisecond,
		TypingTick: 12 * time.Millisecond,
	}
}

// Delay is how long the speaker of m stays active before m is revealed.
func (p Pacing) Delay(m models.DebateMessage) time.Duration {
	return p.Base + time.Duration(utf8.RuneCountInString(m.Content))*p.PerChar
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
