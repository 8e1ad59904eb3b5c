package services

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/qiqi-070707/council-ai/internal/models"
)

// ErrSuperseded is returned when a newer run has taken over the session.
var ErrSuperseded = errors.New("playback superseded by a newer run")

// Sequencer replays a complete transcript one message at a time so that it
// looks like a live conversation.
type Sequencer struct {
	pacing Pacing
	logger *slog.Logger
}

func NewSequencer(pacing Pacing, logger *slog.Logger) *Sequencer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sequencer{pacing: pacing, logger: logger}
}

func (q *Sequencer) Pacing() Pacing {
	return q.pacing
}

// Play reveals transcript into s for the run identified by epoch. It returns
// nil once the session is marked finished and the last message is fully typed,
// ErrSuperseded if another run reset the session or ctx was cancelled first.
// Only one Play per run may be active.
func (q *Sequencer) Play(ctx context.Context, s *models.Session, epoch uint64, transcript models.Transcript) error {
	ty := newTyper(q.pacing.TypingTick)
	defer ty.stop()

	for i, msg := range transcript {
		role := msg.Role
		err := q.apply(s, epoch, func() {
			s.Active = &role
			publish(s, models.Event{Type: models.EventActive, Role: role, Index: i})
		})
		if err != nil {
			return err
		}

		if err := sleep(ctx, q.pacing.Delay(msg)); err != nil {
			return ErrSuperseded
		}

		ty.stop()
		m := msg
		err = q.apply(s, epoch, func() {
			s.Revealed = append(s.Revealed, m)
			s.Typing = &models.Typing{Index: i, Total: utf8.RuneCountInString(m.Content)}
			publish(s, models.Event{Type: models.EventReveal, Role: m.Role, Index: i, Message: &m})
		})
		if err != nil {
			return err
		}
		ty.start(ctx, s, epoch, i)

		if i < len(transcript)-1 {
			if err := sleep(ctx, q.pacing.Pause); err != nil {
				return ErrSuperseded
			}
		}
	}

	err := q.apply(s, epoch, func() {
		s.Active = nil
		s.Finished = true
		publish(s, models.Event{Type: models.EventFinished, Index: len(s.Revealed)})
	})
	if err != nil {
		return err
	}
	q.logger.Debug("playback finished", "session_id", s.ID, "messages", len(transcript))

	// the last message keeps typing after the finish; a reset still cuts it off
	ty.wait()
	return nil
}

// apply runs fn under the session lock if epoch is still current.
func (q *Sequencer) apply(s *models.Session, epoch uint64, fn func()) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.Epoch != epoch {
		return ErrSuperseded
	}
	fn()
	return nil
}
