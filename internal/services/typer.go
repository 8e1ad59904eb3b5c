package services

import (
	"context"
	"sync"
	"time"

	"github.com/qiqi-070707/council-ai/internal/models"
)

// typer runs the character-by-character reveal of the newest message. At most
// one animation runs per typer; starting another stops the previous one.
type typer struct {
	tick   time.Duration
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newTyper(tick time.Duration) *typer {
	return &typer{tick: tick}
}

func (t *typer) start(ctx context.Context, s *models.Session, epoch uint64, index int) {
	t.stop()
	if t.tick <= 0 {
		s.Mu.Lock()
		if s.Epoch == epoch && s.Typing != nil && s.Typing.Index == index {
			s.Typing.Shown = s.Typing.Total
			publish(s, models.Event{
				Type:  models.EventTyping,
				Role:  s.Revealed[index].Role,
				Index: index,
				Shown: s.Typing.Shown,
			})
		}
		s.Mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if !t.step(s, epoch, index) {
				return
			}
		}
	}()
}

// step shows one more character and reports whether more remain.
func (t *typer) step(s *models.Session, epoch uint64, index int) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.Epoch != epoch || s.Typing == nil || s.Typing.Index != index {
		return false
	}
	if s.Typing.Done() {
		return false
	}
	s.Typing.Shown++
	publish(s, models.Event{
		Type:  models.EventTyping,
		Role:  s.Revealed[index].Role,
		Index: index,
		Shown: s.Typing.Shown,
	})
	return !s.Typing.Done()
}

// wait blocks until the running animation has shown every character or was
// cancelled.
func (t *typer) wait() {
	t.wg.Wait()
}

// stop cancels the running animation and waits for it to exit.
func (t *typer) stop() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.wg.Wait()
}
