package models

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu     sync.Mutex
	events []Event
	fail   error
}

func (r *recordingSender) WriteJSON(v interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.events = append(r.events, v.(Event))
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestViewerPumpPreservesOrder(t *testing.T) {
	rec := &recordingSender{}
	v := NewViewer(rec, 8)

	for i := 0; i < 5; i++ {
		require.True(t, v.Enqueue(Event{Type: EventReveal, Index: i}))
	}

	done := make(chan error, 1)
	go func() { done <- v.Pump() }()

	require.Eventually(t, func() bool { return rec.count() == 5 }, time.Second, 5*time.Millisecond)
	v.Close()
	require.NoError(t, <-done)

	for i, e := range rec.events {
		assert.Equal(t, i, e.Index)
	}
	assert.False(t, v.Enqueue(Event{}), "closed viewer rejects events")
}

func TestViewerEnqueueFullBuffer(t *testing.T) {
	v := NewViewer(&recordingSender{}, 1)
	assert.True(t, v.Enqueue(Event{}))
	assert.False(t, v.Enqueue(Event{}))
}

func TestViewerPumpWriteError(t *testing.T) {
	boom := errors.New("broken pipe")
	v := NewViewer(&recordingSender{fail: boom}, 1)
	v.Enqueue(Event{})
	assert.ErrorIs(t, v.Pump(), boom)
}

func TestViewerPumpStopsWritingAfterClose(t *testing.T) {
	writes := 0
	for i := 0; i < 200; i++ {
		rec := &recordingSender{}
		v := NewViewer(rec, 64)
		for j := 0; j < 64; j++ {
			require.True(t, v.Enqueue(Event{Type: EventTyping, Index: j}))
		}
		v.Close()
		require.NoError(t, v.Pump())
		writes += rec.count()
	}
	assert.Zero(t, writes, "queued events must not be written after Close")
}
