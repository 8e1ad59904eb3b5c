package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qiqi-070707/council-ai/internal/models"
)

func TestToggleRole(t *testing.T) {
	s := models.NewSession()
	s.Revealed = sampleTranscript()

	sel := ToggleRole(s, models.RoleCPO)
	require.NotNil(t, sel)
	assert.Equal(t, models.RoleCPO, *sel)

	s.Mu.Lock()
	visible := VisibleMessages(s)
	s.Mu.Unlock()
	require.Len(t, visible, 2)
	for _, m := range visible {
		assert.Equal(t, models.RoleCPO, m.Role)
	}
	assert.Len(t, s.Revealed, 6, "filtering never discards revealed messages")

	sel = ToggleRole(s, models.RoleUX)
	require.NotNil(t, sel)
	assert.Equal(t, models.RoleUX, *sel)

	assert.Nil(t, ToggleRole(s, models.RoleUX), "selecting the selected role clears it")
	s.Mu.Lock()
	assert.Equal(t, s.Revealed, VisibleMessages(s))
	s.Mu.Unlock()
}

func TestFilterDoesNotDisturbPlayback(t *testing.T) {
	s := models.NewSession()
	log := watch(t, s)
	epoch, ctx := newRun(s)
	tr := sampleTranscript()

	done := make(chan error, 1)
	go func() { done <- NewSequencer(fastPacing(), nil).Play(ctx, s, epoch, tr) }()

	// flip the filter while playback runs
	for i := 0; i < 20; i++ {
		ToggleRole(s, models.RoleTech)
		time.Sleep(100 * time.Microsecond)
	}
	require.NoError(t, <-done)

	s.Mu.Lock()
	assert.Equal(t, tr, s.Revealed)
	s.Mu.Unlock()

	require.Eventually(t, func() bool { return len(log.ofType(models.EventFinished)) == 1 }, time.Second, time.Millisecond)
	assert.Len(t, log.ofType(models.EventReveal), len(tr))
}

func TestRevealEventVisibility(t *testing.T) {
	s := models.NewSession()
	log := watch(t, s)
	ToggleRole(s, models.RoleTech)
	epoch, ctx := newRun(s)

	// a reset clears the selection, so select again for this run
	ToggleRole(s, models.RoleTech)
	require.NoError(t, NewSequencer(fastPacing(), nil).Play(ctx, s, epoch, sampleTranscript()))
	require.Eventually(t, func() bool { return len(log.ofType(models.EventFinished)) == 1 }, time.Second, time.Millisecond)

	for _, e := range log.ofType(models.EventReveal) {
		assert.Equal(t, e.Message.Role == models.RoleTech, e.Visible, e.Message.Content)
	}
}
