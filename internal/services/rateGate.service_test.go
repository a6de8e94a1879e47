package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateGate_FirstCallPassesImmediately(t *testing.T) {
	gate := NewRateGateService(100 * time.Millisecond)

	start := time.Now()
	err := gate.Wait(context.Background())

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestRateGate_SpacesConsecutiveCalls(t *testing.T) {
	delay := 50 * time.Millisecond
	gate := NewRateGateService(delay)

	start := time.Now()
	require.NoError(t, gate.Wait(context.Background()))
	require.NoError(t, gate.Wait(context.Background()))
	require.NoError(t, gate.Wait(context.Background()))

	// Three calls reserve slots at 0, delay, and 2*delay.
	assert.GreaterOrEqual(t, time.Since(start), 2*delay)
}

func TestRateGate_ConcurrentCallersShareOneSchedule(t *testing.T) {
	delay := 30 * time.Millisecond
	gate := NewRateGateService(delay)

	const callers = 4
	start := time.Now()

	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, gate.Wait(context.Background()))
		}()
	}
	wg.Wait()

	// Four callers occupy slots 0..3, so the last one waits 3*delay.
	assert.GreaterOrEqual(t, time.Since(start), 3*delay)
}

func TestRateGate_WaitRespectsCancellation(t *testing.T) {
	gate := NewRateGateService(time.Hour)

	// Burn the immediate slot so the next caller has to wait.
	require.NoError(t, gate.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := gate.Wait(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRateGate_Delay(t *testing.T) {
	gate := NewRateGateService(750 * time.Millisecond)
	assert.Equal(t, 750*time.Millisecond, gate.Delay())
}
