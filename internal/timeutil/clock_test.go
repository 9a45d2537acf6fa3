package timeutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	assert.False(t, now.Before(before))
	assert.False(t, now.After(after))
	assert.GreaterOrEqual(t, clock.Since(time.Now().Add(-time.Second)), time.Second)
}

func TestOrReal(t *testing.T) {
	assert.Equal(t, RealClock{}, OrReal(nil))

	mock := NewMockClock(time.Unix(0, 0))
	assert.Same(t, mock, OrReal(mock))
}

func TestMockClock_SetAndAdvance(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	assert.Equal(t, start, clock.Now())
	assert.Equal(t, start, clock.Now(), "clock without a step stands still")

	clock.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), clock.Now())
	assert.Equal(t, 90*time.Second, clock.Since(start))

	later := start.Add(24 * time.Hour)
	clock.Set(later)
	assert.Equal(t, later, clock.Now())
}

func TestMockClock_Step(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	clock := NewMockClock(start)
	clock.SetStep(time.Millisecond)

	assert.Equal(t, start, clock.Now())
	assert.Equal(t, start.Add(time.Millisecond), clock.Now())
	assert.Equal(t, 2*time.Millisecond, clock.Since(start))
	assert.Equal(t, 2*time.Millisecond, clock.Since(start), "Since does not step")

	clock.SetStep(0)
	assert.Equal(t, start.Add(2*time.Millisecond), clock.Now())
	assert.Equal(t, start.Add(2*time.Millisecond), clock.Now())
}

func TestMockClock_Concurrent(t *testing.T) {
	start := time.Unix(0, 0)
	clock := NewMockClock(start)
	clock.SetStep(time.Second)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			clock.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50*time.Second, clock.Since(start))
}
