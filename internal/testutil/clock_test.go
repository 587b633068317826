package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var start = time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)

func TestStepClock_FirstReadingIsStart(t *testing.T) {
	clock := NewStepClock(start, time.Second)
	assert.True(t, clock.Now().Equal(start))
}

func TestStepClock_AdvancesByStep(t *testing.T) {
	clock := NewStepClock(start, time.Second)

	clock.Now()
	assert.Equal(t, start.Add(time.Second), clock.Now())
	assert.Equal(t, start.Add(2*time.Second), clock.Now())
	assert.Equal(t, start.Add(3*time.Second), clock.Peek())
}

func TestStepClock_ZeroStepIsFrozen(t *testing.T) {
	clock := NewStepClock(start, 0)

	for i := 0; i < 3; i++ {
		assert.Equal(t, start, clock.Now())
	}
}

func TestStepClock_AdvanceAndReset(t *testing.T) {
	clock := NewStepClock(start, 0)

	clock.Advance(time.Hour)
	assert.Equal(t, start.Add(time.Hour), clock.Now())

	clock.Reset()
	assert.Equal(t, start, clock.Now())
}

func TestStepClock_ThreadSafe(t *testing.T) {
	clock := NewStepClock(start, time.Millisecond)
	const numGoroutines = 50
	const callsPerGoroutine = 20

	var wg sync.WaitGroup
	seen := make(chan time.Time, numGoroutines*callsPerGoroutine)
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				seen <- clock.Now()
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[time.Time]bool)
	for ts := range seen {
		unique[ts] = true
	}
	assert.Len(t, unique, numGoroutines*callsPerGoroutine, "every reading should be distinct")
	assert.Equal(t, start.Add(numGoroutines*callsPerGoroutine*time.Millisecond), clock.Peek())
}
