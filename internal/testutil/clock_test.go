package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepClock_FirstReadingIsStart(t *testing.T) {
	clock := NewStepClock(Kickoff, time.Second)
	assert.Equal(t, Kickoff, clock.Now())
	assert.Equal(t, int64(1), clock.Readings())
}

func TestStepClock_Advances(t *testing.T) {
	clock := NewStepClock(Kickoff, time.Minute)

	clock.Now()
	assert.Equal(t, Kickoff.Add(time.Minute), clock.Now())
	assert.Equal(t, Kickoff.Add(2*time.Minute), clock.Now())
}

func TestStepClock_Reset(t *testing.T) {
	clock := NewStepClock(Kickoff, time.Minute)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Readings())
	assert.Equal(t, Kickoff, clock.Now())
}

func TestStepClock_ThreadSafe(t *testing.T) {
	clock := NewStepClock(Kickoff, time.Second)
	const goroutines = 20
	const calls = 50

	var wg sync.WaitGroup
	seen := make(chan time.Time, goroutines*calls)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
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
	assert.Len(t, unique, goroutines*calls, "every reading should be distinct")
}
