package application

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLocksSerializeSameKey(t *testing.T) {
	t.Parallel()

	var locks keyedLocks
	var inFlight, maxSeen atomic.Int32

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			turn := locks.reserve("Jeff")
			turn.wait()
			defer turn.release()

			n := inFlight.Add(1)
			for {
				seen := maxSeen.Load()
				if n <= seen || maxSeen.CompareAndSwap(seen, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Equal(t, 0, locks.size())
}

func TestKeyedLocksIndependentKeys(t *testing.T) {
	t.Parallel()

	var locks keyedLocks
	jeff := locks.reserve("Jeff")
	jeff.wait()
	defer jeff.release()

	acquired := make(chan struct{})
	go func() {
		ann := locks.reserve("Ann")
		ann.wait()
		ann.release()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock for another counterparty blocked")
	}
	assert.Equal(t, 1, locks.size())
}

func TestKeyedLocksGrantTurnsInReservationOrder(t *testing.T) {
	t.Parallel()

	var locks keyedLocks
	turns := make([]*turn, 5)
	for i := range turns {
		turns[i] = locks.reserve("Jeff")
	}

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := len(turns) - 1; i >= 0; i-- {
		wg.Add(1)
		go func() {
			defer wg.Done()
			turns[i].wait()
			defer turns[i].release()

			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.Equal(t, 0, locks.size())
}

func TestKeyedLocksReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	var locks keyedLocks
	first := locks.reserve("Jeff")
	second := locks.reserve("Jeff")

	first.wait()
	first.release()
	first.release()
	second.wait()

	third := locks.reserve("Jeff")
	select {
	case <-third.ready:
		t.Fatal("third turn granted while the second still holds the key")
	default:
	}

	second.release()
	third.wait()
	third.release()
	assert.Equal(t, 0, locks.size())
}
