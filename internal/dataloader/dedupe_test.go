package dataloader

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDedupeSmoke checks that 10,000 concurrent dedupe(1, f) calls run f
// exactly once and every caller observes the same result.
func TestDedupeSmoke(t *testing.T) {
	d := NewDedupe[uint64, string](false)
	var calls int64

	const n = 10000
	results := make([]string, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			v, err := d.Call(1, func() (string, error) {
				// Hold the producer open long enough for every caller to join it.
				time.Sleep(50 * time.Millisecond)
				c := atomic.AddInt64(&calls, 1)
				return fmt.Sprintf("v_%d", c), nil
			})
			results[i] = v
			errs[i] = err
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, calls)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "v_1", results[i])
	}
}

func TestDedupeDifferentKeysRunIndependently(t *testing.T) {
	d := NewDedupe[uint64, int](false)
	var calls int64
	v1, _ := d.Call(1, func() (int, error) { atomic.AddInt64(&calls, 1); return 1, nil })
	v2, _ := d.Call(2, func() (int, error) { atomic.AddInt64(&calls, 1); return 2, nil })
	assert.Equal(t, 1, v1)
	assert.Equal(t, 2, v2)
	assert.EqualValues(t, 2, calls)
}

func TestDedupeErrorFansOutAndSlotIsReleased(t *testing.T) {
	d := NewDedupe[uint64, int](false)
	boom := fmt.Errorf("boom")

	var wg sync.WaitGroup
	errs := make([]error, 50)
	wg.Add(50)
	for i := range errs {
		go func(i int) {
			defer wg.Done()
			_, err := d.Call(1, func() (int, error) { return 0, boom })
			errs[i] = err
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.ErrorIs(t, err, boom)
	}

	// The slot was released after the error; a subsequent call re-drives compute:
	// the pending slot is removed so the next caller re-drives compute.
	var ranAgain bool
	_, err := d.Call(1, func() (int, error) { ranAgain = true; return 42, nil })
	require.NoError(t, err)
	assert.True(t, ranAgain)
}

func TestDedupePersistRetainsSuccessAcrossCalls(t *testing.T) {
	d := NewDedupe[uint64, int](true)
	var calls int64
	for i := 0; i < 5; i++ {
		v, err := d.Call(1, func() (int, error) {
			atomic.AddInt64(&calls, 1)
			return 99, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 99, v)
	}
	assert.EqualValues(t, 1, calls)
}

func TestDedupePersistDoesNotCacheErrors(t *testing.T) {
	d := NewDedupe[uint64, int](true)
	boom := fmt.Errorf("boom")
	_, err := d.Call(1, func() (int, error) { return 0, boom })
	require.Error(t, err)

	var ranAgain bool
	_, err = d.Call(1, func() (int, error) { ranAgain = true; return 1, nil })
	require.NoError(t, err)
	assert.True(t, ranAgain)
}
