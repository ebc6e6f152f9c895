package dataloader

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
)

// TestBatchCoverage checks that for N concurrent arrivals spread over
// several batching windows, every arrival receives the element whose
// group_by path equals its key. The number of upstream calls is not asserted.
func TestBatchCoverage(t *testing.T) {
	var calls int32
	loader := NewLoader(Config{
		GroupBy:      dynval.Path{"userId"},
		IsList:       true,
		MaxBatchSize: 10,
		BatchDelay:   20 * time.Millisecond,
		Batch: func(ctx context.Context, keys []dynval.Value) ([]dynval.Value, error) {
			atomic.AddInt32(&calls, 1)
			var out []dynval.Value
			for _, k := range keys {
				out = append(out, dynval.Object(map[string]dynval.Value{
					"userId": k,
					"title":  dynval.String("post-of-" + k.ToString()),
				}))
			}
			return out, nil
		},
	})

	const n = 25
	var wg sync.WaitGroup
	results := make([]dynval.Value, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			v, err := loader.Load(context.Background(), dynval.Number(float64(i%10)))
			require.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	for i, v := range results {
		require.Equal(t, dynval.KindArray, v.Kind())
		require.Len(t, v.Array(), 1)
		item := v.Array()[0]
		userID, ok := dynval.Select(item, dynval.Path{"userId"})
		require.True(t, ok)
		assert.Equal(t, float64(i%10), userID.NumberVal())
	}
}

func TestBatchMissingKeyResolvesNull(t *testing.T) {
	loader := NewLoader(Config{
		GroupBy:      dynval.Path{"id"},
		IsList:       false,
		MaxBatchSize: 100,
		BatchDelay:   5 * time.Millisecond,
		Batch: func(ctx context.Context, keys []dynval.Value) ([]dynval.Value, error) {
			// Only return a match for key "1".
			return []dynval.Value{dynval.Object(map[string]dynval.Value{"id": dynval.String("1")})}, nil
		},
	})

	v1, err := loader.Load(context.Background(), dynval.String("1"))
	require.NoError(t, err)
	assert.False(t, v1.IsNull())

	v2, err := loader.Load(context.Background(), dynval.String("missing"))
	require.NoError(t, err)
	assert.True(t, v2.IsNull())
}

func TestBatchClosesOnMaxBatchSizeBeforeDelay(t *testing.T) {
	var calls int32
	loader := NewLoader(Config{
		GroupBy:      dynval.Path{"id"},
		MaxBatchSize: 2,
		BatchDelay:   time.Hour, // would never fire on its own within the test
		Batch: func(ctx context.Context, keys []dynval.Value) ([]dynval.Value, error) {
			atomic.AddInt32(&calls, 1)
			var out []dynval.Value
			for _, k := range keys {
				out = append(out, dynval.Object(map[string]dynval.Value{"id": k}))
			}
			return out, nil
		},
	})

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := loader.Load(context.Background(), dynval.Number(float64(i)))
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.EqualValues(t, 1, calls)
}

func TestBatchDedupesIdenticalKeysWithinWindow(t *testing.T) {
	var callCount int32
	var seenKeys int32
	loader := NewLoader(Config{
		GroupBy:      dynval.Path{"id"},
		MaxBatchSize: 100,
		BatchDelay:   20 * time.Millisecond,
		Batch: func(ctx context.Context, keys []dynval.Value) ([]dynval.Value, error) {
			atomic.AddInt32(&callCount, 1)
			atomic.StoreInt32(&seenKeys, int32(len(keys)))
			var out []dynval.Value
			for _, k := range keys {
				out = append(out, dynval.Object(map[string]dynval.Value{"id": k}))
			}
			return out, nil
		},
	})

	var wg sync.WaitGroup
	wg.Add(20)
	for i := 0; i < 20; i++ {
		go func() {
			defer wg.Done()
			_, err := loader.Load(context.Background(), dynval.String("same"))
			require.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, callCount)
	assert.EqualValues(t, 1, seenKeys)
}
