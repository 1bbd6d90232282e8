package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_PreservesInputOrder(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}

	// Later items finish first.
	results, err := Map(context.Background(), items, func(ctx context.Context, i int, item int) (int, error) {
		time.Sleep(time.Duration(len(items)-i) * 5 * time.Millisecond)
		return item * 10, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20, 30, 40}, results)
}

func TestMap_RunsConcurrently(t *testing.T) {
	items := make([]int, 5)
	var inFlight, maxInFlight int32

	_, err := Map(context.Background(), items, func(ctx context.Context, i int, _ int) (struct{}, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return struct{}{}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(len(items)), atomic.LoadInt32(&maxInFlight))
}

func TestMap_FailFastCancelsSiblings(t *testing.T) {
	boom := errors.New("image 1 failed")
	var canceled int32

	results, err := Map(context.Background(), []string{"a", "b", "c"}, func(ctx context.Context, i int, _ string) (string, error) {
		if i == 1 {
			return "", boom
		}
		select {
		case <-ctx.Done():
			atomic.AddInt32(&canceled, 1)
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
			return "late", nil
		}
	})

	assert.ErrorIs(t, err, boom)
	assert.Nil(t, results)
	assert.Equal(t, int32(2), atomic.LoadInt32(&canceled))
}

func TestMap_Empty(t *testing.T) {
	called := false
	results, err := Map(context.Background(), []int{}, func(ctx context.Context, i int, item int) (int, error) {
		called = true
		return 0, nil
	})

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.False(t, called)
}

func TestRunAll_CollectsEveryError(t *testing.T) {
	var ran int32
	errs := RunAll(context.Background(), []func(ctx context.Context) error{
		func(ctx context.Context) error { atomic.AddInt32(&ran, 1); return errors.New("one") },
		func(ctx context.Context) error { atomic.AddInt32(&ran, 1); return nil },
		func(ctx context.Context) error { atomic.AddInt32(&ran, 1); return errors.New("three") },
	})

	assert.Len(t, errs, 2)
	assert.Equal(t, int32(3), atomic.LoadInt32(&ran))
	assert.Nil(t, RunAll(context.Background(), nil))
}
