package orecl

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandQueueRunsAfterWaits(t *testing.T) {
	q := NewCommandQueue(4)
	var order []int32
	var seq int32

	first := q.Enqueue(func() error {
		time.Sleep(10 * time.Millisecond)
		order = append(order, atomic.AddInt32(&seq, 1))
		return nil
	})
	second := q.Enqueue(func() error {
		order = append(order, atomic.AddInt32(&seq, 1))
		return nil
	}, first)

	require.NoError(t, second.Wait())
	require.NoError(t, first.Wait())
	assert.Equal(t, []int32{1, 2}, order)
}

func TestCommandQueuePropagatesWaitError(t *testing.T) {
	q := NewCommandQueue(2)
	boom := q.Enqueue(func() error { return assert.AnError })
	ran := false
	dependent := q.Enqueue(func() error {
		ran = true
		return nil
	}, boom)

	err := dependent.Wait()
	require.Error(t, err)
	assert.False(t, ran, "dependent command must not run when a wait fails")
}

func TestCommandQueueFinish(t *testing.T) {
	q := NewCommandQueue(4)
	var done int32
	for i := 0; i < 8; i++ {
		q.Enqueue(func() error {
			atomic.AddInt32(&done, 1)
			return nil
		})
	}
	q.Finish()
	assert.EqualValues(t, 8, done)
}

func TestParallelForCoversEveryIndex(t *testing.T) {
	n := 97
	seen := make([]int32, n)
	ParallelFor(n, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	})
	for i, v := range seen {
		assert.EqualValuesf(t, 1, v, "index %d visited %d times", i, v)
	}
}
