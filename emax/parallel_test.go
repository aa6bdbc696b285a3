package emax

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/kwdp/model"
)

// TestForEachPartition_VisitsAll verifies that every partition runs
// exactly once regardless of worker count.
func TestForEachPartition_VisitsAll(t *testing.T) {
	parts := make([]model.Partition, 17)
	for i := range parts {
		parts[i].Key = model.DenseKey(i)
	}

	for _, workers := range []int{1, 4, 64} {
		var (
			mu   sync.Mutex
			seen = map[model.DenseKey]int{}
		)
		err := forEachPartition(parts, workers, func(p *model.Partition) error {
			mu.Lock()
			seen[p.Key]++
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
		require.Len(t, seen, len(parts), "workers=%d", workers)
		for k, n := range seen {
			assert.Equal(t, 1, n, "partition %d visited once", k)
		}
	}
}

// TestForEachPartition_ErrorPropagates verifies that a failing partition
// aborts the join with its error after the barrier.
func TestForEachPartition_ErrorPropagates(t *testing.T) {
	parts := make([]model.Partition, 8)
	for i := range parts {
		parts[i].Key = model.DenseKey(i)
	}
	boom := errors.New("partition failure")

	err := forEachPartition(parts, 3, func(p *model.Partition) error {
		if p.Key == 5 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

// TestForEachPartition_ZeroWorkersDefaults verifies the NumCPU fallback.
func TestForEachPartition_ZeroWorkersDefaults(t *testing.T) {
	parts := []model.Partition{{Key: 0}, {Key: 1}}
	ran := 0
	var mu sync.Mutex

	err := forEachPartition(parts, 0, func(*model.Partition) error {
		mu.Lock()
		ran++
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, ran)
}
