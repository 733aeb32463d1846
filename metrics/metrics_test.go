package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.CutPatches.WithLabelValues("allocated").Add(3)
	c.CutPatches.WithLabelValues("empty").Inc()
	c.ParallelCopyBytes.Add(64)
	assert.Equal(t, 3., testutil.ToFloat64(c.CutPatches.WithLabelValues("allocated")))
	assert.Equal(t, 64., testutil.ToFloat64(c.ParallelCopyBytes))

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 3., snap["ebtensor_cutcell_patches_total{state=allocated}"])
	assert.Equal(t, 1., snap["ebtensor_cutcell_patches_total{state=empty}"])
	assert.Equal(t, 64., snap["ebtensor_cutcell_parallel_copy_bytes_total"])
	assert.Equal(t, 3, testutil.CollectAndCount(c.CutPatches)+testutil.CollectAndCount(c.ParallelCopyBytes))
}
