package pool

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorReportsPoolState(t *testing.T) {
	r := NewRegistry[int](newFakeHost())
	require.NoError(t, r.Configure(keyBrick, 2))
	_, err := r.Acquire(keyBrick, Placement{})
	require.NoError(t, err)
	_, err = r.Preallocate(keyBrick, 2)
	require.NoError(t, err)
	_, err = r.Acquire(keyBrick, Placement{})
	require.NoError(t, err)
	_, err = r.Acquire(keyBrick, Placement{})
	require.ErrorIs(t, err, ErrPoolExhausted)

	c := NewCollector(r)
	expected := `
# HELP breakout_pool_active Entities currently acquired from the pool.
# TYPE breakout_pool_active gauge
breakout_pool_active{kind="brick"} 2
# HELP breakout_pool_capacity Maximum entities the pool may create.
# TYPE breakout_pool_capacity gauge
breakout_pool_capacity{kind="brick"} 2
# HELP breakout_pool_exhausted_total Acquire calls refused because the pool was at capacity.
# TYPE breakout_pool_exhausted_total counter
breakout_pool_exhausted_total{kind="brick"} 1
# HELP breakout_pool_free Inactive entities waiting in the pool.
# TYPE breakout_pool_free gauge
breakout_pool_free{kind="brick"} 0
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected)))
}

func TestCollectorOneSeriesPerKind(t *testing.T) {
	r := NewRegistry[int](newFakeHost())
	require.NoError(t, r.Configure(keyBrick, 3))
	require.NoError(t, r.Configure(keyBall, 3))

	c := NewCollector(r)
	assert.Equal(t, 8, testutil.CollectAndCount(c))
	assert.Equal(t, 2, testutil.CollectAndCount(c, "breakout_pool_free"))

	r.ResetAll()
	assert.Equal(t, 0, testutil.CollectAndCount(c))
}
