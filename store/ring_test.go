package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingFIFOEviction(t *testing.T) {
	r := NewRing(150)
	for i := 1; i <= 151; i++ {
		r.Add(float64(i))
	}
	require.Equal(t, 150, r.Len())

	values := r.Values()
	require.Len(t, values, 150)
	assert.Equal(t, 2.0, values[0], "oldest sample (#1) must be evicted")
	assert.Equal(t, 151.0, values[149], "newest sample must be present")
}

func TestRingValuesChronological(t *testing.T) {
	r := NewRing(4)
	for _, v := range []float64{1, 2, 3} {
		r.Add(v)
	}
	assert.Equal(t, []float64{1, 2, 3}, r.Values())

	r.Add(4)
	r.Add(5)
	assert.Equal(t, []float64{2, 3, 4, 5}, r.Values())
}

func TestRingLatest(t *testing.T) {
	r := NewRing(3)
	_, ok := r.Latest()
	assert.False(t, ok)

	r.Add(0.25)
	v, ok := r.Latest()
	require.True(t, ok)
	assert.Equal(t, 0.25, v)

	for i := 0; i < 5; i++ {
		r.Add(float64(i))
	}
	v, _ = r.Latest()
	assert.Equal(t, 4.0, v)
}

func TestRingDropOldest(t *testing.T) {
	r := NewRing(3)
	r.Add(1)
	r.Add(2)
	r.DropOldest()
	assert.Equal(t, []float64{2}, r.Values())

	r.DropOldest()
	r.DropOldest() // already empty, must not underflow
	assert.Equal(t, 0, r.Len())
}
