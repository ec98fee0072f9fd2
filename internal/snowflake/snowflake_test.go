package snowflake

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextIDMonotonic(t *testing.T) {
	g := New(1, 1)
	prev := int64(0)
	for i := 0; i < 1000; i++ {
		id := g.Next()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestNextIDUniqueWithinMilli(t *testing.T) {
	g := New(1, 1)
	g.nowMilli = func() int64 { return 1000 }
	a := g.Next()
	b := g.Next()
	require.NotEqual(t, a, b)
	require.Equal(t, int64(1), b-a)
}
