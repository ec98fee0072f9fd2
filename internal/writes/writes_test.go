package writes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ideabase/dbgateway/internal/registry"
)

func TestSQLLiteral(t *testing.T) {
	require.Equal(t, "NULL", sqlLiteral(nil))
	require.Equal(t, "'it''s'", sqlLiteral("it's"))
	require.Equal(t, "1", sqlLiteral(true))
	require.Equal(t, "0", sqlLiteral(false))
	require.Equal(t, "5", sqlLiteral(5))
}

func TestHandleMalformedKey(t *testing.T) {
	reg := registry.New()
	result, err := Handle(context.Background(), MethodPost, reg, nil, map[string]any{
		"order": map[string]any{"id": float64(1)},
	})
	require.NoError(t, err)
	require.True(t, result.BadRequest)
	require.Equal(t, "order's schema empty", result.Payload["order"])
}

func TestHandleUnknownTable(t *testing.T) {
	reg := registry.New()
	result, err := Handle(context.Background(), MethodPost, reg, nil, map[string]any{
		"ecommerce.order": map[string]any{"id": float64(1)},
	})
	require.NoError(t, err)
	require.True(t, result.BadRequest)
	require.Contains(t, result.Payload["ecommerce.order"], "unknown table")
}

func TestAsInt(t *testing.T) {
	n, ok := asInt(float64(12))
	require.True(t, ok)
	require.Equal(t, int64(12), n)

	_, ok = asInt("nope")
	require.False(t, ok)
}
