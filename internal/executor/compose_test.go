package executor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComposeSingleSegment(t *testing.T) {
	got := Compose(map[string]any{"name": "alice"})
	require.Equal(t, map[string]any{"name": "alice"}, got)
}

func TestComposeNestedObject(t *testing.T) {
	got := Compose(map[string]any{"timeline.User/profile/bio": "hi"})
	require.Equal(t, map[string]any{
		"timeline.User": map[string]any{
			"profile": map[string]any{"bio": "hi"},
		},
	}, got)
}

func TestComposeArrayOfScalars(t *testing.T) {
	got := Compose(map[string]any{"Comment[]": []any{"a", "b"}})
	require.Equal(t, map[string]any{"Comment": []any{"a", "b"}}, got)
}

func TestComposeArraySingularValueCoerced(t *testing.T) {
	got := Compose(map[string]any{"Comment[]/timeline.User": map[string]any{"id": 1}})
	require.Equal(t, map[string]any{
		"Comment": []any{
			map[string]any{"timeline.User": map[string]any{"id": 1}},
		},
	}, got)
}

func TestComposeDoublyNestedArray(t *testing.T) {
	got := Compose(map[string]any{
		"Comment[]/User[]/timeline.User": []any{map[string]any{"id": 1}, map[string]any{"id": 2}},
	})
	require.Equal(t, map[string]any{
		"Comment": []any{
			map[string]any{"User": []any{map[string]any{"timeline.User": map[string]any{"id": 1}}}},
			map[string]any{"User": []any{map[string]any{"timeline.User": map[string]any{"id": 2}}}},
		},
	}, got)
}

// TestComposeIdempotent checks P3: composing an already-nested structure
// (no slash-delimited keys left) is a no-op.
func TestComposeIdempotent(t *testing.T) {
	flat := map[string]any{"Comment[]/timeline.User": map[string]any{"id": 1}}
	once := Compose(flat)
	twice := Compose(once)
	require.Equal(t, once, twice)
}
