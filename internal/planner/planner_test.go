package planner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSingularPrimaryAndDependent(t *testing.T) {
	body := map[string]any{
		"timeline.Moment": map[string]any{"id": float64(28710)},
		"timeline.User":   map[string]any{"id@": "timeline.Moment/user_id"},
	}
	plan, err := Parse(body)
	require.NoError(t, err)

	moment := plan.Nodes["timeline.Moment"]
	user := plan.Nodes["timeline.User"]
	require.NotNil(t, moment)
	require.NotNil(t, user)
	require.True(t, moment.IsPrimary())
	require.False(t, user.IsPrimary())
	require.False(t, moment.IsList)
	require.False(t, user.IsList)

	require.Equal(t, "timeline.Moment/user_id", plan.SlaveRelateKV["timeline.User"]["id"])
	require.Equal(t, "timeline.User/id", plan.PrimaryRelateKV["timeline.Moment"]["user_id"])

	require.Greater(t, moment.Weight, PrimaryWeight)
	require.Less(t, user.Weight, PrimaryWeight)
	require.Equal(t, plan.Order[0], moment)
	require.Equal(t, plan.Order[1], user)
}

func TestParseListPrimaryWithNamespace(t *testing.T) {
	body := map[string]any{
		"Comment[]": map[string]any{
			"page":  float64(0),
			"count": float64(20),
			"timeline.Comment": map[string]any{
				"moment_id@": "timeline.Moment/id",
			},
			"timeline.User": map[string]any{
				"id@": "Comment[]/timeline.Comment/user_id",
			},
		},
		"timeline.Moment": map[string]any{"id": float64(28710)},
	}
	plan, err := Parse(body)
	require.NoError(t, err)

	comment := plan.Nodes["Comment[]/timeline.Comment"]
	user := plan.Nodes["Comment[]/timeline.User"]
	moment := plan.Nodes["timeline.Moment"]
	require.NotNil(t, comment)
	require.NotNil(t, user)
	require.NotNil(t, moment)

	require.True(t, comment.IsList)
	require.False(t, user.IsList, "link field id forces singular even under a list namespace")
	require.False(t, moment.IsPrimary() == false)

	// moment (depth 1) must execute before the nested pair (depth 2).
	require.Equal(t, 1, moment.Depth)
	require.Equal(t, 2, comment.Depth)
	require.Equal(t, moment, plan.Order[0])
}

func TestUnresolvedLink(t *testing.T) {
	body := map[string]any{
		"timeline.User": map[string]any{"id@": "timeline.Moment/user_id"},
	}
	_, err := Parse(body)
	require.Error(t, err)
}

func TestMalformedEntityKey(t *testing.T) {
	body := map[string]any{
		"order": map[string]any{"id": float64(1)},
	}
	_, err := Parse(body)
	require.Error(t, err)
}
