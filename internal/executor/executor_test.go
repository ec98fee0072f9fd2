package executor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParentPath(t *testing.T) {
	require.Equal(t, "", parentPath("timeline.Moment"))
	require.Equal(t, "Comment[]", parentPath("Comment[]/timeline.Comment"))
}

func TestRelativePath(t *testing.T) {
	require.Equal(t, "timeline.User", relativePath("Comment[]/timeline.User", "Comment[]"))
	require.Equal(t, "timeline.Moment", relativePath("timeline.Moment", ""))
}

func TestBareName(t *testing.T) {
	require.Equal(t, "timeline.Moment", bareName("timeline.Moment[]"))
	require.Equal(t, "timeline.Moment", bareName("timeline.Moment"))
}

func TestRowsToAny(t *testing.T) {
	rows := []map[string]any{{"id": 1}, {"id": 2}}
	out := rowsToAny(rows)
	require.Len(t, out, 2)
}
