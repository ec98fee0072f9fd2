package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConditionEquality(t *testing.T) {
	b := New()
	b.schema, b.table = "blog", "post"
	require.NoError(t, b.ParseCondition("status", "published"))
	sql, params := b.ToSQL()
	require.Equal(t, "SELECT * FROM `blog`.`post` WHERE `status` = ? LIMIT 1", sql)
	require.Equal(t, []any{"published"}, params)
}

func TestParseConditionIn(t *testing.T) {
	b := New()
	b.schema, b.table = "blog", "post"
	require.NoError(t, b.ParseCondition("id", []any{1, 2, 3}))
	sql, params := b.ToSQL()
	require.Equal(t, "SELECT * FROM `blog`.`post` WHERE `id` IN (?, ?, ?) LIMIT 1", sql)
	require.Equal(t, []any{1, 2, 3}, params)
}

func TestParseConditionLike(t *testing.T) {
	b := New()
	b.schema, b.table = "blog", "post"
	require.NoError(t, b.ParseCondition("title$", "%go%"))
	sql, _ := b.ToSQL()
	require.Contains(t, sql, "`title` LIKE ?")
}

func TestPageSizeDefaultsAndList(t *testing.T) {
	b := New()
	b.schema, b.table = "blog", "post"
	b.PageSize(2, nil)
	sql, _ := b.ToSQL()
	require.Contains(t, sql, "LIMIT 10 OFFSET 20")
}

func TestAddColumnNoopWhenStar(t *testing.T) {
	b := New()
	b.AddColumn("id")
	require.Empty(t, b.columns)
}
