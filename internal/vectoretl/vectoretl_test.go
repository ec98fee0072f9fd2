package vectoretl

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ideabase/dbgateway/internal/dbpool"
)

func TestParseColumns(t *testing.T) {
	cfg := Config{
		Database: "ecommerce",
		Table:    "order",
		Column:   "id, customer_name, @item_list",
		SubQueries: map[string]SubQuery{
			"item_list": {Title: "商品列表", SQL: "SELECT item_name, quantity FROM ecommerce.order_item WHERE order_id IN (?id)"},
		},
	}
	cols, err := cfg.parseColumns()
	require.NoError(t, err)
	require.Equal(t, []string{"id", "customer_name"}, cols.normalCols)
	require.Equal(t, []string{"item_list"}, cols.subRefs)
}

func TestParseColumnsUnknownSubQuery(t *testing.T) {
	cfg := Config{Database: "d", Table: "t", Column: "@missing"}
	_, err := cfg.parseColumns()
	require.Error(t, err)
}

func TestPlaceholderFields(t *testing.T) {
	fields := placeholderFields("SELECT * FROM t WHERE order_id IN (?order_id) AND status = ?status")
	require.Equal(t, []string{"order_id", "status"}, fields)
}

func TestSubstitutePlaceholders(t *testing.T) {
	sql := "SELECT * FROM t WHERE order_id IN (?order_id)"
	got := substitutePlaceholders(sql, map[string][]any{"order_id": {1, 2, 3}})
	require.Equal(t, "SELECT * FROM t WHERE order_id IN (1,2,3)", got)
}

func TestFormatRow(t *testing.T) {
	row := dbpool.Row{"b": "2", "a": "1"}
	require.Equal(t, "a: 1\nb: 2", formatRow(row))
}

func TestFormatSubRows(t *testing.T) {
	rows := []dbpool.Row{{"item_name": "Widget", "quantity": "3"}}
	got := formatSubRows("商品列表", rows)
	require.Equal(t, "商品列表:\n - item_name: Widget quantity: 3", got)
}

func TestTokenSplitterChunksWithOverlap(t *testing.T) {
	s := &TokenSplitter{ChunkTokens: 4, Overlap: 1}
	doc := Document{Content: "a b c d e f g", Metadata: map[string]any{"k": "v"}}
	chunks := s.Split(doc)
	require.Len(t, chunks, 3)
	require.Equal(t, "a b c d", chunks[0].Content)
	require.Equal(t, "d e f g", chunks[1].Content)
	require.Equal(t, "g", chunks[2].Content)
	require.Equal(t, "v", chunks[0].Metadata["k"])
}

func TestTokenSplitterEmptyContent(t *testing.T) {
	s := NewTokenSplitter()
	require.Nil(t, s.Split(Document{Content: "  "}))
}
