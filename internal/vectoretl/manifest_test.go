package vectoretl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vector.json")
	manifest := `{
		"orders": {
			"order": {
				"database": "ecommerce",
				"table": "order",
				"column": "id, customer_name, @item_list",
				"metadata": {"id": "order_id"},
				"@item_list": {
					"title": "商品列表",
					"sql": "SELECT item_name, quantity FROM ecommerce.order_item WHERE order_id IN (?id)"
				}
			}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	entries, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	require.Equal(t, "orders", entry.Collection)
	require.Equal(t, "order", entry.SourceType)
	require.Equal(t, "ecommerce", entry.Config.Database)
	require.Equal(t, "order", entry.Config.Table)
	require.Equal(t, "order_id", entry.Config.Metadata["id"])
	require.Equal(t, "商品列表", entry.Config.SubQueries["item_list"].Title)
}

func TestLoadManifestMissingFileIsNotError(t *testing.T) {
	entries, err := LoadManifest(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	require.Nil(t, entries)
}
