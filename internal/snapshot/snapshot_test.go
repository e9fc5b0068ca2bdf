package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/margindesk/margindesk/internal/store"
	"github.com/margindesk/margindesk/internal/transfer"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, "margindesk:snapshot", time.Hour)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	snap := newTestStore(t)
	ctx := context.Background()

	doc := transfer.Document{
		Version:    1,
		ExportDate: "2025-10-03T12:00:00Z",
		Products:   []store.Product{{ID: "p1", Name: "Товар", PriceYuan: 10, InitialStock: 5, CurrentStock: 5}},
		Sales:      []store.Sale{},
	}
	require.NoError(t, snap.Save(ctx, doc))

	loaded, err := snap.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, doc.Products, loaded.Products)
	require.Equal(t, doc.ExportDate, loaded.ExportDate)
}

func TestLoadAbsentReturnsNil(t *testing.T) {
	snap := newTestStore(t)

	loaded, err := snap.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestSaveOverwrites(t *testing.T) {
	snap := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, snap.Save(ctx, transfer.Document{Version: 1, ExportDate: "old"}))
	require.NoError(t, snap.Save(ctx, transfer.Document{Version: 1, ExportDate: "new"}))

	loaded, err := snap.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "new", loaded.ExportDate)
}
