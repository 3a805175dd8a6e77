package badgerstore_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/example/meeting-reservations/internal/persistence"
	"github.com/example/meeting-reservations/internal/persistence/badgerstore"
	"github.com/example/meeting-reservations/internal/persistence/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestStoreContract_InMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) persistence.Store {
		store, err := badgerstore.Open(badgerstore.Options{MaxRetries: 16, Logger: quiet()})
		require.NoError(t, err)
		return store
	})
}

func TestStoreContract_OnDisk(t *testing.T) {
	if testing.Short() {
		t.Skip("on-disk badger in short mode")
	}
	storetest.Run(t, func(t *testing.T) persistence.Store {
		store, err := badgerstore.Open(badgerstore.Options{Dir: t.TempDir(), MaxRetries: 16, Logger: quiet()})
		require.NoError(t, err)
		return store
	})
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := badgerstore.Open(badgerstore.Options{Dir: dir, Logger: quiet()})
	require.NoError(t, err)
	require.NoError(t, store.Atomic(ctx, func(tx persistence.Tx) error {
		_, err := tx.InsertUser(ctx, persistence.User{ID: "u1", Email: "a@example.com"})
		return err
	}))
	require.NoError(t, store.Close())

	store, err = badgerstore.Open(badgerstore.Options{Dir: dir, Logger: quiet()})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.View(ctx, func(tx persistence.Tx) error {
		u, err := tx.GetUser(ctx, "u1")
		assert.Equal(t, "a@example.com", u.Email)
		return err
	}))
}
