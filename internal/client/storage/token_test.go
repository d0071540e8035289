package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/saherflow/flowportal/internal/client/client"
	"github.com/saherflow/flowportal/internal/client/repositories/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) (*SQLiteTokenStore, *sql.DB) {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewSQLiteTokenStore(metadata.NewSQLiteRepository(db)), db
}

func TestSQLiteTokenStore_Lifecycle(t *testing.T) {
	s, db := newSQLiteStore(t)
	ctx := context.Background()

	tok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok, "empty slot loads as empty string")

	require.NoError(t, s.Save(ctx, "tok-1"))
	require.NoError(t, s.Save(ctx, "tok-2"))

	tok, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)

	var rows int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM metadata`).Scan(&rows))
	assert.Equal(t, 1, rows, "only one slot is ever used")

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))

	tok, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestSQLiteTokenStore_RejectsEmptyToken(t *testing.T) {
	s, _ := newSQLiteStore(t)
	require.Error(t, s.Save(context.Background(), ""))
}

func TestSQLiteTokenStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	db, err := client.InitDatabase(ctx, path)
	require.NoError(t, err)
	require.NoError(t, NewSQLiteTokenStore(metadata.NewSQLiteRepository(db)).Save(ctx, "persisted"))
	require.NoError(t, db.Close())

	db, err = client.InitDatabase(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	tok, err := NewSQLiteTokenStore(metadata.NewSQLiteRepository(db)).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "persisted", tok)
}

func TestSQLiteTokenStore_WrapsDriverErrors(t *testing.T) {
	ctx := context.Background()
	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	s := NewSQLiteTokenStore(metadata.NewSQLiteRepository(db))
	require.NoError(t, db.Close())

	_, err = s.Load(ctx)
	require.ErrorContains(t, err, "load token")
	require.ErrorContains(t, s.Save(ctx, "x"), "save token")
	require.ErrorContains(t, s.Clear(ctx), "clear token")
}

func TestMemoryTokenStore_Lifecycle(t *testing.T) {
	var s TokenStore = NewMemoryTokenStore()
	ctx := context.Background()

	tok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Save(ctx, "tok"))
	tok, _ = s.Load(ctx)
	assert.Equal(t, "tok", tok)

	require.Error(t, s.Save(ctx, ""))

	require.NoError(t, s.Clear(ctx))
	tok, _ = s.Load(ctx)
	assert.Empty(t, tok)
}
