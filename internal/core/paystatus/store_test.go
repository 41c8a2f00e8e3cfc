package paystatus

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var toggleTime = time.Date(2025, time.March, 7, 14, 5, 0, 0, time.Local)

func exerciseToggle(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("toggle on stores a timestamp", func(t *testing.T) {
		res, err := store.Toggle(ctx, "rameshkumar_1000_20_20000", toggleTime)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.True(t, res.NewStatus)
		require.NotNil(t, res.PaidOn)
		assert.Equal(t, "07 Mar, 02:05 PM", *res.PaidOn)

		snap, err := store.Load(ctx)
		require.NoError(t, err)
		e, ok := snap.Lookup("rameshkumar_1000_20_20000")
		require.True(t, ok)
		assert.Equal(t, "07 Mar, 02:05 PM", e.PaidOn)
	})

	t.Run("toggle off leaves no residue", func(t *testing.T) {
		res, err := store.Toggle(ctx, "rameshkumar_1000_20_20000", toggleTime)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.False(t, res.NewStatus)
		assert.Nil(t, res.PaidOn)

		snap, err := store.Load(ctx)
		require.NoError(t, err)
		_, ok := snap.Lookup("rameshkumar_1000_20_20000")
		assert.False(t, ok)
		assert.Empty(t, snap)
	})

	t.Run("empty id is rejected", func(t *testing.T) {
		_, err := store.Toggle(ctx, "", toggleTime)
		assert.ErrorIs(t, err, ErrEmptyID)
	})
}

func TestJSONStore(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "payment_records.json"))
	defer store.Close()
	exerciseToggle(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "status.db"))
	require.NoError(t, err)
	defer store.Close()
	exerciseToggle(t, store)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("CHITFUND_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("CHITFUND_TEST_POSTGRES not set")
	}
	ctx := context.Background()
	store, err := NewPostgresStore(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.pool.Exec(ctx, `DELETE FROM payment_status`)
	require.NoError(t, err)
	exerciseToggle(t, store)
}

func TestJSONStoreReadsLegacyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payment_records.json")
	doc := `{
    "Ramesh_1000": true,
    "suresh_500_20_20000": "01 Feb, 10:30 AM",
    "ignored_false": false,
    "ignored_empty": ""
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	store := NewJSONStore(path)
	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap, 2)

	e, ok := snap.Lookup("Ramesh_1000")
	require.True(t, ok)
	assert.Nil(t, e.Date())

	e, ok = snap.Lookup("suresh_500_20_20000")
	require.True(t, ok)
	require.NotNil(t, e.Date())
	assert.Equal(t, "01 Feb, 10:30 AM", *e.Date())

	// a legacy entry toggles off like any other
	res, err := store.Toggle(context.Background(), "Ramesh_1000", toggleTime)
	require.NoError(t, err)
	assert.False(t, res.NewStatus)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"suresh_500_20_20000\": \"01 Feb, 10:30 AM\"")
	assert.NotContains(t, string(data), "Ramesh_1000")
}

func TestJSONStoreCorruptDocumentIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payment_records.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	snap, err := NewJSONStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap)

	var nilSnap Snapshot
	_, ok := nilSnap.Lookup("x")
	assert.False(t, ok)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: "redis"})
	assert.Error(t, err)

	store, err := Open(context.Background(), Config{Path: filepath.Join(t.TempDir(), "p.json")})
	require.NoError(t, err)
	assert.IsType(t, &JSONStore{}, store)
}
