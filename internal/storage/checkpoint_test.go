package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpoint_CreateAndRestore(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(store.Path()), "checkpoints"), cm.Dir())

	keep := mustCreate(t, store, newTxn("2024-01-10", 1000, "cat_groceries", "Market"))

	info, err := cm.Create(ctx, "before-import", "before importing statements")
	require.NoError(t, err)
	assert.Equal(t, "before-import", info.ID)
	assert.Equal(t, 1, info.Transactions)
	assert.Equal(t, 8, info.Categories)
	assert.Equal(t, 1, info.Accounts)
	assert.Equal(t, SchemaTargetVersion, info.SchemaVersion)
	assert.False(t, info.IsAuto)
	assert.Positive(t, info.FileSize)

	mustCreate(t, store, newTxn("2024-01-11", 2000, "cat_rent", "Landlord"))
	require.NoError(t, store.DeleteCategory(ctx, "cat_misc"))

	require.NoError(t, cm.Restore(ctx, "before-import"))

	txns, err := store.ListTransactionsByMonth(ctx, month(t, "2024-01"))
	require.NoError(t, err)
	assert.Equal(t, []string{keep}, ids(txns))

	misc, err := store.GetCategory(ctx, "cat_misc")
	require.NoError(t, err)
	assert.NotNil(t, misc)

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, SchemaTargetVersion, version)

	// The store keeps working after a restore.
	mustCreate(t, store, newTxn("2024-01-12", 1, "", ""))
}

func TestCheckpoint_Errors(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)

	_, err = cm.Create(ctx, "snap", "")
	require.NoError(t, err)

	_, err = cm.Create(ctx, "snap", "")
	assert.ErrorIs(t, err, ErrCheckpointExists)

	for _, bad := range []string{"../escape", `a\b`, "a/b"} {
		_, err = cm.Create(ctx, bad, "")
		assert.ErrorIs(t, err, ErrInvalidCheckpointID, bad)
		assert.ErrorIs(t, cm.Restore(ctx, bad), ErrInvalidCheckpointID, bad)
	}

	_, err = cm.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
	assert.ErrorIs(t, cm.Restore(ctx, "missing"), ErrCheckpointNotFound)
	assert.ErrorIs(t, cm.Delete(ctx, "missing"), ErrCheckpointNotFound)
}

func TestCheckpoint_RestoreRejectsOtherSchemaVersion(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)
	_, err = cm.Create(ctx, "old", "")
	require.NoError(t, err)

	require.NoError(t, store.SetMeta(ctx, schemaVersionKey, "7"))

	err = cm.Restore(ctx, "old")
	assert.ErrorIs(t, err, ErrCheckpointSchema)
}

func TestCheckpoint_RestoreRejectsCorruptFile(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)
	_, err = cm.Create(ctx, "broken", "")
	require.NoError(t, err)

	dbFile, _ := cm.paths("broken")
	require.NoError(t, os.WriteFile(dbFile, []byte("definitely not sqlite"), 0600))

	err = cm.Restore(ctx, "broken")
	assert.ErrorIs(t, err, ErrCheckpointCorrupted)

	n, err := store.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCheckpoint_ListGetDelete(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)

	_, err = cm.Create(ctx, "first", "one")
	require.NoError(t, err)
	_, err = cm.Create(ctx, "", "unnamed")
	require.NoError(t, err)

	list, err := cm.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Regexp(t, `^checkpoint-\d{4}-\d{2}-\d{2}-\d{6}$`, list[0].ID)
	assert.Equal(t, "first", list[1].ID)

	got, err := cm.Get(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, "one", got.Description)

	require.NoError(t, cm.Delete(ctx, "first"))
	dbFile, metaFile := cm.paths("first")
	assert.NoFileExists(t, dbFile)
	assert.NoFileExists(t, metaFile)

	list, err = cm.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCheckpoint_AutoPrunesOldest(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cm, err := store.NewCheckpointManager()
	require.NoError(t, err)

	_, err = cm.Create(ctx, "manual", "")
	require.NoError(t, err)

	var created []string
	for i := 0; i < maxAutoCheckpoints+2; i++ {
		info, err := cm.AutoCheckpoint(ctx, "import")
		require.NoError(t, err)
		assert.True(t, info.IsAuto)
		created = append(created, info.ID)
	}

	list, err := cm.List(ctx)
	require.NoError(t, err)

	var autos []string
	manual := 0
	for _, cp := range list {
		if cp.IsAuto {
			autos = append(autos, cp.ID)
		} else {
			manual++
		}
	}
	assert.Equal(t, 1, manual)
	require.Len(t, autos, maxAutoCheckpoints)

	newest := created[len(created)-maxAutoCheckpoints:]
	for i, id := range autos {
		assert.Equal(t, newest[len(newest)-1-i], id)
	}
}

func TestCheckpoint_InMemoryDatabase(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.NewCheckpointManager()
	assert.Error(t, err)
}
