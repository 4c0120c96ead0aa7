package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/questx-lab/persuade-agent/internal/entity"
	"github.com/questx-lab/persuade-agent/internal/repository/migration"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestWinnerRepository_Append(t *testing.T) {
	ctx := context.Background()
	filename := filepath.Join(t.TempDir(), "winner_info.json")
	repo := NewWinnerRepository(filename)

	entries, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)

	for i, username := range []string{"alice", "bob"} {
		require.NoError(t, repo.Append(ctx, &entity.WinnerLedgerEntry{
			Username:     username,
			Address:      "0xaddr",
			Topic:        "topic",
			Score:        8 + i,
			RewardAmount: "2",
			RewardTx:     "0xtx" + username,
			Timestamp:    time.Now(),
		}))
	}

	entries, err = NewWinnerRepository(filename).GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "alice", entries[0].Username)
	require.Equal(t, 9, entries[1].Score)

	b, err := os.ReadFile(filename)
	require.NoError(t, err)
	require.Contains(t, string(b), `"reward_tx": "0xtxbob"`)
}

func TestWinnerRepository_Append_CorruptFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "winner_info.json")
	require.NoError(t, os.WriteFile(filename, []byte("{not json"), 0o600))

	err := NewWinnerRepository(filename).Append(context.Background(), &entity.WinnerLedgerEntry{Username: "alice"})
	require.Error(t, err)

	// The corrupt file is left untouched.
	b, err := os.ReadFile(filename)
	require.NoError(t, err)
	require.Equal(t, "{not json", string(b))
}

func TestWinnerRepository_Append_MirrorDB(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.DoMigration(db))

	ctx := xcontext.WithDB(context.Background(), db)
	repo := NewWinnerRepository(filepath.Join(t.TempDir(), "winner_info.json"))

	entry := &entity.WinnerLedgerEntry{Username: "alice", RewardTx: "0xtx", RewardAmount: "2", Score: 9}
	require.NoError(t, repo.Append(ctx, entry))
	require.NotEmpty(t, entry.ID)

	var stored []entity.WinnerLedgerEntry
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1)
	require.Equal(t, "alice", stored[0].Username)
	require.Equal(t, entry.ID, stored[0].ID)

	// Ledger rows are never soft-deleted or updated.
	require.False(t, db.Migrator().HasColumn(&entity.WinnerLedgerEntry{}, "deleted_at"))
	require.False(t, db.Migrator().HasColumn(&entity.WinnerLedgerEntry{}, "updated_at"))
}
