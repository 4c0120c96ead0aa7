package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/questx-lab/persuade-agent/internal/entity"
	"github.com/questx-lab/persuade-agent/pkg/xcontext"
)

type WinnerRepository interface {
	Append(ctx context.Context, entry *entity.WinnerLedgerEntry) error
	GetAll(ctx context.Context) ([]entity.WinnerLedgerEntry, error)
}

// winnerRepository keeps the ledger as a JSON array file. When a database is
// carried by the context, every entry is mirrored into it.
type winnerRepository struct {
	filename string
	mutex    sync.Mutex
}

func NewWinnerRepository(filename string) *winnerRepository {
	return &winnerRepository{filename: filename}
}

func (r *winnerRepository) Append(ctx context.Context, entry *entity.WinnerLedgerEntry) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	entries, err := r.read()
	if err != nil {
		return err
	}

	entries = append(entries, *entry)
	if err := writeJSONFile(r.filename, entries); err != nil {
		return err
	}

	if db := xcontext.DB(ctx); db != nil {
		if err := db.Create(entry).Error; err != nil {
			xcontext.Logger(ctx).Errorf("Cannot mirror winner %s into database: %v", entry.Username, err)
		}
	}

	return nil
}

func (r *winnerRepository) GetAll(ctx context.Context) ([]entity.WinnerLedgerEntry, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.read()
}

func (r *winnerRepository) read() ([]entity.WinnerLedgerEntry, error) {
	b, err := os.ReadFile(r.filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []entity.WinnerLedgerEntry{}, nil
		}
		return nil, err
	}

	entries := []entity.WinnerLedgerEntry{}
	if len(b) == 0 {
		return entries, nil
	}

	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("invalid winner ledger %s: %w", r.filename, err)
	}

	return entries, nil
}
