package badgerdb

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/lockstep-network/lockstep/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const escrowStoreDir = "escrows"

type escrowRepository struct {
	store *badgerhold.Store
}

func NewEscrowRepository(config ...interface{}) (domain.EscrowRepository, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, escrowStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open escrow store: %s", err)
	}

	return &escrowRepository{store}, nil
}

func (r *escrowRepository) AddOrUpdateEscrow(ctx context.Context, escrow domain.Escrow) error {
	return r.store.Upsert(escrow.Id, escrow)
}

func (r *escrowRepository) GetEscrowWithId(ctx context.Context, id string) (*domain.Escrow, error) {
	query := badgerhold.Where("Id").Eq(id)
	escrows, err := r.findEscrow(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(escrows) <= 0 {
		return nil, fmt.Errorf("escrow with id %s not found", id)
	}
	escrow := &escrows[0]
	return escrow, nil
}

func (r *escrowRepository) GetEscrowsWithStatus(
	ctx context.Context, status domain.EscrowStatus,
) ([]domain.Escrow, error) {
	query := badgerhold.Where("Status").Eq(status)
	return r.findEscrow(ctx, query)
}

func (r *escrowRepository) GetAllEscrows(ctx context.Context) ([]domain.Escrow, error) {
	return r.findEscrow(ctx, nil)
}

func (r *escrowRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (r *escrowRepository) findEscrow(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Escrow, error) {
	var escrows []domain.Escrow
	err := r.store.Find(&escrows, query)
	return escrows, err
}
