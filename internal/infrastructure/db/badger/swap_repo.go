package badgerdb

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/lockstep-network/lockstep/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const swapStoreDir = "swaps"

type swapRepository struct {
	store *badgerhold.Store
}

func NewSwapRepository(config ...interface{}) (domain.SwapRepository, error) {
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
		dir = filepath.Join(baseDir, swapStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open swap store: %s", err)
	}

	return &swapRepository{store}, nil
}

func (r *swapRepository) AddOrUpdateSwap(ctx context.Context, swap domain.Swap) error {
	return r.store.Upsert(swap.Id, swap)
}

func (r *swapRepository) GetSwapWithId(ctx context.Context, id string) (*domain.Swap, error) {
	query := badgerhold.Where("Id").Eq(id)
	swaps, err := r.findSwap(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(swaps) <= 0 {
		return nil, fmt.Errorf("swap with id %s not found", id)
	}
	swap := &swaps[0]
	return swap, nil
}

func (r *swapRepository) GetSwapsWithStatus(
	ctx context.Context, status domain.SwapStatus,
) ([]domain.Swap, error) {
	query := badgerhold.Where("Status").Eq(status)
	return r.findSwap(ctx, query)
}

func (r *swapRepository) GetAllSwaps(ctx context.Context) ([]domain.Swap, error) {
	return r.findSwap(ctx, nil)
}

func (r *swapRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (r *swapRepository) findSwap(
	ctx context.Context, query *badgerhold.Query,
) ([]domain.Swap, error) {
	var swaps []domain.Swap
	err := r.store.Find(&swaps, query)
	return swaps, err
}
