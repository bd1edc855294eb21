package ports

import (
	"context"

	"github.com/lockstep-network/lockstep/internal/core/domain"
)

// AssetLedger is the only collaborator able to move value. The engine never
// holds balances itself, it only instructs the ledger and reads it back.
type AssetLedger interface {
	Transfer(ctx context.Context, leg domain.Transfer) error
	// TransferBatch applies all legs or none of them.
	TransferBatch(ctx context.Context, legs []domain.Transfer) error
	BalanceOf(ctx context.Context, account string, asset domain.AssetRef) (uint64, error)
	OwnerOf(ctx context.Context, asset domain.AssetRef) (string, error)
}
