package domain

import "context"

type SwapRepository interface {
	AddOrUpdateSwap(ctx context.Context, swap Swap) error
	GetSwapWithId(ctx context.Context, id string) (*Swap, error)
	GetSwapsWithStatus(ctx context.Context, status SwapStatus) ([]Swap, error)
	GetAllSwaps(ctx context.Context) ([]Swap, error)
	Close()
}
