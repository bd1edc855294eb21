package domain

import "context"

type EscrowRepository interface {
	AddOrUpdateEscrow(ctx context.Context, escrow Escrow) error
	GetEscrowWithId(ctx context.Context, id string) (*Escrow, error)
	GetEscrowsWithStatus(ctx context.Context, status EscrowStatus) ([]Escrow, error)
	GetAllEscrows(ctx context.Context) ([]Escrow, error)
	Close()
}
