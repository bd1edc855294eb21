package ports

import "github.com/lockstep-network/lockstep/internal/core/domain"

type RepoManager interface {
	Swaps() domain.SwapRepository
	Escrows() domain.EscrowRepository
	Close()
}
