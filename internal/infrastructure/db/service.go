package db

import (
	"fmt"

	"github.com/lockstep-network/lockstep/internal/core/domain"
	"github.com/lockstep-network/lockstep/internal/core/ports"
	badgerdb "github.com/lockstep-network/lockstep/internal/infrastructure/db/badger"
)

var (
	swapStoreTypes = map[string]func(...interface{}) (domain.SwapRepository, error){
		"badger": badgerdb.NewSwapRepository,
	}
	escrowStoreTypes = map[string]func(...interface{}) (domain.EscrowRepository, error){
		"badger": badgerdb.NewEscrowRepository,
	}
)

type ServiceConfig struct {
	DbType   string
	DbConfig []interface{}
}

type service struct {
	swapRepo   domain.SwapRepository
	escrowRepo domain.EscrowRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	swapStoreFactory, ok := swapStoreTypes[config.DbType]
	if !ok {
		return nil, fmt.Errorf("unsupported db type: %s", config.DbType)
	}
	escrowStoreFactory := escrowStoreTypes[config.DbType]

	swapRepo, err := swapStoreFactory(config.DbConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to open swap store: %s", err)
	}
	escrowRepo, err := escrowStoreFactory(config.DbConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to open escrow store: %s", err)
	}

	return &service{
		swapRepo:   swapRepo,
		escrowRepo: escrowRepo,
	}, nil
}

func (s *service) Swaps() domain.SwapRepository {
	return s.swapRepo
}

func (s *service) Escrows() domain.EscrowRepository {
	return s.escrowRepo
}

func (s *service) Close() {
	s.swapRepo.Close()
	s.escrowRepo.Close()
}
