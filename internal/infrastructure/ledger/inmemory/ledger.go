package inmemoryledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/lockstep-network/lockstep/internal/core/domain"
	"github.com/lockstep-network/lockstep/internal/core/ports"
)

// ledgerService keeps all balances in process memory. It is the reference
// ledger used by the daemon in standalone mode and by the service tests.
type ledgerService struct {
	lock     *sync.RWMutex
	balances map[string]map[string]uint64 // account -> asset key -> amount
	owners   map[string]string            // asset key -> account, non-fungibles only
}

func NewLedgerService() ports.AssetLedger {
	return &ledgerService{
		lock:     &sync.RWMutex{},
		balances: make(map[string]map[string]uint64),
		owners:   make(map[string]string),
	}
}

func (s *ledgerService) Transfer(ctx context.Context, leg domain.Transfer) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.apply(s.balances, s.owners, leg)
}

func (s *ledgerService) TransferBatch(ctx context.Context, legs []domain.Transfer) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	// Work on a copy so a failing leg leaves the ledger untouched.
	balances := cloneBalances(s.balances)
	owners := cloneOwners(s.owners)

	for _, leg := range legs {
		if err := s.apply(balances, owners, leg); err != nil {
			return err
		}
	}

	s.balances = balances
	s.owners = owners
	return nil
}

func (s *ledgerService) BalanceOf(
	ctx context.Context, account string, asset domain.AssetRef,
) (uint64, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.balances[account][assetKey(asset)], nil
}

func (s *ledgerService) OwnerOf(ctx context.Context, asset domain.AssetRef) (string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	owner, ok := s.owners[assetKey(asset)]
	if !ok {
		return "", fmt.Errorf("no owner recorded for asset %s", assetKey(asset))
	}
	return owner, nil
}

// Credit mints funds on an account, bypassing transfer checks. It exists so
// callers can seed the ledger before exercising the engine.
func (s *ledgerService) Credit(account string, asset domain.AssetRef) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if asset.Kind == domain.NonFungibleAsset {
		s.owners[assetKey(asset)] = account
		return
	}
	if s.balances[account] == nil {
		s.balances[account] = make(map[string]uint64)
	}
	s.balances[account][assetKey(asset)] += asset.Amount
}

func (s *ledgerService) apply(
	balances map[string]map[string]uint64, owners map[string]string, leg domain.Transfer,
) error {
	key := assetKey(leg.Asset)

	if leg.Asset.Kind == domain.NonFungibleAsset {
		owner, ok := owners[key]
		if !ok || owner != leg.From {
			return fmt.Errorf("%w: %s does not own %s", domain.ErrTransferFailed, leg.From, key)
		}
		owners[key] = leg.To
		return nil
	}

	available := balances[leg.From][key]
	if available < leg.Asset.Amount {
		return fmt.Errorf(
			"%w: insufficient funds on %s for %s, got %d want %d",
			domain.ErrTransferFailed, leg.From, key, available, leg.Asset.Amount,
		)
	}

	if balances[leg.From] == nil {
		balances[leg.From] = make(map[string]uint64)
	}
	balances[leg.From][key] = available - leg.Asset.Amount
	if balances[leg.To] == nil {
		balances[leg.To] = make(map[string]uint64)
	}
	balances[leg.To][key] += leg.Asset.Amount
	return nil
}

func assetKey(asset domain.AssetRef) string {
	return fmt.Sprintf("%s/%s/%s", asset.Ledger, asset.Kind, asset.Unit)
}

func cloneBalances(src map[string]map[string]uint64) map[string]map[string]uint64 {
	dst := make(map[string]map[string]uint64, len(src))
	for account, assets := range src {
		dst[account] = make(map[string]uint64, len(assets))
		for key, amount := range assets {
			dst[account][key] = amount
		}
	}
	return dst
}

func cloneOwners(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for key, owner := range src {
		dst[key] = owner
	}
	return dst
}
