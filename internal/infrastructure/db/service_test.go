package db_test

import (
	"context"
	"testing"

	"github.com/lockstep-network/lockstep/internal/core/domain"
	"github.com/lockstep-network/lockstep/internal/core/ports"
	"github.com/lockstep-network/lockstep/internal/infrastructure/db"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func TestService(t *testing.T) {
	t.Run("unsupported_type", func(t *testing.T) {
		svc, err := db.NewService(db.ServiceConfig{DbType: "unknown"})
		require.EqualError(t, err, "unsupported db type: unknown")
		require.Nil(t, svc)
	})

	t.Run("badger_on_disk", func(t *testing.T) {
		svc, err := db.NewService(db.ServiceConfig{
			DbType:   "badger",
			DbConfig: []interface{}{t.TempDir(), nil},
		})
		require.NoError(t, err)
		require.NotNil(t, svc)

		swap, err := domain.NewSwap(
			[]domain.Party{"alice", "bob"},
			[]domain.AssetRef{
				{Ledger: "ledgerA", Kind: domain.FungibleAsset, Unit: "tokenX", Amount: 100},
				{Ledger: "ledgerA", Kind: domain.FungibleAsset, Unit: "tokenY", Amount: 50},
			},
			domain.Commit([]byte("secret")), 3600, 1700000000,
		)
		require.NoError(t, err)

		err = svc.Swaps().AddOrUpdateSwap(ctx, *swap)
		require.NoError(t, err)

		got, err := svc.Swaps().GetSwapWithId(ctx, swap.Id)
		require.NoError(t, err)
		require.Equal(t, swap.Id, got.Id)

		svc.Close()
	})

	t.Run("badger_in_memory", func(t *testing.T) {
		svc, err := db.NewService(db.ServiceConfig{
			DbType:   "badger",
			DbConfig: []interface{}{"", nil},
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		t.Cleanup(svc.Close)

		testSwapRepository(t, svc)
		testEscrowRepository(t, svc)
	})
}

func testSwapRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("swap_repository", func(t *testing.T) {
		secret := []byte("secret")
		swap, err := domain.NewSwap(
			[]domain.Party{"alice", "bob"},
			[]domain.AssetRef{
				{Ledger: "ledgerA", Kind: domain.FungibleAsset, Unit: "tokenX", Amount: 100},
				{Ledger: "ledgerA", Kind: domain.FungibleAsset, Unit: "tokenY", Amount: 50},
			},
			domain.Commit(secret), 3600, 1700000000,
		)
		require.NoError(t, err)

		err = svc.Swaps().AddOrUpdateSwap(ctx, *swap)
		require.NoError(t, err)

		got, err := svc.Swaps().GetSwapWithId(ctx, swap.Id)
		require.NoError(t, err)
		require.Equal(t, swap.Id, got.Id)
		require.Equal(t, swap.Participants, got.Participants)
		require.Equal(t, domain.SwapStatusInitiated, got.Status)

		open, err := svc.Swaps().GetSwapsWithStatus(ctx, domain.SwapStatusInitiated)
		require.NoError(t, err)
		require.Len(t, open, 1)

		_, err = swap.Complete(secret, 1700000010)
		require.NoError(t, err)
		err = svc.Swaps().AddOrUpdateSwap(ctx, *swap)
		require.NoError(t, err)

		open, err = svc.Swaps().GetSwapsWithStatus(ctx, domain.SwapStatusInitiated)
		require.NoError(t, err)
		require.Empty(t, open)

		got, err = svc.Swaps().GetSwapWithId(ctx, swap.Id)
		require.NoError(t, err)
		require.Equal(t, domain.SwapStatusCompleted, got.Status)

		all, err := svc.Swaps().GetAllSwaps(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)

		_, err = svc.Swaps().GetSwapWithId(ctx, "missing")
		require.Error(t, err)
	})
}

func testEscrowRepository(t *testing.T, svc ports.RepoManager) {
	t.Run("escrow_repository", func(t *testing.T) {
		escrow, err := domain.NewEscrow(
			"dave",
			[]domain.Beneficiary{{Party: "alice", Allocation: 100}},
			domain.AssetRef{Ledger: "ledgerA", Kind: domain.FungibleAsset, Unit: "tokenX", Amount: 100},
			"goods delivered", 0, 1700000000,
		)
		require.NoError(t, err)

		err = svc.Escrows().AddOrUpdateEscrow(ctx, *escrow)
		require.NoError(t, err)

		got, err := svc.Escrows().GetEscrowWithId(ctx, escrow.Id)
		require.NoError(t, err)
		require.Equal(t, escrow.Id, got.Id)
		require.Equal(t, escrow.Beneficiaries, got.Beneficiaries)
		require.Equal(t, domain.EscrowStatusPending, got.Status)

		_, err = escrow.SetConditionMet(true, 1700000010)
		require.NoError(t, err)
		_, err = escrow.SetApproved(true, 1700000020)
		require.NoError(t, err)
		err = svc.Escrows().AddOrUpdateEscrow(ctx, *escrow)
		require.NoError(t, err)

		pending, err := svc.Escrows().GetEscrowsWithStatus(ctx, domain.EscrowStatusPending)
		require.NoError(t, err)
		require.Empty(t, pending)

		got, err = svc.Escrows().GetEscrowWithId(ctx, escrow.Id)
		require.NoError(t, err)
		require.Equal(t, domain.EscrowStatusReleased, got.Status)
		require.True(t, got.ConditionMet)
		require.True(t, got.Approved)

		_, err = svc.Escrows().GetEscrowWithId(ctx, "missing")
		require.Error(t, err)
	})
}
