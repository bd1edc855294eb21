package domain_test

import (
	"testing"

	"github.com/lockstep-network/lockstep/internal/core/domain"
	"github.com/stretchr/testify/require"
)

var (
	alice = domain.Party("alice")
	bob   = domain.Party("bob")
	carol = domain.Party("carol")

	tokenX = domain.AssetRef{Ledger: "ledgerA", Kind: domain.FungibleAsset, Unit: "tokenX", Amount: 100}
	tokenY = domain.AssetRef{Ledger: "ledgerA", Kind: domain.FungibleAsset, Unit: "tokenY", Amount: 50}
	tokenZ = domain.AssetRef{Ledger: "ledgerB", Kind: domain.FungibleAsset, Unit: "tokenZ", Amount: 25}

	secret     = []byte("the settlement secret")
	commitment = domain.Commit(secret)

	now          = int64(1700000000)
	lockDuration = int64(3600)
)

func TestSwap(t *testing.T) {
	testInitiateSwap(t)

	testCompleteSwap(t)

	testRefundSwap(t)

	testSwapReplay(t)
}

func testInitiateSwap(t *testing.T) {
	t.Run("initiate", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			swap, err := domain.NewSwap(
				[]domain.Party{alice, bob}, []domain.AssetRef{tokenX, tokenY},
				commitment, lockDuration, now,
			)
			require.NoError(t, err)
			require.NotNil(t, swap)
			require.NotEmpty(t, swap.Id)
			require.Equal(t, domain.SwapStatusInitiated, swap.Status)
			require.Equal(t, now+lockDuration, swap.ExpiresAt())
			require.False(t, swap.IsSettled())
			require.Len(t, swap.Events(), 1)

			event, ok := swap.Events()[0].(domain.SwapInitiated)
			require.True(t, ok)
			require.Equal(t, swap.Id, event.Id)
			require.Equal(t, commitment, event.CommitmentHash)

			deposits := swap.DepositTransfers()
			require.Len(t, deposits, 2)
			custody := swap.CustodyAccount()
			require.NotEmpty(t, custody)
			require.Equal(t, string(alice), deposits[0].From)
			require.Equal(t, custody, deposits[0].To)
			require.Equal(t, tokenX, deposits[0].Asset)
			require.Equal(t, string(bob), deposits[1].From)
			require.Equal(t, tokenY, deposits[1].Asset)
		})

		t.Run("invalid", func(t *testing.T) {
			fixtures := []struct {
				participants []domain.Party
				assets       []domain.AssetRef
				commitment   []byte
				lockDuration int64
				expectedErr  string
			}{
				{
					participants: []domain.Party{alice},
					assets:       []domain.AssetRef{tokenX},
					commitment:   commitment,
					lockDuration: lockDuration,
					expectedErr:  "at least two participants required",
				},
				{
					participants: []domain.Party{alice, bob},
					assets:       []domain.AssetRef{tokenX},
					commitment:   commitment,
					lockDuration: lockDuration,
					expectedErr:  "got 2 participants and 1 assets, lengths must match",
				},
				{
					participants: []domain.Party{alice, ""},
					assets:       []domain.AssetRef{tokenX, tokenY},
					commitment:   commitment,
					lockDuration: lockDuration,
					expectedErr:  "missing party identity",
				},
				{
					participants: []domain.Party{alice, bob},
					assets:       []domain.AssetRef{tokenX, {Ledger: "ledgerA", Kind: domain.FungibleAsset, Unit: "tokenY"}},
					commitment:   commitment,
					lockDuration: lockDuration,
					expectedErr:  "amount must be greater than zero",
				},
				{
					participants: []domain.Party{alice, bob},
					assets:       []domain.AssetRef{tokenX, tokenY},
					commitment:   []byte("too short"),
					lockDuration: lockDuration,
					expectedErr:  "commitment hash must be exactly 32 bytes",
				},
				{
					participants: []domain.Party{alice, bob},
					assets:       []domain.AssetRef{tokenX, tokenY},
					commitment:   commitment,
					lockDuration: 0,
					expectedErr:  "lock duration must be greater than zero",
				},
			}

			for _, f := range fixtures {
				swap, err := domain.NewSwap(f.participants, f.assets, f.commitment, f.lockDuration, now)
				require.EqualError(t, err, f.expectedErr)
				require.Nil(t, swap)
			}
		})
	})
}

func testCompleteSwap(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			swap, err := domain.NewSwap(
				[]domain.Party{alice, bob, carol},
				[]domain.AssetRef{tokenX, tokenY, tokenZ},
				commitment, lockDuration, now,
			)
			require.NoError(t, err)

			events, err := swap.Complete(secret, now+10)
			require.NoError(t, err)
			require.Len(t, events, 1)
			require.Equal(t, domain.SwapStatusCompleted, swap.Status)
			require.True(t, swap.IsSettled())
			require.Equal(t, secret, swap.RevealedSecret)

			event, ok := events[0].(domain.SwapCompleted)
			require.True(t, ok)
			require.Equal(t, secret, event.Secret)

			// each participant receives the asset deposited by its successor
			custody := swap.CustodyAccount()
			require.Len(t, event.Transfers, 3)
			require.Equal(t, custody, event.Transfers[0].From)
			require.Equal(t, string(alice), event.Transfers[0].To)
			require.Equal(t, tokenY, event.Transfers[0].Asset)
			require.Equal(t, string(bob), event.Transfers[1].To)
			require.Equal(t, tokenZ, event.Transfers[1].Asset)
			require.Equal(t, string(carol), event.Transfers[2].To)
			require.Equal(t, tokenX, event.Transfers[2].Asset)
		})

		t.Run("invalid", func(t *testing.T) {
			swap, err := domain.NewSwap(
				[]domain.Party{alice, bob}, []domain.AssetRef{tokenX, tokenY},
				commitment, lockDuration, now,
			)
			require.NoError(t, err)

			events, err := swap.Complete([]byte("wrong secret"), now+10)
			require.ErrorIs(t, err, domain.ErrInvalidSecret)
			require.Empty(t, events)
			require.Equal(t, domain.SwapStatusInitiated, swap.Status)

			_, err = swap.Complete(secret, now+10)
			require.NoError(t, err)

			events, err = swap.Complete(secret, now+20)
			require.ErrorIs(t, err, domain.ErrAlreadySettled)
			require.Empty(t, events)

			events, err = swap.Refund(now + lockDuration)
			require.ErrorIs(t, err, domain.ErrAlreadySettled)
			require.Empty(t, events)
		})
	})
}

func testRefundSwap(t *testing.T) {
	t.Run("refund", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			swap, err := domain.NewSwap(
				[]domain.Party{alice, bob}, []domain.AssetRef{tokenX, tokenY},
				commitment, lockDuration, now,
			)
			require.NoError(t, err)

			events, err := swap.Refund(now + lockDuration)
			require.NoError(t, err)
			require.Len(t, events, 1)
			require.Equal(t, domain.SwapStatusRefunded, swap.Status)
			require.True(t, swap.IsSettled())

			// every deposit goes back to its owner, never permuted
			event, ok := events[0].(domain.SwapRefunded)
			require.True(t, ok)
			require.Len(t, event.Transfers, 2)
			require.Equal(t, string(alice), event.Transfers[0].To)
			require.Equal(t, tokenX, event.Transfers[0].Asset)
			require.Equal(t, string(bob), event.Transfers[1].To)
			require.Equal(t, tokenY, event.Transfers[1].Asset)
		})

		t.Run("invalid", func(t *testing.T) {
			swap, err := domain.NewSwap(
				[]domain.Party{alice, bob}, []domain.AssetRef{tokenX, tokenY},
				commitment, lockDuration, now,
			)
			require.NoError(t, err)

			events, err := swap.Refund(now + lockDuration - 1)
			require.ErrorIs(t, err, domain.ErrTimelockNotExpired)
			require.Empty(t, events)
			require.Equal(t, domain.SwapStatusInitiated, swap.Status)

			_, err = swap.Refund(now + lockDuration)
			require.NoError(t, err)

			events, err = swap.Refund(now + lockDuration + 1)
			require.ErrorIs(t, err, domain.ErrAlreadySettled)
			require.Empty(t, events)

			events, err = swap.Complete(secret, now+lockDuration+1)
			require.ErrorIs(t, err, domain.ErrAlreadySettled)
			require.Empty(t, events)
		})
	})
}

func testSwapReplay(t *testing.T) {
	t.Run("replay", func(t *testing.T) {
		swap, err := domain.NewSwap(
			[]domain.Party{alice, bob}, []domain.AssetRef{tokenX, tokenY},
			commitment, lockDuration, now,
		)
		require.NoError(t, err)

		_, err = swap.Complete(secret, now+10)
		require.NoError(t, err)

		replayed := domain.NewSwapFromEvents(swap.Events())
		require.Equal(t, swap.Id, replayed.Id)
		require.Equal(t, swap.Participants, replayed.Participants)
		require.Equal(t, swap.Assets, replayed.Assets)
		require.Equal(t, swap.CommitmentHash, replayed.CommitmentHash)
		require.Equal(t, swap.RevealedSecret, replayed.RevealedSecret)
		require.Equal(t, swap.Status, replayed.Status)
		require.Equal(t, uint(2), replayed.Version)
	})
}
