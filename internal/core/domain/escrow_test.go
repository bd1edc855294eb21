package domain_test

import (
	"testing"

	"github.com/lockstep-network/lockstep/internal/core/domain"
	"github.com/stretchr/testify/require"
)

var (
	dave = domain.Party("dave")

	escrowedAsset = domain.AssetRef{
		Ledger: "ledgerA", Kind: domain.FungibleAsset, Unit: "tokenX", Amount: 100,
	}
	beneficiaries = []domain.Beneficiary{
		{Party: alice, Allocation: 40},
		{Party: bob, Allocation: 30},
		{Party: carol, Allocation: 30},
	}
)

func TestEscrow(t *testing.T) {
	testCreateEscrow(t)

	testEscrowGates(t)

	testClaim(t)

	testRefundEscrow(t)

	testEscrowReplay(t)
}

func testCreateEscrow(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			escrow, err := domain.NewEscrow(
				dave, beneficiaries, escrowedAsset, "goods delivered", lockDuration, now,
			)
			require.NoError(t, err)
			require.NotNil(t, escrow)
			require.NotEmpty(t, escrow.Id)
			require.Equal(t, domain.EscrowStatusPending, escrow.Status)
			require.False(t, escrow.ConditionMet)
			require.False(t, escrow.Approved)
			require.Equal(t, now+lockDuration, escrow.ExpiresAt())
			require.Len(t, escrow.Events(), 1)

			deposit := escrow.DepositTransfer()
			require.Equal(t, string(dave), deposit.From)
			require.Equal(t, escrow.CustodyAccount(), deposit.To)
			require.Equal(t, escrowedAsset, deposit.Asset)
		})

		t.Run("no_timelock", func(t *testing.T) {
			escrow, err := domain.NewEscrow(
				dave, beneficiaries, escrowedAsset, "goods delivered", 0, now,
			)
			require.NoError(t, err)
			require.Zero(t, escrow.ExpiresAt())
		})

		t.Run("invalid", func(t *testing.T) {
			fixtures := []struct {
				depositor     domain.Party
				beneficiaries []domain.Beneficiary
				asset         domain.AssetRef
				lockDuration  int64
				expectedErr   string
			}{
				{
					depositor:     "",
					beneficiaries: beneficiaries,
					asset:         escrowedAsset,
					lockDuration:  lockDuration,
					expectedErr:   "missing party identity",
				},
				{
					depositor:     dave,
					beneficiaries: nil,
					asset:         escrowedAsset,
					lockDuration:  lockDuration,
					expectedErr:   "missing beneficiaries",
				},
				{
					depositor: dave,
					beneficiaries: []domain.Beneficiary{
						{Party: alice, Allocation: 40},
						{Party: bob, Allocation: 30},
					},
					asset:        escrowedAsset,
					lockDuration: lockDuration,
					expectedErr:  "beneficiary allocations do not sum to the escrowed amount",
				},
				{
					// the sum wraps around back to the escrowed amount
					depositor: dave,
					beneficiaries: []domain.Beneficiary{
						{Party: alice, Allocation: 1 << 63},
						{Party: bob, Allocation: 1 << 63},
						{Party: carol, Allocation: 100},
					},
					asset:        escrowedAsset,
					lockDuration: lockDuration,
					expectedErr:  "beneficiary allocations do not sum to the escrowed amount",
				},
				{
					depositor: dave,
					beneficiaries: []domain.Beneficiary{
						{Party: alice, Allocation: 50},
						{Party: alice, Allocation: 50},
					},
					asset:        escrowedAsset,
					lockDuration: lockDuration,
					expectedErr:  "duplicate beneficiary alice",
				},
				{
					depositor: dave,
					beneficiaries: []domain.Beneficiary{
						{Party: alice, Allocation: 100},
						{Party: bob, Allocation: 0},
					},
					asset:        escrowedAsset,
					lockDuration: lockDuration,
					expectedErr:  "allocation must be greater than zero",
				},
				{
					depositor:     dave,
					beneficiaries: beneficiaries,
					asset:         escrowedAsset,
					lockDuration:  -1,
					expectedErr:   "lock duration must not be negative",
				},
			}

			for _, f := range fixtures {
				escrow, err := domain.NewEscrow(
					f.depositor, f.beneficiaries, f.asset, "", f.lockDuration, now,
				)
				require.EqualError(t, err, f.expectedErr)
				require.Nil(t, escrow)
			}
		})
	})
}

func testEscrowGates(t *testing.T) {
	t.Run("gates", func(t *testing.T) {
		t.Run("single_gate_does_not_release", func(t *testing.T) {
			escrow, err := domain.NewEscrow(
				dave, beneficiaries, escrowedAsset, "", lockDuration, now,
			)
			require.NoError(t, err)

			events, err := escrow.SetApproved(true, now+10)
			require.NoError(t, err)
			require.Len(t, events, 1)
			require.True(t, escrow.Approved)
			require.Equal(t, domain.EscrowStatusPending, escrow.Status)
		})

		t.Run("second_gate_releases", func(t *testing.T) {
			escrow, err := domain.NewEscrow(
				dave, beneficiaries, escrowedAsset, "", lockDuration, now,
			)
			require.NoError(t, err)

			_, err = escrow.SetConditionMet(true, now+10)
			require.NoError(t, err)
			require.Equal(t, domain.EscrowStatusPending, escrow.Status)

			events, err := escrow.SetApproved(true, now+20)
			require.NoError(t, err)
			require.Len(t, events, 2)
			require.Equal(t, domain.EscrowStatusReleased, escrow.Status)
			require.True(t, escrow.IsSettled())

			_, ok := events[0].(domain.EscrowGateUpdated)
			require.True(t, ok)
			released, ok := events[1].(domain.EscrowReleased)
			require.True(t, ok)
			require.Equal(t, escrow.Id, released.Id)
		})

		t.Run("gate_can_be_unset_while_pending", func(t *testing.T) {
			escrow, err := domain.NewEscrow(
				dave, beneficiaries, escrowedAsset, "", lockDuration, now,
			)
			require.NoError(t, err)

			_, err = escrow.SetConditionMet(true, now+10)
			require.NoError(t, err)
			_, err = escrow.SetConditionMet(false, now+20)
			require.NoError(t, err)
			require.False(t, escrow.ConditionMet)

			_, err = escrow.SetApproved(true, now+30)
			require.NoError(t, err)
			require.Equal(t, domain.EscrowStatusPending, escrow.Status)
		})

		t.Run("invalid", func(t *testing.T) {
			escrow := releasedEscrow(t)

			events, err := escrow.SetConditionMet(false, now+30)
			require.ErrorIs(t, err, domain.ErrAlreadyReleased)
			require.Empty(t, events)

			events, err = escrow.SetApproved(false, now+30)
			require.ErrorIs(t, err, domain.ErrAlreadyReleased)
			require.Empty(t, events)
		})
	})
}

func testClaim(t *testing.T) {
	t.Run("claim", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			escrow := releasedEscrow(t)

			events, err := escrow.Claim(alice, now+30)
			require.NoError(t, err)
			require.Len(t, events, 1)

			event, ok := events[0].(domain.EscrowClaimed)
			require.True(t, ok)
			require.Equal(t, alice, event.Beneficiary)
			require.Equal(t, escrow.CustodyAccount(), event.Transfer.From)
			require.Equal(t, string(alice), event.Transfer.To)
			require.Equal(t, uint64(40), event.Transfer.Asset.Amount)

			// remaining beneficiaries claim their own allocations
			events, err = escrow.Claim(bob, now+40)
			require.NoError(t, err)
			require.Equal(t, uint64(30), events[0].(domain.EscrowClaimed).Transfer.Asset.Amount)

			events, err = escrow.Claim(carol, now+50)
			require.NoError(t, err)
			require.Equal(t, uint64(30), events[0].(domain.EscrowClaimed).Transfer.Asset.Amount)
		})

		t.Run("invalid", func(t *testing.T) {
			pending, err := domain.NewEscrow(
				dave, beneficiaries, escrowedAsset, "", lockDuration, now,
			)
			require.NoError(t, err)

			events, err := pending.Claim(alice, now+10)
			require.ErrorIs(t, err, domain.ErrNotReleased)
			require.Empty(t, events)

			escrow := releasedEscrow(t)

			events, err = escrow.Claim(dave, now+30)
			require.ErrorIs(t, err, domain.ErrNotBeneficiary)
			require.Empty(t, events)

			_, err = escrow.Claim(alice, now+30)
			require.NoError(t, err)

			events, err = escrow.Claim(alice, now+40)
			require.ErrorIs(t, err, domain.ErrAlreadyClaimed)
			require.Empty(t, events)
		})
	})
}

func testRefundEscrow(t *testing.T) {
	t.Run("refund", func(t *testing.T) {
		t.Run("valid", func(t *testing.T) {
			escrow, err := domain.NewEscrow(
				dave, beneficiaries, escrowedAsset, "", lockDuration, now,
			)
			require.NoError(t, err)

			events, err := escrow.Refund(dave, now+lockDuration)
			require.NoError(t, err)
			require.Len(t, events, 1)
			require.Equal(t, domain.EscrowStatusRefunded, escrow.Status)

			event, ok := events[0].(domain.EscrowRefunded)
			require.True(t, ok)
			require.Equal(t, string(dave), event.Transfer.To)
			require.Equal(t, escrowedAsset, event.Transfer.Asset)
		})

		t.Run("no_timelock_refunds_immediately", func(t *testing.T) {
			escrow, err := domain.NewEscrow(
				dave, beneficiaries, escrowedAsset, "", 0, now,
			)
			require.NoError(t, err)

			_, err = escrow.Refund(dave, now+1)
			require.NoError(t, err)
			require.Equal(t, domain.EscrowStatusRefunded, escrow.Status)
		})

		t.Run("invalid", func(t *testing.T) {
			escrow, err := domain.NewEscrow(
				dave, beneficiaries, escrowedAsset, "", lockDuration, now,
			)
			require.NoError(t, err)

			events, err := escrow.Refund(alice, now+lockDuration)
			require.ErrorIs(t, err, domain.ErrNotDepositor)
			require.Empty(t, events)

			events, err = escrow.Refund(dave, now+lockDuration-1)
			require.ErrorIs(t, err, domain.ErrTimelockNotExpired)
			require.Empty(t, events)

			released := releasedEscrow(t)
			events, err = released.Refund(dave, now+lockDuration)
			require.ErrorIs(t, err, domain.ErrAlreadyReleased)
			require.Empty(t, events)

			_, err = escrow.Refund(dave, now+lockDuration)
			require.NoError(t, err)

			events, err = escrow.Refund(dave, now+lockDuration+1)
			require.ErrorIs(t, err, domain.ErrAlreadyRefunded)
			require.Empty(t, events)

			events, err = escrow.Claim(alice, now+lockDuration+1)
			require.ErrorIs(t, err, domain.ErrAlreadyRefunded)
			require.Empty(t, events)
		})
	})
}

func testEscrowReplay(t *testing.T) {
	t.Run("replay", func(t *testing.T) {
		escrow := releasedEscrow(t)
		_, err := escrow.Claim(alice, now+30)
		require.NoError(t, err)

		replayed := domain.NewEscrowFromEvents(escrow.Events())
		require.Equal(t, escrow.Id, replayed.Id)
		require.Equal(t, escrow.Depositor, replayed.Depositor)
		require.Equal(t, escrow.Beneficiaries, replayed.Beneficiaries)
		require.Equal(t, escrow.Status, replayed.Status)
		require.True(t, replayed.ConditionMet)
		require.True(t, replayed.Approved)
		require.True(t, replayed.Claimed[alice])
		require.Equal(t, uint(len(escrow.Events())), replayed.Version)
	})
}

func releasedEscrow(t *testing.T) *domain.Escrow {
	escrow, err := domain.NewEscrow(
		dave, beneficiaries, escrowedAsset, "", lockDuration, now,
	)
	require.NoError(t, err)

	_, err = escrow.SetConditionMet(true, now+10)
	require.NoError(t, err)
	_, err = escrow.SetApproved(true, now+20)
	require.NoError(t, err)
	require.Equal(t, domain.EscrowStatusReleased, escrow.Status)

	return escrow
}
