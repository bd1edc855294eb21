package domain

import (
	"github.com/google/uuid"
)

const (
	SwapStatusUndefined SwapStatus = iota
	SwapStatusInitiated
	SwapStatusCompleted
	SwapStatusRefunded
)

type SwapStatus int

func (s SwapStatus) String() string {
	switch s {
	case SwapStatusInitiated:
		return "INITIATED"
	case SwapStatusCompleted:
		return "COMPLETED"
	case SwapStatusRefunded:
		return "REFUNDED"
	default:
		return "UNDEFINED"
	}
}

// Swap is an N-party atomic exchange gated by a single shared secret and a
// shared timeout. Participants and Assets are parallel: Assets[i] is what
// Participants[i] deposited. The aggregate enforces the state machine
// INITIATED -> {COMPLETED, REFUNDED}; both outcomes are terminal.
type Swap struct {
	Id             string
	Participants   []Party
	Assets         []AssetRef
	CommitmentHash []byte
	RevealedSecret []byte
	CreatedAt      int64
	LockDuration   int64
	Status         SwapStatus
	Version        uint
	changes        []Event
}

func NewSwap(
	participants []Party, assets []AssetRef, commitmentHash []byte,
	lockDuration int64, now int64,
) (*Swap, error) {
	if err := validateSwapTerms(participants, assets, commitmentHash, lockDuration); err != nil {
		return nil, err
	}

	s := &Swap{
		Id:      uuid.New().String(),
		changes: make([]Event, 0),
	}
	s.raise(SwapInitiated{
		Id:             s.Id,
		Participants:   participants,
		Assets:         assets,
		CommitmentHash: commitmentHash,
		Timestamp:      now,
		LockDuration:   lockDuration,
	})

	return s, nil
}

func NewSwapFromEvents(events []Event) *Swap {
	s := &Swap{}

	for _, event := range events {
		s.On(event, true)
	}

	s.changes = append([]Event{}, events...)

	return s
}

func (s *Swap) Events() []Event {
	return s.changes
}

func (s *Swap) On(event Event, replayed bool) {
	switch e := event.(type) {
	case SwapInitiated:
		s.Id = e.Id
		s.Participants = append([]Party{}, e.Participants...)
		s.Assets = append([]AssetRef{}, e.Assets...)
		s.CommitmentHash = e.CommitmentHash
		s.CreatedAt = e.Timestamp
		s.LockDuration = e.LockDuration
		s.Status = SwapStatusInitiated
	case SwapCompleted:
		s.RevealedSecret = e.Secret
		s.Status = SwapStatusCompleted
	case SwapRefunded:
		s.Status = SwapStatusRefunded
	}

	if replayed {
		s.Version++
	}
}

// Complete settles the swap with the revealed secret. The returned event
// carries the settlement permutation: participant i receives the asset
// deposited by participant (i+1) mod N.
func (s *Swap) Complete(secret []byte, now int64) ([]Event, error) {
	if s.Status != SwapStatusInitiated {
		return nil, ErrAlreadySettled
	}
	if !VerifyCommitment(s.CommitmentHash, secret) {
		return nil, ErrInvalidSecret
	}

	event := SwapCompleted{
		Id:        s.Id,
		Secret:    secret,
		Transfers: s.settlementTransfers(),
		Timestamp: now,
	}
	s.raise(event)

	return []Event{event}, nil
}

// Refund returns every deposit to its owner once the timelock expired.
func (s *Swap) Refund(now int64) ([]Event, error) {
	if s.Status != SwapStatusInitiated {
		return nil, ErrAlreadySettled
	}
	if now < s.ExpiresAt() {
		return nil, ErrTimelockNotExpired
	}

	event := SwapRefunded{
		Id:        s.Id,
		Transfers: s.RefundTransfers(),
		Timestamp: now,
	}
	s.raise(event)

	return []Event{event}, nil
}

func (s *Swap) IsSettled() bool {
	return s.Status == SwapStatusCompleted || s.Status == SwapStatusRefunded
}

// ExpiresAt is the refund-eligibility boundary.
func (s *Swap) ExpiresAt() int64 {
	return s.CreatedAt + s.LockDuration
}

func (s *Swap) CustodyAccount() string {
	return CustodyAccount(s.Id, s.CommitmentHash)
}

// DepositTransfers moves every participant's declared asset into engine
// custody.
func (s *Swap) DepositTransfers() []Transfer {
	custody := s.CustodyAccount()
	legs := make([]Transfer, 0, len(s.Participants))
	for i, p := range s.Participants {
		legs = append(legs, Transfer{From: string(p), To: custody, Asset: s.Assets[i]})
	}
	return legs
}

// RefundTransfers returns every participant's own deposit.
func (s *Swap) RefundTransfers() []Transfer {
	custody := s.CustodyAccount()
	legs := make([]Transfer, 0, len(s.Participants))
	for i, p := range s.Participants {
		legs = append(legs, Transfer{From: custody, To: string(p), Asset: s.Assets[i]})
	}
	return legs
}

func (s *Swap) settlementTransfers() []Transfer {
	custody := s.CustodyAccount()
	n := len(s.Participants)
	legs := make([]Transfer, 0, n)
	for i, p := range s.Participants {
		legs = append(legs, Transfer{From: custody, To: string(p), Asset: s.Assets[(i+1)%n]})
	}
	return legs
}

func validateSwapTerms(
	participants []Party, assets []AssetRef, commitmentHash []byte, lockDuration int64,
) error {
	if len(participants) < 2 {
		return Errorf(ValidationError, "at least two participants required")
	}
	if len(participants) != len(assets) {
		return Errorf(ValidationError, "got %d participants and %d assets, lengths must match",
			len(participants), len(assets))
	}
	for _, p := range participants {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	for _, a := range assets {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	if len(commitmentHash) != CommitmentSize {
		return Errorf(ValidationError, "commitment hash must be exactly %d bytes", CommitmentSize)
	}
	if lockDuration <= 0 {
		return Errorf(ValidationError, "lock duration must be greater than zero")
	}
	return nil
}

func (s *Swap) raise(event Event) {
	if s.changes == nil {
		s.changes = make([]Event, 0)
	}
	s.changes = append(s.changes, event)
	s.On(event, false)
}
