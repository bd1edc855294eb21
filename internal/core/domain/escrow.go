package domain

import (
	"math"

	"github.com/google/uuid"
)

const (
	EscrowStatusUndefined EscrowStatus = iota
	EscrowStatusPending
	EscrowStatusReleased
	EscrowStatusRefunded
)

type EscrowStatus int

func (s EscrowStatus) String() string {
	switch s {
	case EscrowStatusPending:
		return "PENDING"
	case EscrowStatusReleased:
		return "RELEASED"
	case EscrowStatusRefunded:
		return "REFUNDED"
	default:
		return "UNDEFINED"
	}
}

// Escrow holds a single deposit for conditional, proportional release to
// many beneficiaries. Release requires both gates, condition_met and
// approved, to be true at the same time; the setter that flips the second
// gate triggers the release. Claims then move each beneficiary's fixed
// allocation, one claim per beneficiary.
type Escrow struct {
	Id            string
	Depositor     Party
	Beneficiaries []Beneficiary
	Asset         AssetRef
	Condition     string
	ConditionMet  bool
	Approved      bool
	Claimed       map[Party]bool
	CreatedAt     int64
	LockDuration  int64
	Status        EscrowStatus
	Version       uint
	changes       []Event
}

func NewEscrow(
	depositor Party, beneficiaries []Beneficiary, asset AssetRef,
	condition string, lockDuration int64, now int64,
) (*Escrow, error) {
	if err := validateEscrowTerms(depositor, beneficiaries, asset, lockDuration); err != nil {
		return nil, err
	}

	e := &Escrow{
		Id:      uuid.New().String(),
		changes: make([]Event, 0),
	}
	e.raise(EscrowCreated{
		Id:            e.Id,
		Depositor:     depositor,
		Beneficiaries: beneficiaries,
		Asset:         asset,
		Condition:     condition,
		Timestamp:     now,
		LockDuration:  lockDuration,
	})

	return e, nil
}

func NewEscrowFromEvents(events []Event) *Escrow {
	e := &Escrow{}

	for _, event := range events {
		e.On(event, true)
	}

	e.changes = append([]Event{}, events...)

	return e
}

func (e *Escrow) Events() []Event {
	return e.changes
}

func (e *Escrow) On(event Event, replayed bool) {
	switch ev := event.(type) {
	case EscrowCreated:
		e.Id = ev.Id
		e.Depositor = ev.Depositor
		e.Beneficiaries = append([]Beneficiary{}, ev.Beneficiaries...)
		e.Asset = ev.Asset
		e.Condition = ev.Condition
		e.Claimed = make(map[Party]bool)
		e.CreatedAt = ev.Timestamp
		e.LockDuration = ev.LockDuration
		e.Status = EscrowStatusPending
	case EscrowGateUpdated:
		switch ev.Gate {
		case GateConditionMet:
			e.ConditionMet = ev.Value
		case GateApproved:
			e.Approved = ev.Value
		}
	case EscrowReleased:
		e.Status = EscrowStatusReleased
	case EscrowClaimed:
		if e.Claimed == nil {
			e.Claimed = make(map[Party]bool)
		}
		e.Claimed[ev.Beneficiary] = true
	case EscrowRefunded:
		e.Status = EscrowStatusRefunded
	}

	if replayed {
		e.Version++
	}
}

// SetConditionMet updates the compliance gate. Flipping the second gate to
// true releases the escrow as a side effect.
func (e *Escrow) SetConditionMet(value bool, now int64) ([]Event, error) {
	return e.setGate(GateConditionMet, value, now)
}

// SetApproved updates the administrative gate. Flipping the second gate to
// true releases the escrow as a side effect.
func (e *Escrow) SetApproved(value bool, now int64) ([]Event, error) {
	return e.setGate(GateApproved, value, now)
}

func (e *Escrow) setGate(gate string, value bool, now int64) ([]Event, error) {
	if err := e.pendingOnly(); err != nil {
		return nil, err
	}

	events := make([]Event, 0, 2)

	update := EscrowGateUpdated{Id: e.Id, Gate: gate, Value: value, Timestamp: now}
	e.raise(update)
	events = append(events, update)

	if e.ConditionMet && e.Approved {
		released := EscrowReleased{Id: e.Id, Timestamp: now}
		e.raise(released)
		events = append(events, released)
	}

	return events, nil
}

// Claim transfers exactly the beneficiary's allocation out of custody. A
// second claim by the same beneficiary is rejected.
func (e *Escrow) Claim(beneficiary Party, now int64) ([]Event, error) {
	switch e.Status {
	case EscrowStatusPending:
		return nil, ErrNotReleased
	case EscrowStatusRefunded:
		return nil, ErrAlreadyRefunded
	}

	allocation, ok := e.allocationOf(beneficiary)
	if !ok {
		return nil, ErrNotBeneficiary
	}
	if e.Claimed[beneficiary] {
		return nil, ErrAlreadyClaimed
	}

	event := EscrowClaimed{
		Id:          e.Id,
		Beneficiary: beneficiary,
		Transfer: Transfer{
			From:  e.CustodyAccount(),
			To:    string(beneficiary),
			Asset: e.Asset.WithAmount(allocation),
		},
		Timestamp: now,
	}
	e.raise(event)

	return []Event{event}, nil
}

// Refund returns the full deposit to the depositor. Permitted only while
// pending and, when a timelock is configured, only after it expired.
func (e *Escrow) Refund(caller Party, now int64) ([]Event, error) {
	if err := e.pendingOnly(); err != nil {
		return nil, err
	}
	if caller != e.Depositor {
		return nil, ErrNotDepositor
	}
	if e.LockDuration > 0 && now < e.ExpiresAt() {
		return nil, ErrTimelockNotExpired
	}

	event := EscrowRefunded{
		Id: e.Id,
		Transfer: Transfer{
			From:  e.CustodyAccount(),
			To:    string(e.Depositor),
			Asset: e.Asset,
		},
		Timestamp: now,
	}
	e.raise(event)

	return []Event{event}, nil
}

func (e *Escrow) IsSettled() bool {
	return e.Status == EscrowStatusReleased || e.Status == EscrowStatusRefunded
}

// ExpiresAt is the refund-eligibility boundary, zero when no timelock is
// configured.
func (e *Escrow) ExpiresAt() int64 {
	if e.LockDuration <= 0 {
		return 0
	}
	return e.CreatedAt + e.LockDuration
}

func (e *Escrow) CustodyAccount() string {
	return CustodyAccount(e.Id, []byte(e.Depositor))
}

// DepositTransfer moves the full escrowed amount into engine custody.
func (e *Escrow) DepositTransfer() Transfer {
	return Transfer{
		From:  string(e.Depositor),
		To:    e.CustodyAccount(),
		Asset: e.Asset,
	}
}

// RefundTransfers returns the deposit to the depositor. Used for
// compensating rollbacks next to the swap counterpart.
func (e *Escrow) RefundTransfers() []Transfer {
	return []Transfer{{
		From:  e.CustodyAccount(),
		To:    string(e.Depositor),
		Asset: e.Asset,
	}}
}

func (e *Escrow) pendingOnly() error {
	switch e.Status {
	case EscrowStatusReleased:
		return ErrAlreadyReleased
	case EscrowStatusRefunded:
		return ErrAlreadyRefunded
	}
	return nil
}

func (e *Escrow) allocationOf(beneficiary Party) (uint64, bool) {
	for _, b := range e.Beneficiaries {
		if b.Party == beneficiary {
			return b.Allocation, true
		}
	}
	return 0, false
}

func validateEscrowTerms(
	depositor Party, beneficiaries []Beneficiary, asset AssetRef, lockDuration int64,
) error {
	if err := depositor.Validate(); err != nil {
		return err
	}
	if len(beneficiaries) <= 0 {
		return Errorf(ValidationError, "missing beneficiaries")
	}
	if err := asset.Validate(); err != nil {
		return err
	}
	if lockDuration < 0 {
		return Errorf(ValidationError, "lock duration must not be negative")
	}

	seen := make(map[Party]bool, len(beneficiaries))
	total := uint64(0)
	for _, b := range beneficiaries {
		if err := b.Party.Validate(); err != nil {
			return err
		}
		if b.Allocation <= 0 {
			return Errorf(ValidationError, "allocation must be greater than zero")
		}
		if seen[b.Party] {
			return Errorf(ValidationError, "duplicate beneficiary %s", b.Party)
		}
		seen[b.Party] = true
		// a wrapped sum can never match the escrowed amount
		if total > math.MaxUint64-b.Allocation {
			return ErrAllocationMismatch
		}
		total += b.Allocation
	}
	if total != asset.Amount {
		return ErrAllocationMismatch
	}

	return nil
}

func (e *Escrow) raise(event Event) {
	if e.changes == nil {
		e.changes = make([]Event, 0)
	}
	e.changes = append(e.changes, event)
	e.On(event, false)
}
