package domain

// Event is a fact produced by an agreement transition. Facts are handed to
// the publisher verbatim and in the order they were raised; how they are
// persisted or serialized is an external concern.
type Event interface {
	isEvent()
}

func (e SwapInitiated) isEvent()     {}
func (e SwapCompleted) isEvent()     {}
func (e SwapRefunded) isEvent()      {}
func (e EscrowCreated) isEvent()     {}
func (e EscrowGateUpdated) isEvent() {}
func (e EscrowReleased) isEvent()    {}
func (e EscrowClaimed) isEvent()     {}
func (e EscrowRefunded) isEvent()    {}
func (e TimelockExpired) isEvent()   {}

// TimelockExpired announces that an agreement's refund boundary has passed
// while the agreement was still unsettled. Purely observational, refunds
// stay caller-driven.
type TimelockExpired struct {
	Id        string
	Agreement string
	Timestamp int64
}
