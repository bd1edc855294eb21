package ports

import "context"

type Action string

const (
	ActionInitiate     Action = "initiate"
	ActionComplete     Action = "complete"
	ActionRefund       Action = "refund"
	ActionCreateEscrow Action = "create_escrow"
	ActionUpdateGate   Action = "update_gate"
	ActionClaim        Action = "claim"
)

// Authorizer answers whether a caller may perform an action on an
// agreement. Policy lives entirely outside the core, the engine only asks
// before dispatching any state-mutating entry point.
type Authorizer interface {
	Permits(ctx context.Context, caller string, action Action, agreementID string) bool
}
