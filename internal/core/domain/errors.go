package domain

import "fmt"

const (
	UndefinedError ErrorKind = iota
	// ValidationError rejects malformed input before any state change.
	ValidationError
	// StateError rejects an operation attempted against the wrong status.
	StateError
	// TimingError rejects a refund attempted before the timelock expired.
	TimingError
	// AuthorizationError rejects a caller the authorization context denied.
	AuthorizationError
	// LedgerError aborts an operation whose ledger transfers failed. It is
	// the only kind that can occur after validation passed and always leaves
	// custody untouched.
	LedgerError
)

type ErrorKind int

func (k ErrorKind) String() string {
	switch k {
	case ValidationError:
		return "VALIDATION"
	case StateError:
		return "STATE"
	case TimingError:
		return "TIMING"
	case AuthorizationError:
		return "AUTHORIZATION"
	case LedgerError:
		return "LEDGER"
	default:
		return "UNDEFINED"
	}
}

// Error is a settlement rejection. Every rejection leaves agreement status
// and custody exactly as they were before the call.
type Error struct {
	Kind ErrorKind
	Code string
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// Is matches by code so callers can test wrapped rejections with errors.Is
// against the sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Errorf builds a one-off rejection of the given kind.
func Errorf(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: "INVALID_INPUT", Msg: fmt.Sprintf(format, args...)}
}

var (
	ErrDuplicateAgreement = &Error{ValidationError, "DUPLICATE_AGREEMENT", "agreement with this id already exists"}
	ErrAgreementNotFound  = &Error{ValidationError, "AGREEMENT_NOT_FOUND", "agreement not found"}
	ErrInvalidSecret      = &Error{ValidationError, "INVALID_SECRET", "revealed secret does not match the commitment"}
	ErrAllocationMismatch = &Error{ValidationError, "ALLOCATION_MISMATCH", "beneficiary allocations do not sum to the escrowed amount"}

	ErrAlreadySettled  = &Error{StateError, "ALREADY_SETTLED", "swap already settled"}
	ErrAlreadyReleased = &Error{StateError, "ALREADY_RELEASED", "escrow already released"}
	ErrAlreadyRefunded = &Error{StateError, "ALREADY_REFUNDED", "escrow already refunded"}
	ErrNotReleased     = &Error{StateError, "NOT_RELEASED", "escrow has not been released"}
	ErrNotBeneficiary  = &Error{StateError, "NOT_BENEFICIARY", "party has no allocation in this escrow"}
	ErrAlreadyClaimed  = &Error{StateError, "ALREADY_CLAIMED", "allocation already claimed"}
	ErrAgreementBusy   = &Error{StateError, "AGREEMENT_BUSY", "agreement has a transition in flight"}

	ErrTimelockNotExpired = &Error{TimingError, "TIMELOCK_NOT_EXPIRED", "timelock has not expired yet"}

	ErrUnauthorized = &Error{AuthorizationError, "UNAUTHORIZED", "caller is not permitted to perform this action"}
	ErrNotDepositor = &Error{AuthorizationError, "NOT_DEPOSITOR", "only the depositor may refund an escrow"}

	ErrTransferFailed = &Error{LedgerError, "TRANSFER_FAILED", "ledger transfer aborted"}
)
