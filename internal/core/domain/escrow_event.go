package domain

const (
	GateConditionMet = "condition_met"
	GateApproved     = "approved"
)

type EscrowCreated struct {
	Id            string
	Depositor     Party
	Beneficiaries []Beneficiary
	Asset         AssetRef
	Condition     string
	Timestamp     int64
	LockDuration  int64
}

type EscrowGateUpdated struct {
	Id        string
	Gate      string
	Value     bool
	Timestamp int64
}

type EscrowReleased struct {
	Id        string
	Timestamp int64
}

type EscrowClaimed struct {
	Id          string
	Beneficiary Party
	Transfer    Transfer
	Timestamp   int64
}

type EscrowRefunded struct {
	Id        string
	Transfer  Transfer
	Timestamp int64
}
