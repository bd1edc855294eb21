package domain

type SwapInitiated struct {
	Id             string
	Participants   []Party
	Assets         []AssetRef
	CommitmentHash []byte
	Timestamp      int64
	LockDuration   int64
}

type SwapCompleted struct {
	Id        string
	Secret    []byte
	Transfers []Transfer
	Timestamp int64
}

type SwapRefunded struct {
	Id        string
	Transfers []Transfer
	Timestamp int64
}
