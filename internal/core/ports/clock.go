package ports

// Clock supplies the monotonically non-decreasing "now" used for timeout
// evaluation. Unix seconds.
type Clock interface {
	Now() int64
}
