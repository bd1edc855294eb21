package domain

import (
	"crypto/sha256"
	"crypto/subtle"
)

// CommitmentSize is the length in bytes of a commitment hash.
const CommitmentSize = sha256.Size

// Commit returns the one-way commitment for the given secret.
func Commit(secret []byte) []byte {
	hash := sha256.Sum256(secret)
	return hash[:]
}

// VerifyCommitment reports whether the revealed secret is the pre-image of
// the stored commitment. A mismatch is not an error, the caller decides how
// to act on it.
func VerifyCommitment(commitment, secret []byte) bool {
	if len(commitment) != CommitmentSize {
		return false
	}
	hash := sha256.Sum256(secret)
	return subtle.ConstantTimeCompare(commitment, hash[:]) == 1
}
