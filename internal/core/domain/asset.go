package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/ripemd160"
)

// Party is an opaque identity on the external ledger. The engine never
// interprets it beyond equality checks.
type Party string

func (p Party) Validate() error {
	if len(p) <= 0 {
		return Errorf(ValidationError, "missing party identity")
	}
	return nil
}

const (
	UndefinedAsset AssetKind = iota
	FungibleAsset
	NonFungibleAsset
	VaultShareAsset
)

type AssetKind int

func (k AssetKind) String() string {
	switch k {
	case FungibleAsset:
		return "FUNGIBLE"
	case NonFungibleAsset:
		return "NON_FUNGIBLE"
	case VaultShareAsset:
		return "VAULT_SHARE"
	default:
		return "UNDEFINED"
	}
}

// AssetRef references value held by the external ledger. For fungible and
// vault-share assets Amount is a quantity, for non-fungible assets it is the
// item identifier. The engine only forwards it to the ledger.
type AssetRef struct {
	Ledger string
	Kind   AssetKind
	Unit   string
	Amount uint64
}

func (a AssetRef) Validate() error {
	if len(a.Ledger) <= 0 {
		return Errorf(ValidationError, "missing ledger identifier")
	}
	if a.Kind == UndefinedAsset {
		return Errorf(ValidationError, "missing asset kind")
	}
	if a.Amount <= 0 {
		return Errorf(ValidationError, "amount must be greater than zero")
	}
	return nil
}

func (a AssetRef) WithAmount(amount uint64) AssetRef {
	a.Amount = amount
	return a
}

// Beneficiary is a party entitled to a fixed share of an escrowed amount.
type Beneficiary struct {
	Party      Party
	Allocation uint64
}

// Transfer is a single custody movement to be applied by the ledger.
type Transfer struct {
	From  string
	To    string
	Asset AssetRef
}

func (t Transfer) String() string {
	return fmt.Sprintf("%s -> %s (%d %s on %s)", t.From, t.To, t.Asset.Amount, t.Asset.Unit, t.Asset.Ledger)
}

// CustodyAccount derives the engine-held account for an agreement from its
// id and a per-agreement salt.
func CustodyAccount(id string, salt []byte) string {
	calcHash := func(buf []byte, hasher hash.Hash) []byte {
		_, _ = hasher.Write(buf)
		return hasher.Sum(nil)
	}

	hash160 := func(buf []byte) []byte {
		return calcHash(calcHash(buf, sha256.New()), ripemd160.New())
	}

	buf := append([]byte(id), salt...)
	return hex.EncodeToString(hash160(buf))
}
