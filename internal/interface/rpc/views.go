package jsonrpc

import (
	"encoding/hex"

	"github.com/lockstep-network/lockstep/internal/core/domain"
)

type swapView struct {
	Id             string            `json:"id"`
	Participants   []domain.Party    `json:"participants"`
	Assets         []domain.AssetRef `json:"assets"`
	CommitmentHash string            `json:"commitmentHash"`
	RevealedSecret string            `json:"revealedSecret,omitempty"`
	CreatedAt      int64             `json:"createdAt"`
	ExpiresAt      int64             `json:"expiresAt"`
	Status         string            `json:"status"`
	CustodyAccount string            `json:"custodyAccount"`
}

func newSwapView(swap domain.Swap) swapView {
	view := swapView{
		Id:             swap.Id,
		Participants:   swap.Participants,
		Assets:         swap.Assets,
		CommitmentHash: hex.EncodeToString(swap.CommitmentHash),
		CreatedAt:      swap.CreatedAt,
		ExpiresAt:      swap.ExpiresAt(),
		Status:         swap.Status.String(),
		CustodyAccount: swap.CustodyAccount(),
	}
	if len(swap.RevealedSecret) > 0 {
		view.RevealedSecret = hex.EncodeToString(swap.RevealedSecret)
	}
	return view
}

type escrowView struct {
	Id             string                `json:"id"`
	Depositor      domain.Party          `json:"depositor"`
	Beneficiaries  []domain.Beneficiary  `json:"beneficiaries"`
	Asset          domain.AssetRef       `json:"asset"`
	Condition      string                `json:"condition"`
	ConditionMet   bool                  `json:"conditionMet"`
	Approved       bool                  `json:"approved"`
	Claimed        map[domain.Party]bool `json:"claimed,omitempty"`
	CreatedAt      int64                 `json:"createdAt"`
	ExpiresAt      int64                 `json:"expiresAt,omitempty"`
	Status         string                `json:"status"`
	CustodyAccount string                `json:"custodyAccount"`
}

func newEscrowView(escrow domain.Escrow) escrowView {
	return escrowView{
		Id:             escrow.Id,
		Depositor:      escrow.Depositor,
		Beneficiaries:  escrow.Beneficiaries,
		Asset:          escrow.Asset,
		Condition:      escrow.Condition,
		ConditionMet:   escrow.ConditionMet,
		Approved:       escrow.Approved,
		Claimed:        escrow.Claimed,
		CreatedAt:      escrow.CreatedAt,
		ExpiresAt:      escrow.ExpiresAt(),
		Status:         escrow.Status.String(),
		CustodyAccount: escrow.CustodyAccount(),
	}
}
