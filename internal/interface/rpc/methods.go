package jsonrpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/lockstep-network/lockstep/internal/core/application"
	"github.com/lockstep-network/lockstep/internal/core/domain"
)

type Method interface {
	Name() string
	Query(ctx context.Context, svc application.Service, params json.RawMessage) (json.RawMessage, error)
}

func allMethods() []Method {
	return []Method{
		InitiateSwap(), CompleteSwap(), RefundSwap(), GetSwap(), ListSwaps(),
		CreateEscrow(), SetConditionMet(), SetApproved(), ClaimEscrow(),
		RefundEscrow(), GetEscrow(), ListEscrows(),
	}
}

type requestInitiate struct {
	Caller         string            `json:"caller"`
	Participants   []string          `json:"participants"`
	Assets         []domain.AssetRef `json:"assets"`
	CommitmentHash string            `json:"commitmentHash"`
	LockDuration   int64             `json:"lockDuration"`
}

type requestComplete struct {
	Caller string `json:"caller"`
	Id     string `json:"id"`
	Secret string `json:"secret"`
}

type requestAgreement struct {
	Caller string `json:"caller"`
	Id     string `json:"id"`
}

type requestCreateEscrow struct {
	Caller        string               `json:"caller"`
	Depositor     string               `json:"depositor"`
	Beneficiaries []domain.Beneficiary `json:"beneficiaries"`
	Asset         domain.AssetRef      `json:"asset"`
	Condition     string               `json:"condition"`
	LockDuration  int64                `json:"lockDuration"`
}

type requestSetGate struct {
	Caller string `json:"caller"`
	Id     string `json:"id"`
	Value  bool   `json:"value"`
}

type requestClaim struct {
	Caller      string `json:"caller"`
	Id          string `json:"id"`
	Beneficiary string `json:"beneficiary"`
}

type initiateSwap struct{}

func InitiateSwap() Method {
	return &initiateSwap{}
}

func (m *initiateSwap) Name() string {
	return "initiateSwap"
}

func (m *initiateSwap) Query(
	ctx context.Context, svc application.Service, params json.RawMessage,
) (json.RawMessage, error) {
	var req requestInitiate
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}

	commitmentHash, err := hex.DecodeString(req.CommitmentHash)
	if err != nil {
		return nil, fmt.Errorf("invalid commitment hash: %s", err)
	}
	participants := make([]domain.Party, 0, len(req.Participants))
	for _, p := range req.Participants {
		participants = append(participants, domain.Party(p))
	}

	id, err := svc.Initiate(
		ctx, req.Caller, participants, req.Assets, commitmentHash, req.LockDuration,
	)
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]string{"id": id})
}

type completeSwap struct{}

func CompleteSwap() Method {
	return &completeSwap{}
}

func (m *completeSwap) Name() string {
	return "completeSwap"
}

func (m *completeSwap) Query(
	ctx context.Context, svc application.Service, params json.RawMessage,
) (json.RawMessage, error) {
	var req requestComplete
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}

	secret, err := hex.DecodeString(req.Secret)
	if err != nil {
		return nil, fmt.Errorf("invalid secret: %s", err)
	}

	if err := svc.Complete(ctx, req.Caller, req.Id, secret); err != nil {
		return nil, err
	}

	return json.Marshal("swap completed")
}

type refundSwap struct{}

func RefundSwap() Method {
	return &refundSwap{}
}

func (m *refundSwap) Name() string {
	return "refundSwap"
}

func (m *refundSwap) Query(
	ctx context.Context, svc application.Service, params json.RawMessage,
) (json.RawMessage, error) {
	var req requestAgreement
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}

	if err := svc.RefundSwap(ctx, req.Caller, req.Id); err != nil {
		return nil, err
	}

	return json.Marshal("swap refunded")
}

type getSwap struct{}

func GetSwap() Method {
	return &getSwap{}
}

func (m *getSwap) Name() string {
	return "getSwap"
}

func (m *getSwap) Query(
	ctx context.Context, svc application.Service, params json.RawMessage,
) (json.RawMessage, error) {
	var req requestAgreement
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}

	swap, err := svc.GetSwap(ctx, req.Id)
	if err != nil {
		return nil, err
	}

	return json.Marshal(newSwapView(*swap))
}

type listSwaps struct{}

func ListSwaps() Method {
	return &listSwaps{}
}

func (m *listSwaps) Name() string {
	return "listSwaps"
}

func (m *listSwaps) Query(
	ctx context.Context, svc application.Service, params json.RawMessage,
) (json.RawMessage, error) {
	swaps, err := svc.ListSwaps(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]swapView, 0, len(swaps))
	for _, swap := range swaps {
		views = append(views, newSwapView(swap))
	}
	return json.Marshal(views)
}

type createEscrow struct{}

func CreateEscrow() Method {
	return &createEscrow{}
}

func (m *createEscrow) Name() string {
	return "createEscrow"
}

func (m *createEscrow) Query(
	ctx context.Context, svc application.Service, params json.RawMessage,
) (json.RawMessage, error) {
	var req requestCreateEscrow
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}

	id, err := svc.CreateEscrow(
		ctx, req.Caller, domain.Party(req.Depositor), req.Beneficiaries,
		req.Asset, req.Condition, req.LockDuration,
	)
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]string{"id": id})
}

type setConditionMet struct{}

func SetConditionMet() Method {
	return &setConditionMet{}
}

func (m *setConditionMet) Name() string {
	return "setConditionMet"
}

func (m *setConditionMet) Query(
	ctx context.Context, svc application.Service, params json.RawMessage,
) (json.RawMessage, error) {
	var req requestSetGate
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}

	if err := svc.SetConditionMet(ctx, req.Caller, req.Id, req.Value); err != nil {
		return nil, err
	}

	return json.Marshal("gate updated")
}

type setApproved struct{}

func SetApproved() Method {
	return &setApproved{}
}

func (m *setApproved) Name() string {
	return "setApproved"
}

func (m *setApproved) Query(
	ctx context.Context, svc application.Service, params json.RawMessage,
) (json.RawMessage, error) {
	var req requestSetGate
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}

	if err := svc.SetApproved(ctx, req.Caller, req.Id, req.Value); err != nil {
		return nil, err
	}

	return json.Marshal("gate updated")
}

type claimEscrow struct{}

func ClaimEscrow() Method {
	return &claimEscrow{}
}

func (m *claimEscrow) Name() string {
	return "claimEscrow"
}

func (m *claimEscrow) Query(
	ctx context.Context, svc application.Service, params json.RawMessage,
) (json.RawMessage, error) {
	var req requestClaim
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}

	if err := svc.Claim(ctx, req.Caller, req.Id, domain.Party(req.Beneficiary)); err != nil {
		return nil, err
	}

	return json.Marshal("allocation claimed")
}

type refundEscrow struct{}

func RefundEscrow() Method {
	return &refundEscrow{}
}

func (m *refundEscrow) Name() string {
	return "refundEscrow"
}

func (m *refundEscrow) Query(
	ctx context.Context, svc application.Service, params json.RawMessage,
) (json.RawMessage, error) {
	var req requestAgreement
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}

	if err := svc.RefundEscrow(ctx, req.Caller, req.Id); err != nil {
		return nil, err
	}

	return json.Marshal("escrow refunded")
}

type getEscrow struct{}

func GetEscrow() Method {
	return &getEscrow{}
}

func (m *getEscrow) Name() string {
	return "getEscrow"
}

func (m *getEscrow) Query(
	ctx context.Context, svc application.Service, params json.RawMessage,
) (json.RawMessage, error) {
	var req requestAgreement
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, err
	}

	escrow, err := svc.GetEscrow(ctx, req.Id)
	if err != nil {
		return nil, err
	}

	return json.Marshal(newEscrowView(*escrow))
}

type listEscrows struct{}

func ListEscrows() Method {
	return &listEscrows{}
}

func (m *listEscrows) Name() string {
	return "listEscrows"
}

func (m *listEscrows) Query(
	ctx context.Context, svc application.Service, params json.RawMessage,
) (json.RawMessage, error) {
	escrows, err := svc.ListEscrows(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]escrowView, 0, len(escrows))
	for _, escrow := range escrows {
		views = append(views, newEscrowView(escrow))
	}
	return json.Marshal(views)
}
