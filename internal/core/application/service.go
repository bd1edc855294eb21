package application

import (
	"context"
	"fmt"

	"github.com/lockstep-network/lockstep/internal/core/domain"
	"github.com/lockstep-network/lockstep/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// Service is the orchestration API. Every state-mutating operation asks the
// authorizer first, holds the per-agreement guard for its full duration and
// moves custody through the ledger as a single all-or-nothing batch.
type Service interface {
	Start() error
	Stop()

	Initiate(
		ctx context.Context, caller string, participants []domain.Party,
		assets []domain.AssetRef, commitmentHash []byte, lockDuration int64,
	) (string, error)
	Complete(ctx context.Context, caller, id string, secret []byte) error
	RefundSwap(ctx context.Context, caller, id string) error

	CreateEscrow(
		ctx context.Context, caller string, depositor domain.Party,
		beneficiaries []domain.Beneficiary, asset domain.AssetRef,
		condition string, lockDuration int64,
	) (string, error)
	SetConditionMet(ctx context.Context, caller, id string, value bool) error
	SetApproved(ctx context.Context, caller, id string, value bool) error
	Claim(ctx context.Context, caller, id string, beneficiary domain.Party) error
	RefundEscrow(ctx context.Context, caller, id string) error

	GetSwap(ctx context.Context, id string) (*domain.Swap, error)
	GetEscrow(ctx context.Context, id string) (*domain.Escrow, error)
	ListSwaps(ctx context.Context) ([]domain.Swap, error)
	ListEscrows(ctx context.Context) ([]domain.Escrow, error)
}

type service struct {
	clock       ports.Clock
	ledger      ports.AssetLedger
	repoManager ports.RepoManager
	scheduler   ports.SchedulerService
	authorizer  ports.Authorizer
	publisher   ports.EventPublisher

	guard *guard
}

func NewService(
	clock ports.Clock, ledger ports.AssetLedger, repoManager ports.RepoManager,
	scheduler ports.SchedulerService, authorizer ports.Authorizer,
	publisher ports.EventPublisher,
) (Service, error) {
	if clock == nil || ledger == nil || repoManager == nil ||
		scheduler == nil || authorizer == nil || publisher == nil {
		return nil, fmt.Errorf("missing service dependency")
	}

	return &service{
		clock:       clock,
		ledger:      ledger,
		repoManager: repoManager,
		scheduler:   scheduler,
		authorizer:  authorizer,
		publisher:   publisher,
		guard:       newGuard(),
	}, nil
}

func (s *service) Start() error {
	s.scheduler.Start()
	return s.restoreTimelockWatches()
}

func (s *service) Stop() {
	s.scheduler.Stop()
	s.repoManager.Close()
}

func (s *service) Initiate(
	ctx context.Context, caller string, participants []domain.Party,
	assets []domain.AssetRef, commitmentHash []byte, lockDuration int64,
) (string, error) {
	if !s.authorizer.Permits(ctx, caller, ports.ActionInitiate, "") {
		return "", domain.ErrUnauthorized
	}

	swap, err := domain.NewSwap(participants, assets, commitmentHash, lockDuration, s.clock.Now())
	if err != nil {
		return "", err
	}

	if existing, _ := s.repoManager.Swaps().GetSwapWithId(ctx, swap.Id); existing != nil {
		return "", domain.ErrDuplicateAgreement
	}

	if err := s.ledger.TransferBatch(ctx, swap.DepositTransfers()); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrTransferFailed, err)
	}

	if err := s.repoManager.Swaps().AddOrUpdateSwap(ctx, *swap); err != nil {
		// return the deposits, nothing must stay in custody for an
		// agreement that was never recorded
		if rbErr := s.ledger.TransferBatch(ctx, swap.RefundTransfers()); rbErr != nil {
			log.WithError(rbErr).WithField("swap", swap.Id).
				Error("failed to roll back deposits after store failure")
		}
		return "", fmt.Errorf("failed to store swap: %s", err)
	}

	s.publisher.Publish(swap.Events()...)
	s.watchTimelock("swap", swap.Id, swap.ExpiresAt())

	log.WithField("swap", swap.Id).WithField("participants", len(participants)).
		Info("swap initiated")

	return swap.Id, nil
}

func (s *service) Complete(ctx context.Context, caller, id string, secret []byte) error {
	if !s.authorizer.Permits(ctx, caller, ports.ActionComplete, id) {
		return domain.ErrUnauthorized
	}
	if !s.guard.tryAcquire(id) {
		return domain.ErrAgreementBusy
	}
	defer s.guard.release(id)

	swap, err := s.repoManager.Swaps().GetSwapWithId(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrAgreementNotFound, id)
	}

	events, err := swap.Complete(secret, s.clock.Now())
	if err != nil {
		return err
	}

	settlement := events[0].(domain.SwapCompleted)
	if err := s.ledger.TransferBatch(ctx, settlement.Transfers); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrTransferFailed, err)
	}

	if err := s.repoManager.Swaps().AddOrUpdateSwap(ctx, *swap); err != nil {
		// undo the settlement, custody must match the stored state
		if rbErr := s.ledger.TransferBatch(ctx, reversed(settlement.Transfers)); rbErr != nil {
			log.WithError(rbErr).WithField("swap", id).
				Error("failed to roll back settlement after store failure")
		}
		return fmt.Errorf("failed to store swap: %s", err)
	}

	s.publisher.Publish(events...)

	log.WithField("swap", id).Info("swap completed")

	return nil
}

func (s *service) RefundSwap(ctx context.Context, caller, id string) error {
	if !s.authorizer.Permits(ctx, caller, ports.ActionRefund, id) {
		return domain.ErrUnauthorized
	}
	if !s.guard.tryAcquire(id) {
		return domain.ErrAgreementBusy
	}
	defer s.guard.release(id)

	swap, err := s.repoManager.Swaps().GetSwapWithId(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrAgreementNotFound, id)
	}

	events, err := swap.Refund(s.clock.Now())
	if err != nil {
		return err
	}

	refund := events[0].(domain.SwapRefunded)
	if err := s.ledger.TransferBatch(ctx, refund.Transfers); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrTransferFailed, err)
	}

	if err := s.repoManager.Swaps().AddOrUpdateSwap(ctx, *swap); err != nil {
		if rbErr := s.ledger.TransferBatch(ctx, reversed(refund.Transfers)); rbErr != nil {
			log.WithError(rbErr).WithField("swap", id).
				Error("failed to roll back refund after store failure")
		}
		return fmt.Errorf("failed to store swap: %s", err)
	}

	s.publisher.Publish(events...)

	log.WithField("swap", id).Info("swap refunded")

	return nil
}

func (s *service) CreateEscrow(
	ctx context.Context, caller string, depositor domain.Party,
	beneficiaries []domain.Beneficiary, asset domain.AssetRef,
	condition string, lockDuration int64,
) (string, error) {
	if !s.authorizer.Permits(ctx, caller, ports.ActionCreateEscrow, "") {
		return "", domain.ErrUnauthorized
	}

	escrow, err := domain.NewEscrow(depositor, beneficiaries, asset, condition, lockDuration, s.clock.Now())
	if err != nil {
		return "", err
	}

	if existing, _ := s.repoManager.Escrows().GetEscrowWithId(ctx, escrow.Id); existing != nil {
		return "", domain.ErrDuplicateAgreement
	}

	if err := s.ledger.Transfer(ctx, escrow.DepositTransfer()); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrTransferFailed, err)
	}

	if err := s.repoManager.Escrows().AddOrUpdateEscrow(ctx, *escrow); err != nil {
		if rbErr := s.ledger.TransferBatch(ctx, escrow.RefundTransfers()); rbErr != nil {
			log.WithError(rbErr).WithField("escrow", escrow.Id).
				Error("failed to roll back deposit after store failure")
		}
		return "", fmt.Errorf("failed to store escrow: %s", err)
	}

	s.publisher.Publish(escrow.Events()...)
	s.watchTimelock("escrow", escrow.Id, escrow.ExpiresAt())

	log.WithField("escrow", escrow.Id).WithField("beneficiaries", len(beneficiaries)).
		Info("escrow created")

	return escrow.Id, nil
}

func (s *service) SetConditionMet(ctx context.Context, caller, id string, value bool) error {
	return s.updateGate(ctx, caller, id, value, domain.GateConditionMet)
}

func (s *service) SetApproved(ctx context.Context, caller, id string, value bool) error {
	return s.updateGate(ctx, caller, id, value, domain.GateApproved)
}

func (s *service) updateGate(ctx context.Context, caller, id string, value bool, gate string) error {
	if !s.authorizer.Permits(ctx, caller, ports.ActionUpdateGate, id) {
		return domain.ErrUnauthorized
	}
	if !s.guard.tryAcquire(id) {
		return domain.ErrAgreementBusy
	}
	defer s.guard.release(id)

	escrow, err := s.repoManager.Escrows().GetEscrowWithId(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrAgreementNotFound, id)
	}

	var events []domain.Event
	switch gate {
	case domain.GateConditionMet:
		events, err = escrow.SetConditionMet(value, s.clock.Now())
	case domain.GateApproved:
		events, err = escrow.SetApproved(value, s.clock.Now())
	default:
		return domain.Errorf(domain.ValidationError, "unknown gate %s", gate)
	}
	if err != nil {
		return err
	}

	if err := s.repoManager.Escrows().AddOrUpdateEscrow(ctx, *escrow); err != nil {
		return fmt.Errorf("failed to store escrow: %s", err)
	}

	s.publisher.Publish(events...)

	if escrow.Status == domain.EscrowStatusReleased {
		log.WithField("escrow", id).Info("escrow released")
	}

	return nil
}

func (s *service) Claim(ctx context.Context, caller, id string, beneficiary domain.Party) error {
	if !s.authorizer.Permits(ctx, caller, ports.ActionClaim, id) {
		return domain.ErrUnauthorized
	}
	if !s.guard.tryAcquire(id) {
		return domain.ErrAgreementBusy
	}
	defer s.guard.release(id)

	escrow, err := s.repoManager.Escrows().GetEscrowWithId(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrAgreementNotFound, id)
	}

	events, err := escrow.Claim(beneficiary, s.clock.Now())
	if err != nil {
		return err
	}

	claim := events[0].(domain.EscrowClaimed)
	if err := s.ledger.Transfer(ctx, claim.Transfer); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrTransferFailed, err)
	}

	if err := s.repoManager.Escrows().AddOrUpdateEscrow(ctx, *escrow); err != nil {
		if rbErr := s.ledger.Transfer(ctx, reverse(claim.Transfer)); rbErr != nil {
			log.WithError(rbErr).WithField("escrow", id).
				Error("failed to roll back claim after store failure")
		}
		return fmt.Errorf("failed to store escrow: %s", err)
	}

	s.publisher.Publish(events...)

	log.WithField("escrow", id).WithField("beneficiary", beneficiary).
		Info("allocation claimed")

	return nil
}

func (s *service) RefundEscrow(ctx context.Context, caller, id string) error {
	if !s.authorizer.Permits(ctx, caller, ports.ActionRefund, id) {
		return domain.ErrUnauthorized
	}
	if !s.guard.tryAcquire(id) {
		return domain.ErrAgreementBusy
	}
	defer s.guard.release(id)

	escrow, err := s.repoManager.Escrows().GetEscrowWithId(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrAgreementNotFound, id)
	}

	events, err := escrow.Refund(domain.Party(caller), s.clock.Now())
	if err != nil {
		return err
	}

	refund := events[0].(domain.EscrowRefunded)
	if err := s.ledger.Transfer(ctx, refund.Transfer); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrTransferFailed, err)
	}

	if err := s.repoManager.Escrows().AddOrUpdateEscrow(ctx, *escrow); err != nil {
		if rbErr := s.ledger.Transfer(ctx, reverse(refund.Transfer)); rbErr != nil {
			log.WithError(rbErr).WithField("escrow", id).
				Error("failed to roll back refund after store failure")
		}
		return fmt.Errorf("failed to store escrow: %s", err)
	}

	s.publisher.Publish(events...)

	log.WithField("escrow", id).Info("escrow refunded")

	return nil
}

func (s *service) GetSwap(ctx context.Context, id string) (*domain.Swap, error) {
	swap, err := s.repoManager.Swaps().GetSwapWithId(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrAgreementNotFound, id)
	}
	return swap, nil
}

func (s *service) GetEscrow(ctx context.Context, id string) (*domain.Escrow, error) {
	escrow, err := s.repoManager.Escrows().GetEscrowWithId(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrAgreementNotFound, id)
	}
	return escrow, nil
}

func (s *service) ListSwaps(ctx context.Context) ([]domain.Swap, error) {
	return s.repoManager.Swaps().GetAllSwaps(ctx)
}

func (s *service) ListEscrows(ctx context.Context) ([]domain.Escrow, error) {
	return s.repoManager.Escrows().GetAllEscrows(ctx)
}

func reverse(t domain.Transfer) domain.Transfer {
	return domain.Transfer{From: t.To, To: t.From, Asset: t.Asset}
}

func reversed(transfers []domain.Transfer) []domain.Transfer {
	out := make([]domain.Transfer, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, reverse(t))
	}
	return out
}

// watchTimelock schedules a one-shot announcement for the moment an
// agreement becomes refundable. Best effort, the refund path itself never
// depends on it.
func (s *service) watchTimelock(kind, id string, at int64) {
	if at <= 0 {
		return
	}

	task := func() {
		stillOpen := false
		switch kind {
		case "swap":
			swap, err := s.repoManager.Swaps().GetSwapWithId(context.Background(), id)
			stillOpen = err == nil && !swap.IsSettled()
		case "escrow":
			escrow, err := s.repoManager.Escrows().GetEscrowWithId(context.Background(), id)
			stillOpen = err == nil && !escrow.IsSettled()
		}
		if !stillOpen {
			return
		}
		s.publisher.Publish(domain.TimelockExpired{Id: id, Agreement: kind, Timestamp: at})
	}

	if err := s.scheduler.ScheduleTaskOnce(at, task); err != nil {
		log.WithError(err).WithField(kind, id).Warn("failed to schedule timelock watch")
	}
}

func (s *service) restoreTimelockWatches() error {
	ctx := context.Background()

	restored := 0

	swaps, err := s.repoManager.Swaps().GetSwapsWithStatus(ctx, domain.SwapStatusInitiated)
	if err != nil {
		return fmt.Errorf("failed to restore swap timelock watches: %s", err)
	}
	for _, swap := range swaps {
		if s.scheduler.AfterNow(swap.ExpiresAt()) {
			s.watchTimelock("swap", swap.Id, swap.ExpiresAt())
			restored++
		}
	}

	escrows, err := s.repoManager.Escrows().GetEscrowsWithStatus(ctx, domain.EscrowStatusPending)
	if err != nil {
		return fmt.Errorf("failed to restore escrow timelock watches: %s", err)
	}
	for _, escrow := range escrows {
		if escrow.ExpiresAt() > 0 && s.scheduler.AfterNow(escrow.ExpiresAt()) {
			s.watchTimelock("escrow", escrow.Id, escrow.ExpiresAt())
			restored++
		}
	}

	if restored > 0 {
		log.WithField("count", restored).Info("restored timelock watches")
	}

	return nil
}
