package service

import (
	"Volunteer/internal/repository"
	"context"
	"fmt"
	"time"
)

// LedgerReconcileService 以消息回执为准重算账本
type LedgerReconcileService interface {
	Reconcile(ctx context.Context, ownerID, counterpartID uint64) (uint64, error)
}

type ledgerReconcileServiceImpl struct {
	store   MessageStore
	ledger  repository.UnreadLedgerRepo
	timeout time.Duration
}

func NewLedgerReconcileService(store MessageStore, ledger repository.UnreadLedgerRepo, storeTimeout time.Duration) LedgerReconcileService {
	return &ledgerReconcileServiceImpl{store: store, ledger: ledger, timeout: storeTimeout}
}

func (s *ledgerReconcileServiceImpl) Reconcile(ctx context.Context, ownerID, counterpartID uint64) (uint64, error) {
	count, err := s.store.CountUnreadFrom(ctx, counterpartID, ownerID)
	if err != nil {
		return 0, err
	}

	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if count == 0 {
		_, err = s.ledger.Reset(storeCtx, ownerID, counterpartID)
	} else {
		err = s.ledger.Set(storeCtx, ownerID, counterpartID, count)
	}
	if err != nil {
		return 0, fmt.Errorf("reconcile ledger: %w", err)
	}
	return count, nil
}
