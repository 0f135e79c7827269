package job

import (
	"Volunteer/internal/pkg/consts"
	"Volunteer/internal/pkg/logger"
	"Volunteer/internal/pkg/redis"
	"Volunteer/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// DirtyPairSource 待校准账本对
type DirtyPairSource interface {
	Pop(ctx context.Context, n int64) ([]redis.LedgerPair, error)
	Mark(ctx context.Context, ownerID, counterpartID uint64) error
}

// LedgerReconcileJob 消费账本脏集合，把未读数重算为回执的真实值
type LedgerReconcileJob struct {
	reconcileSvc service.LedgerReconcileService
	dirty        DirtyPairSource
	batch        int64
}

func NewLedgerReconcileJob(reconcileSvc service.LedgerReconcileService, dirty DirtyPairSource, batch int) *LedgerReconcileJob {
	if batch <= 0 {
		batch = 200
	}
	return &LedgerReconcileJob{reconcileSvc: reconcileSvc, dirty: dirty, batch: int64(batch)}
}

func (s *LedgerReconcileJob) Run() {
	traceID := "job-ledger-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	// 多实例只允许一个在跑
	ok, err := redis.TryLock(ctx, consts.IMLedgerReconcileLock, traceID, time.Minute, 1)
	if err != nil || !ok {
		return
	}
	defer redis.UnLock(ctx, consts.IMLedgerReconcileLock, traceID)

	fixed, failed := s.RunOnce(ctx)
	if fixed > 0 || failed > 0 {
		log.InfoContext(ctx, "reconcile unread ledger done", "fixed", fixed, "failed", failed)
	}
}

// RunOnce 处理一批，失败的重新放回集合等待下一轮
func (s *LedgerReconcileJob) RunOnce(ctx context.Context) (fixed, failed int) {
	pairs, err := s.dirty.Pop(ctx, s.batch)
	if err != nil {
		log.ErrorContext(ctx, "pop ledger dirty set error", "err", err)
		return 0, 0
	}

	for _, p := range pairs {
		count, err := s.reconcileSvc.Reconcile(ctx, p.OwnerID, p.CounterpartID)
		if err != nil {
			failed++
			log.ErrorContext(ctx, "reconcile ledger error", "owner", p.OwnerID, "counterpart", p.CounterpartID, "err", err)
			if err = s.dirty.Mark(ctx, p.OwnerID, p.CounterpartID); err != nil {
				log.ErrorContext(ctx, "requeue ledger pair error", "pair", p.String(), "err", err)
			}
			continue
		}
		fixed++
		log.DebugContext(ctx, "ledger reconciled", "owner", p.OwnerID, "counterpart", p.CounterpartID, "unread", count)
	}
	return fixed, failed
}
