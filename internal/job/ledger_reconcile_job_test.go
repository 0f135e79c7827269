package job

import (
	"Volunteer/internal/pkg/redis"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type memPairs struct {
	mu    sync.Mutex
	pairs []redis.LedgerPair
}

func (m *memPairs) Pop(_ context.Context, n int64) ([]redis.LedgerPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int(n) > len(m.pairs) {
		n = int64(len(m.pairs))
	}
	out := m.pairs[:n]
	m.pairs = append([]redis.LedgerPair(nil), m.pairs[n:]...)
	return out, nil
}

func (m *memPairs) Mark(_ context.Context, owner, counterpart uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs = append(m.pairs, redis.LedgerPair{OwnerID: owner, CounterpartID: counterpart})
	return nil
}

type stubReconciler struct {
	fail map[redis.LedgerPair]bool
	done []redis.LedgerPair
}

func (s *stubReconciler) Reconcile(_ context.Context, owner, counterpart uint64) (uint64, error) {
	p := redis.LedgerPair{OwnerID: owner, CounterpartID: counterpart}
	if s.fail[p] {
		return 0, errors.New("mongo timeout")
	}
	s.done = append(s.done, p)
	return 1, nil
}

func TestRunOnceRequeuesFailures(t *testing.T) {
	bad := redis.LedgerPair{OwnerID: 2, CounterpartID: 1}
	source := &memPairs{pairs: []redis.LedgerPair{{OwnerID: 3, CounterpartID: 1}, bad, {OwnerID: 4, CounterpartID: 1}}}
	rec := &stubReconciler{fail: map[redis.LedgerPair]bool{bad: true}}

	j := NewLedgerReconcileJob(rec, source, 10)
	fixed, failed := j.RunOnce(context.Background())

	require.Equal(t, 2, fixed)
	require.Equal(t, 1, failed)
	require.Len(t, rec.done, 2)
	require.Equal(t, []redis.LedgerPair{bad}, source.pairs)
}

func TestRunOnceRespectsBatch(t *testing.T) {
	source := &memPairs{}
	for i := uint64(1); i <= 5; i++ {
		source.pairs = append(source.pairs, redis.LedgerPair{OwnerID: i, CounterpartID: 9})
	}
	rec := &stubReconciler{}

	j := NewLedgerReconcileJob(rec, source, 2)
	fixed, _ := j.RunOnce(context.Background())
	require.Equal(t, 2, fixed)
	require.Len(t, source.pairs, 3)
}
