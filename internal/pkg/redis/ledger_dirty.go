package redis

import (
	"Volunteer/internal/pkg/consts"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// LedgerPair 待校准的 (owner, counterpart)
type LedgerPair struct {
	OwnerID       uint64
	CounterpartID uint64
}

func (p LedgerPair) String() string {
	return strconv.FormatUint(p.OwnerID, 10) + "_" + strconv.FormatUint(p.CounterpartID, 10)
}

func ParseLedgerPair(s string) (LedgerPair, error) {
	owner, counterpart, ok := strings.Cut(s, "_")
	if !ok {
		return LedgerPair{}, fmt.Errorf("invalid ledger pair %q", s)
	}
	o, err := strconv.ParseUint(owner, 10, 64)
	if err != nil {
		return LedgerPair{}, fmt.Errorf("invalid ledger owner %q: %w", owner, err)
	}
	c, err := strconv.ParseUint(counterpart, 10, 64)
	if err != nil {
		return LedgerPair{}, fmt.Errorf("invalid ledger counterpart %q: %w", counterpart, err)
	}
	return LedgerPair{OwnerID: o, CounterpartID: c}, nil
}

// LedgerDirtySet 账本写失败的记录集合，由定时任务消费
type LedgerDirtySet struct{}

func NewLedgerDirtySet() *LedgerDirtySet {
	return &LedgerDirtySet{}
}

func (s *LedgerDirtySet) Mark(ctx context.Context, ownerID, counterpartID uint64) error {
	return SAdd(ctx, consts.IMLedgerDirtyKey, LedgerPair{OwnerID: ownerID, CounterpartID: counterpartID}.String())
}

// Pop 至多取出 n 个，无法解析的成员直接丢弃
func (s *LedgerDirtySet) Pop(ctx context.Context, n int64) ([]LedgerPair, error) {
	members, err := SPopN(ctx, consts.IMLedgerDirtyKey, n)
	if err != nil {
		return nil, err
	}
	pairs := make([]LedgerPair, 0, len(members))
	for _, m := range members {
		p, err := ParseLedgerPair(m)
		if err != nil {
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}
