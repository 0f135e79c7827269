package util

import (
	"strconv"
	"strings"
)

// StrToUint64 canal 数据中的数字均以字符串出现
func StrToUint64(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 10, 64)
}

// UniqueUint64s 去重并保持首次出现的顺序
func UniqueUint64s(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
