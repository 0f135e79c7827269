package service

import (
	"Volunteer/internal/pkg/consts"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplayNames(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	names := h.directory.DisplayNames(ctx, []uint64{alice, bob, alice, 99, 0})
	require.Equal(t, "Alice", names[alice])
	require.Equal(t, "Bob", names[bob])
	require.Equal(t, "用户99", names[99])
	require.Equal(t, consts.SystemSenderName, names[0])
	require.Equal(t, 1, h.users.lookupCount())

	// 第二次命中缓存
	require.Equal(t, "Alice", h.directory.DisplayName(ctx, alice))
	require.Equal(t, 1, h.users.lookupCount())
}

func TestUserExists(t *testing.T) {
	h := newHarness()
	ok, err := h.directory.Exists(context.Background(), carol)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = h.directory.Exists(context.Background(), 99)
	require.NoError(t, err)
	require.False(t, ok)
}
