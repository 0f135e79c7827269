package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	sentinel, code, ok := ErrorCode(ErrNotEventMember)
	require.True(t, ok)
	require.Equal(t, ErrNotEventMember, sentinel)
	require.Equal(t, Forbidden, code)

	sentinel, code, ok = ErrorCode(fmt.Errorf("recipient 4 is not a member: %w", ErrParamInvalid))
	require.True(t, ok)
	require.Equal(t, ErrParamInvalid, sentinel)
	require.Equal(t, BadRequest, code)

	_, code, _ = ErrorCode(ErrConcurrentUpdate)
	require.Equal(t, Conflict, code)

	_, _, ok = ErrorCode(errors.New("mongo: connection reset"))
	require.False(t, ok)
}
