package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUniqueUint64s(t *testing.T) {
	require.Equal(t, []uint64{3, 1, 2}, UniqueUint64s([]uint64{3, 1, 3, 2, 1}))
	require.Empty(t, UniqueUint64s(nil))
}

func TestStrToUint64(t *testing.T) {
	n, err := StrToUint64(" 42 ")
	require.NoError(t, err)
	require.Equal(t, uint64(42), n)

	_, err = StrToUint64("-1")
	require.Error(t, err)
}

func TestValidateDTO(t *testing.T) {
	type req struct {
		EventID uint64 `validate:"required,gt=0"`
		Text    string `validate:"required"`
	}
	require.NoError(t, ValidateDTO(&req{EventID: 1, Text: "hi"}))
	require.ErrorContains(t, ValidateDTO(&req{Text: "hi"}), "EventID")
}
