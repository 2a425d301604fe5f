package rv32

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRealRegString(t *testing.T) {
	require.Equal(t, "zero", Zero.String())
	require.Equal(t, "a0", A0.String())
	require.Equal(t, "t6", T6.String())
	require.Equal(t, "invalid", RealReg(-1).String())
	require.Equal(t, "invalid", RealReg(32).String())
}

func TestGPPoolExcludesT6AndZero(t *testing.T) {
	for _, r := range GPPool {
		require.NotEqual(t, T6, r, "t6 is reserved as lowering scratch, never in the allocator pool")
		require.NotEqual(t, Zero, r)
	}
	require.Len(t, GPPool, 23)
}

func TestFitsSigned12(t *testing.T) {
	require.True(t, FitsSigned12(2047))
	require.True(t, FitsSigned12(-2048))
	require.False(t, FitsSigned12(2048))
	require.False(t, FitsSigned12(-2049))
}

func TestHiLo20_12RoundTrips(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 4096, -4096, 0x12345, -0x54321, 2147483647, -2147483648} {
		hi, lo := HiLo20_12(v)
		require.True(t, lo >= -2048 && lo <= 2047, "lo12 out of range for %d: %d", v, lo)
		got := hi<<12 + lo
		require.Equal(t, v, got, "HiLo20_12(%d) = (%d, %d) does not reconstruct", v, hi, lo)
	}
}
