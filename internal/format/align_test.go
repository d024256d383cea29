package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlign4(t *testing.T) {
	cases := map[int]int{0: 0, 1: 4, 3: 4, 4: 4, 5: 8, 127: 128, 128: 128, 129: 132}
	for in, want := range cases {
		require.Equal(t, want, Align4(in), "Align4(%d)", in)
		require.True(t, IsAligned(Align4(in)))
	}
	require.False(t, IsAligned(6))
}
