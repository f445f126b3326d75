package mines

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlignAndCombineSameWindow(t *testing.T) {
	// identical windows: combine(intersect) is the mask itself.
	require.Equal(t, word(0b111_000_111), alignAndCombine(3, 3, 0b111_000_111, 3, 3, 0b111_111_111, false))
}

func TestAlignAndCombineFarApart(t *testing.T) {
	// windows more than two cells apart on an axis never overlap.
	require.Equal(t, word(0), alignAndCombine(0, 0, 0b111_111_111, 5, 0, 0b111_111_111, false))
	require.Equal(t, word(0), alignAndCombine(0, 0, 0b111_111_111, 0, 5, 0b111_111_111, false))
}

func TestAlignAndCombineShiftedIntersect(t *testing.T) {
	// window at (1,0) shifted one cell right of window at (0,0): the
	// two right columns of the first overlap the two left columns of
	// the second.
	got := alignAndCombine(0, 0, 0b111_111_111, 1, 0, 0b111_111_111, false)
	require.Equal(t, word(0b110_110_110), got)
}

func TestAlignAndCombineDiffSubtractsAlignedBits(t *testing.T) {
	// diff=true removes mask2's aligned bits from mask1.
	got := alignAndCombine(0, 0, 0b111_111_111, 0, 0, 0b111_111_111, true)
	require.Equal(t, word(0), got)

	got = alignAndCombine(0, 0, 0b111_111_111, 0, 0, 0b000_000_001, true)
	require.Equal(t, word(0b111_111_110), got)
}
