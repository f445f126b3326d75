package mines

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSolveDeducesSingleCornerMine(t *testing.T) {
	mines := make([]bool, 9)
	mines[8] = true // (2,2)

	ctx := &mineCtx{grid: mines, width: 3, height: 3, sx: 0, sy: 0}
	grid := make(Grid, 9)
	for i := range grid {
		grid[i] = Unknown
	}
	wl := newCelltodo(9)
	mask := windowMask(3, 3, -1, -1)
	grid.knownCells(3, wl, ctx, -1, -1, mask, false)

	result := solve(3, 3, 1, grid, ctx, rand.New(rand.NewPCG(1, 1)))
	require.Equal(t, solved, result)
	for i, v := range grid {
		if i == 8 {
			require.Equal(t, Flagged, v)
		} else {
			require.NotEqual(t, Unknown, v)
		}
	}
}

func TestSolveReturnsStalledWhenNoForcedMovesExist(t *testing.T) {
	// A classic locally-ambiguous strip: two mines somewhere among
	// four cells with no opened numbers constraining them at all, and
	// the oracle refuses every perturbation — deduction alone cannot
	// place any of them.
	grid := Grid{Unknown, Unknown, Unknown, Unknown}
	o := fakeOracle{}
	result := solve(4, 1, 2, grid, o, rand.New(rand.NewPCG(1, 1)))
	require.Equal(t, stalled, result)
	for _, v := range grid {
		require.Equal(t, Unknown, v)
	}
}

type fakeOracle struct {
	open func(x, y int) CellState
}

func (f fakeOracle) Open(x, y int) CellState {
	if f.open != nil {
		return f.open(x, y)
	}
	return 0
}

func (fakeOracle) Perturb(*Grid, int, int, word, *rand.Rand) []*change { return nil }
