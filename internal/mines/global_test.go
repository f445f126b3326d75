package mines

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGlobalCountClosureUnconditionalZeroRemaining(t *testing.T) {
	// Every mine is already flagged; the degenerate empty-union case
	// must fire even though the store holds no constraints at all.
	grid := Grid{Flagged, Unknown, Unknown}
	cellWork := newCelltodo(3)
	store := newConstraintStore()
	o := fakeOracle{open: func(x, y int) CellState { return 0 }}

	progress, ok := globalCountClosure(3, 1, 1, grid, cellWork, o, store)
	require.True(t, ok)
	require.ElementsMatch(t, []int{1, 2}, progress)
	require.Equal(t, CellState(0), grid[1])
	require.Equal(t, CellState(0), grid[2])
}

func TestGlobalCountClosureUnconditionalAllMinesLeft(t *testing.T) {
	// Every cell still unknown must be a mine: minesLeft equals the
	// number of unknown cells, again with an empty store.
	grid := Grid{0, Unknown, Unknown}
	cellWork := newCelltodo(3)
	store := newConstraintStore()
	o := fakeOracle{}

	progress, ok := globalCountClosure(3, 1, 2, grid, cellWork, o, store)
	require.True(t, ok)
	require.ElementsMatch(t, []int{1, 2}, progress)
	require.Equal(t, Flagged, grid[1])
	require.Equal(t, Flagged, grid[2])
}

func TestGlobalCountClosureChecksEveryUnionNotOnlyTheLargest(t *testing.T) {
	// Two disjoint windows, A = {0,1} with 1 mine and B = {3,4} with 1
	// mine, over a 6-cell strip with exactly 1 mine left in total. A
	// alone already closes the board (everything outside A is safe),
	// but A union B together (2 mines against 1 remaining) does not
	// satisfy the closure condition. The search must accept A, the first
	// in store order, on its own rather than only ever checking the full
	// union.
	store := newConstraintStore()
	store.Add(0, 0, 3, 1) // cells 0,1
	store.Add(3, 0, 3, 1) // cells 3,4

	grid := make(Grid, 6)
	for i := range grid {
		grid[i] = Unknown
	}
	cellWork := newCelltodo(6)
	o := fakeOracle{open: func(x, y int) CellState { return 0 }}

	progress, ok := globalCountClosure(6, 1, 1, grid, cellWork, o, store)
	require.True(t, ok)
	require.ElementsMatch(t, []int{2, 3, 4, 5}, progress)
	require.Equal(t, Unknown, grid[0])
	require.Equal(t, Unknown, grid[1])
	require.Equal(t, 1, store.Count(), "the union actually used should be removed from the store, leaving the other behind")
}
