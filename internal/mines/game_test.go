package mines

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGameOpensStartingWindowSafely(t *testing.T) {
	g, err := NewGame(GameParams{Width: 9, Height: 9, Mines: 10}, 0, 0, Seed{42, 1})
	require.NoError(t, err)
	require.Equal(t, InProgress, g.Status)
	require.False(t, g.Mines[0])
	require.NotEqual(t, Unknown, g.Visible[0])
}

func TestOpenCellOpensAMine(t *testing.T) {
	g, err := NewGame(GameParams{Width: 9, Height: 9, Mines: 10}, 0, 0, Seed{42, 1})
	require.NoError(t, err)

	mine := -1
	for i, m := range g.Mines {
		if m {
			mine = i
			break
		}
	}
	require.NotEqual(t, -1, mine, "layout has no mines")

	err = g.OpenCell(context.Background(), mine%g.Params.Width, mine/g.Params.Width)
	require.NoError(t, err)
	require.Equal(t, Lost, g.Status)
	require.Equal(t, ExplodedMine, g.Visible[mine])
}

func TestFlagCellTogglesOnlyUnopenedCells(t *testing.T) {
	g, err := NewGame(GameParams{Width: 9, Height: 9, Mines: 10}, 4, 4, Seed{1, 2})
	require.NoError(t, err)

	var unopened int = -1
	for i, v := range g.Visible {
		if v == Unknown {
			unopened = i
			break
		}
	}
	require.NotEqual(t, -1, unopened)
	x, y := unopened%g.Params.Width, unopened/g.Params.Width

	require.NoError(t, g.FlagCell(context.Background(), x, y))
	require.True(t, g.Flags[unopened])
	require.NoError(t, g.FlagCell(context.Background(), x, y))
	require.False(t, g.Flags[unopened])

	require.NoError(t, g.FlagCell(context.Background(), 4, 4)) // already open, no-op
	require.False(t, g.Flags[4*g.Params.Width+4])
}

func TestForfeitRevealsBoardAsLoss(t *testing.T) {
	g, err := NewGame(GameParams{Width: 9, Height: 9, Mines: 10}, 0, 0, Seed{5, 5})
	require.NoError(t, err)

	g.Forfeit(context.Background())
	require.Equal(t, Lost, g.Status)

	for i, v := range g.Visible {
		if v == Unknown {
			t.Fatalf("cell %d still unknown after forfeit", i)
		}
	}
}

func TestWinRevealsRemainingMinesAsFlagged(t *testing.T) {
	g, err := NewGame(GameParams{Width: 9, Height: 9, Mines: 10}, 0, 0, Seed{42, 1})
	require.NoError(t, err)

	n := &countingNotifier{}
	g.SetNotifier(n)

	for i, mine := range g.Mines {
		if mine || g.Visible[i] != Unknown {
			continue
		}
		require.NoError(t, g.OpenCell(context.Background(), i%g.Params.Width, i/g.Params.Width))
		if g.Status != InProgress {
			break
		}
	}

	require.Equal(t, Won, g.Status)
	require.Equal(t, 1, n.over)

	for i, mine := range g.Mines {
		if mine {
			require.True(t, g.Flags[i], "mine at %d was not auto-flagged on win", i)
			require.Equal(t, CorrectlyFlagged, g.Visible[i])
		} else {
			require.NotEqual(t, Unknown, g.Visible[i])
		}
	}
}

func TestChordCellOpensSatisfiedNeighbours(t *testing.T) {
	// 3x3 board, mines at (2,1) and (2,2):
	//   0 1 ?
	//   0 2 *
	//   0 2 *
	// Opening (0,0) floods out to reveal (1,1) as "2" with both its
	// mine neighbours still covered. Flagging both, then chording
	// (1,1), must open the one remaining unopened, unflagged
	// neighbour — (2,0) — in a single call, winning the game.
	g := &GameState{
		Params:   GameParams{Width: 3, Height: 3, Mines: 2},
		Visible:  make(Grid, 9),
		Flags:    make([]bool, 9),
		Mines:    []bool{false, false, false, false, false, true, false, false, true},
		notifier: noopNotifier{},
	}
	for i := range g.Visible {
		g.Visible[i] = Unknown
	}

	require.NoError(t, g.OpenCell(context.Background(), 0, 0))
	require.Equal(t, InProgress, g.Status)
	require.Equal(t, CellState(2), g.Visible[1*3+1])
	require.Equal(t, Unknown, g.Visible[2])

	require.NoError(t, g.FlagCell(context.Background(), 2, 1))
	require.NoError(t, g.FlagCell(context.Background(), 2, 2))

	require.NoError(t, g.ChordCell(context.Background(), 1, 1))
	require.Equal(t, Won, g.Status)
	require.Equal(t, CellState(1), g.Visible[2])
}

func TestChordCellNoopWhenFlaggedCountMismatches(t *testing.T) {
	g := &GameState{
		Params:   GameParams{Width: 3, Height: 3, Mines: 2},
		Visible:  make(Grid, 9),
		Flags:    make([]bool, 9),
		Mines:    []bool{false, false, false, false, false, true, false, false, true},
		notifier: noopNotifier{},
	}
	for i := range g.Visible {
		g.Visible[i] = Unknown
	}

	require.NoError(t, g.OpenCell(context.Background(), 0, 0))
	require.NoError(t, g.FlagCell(context.Background(), 2, 1)) // only one of two mines flagged

	require.NoError(t, g.ChordCell(context.Background(), 1, 1))
	require.Equal(t, InProgress, g.Status)
	require.Equal(t, Unknown, g.Visible[2])
}

func TestGameOverOperationsReturnErrGameOver(t *testing.T) {
	g, err := NewGame(GameParams{Width: 9, Height: 9, Mines: 10}, 0, 0, Seed{5, 5})
	require.NoError(t, err)
	g.Forfeit(context.Background())

	require.ErrorIs(t, g.OpenCell(context.Background(), 1, 1), ErrGameOver)
	require.ErrorIs(t, g.FlagCell(context.Background(), 1, 1), ErrGameOver)
	require.ErrorIs(t, g.ChordCell(context.Background(), 1, 1), ErrGameOver)
}

func TestGobRoundTrip(t *testing.T) {
	g, err := NewGame(GameParams{Width: 9, Height: 9, Mines: 10}, 4, 4, Seed{9, 9})
	require.NoError(t, err)
	require.NoError(t, g.FlagCell(context.Background(), 0, 0))

	data, err := g.GobEncode()
	require.NoError(t, err)

	var restored GameState
	require.NoError(t, restored.GobDecode(data))

	require.Equal(t, g.Params, restored.Params)
	require.Equal(t, g.Seed, restored.Seed)
	require.Equal(t, g.Mines, restored.Mines)
	require.Equal(t, g.Visible, restored.Visible)
	require.Equal(t, g.Flags, restored.Flags)
	require.Equal(t, g.Status, restored.Status)
}

type countingNotifier struct {
	changed int
	over    int
}

func (n *countingNotifier) CellsChanged(context.Context, []int) { n.changed++ }
func (n *countingNotifier) GameOver(context.Context, bool)      { n.over++ }

func TestNotifierReceivesGameOver(t *testing.T) {
	g, err := NewGame(GameParams{Width: 9, Height: 9, Mines: 10}, 0, 0, Seed{42, 1})
	require.NoError(t, err)

	n := &countingNotifier{}
	g.SetNotifier(n)
	g.Forfeit(context.Background())

	require.Equal(t, 1, n.over)
}
