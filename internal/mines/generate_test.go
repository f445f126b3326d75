package mines

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeedRoundTrip(t *testing.T) {
	seed := Seed{0x0102030405060708, 0xfefdfcfbfaf9f8f7}
	s := seed.String()
	require.Len(t, s, 32)

	got, err := ParseSeed(s)
	require.NoError(t, err)
	require.Equal(t, seed, got)
}

func TestParseSeedRejectsBadInput(t *testing.T) {
	_, err := ParseSeed("not hex")
	require.Error(t, err)

	_, err = ParseSeed("00")
	require.Error(t, err)
}

func TestGenerateLayoutRejectsBadParams(t *testing.T) {
	_, err := GenerateLayout(GameParams{Width: 0, Height: 9, Mines: 10}, 4, 4, Seed{1, 2})
	require.Error(t, err)

	_, err = GenerateLayout(GameParams{Width: 9, Height: 9, Mines: 999}, 4, 4, Seed{1, 2})
	require.Error(t, err)

	_, err = GenerateLayout(GameParams{Width: 9, Height: 9, Mines: 10}, 20, 20, Seed{1, 2})
	require.Error(t, err)
}

func TestGenerateLayoutSolvable(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}
	t.Parallel()

	tests := []struct {
		name   string
		params GameParams
		sx, sy int
	}{
		{"beginner corner", GameParams{Width: 9, Height: 9, Mines: 10}, 0, 0},
		{"beginner center", GameParams{Width: 9, Height: 9, Mines: 10}, 4, 4},
		{"intermediate", GameParams{Width: 16, Height: 16, Mines: 40}, 8, 8},
		{"expert", GameParams{Width: 30, Height: 16, Mines: 99}, 15, 8},
		{"expert with big perturbs forced from the start", GameParams{Width: 30, Height: 16, Mines: 99, AllowBigPerturbs: true}, 15, 8},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			layout, err := GenerateLayout(test.params, test.sx, test.sy, Seed{42, 7})
			require.NoError(t, err)
			require.True(t, layout.Solved, "attempt %d: layout was not confirmed solvable", layout.Attempts)
			require.Len(t, layout.Mines, test.params.Width*test.params.Height)

			// Don't just trust GenerateLayout's own Solved flag: run an
			// entirely independent solver session, with its own random
			// stream, directly over the returned mine layout.
			verifyCtx := &mineCtx{
				grid: layout.Mines, width: test.params.Width, height: test.params.Height,
				sx: test.sx, sy: test.sy, allowBigPerturbs: true,
			}
			verifyGrid := make(Grid, test.params.Width*test.params.Height)
			for i := range verifyGrid {
				verifyGrid[i] = Unknown
			}
			wl := newCelltodo(test.params.Width * test.params.Height)
			mask := windowMask(test.params.Width, test.params.Height, test.sx-1, test.sy-1)
			verifyGrid.knownCells(test.params.Width, wl, verifyCtx, test.sx-1, test.sy-1, mask, false)
			verifyResult := solve(
				test.params.Width, test.params.Height, test.params.Mines,
				verifyGrid, verifyCtx, rand.New(rand.NewPCG(999, 999)),
			)
			require.NotEqual(t, stalled, verifyResult, "fresh solve pass could not confirm the returned layout is solvable")

			count := 0
			for _, m := range layout.Mines {
				if m {
					count++
				}
			}
			require.Equal(t, test.params.Mines, count)

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					x, y := test.sx+dx, test.sy+dy
					if x < 0 || x >= test.params.Width || y < 0 || y >= test.params.Height {
						continue
					}
					require.False(t, layout.Mines[y*test.params.Width+x], "mine inside starting window at (%d,%d)", x, y)
				}
			}
		})
	}
}

func TestGenerateLayoutDeterministicWithSameSeed(t *testing.T) {
	params := GameParams{Width: 9, Height: 9, Mines: 10}
	a, err := GenerateLayout(params, 4, 4, Seed{1, 1})
	require.NoError(t, err)
	b, err := GenerateLayout(params, 4, 4, Seed{1, 1})
	require.NoError(t, err)
	require.Equal(t, a.Mines, b.Mines)
}
