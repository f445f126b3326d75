package mines

import (
	"fmt"
	"strconv"
	"strings"
)

// CellState is the value space of the visible grid (spec.md §3).
type CellState int8

const (
	todo             CellState = -10 // internal to one OpenCell/solver pass
	Question         CellState = -3
	Unknown          CellState = -2
	Flagged          CellState = -1
	CorrectlyFlagged CellState = 64 // post-game-over display states
	ExplodedMine     CellState = 65
	FalselyFlagged   CellState = 66
	UnflaggedMine    CellState = 67
	// 0..8 mean open, with that many mined neighbours.
)

func (s CellState) String() string {
	switch {
	case s == Question:
		return "?"
	case s == Unknown:
		return " "
	case s == Flagged:
		return "*"
	case 0 <= s && s <= 8:
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}

// Grid is the player-visible board: one CellState per cell, row-major.
type Grid []CellState

func (g Grid) String(width int) string {
	var b strings.Builder
	for y := 0; y*width < len(g); y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if i >= len(g) {
				break
			}
			fmt.Fprint(&b, g[i].String(), " ")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// windowMask returns the subset of a full 3x3 mask that actually lies
// within a wxh grid for a window whose top-left corner is at (x,y).
// Cells outside the grid are simply absent from the board, not unknown.
func windowMask(w, h, x, y int) word {
	var bit, mask word = 1, 0
	for dy := 0; dy < 3; dy++ {
		for dx := 0; dx < 3; dx++ {
			cx, cy := x+dx, y+dy
			if cx >= 0 && cx < w && cy >= 0 && cy < h {
				mask |= bit
			}
			bit <<= 1
		}
	}
	return mask
}

// knownCells marks every cell in the 3x3 window at (x,y) selected by mask
// as known: a mine (mine==true) is flagged, otherwise it is opened through
// the oracle; either way the cell is pushed onto the per-cell work-list.
// Cells already known
// are left untouched — a constraint may name a cell more than once across
// its lifetime.
//
// panics [AssertionError] if the oracle ever reports a mine as open.
func (g Grid) knownCells(
	w int, wl *celltodo, o oracle, x, y int, mask word, mine bool,
) {
	var bit word = 1
	for dy := 0; dy < 3; dy++ {
		for dx := 0; dx < 3; dx++ {
			if mask&bit != 0 {
				i := (y+dy)*w + (x + dx)
				if g[i] == Unknown {
					if mine {
						g[i] = Flagged
					} else {
						g[i] = o.Open(x+dx, y+dy)
						if g[i] == Flagged {
							panic(AssertionError{"oracle reported a mine at a cell the solver deduced was clear"})
						}
					}
					wl.add(i)
				}
			}
			bit <<= 1
		}
	}
}
