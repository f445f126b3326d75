package mines

import (
	"math/rand/v2"
	"strconv"
)

// solveResult is the return value of one solver session (spec.md §4.3).
type solveResult int

const (
	stalled solveResult = -1
	solved  solveResult = 0
	// a positive value is the number of perturbations the session needed.
)

func (r solveResult) String() string {
	switch {
	case r == stalled:
		return "stalled"
	case r == solved:
		return "solved"
	default:
		return strconv.Itoa(int(r)) + " perturbations"
	}
}

// DisjointUnionCap bounds the recursive backtracking search the solver
// uses for its disjoint-union closure (spec.md §4.3, "Global count
// closure"). Stores larger than this are skipped for that step, per
// spec.md §9's note that the cap is an arbitrary, implementation-exposed
// tunable.
var DisjointUnionCap = 10

// solve is the deductive solver entry point (spec.md §4.3). grid holds
// existing knowledge (Unknown for unseen cells, Flagged for known mines,
// 0..8 for opened cells). o must not be nil: saturation and closure
// deductions call into it to open new cells, and a stalled deduction
// asks it for a perturbation. There is no oracle-free mode; an oracle
// whose Perturb returns no changes leaves the hidden layout untouched.
//
// panics [AssertionError] on an internal invariant violation.
func solve(w, h, n int, grid Grid, o oracle, r *rand.Rand) solveResult {
	store := newConstraintStore()
	perturbs := 0

	cellWork := newCelltodo(w * h)
	for i, v := range grid {
		if v != Unknown {
			cellWork.add(i)
		}
	}

	for {
		progressed := false

		// Per-cell work-list (spec.md §4.3, "Per-square work-list").
		for {
			i, ok := cellWork.pop()
			if !ok {
				break
			}
			x, y := i%w, i/w

			if mines := grid[i]; mines >= 0 {
				var bit, unk word = 1, 0
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						switch {
						case x+dx < 0 || x+dx >= w || y+dy < 0 || y+dy >= h:
							// out of range; ignore
						case grid[i+dy*w+dx] == Flagged:
							mines--
						case grid[i+dy*w+dx] == Unknown:
							unk |= bit
						}
						bit <<= 1
					}
				}
				if unk != 0 {
					store.Add(x-1, y-1, unk, int(mines))
				}
			}

			for _, c := range store.OverlappingWith(x, y, 1) {
				newMask := alignAndCombine(c.x, c.y, c.mask, x, y, 1, true)
				newMines := c.mines
				if grid[i] == Flagged {
					newMines--
				}
				if newMask != 0 {
					store.Add(c.x, c.y, newMask, newMines)
				}
				store.Remove(c)
			}

			progressed = true
		}

		// Per-constraint work-list (spec.md §4.3, "Per-constraint
		// work-list").
		if c := store.PopWork(); c != nil {
			if c.mines == 0 || c.mines == c.mask.bitCount() {
				grid.knownCells(w, cellWork, o, c.x, c.y, c.mask, c.mines != 0)
				continue
			}

			for _, c2 := range store.OverlappingWith(c.x, c.y, c.mask) {
				wing := alignAndCombine(c.x, c.y, c.mask, c2.x, c2.y, c2.mask, true)
				wing2 := alignAndCombine(c2.x, c2.y, c2.mask, c.x, c.y, c.mask, true)
				wc, w2c := wing.bitCount(), wing2.bitCount()

				if wc == c.mines-c2.mines || w2c == c2.mines-c.mines {
					grid.knownCells(w, cellWork, o, c.x, c.y, wing, wc == c.mines-c2.mines)
					grid.knownCells(w, cellWork, o, c2.x, c2.y, wing2, w2c == c2.mines-c.mines)
					continue
				}

				if wc == 0 && w2c != 0 {
					store.Add(c2.x, c2.y, wing2, c2.mines-c.mines)
				} else if w2c == 0 && wc != 0 {
					store.Add(c.x, c.y, wing, c.mines-c2.mines)
				}
			}

			progressed = true
		} else if n >= 0 {
			if _, ok := globalCountClosure(w, h, n, grid, cellWork, o, store); ok {
				progressed = true
			}
		}

		if progressed {
			continue
		}

		// Every local and global deduction has failed; ask the oracle
		// to perturb the layout (spec.md §4.3, last paragraph).
		var changes []*change
		if store.Count() == 0 {
			changes = o.Perturb(&grid, 0, 0, 0, r)
		} else {
			c := store.PickRandom(r.IntN)
			changes = o.Perturb(&grid, c.x, c.y, c.mask, r)
		}
		if len(changes) == 0 {
			break
		}
		perturbs++

		for _, ch := range changes {
			i := ch.y*w + ch.x
			if ch.delta < 0 && grid[i] != Unknown {
				cellWork.add(i)
			}
			for _, c := range store.OverlappingWith(ch.x, ch.y, 1) {
				c.mines += int(ch.delta)
				store.addWork(c)
			}
		}
	}

	for _, v := range grid {
		if v == Unknown {
			return stalled
		}
	}
	return solveResult(perturbs)
}
