package mines

import (
	"math/rand/v2"
	"slices"
)

// change is one flip of the hidden mine layout produced by Perturb
// (spec.md §4.4). x,y names the cell whose hidden state changed; delta
// is +1 if a mine was placed there, -1 if one was removed. The total
// mine count is preserved across one Perturb call's changes.
type change struct {
	x, y  int
	delta int8
}

// candidatePriority ranks how acceptable a cell is as a place to swap a
// mine to or from (spec.md §4.4, steps 2 and 4-6): prefer unknown cells
// bordering already-known territory, then other unknown cells, and only
// as a last resort a known cell safely away from the starting square.
type candidatePriority int

const (
	priorityBorder candidatePriority = iota
	priorityInterior
	priorityKnown
)

type candidate struct {
	i        int
	priority candidatePriority
	random   uint32
}

func candidateCmp(a, b candidate) int {
	if a.priority != b.priority {
		return int(a.priority) - int(b.priority)
	}
	if a.random != b.random {
		if a.random < b.random {
			return -1
		}
		return 1
	}
	return a.i - b.i
}

// mineOp is one pending grid mutation: cell i becomes a mine if mine is
// true, otherwise it becomes clear.
type mineOp struct {
	i    int
	mine bool
}

func mineOps(mine bool, idx []int) []mineOp {
	ops := make([]mineOp, len(idx))
	for k, i := range idx {
		ops[k] = mineOp{i: i, mine: mine}
	}
	return ops
}

// Perturb implements spec.md §4.4's layout perturbation: it swaps mines
// between the stalled constraint's own set of cells and a prioritized
// pool of candidates drawn from *outside* that set, preserving the
// total mine count, in the hope of unblocking further deduction. x,y,
// mask name the 3x3 window of the constraint the solver picked, if any;
// an all-zero mask means the store was empty, so the set being
// perturbed is the entire unknown area of the board instead.
//
// The candidate pool never includes the starting square or its
// neighbours, or a cell inside the set itself; already-opened or flagged
// cells are included, ranked after every unknown cell, as a last resort.
// Without allowBigPerturbs an all-zero mask is refused
// outright, since that would mean disturbing the whole unknown area at
// once.
func (ctx *mineCtx) Perturb(grid *Grid, x, y int, mask word, r *rand.Rand) []*change {
	if ctx.abortPerturb() {
		return nil
	}
	if mask == 0 && !ctx.allowBigPerturbs {
		return nil
	}

	inSet := func(i int) bool {
		if mask == 0 {
			return (*grid)[i] == Unknown
		}
		cx, cy := i%ctx.width, i/ctx.width
		return cx >= x && cx < x+3 && cy >= y && cy < y+3 &&
			mask&(1<<((cy-y)*3+(cx-x))) != 0
	}

	var fullSet, emptySet []int
	for i := range *grid {
		if inSet(i) {
			if ctx.grid[i] {
				fullSet = append(fullSet, i)
			} else {
				emptySet = append(emptySet, i)
			}
		}
	}
	if len(fullSet) == 0 && len(emptySet) == 0 {
		return nil
	}

	candidates := ctx.perturbCandidates(grid, inSet, r)

	// Walk the candidates in priority order until we've found enough
	// empty ones to receive every mine leaving the set, or enough full
	// ones to give up a mine for every cell the set still needs.
	var toFill, toEmpty []int
	for _, c := range candidates {
		if ctx.grid[c.i] {
			toEmpty = append(toEmpty, c.i)
		} else {
			toFill = append(toFill, c.i)
		}
		if len(toFill) == len(fullSet) || len(toEmpty) == len(emptySet) {
			break
		}
	}

	switch {
	case len(toFill) == len(fullSet):
		// Enough room outside to take in every mine the set gives up:
		// drain the set entirely.
		ops := append(mineOps(true, toFill), mineOps(false, fullSet)...)
		return ctx.swapMines(grid, ops)
	case len(toEmpty) == len(emptySet):
		// Enough mines outside to hand one to every empty cell in the
		// set: flood the set entirely.
		ops := append(mineOps(false, toEmpty), mineOps(true, emptySet)...)
		return ctx.swapMines(grid, ops)
	case len(toEmpty) > 0:
		// Neither side could be done in full. Settle for a partial
		// job, and always choose to flood rather than drain: this
		// case tends to arise at very high mine densities, where
		// packing mines solidly around the set's edges is often the
		// only way left to reach a solvable grid.
		picked := append([]int(nil), emptySet...)
		r.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
		picked = picked[:len(toEmpty)]
		ops := append(mineOps(false, toEmpty), mineOps(true, picked)...)
		return ctx.swapMines(grid, ops)
	default:
		return nil
	}
}

// swapMines applies ops to the hidden layout in order, updating grid's
// display for each one as it is made so a later op in the same batch
// sees an up-to-date board, and returns the resulting changes.
func (ctx *mineCtx) swapMines(grid *Grid, ops []mineOp) []*change {
	changes := make([]*change, 0, len(ops))
	for _, op := range ops {
		ctx.grid[op.i] = op.mine
		delta := int8(-1)
		if op.mine {
			delta = 1
		}
		c := &change{x: op.i % ctx.width, y: op.i / ctx.width, delta: delta}
		changes = append(changes, c)
		ctx.updateVisible(grid, c)
	}
	return changes
}

// updateVisible keeps grid consistent with a single just-applied change
// (spec.md §4.4 step 7): the changed cell itself, if already shown, is
// flagged or its number recomputed outright, and every already-opened
// neighbour's displayed count is nudged by delta. A cell still Unknown
// is left untouched either way — the change hasn't been revealed to the
// player, only to the hidden layout.
func (ctx *mineCtx) updateVisible(grid *Grid, c *change) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx, ny := c.x+dx, c.y+dy
			if nx < 0 || nx >= ctx.width || ny < 0 || ny >= ctx.height {
				continue
			}
			ni := ny*ctx.width + nx
			if (*grid)[ni] == Unknown {
				continue
			}

			if dx == 0 && dy == 0 {
				if c.delta > 0 {
					(*grid)[ni] = Flagged
				} else {
					var n CellState
					for dy2 := -1; dy2 <= 1; dy2++ {
						for dx2 := -1; dx2 <= 1; dx2++ {
							mx, my := nx+dx2, ny+dy2
							if mx < 0 || mx >= ctx.width || my < 0 || my >= ctx.height {
								continue
							}
							if ctx.MineAt(mx, my) {
								n++
							}
						}
					}
					(*grid)[ni] = n
				}
			} else if (*grid)[ni] >= 0 {
				(*grid)[ni] += CellState(c.delta)
			}
		}
	}
}

// perturbCandidates lists, in preference order, every cell Perturb is
// allowed to swap a mine to or from: unknown cells bordering known
// territory first, then other unknown cells, then (as a last resort)
// known cells safely away from the starting square. inSet excludes the
// cells that belong to the constraint being perturbed, which must never
// appear among its own candidates.
func (ctx *mineCtx) perturbCandidates(grid *Grid, inSet func(int) bool, r *rand.Rand) []candidate {
	candidates := make([]candidate, 0, ctx.width*ctx.height)

	for cy := 0; cy < ctx.height; cy++ {
		for cx := 0; cx < ctx.width; cx++ {
			if absDiff(cx, ctx.sx) <= 1 && absDiff(cy, ctx.sy) <= 1 {
				continue
			}

			i := cy*ctx.width + cx
			if inSet(i) {
				continue
			}

			priority := priorityKnown
			if (*grid)[i] == Unknown {
				priority = priorityInterior
				for dy := -1; dy <= 1 && priority == priorityInterior; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := cx+dx, cy+dy
						if nx >= 0 && nx < ctx.width && ny >= 0 && ny < ctx.height &&
							(*grid)[ny*ctx.width+nx] != Unknown {
							priority = priorityBorder
							break
						}
					}
				}
			}

			candidates = append(candidates, candidate{i: i, priority: priority, random: r.Uint32()})
		}
	}

	slices.SortFunc(candidates, candidateCmp)
	return candidates
}
