package mines

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// oracle is the hidden-layout context the solver calls into while
// generating a board (spec.md §9, "Oracle coupling"). Every solver
// session needs one: the solver opens cells and requests perturbations
// only through it, and does not accept a nil oracle.
type oracle interface {
	Open(x, y int) CellState
	Perturb(grid *Grid, x, y int, mask word, r *rand.Rand) []*change
}

// mineCtx is the concrete oracle: it knows the true mine layout and can
// both answer Open queries and mutate the layout via Perturb.
type mineCtx struct {
	grid             []bool
	width, height    int
	sx, sy           int
	allowBigPerturbs bool

	// perturbsSinceLastOpen counts perturbation calls since the solver
	// last managed to open a new cell. Reset in [mineCtx.noteOpened].
	// Resolves spec.md §9's "Open questions" note about the doubled
	// post-increment: one increment per perturbation, compared against
	// max(width, height).
	perturbsSinceLastOpen int
}

func (ctx *mineCtx) MineAt(x, y int) bool {
	return ctx.grid[y*ctx.width+x]
}

func (ctx *mineCtx) Mines() (count int) {
	for _, m := range ctx.grid {
		if m {
			count++
		}
	}
	return
}

// Open returns the visible state a truly-safe open would reveal: Flagged
// if this is in fact a mine (the oracle is allowed to be asked about any
// cell; the caller is responsible for not acting on a mine hit during
// generation), otherwise the neighbour mine count.
func (ctx *mineCtx) Open(x, y int) CellState {
	if ctx.MineAt(x, y) {
		return Flagged
	}
	n := 0
	for dx := -1; dx <= 1; dx++ {
		if x+dx < 0 || x+dx >= ctx.width {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			if y+dy < 0 || y+dy >= ctx.height {
				continue
			}
			if dx == 0 && dy == 0 {
				continue
			}
			if ctx.MineAt(x+dx, y+dy) {
				n++
			}
		}
	}
	ctx.noteOpened()
	return CellState(n)
}

// abortPerturb reports whether the solver should give up asking this
// oracle for more perturbations (spec.md §4.4, step 1).
func (ctx *mineCtx) abortPerturb() bool {
	ctx.perturbsSinceLastOpen++
	return ctx.perturbsSinceLastOpen > maxInt(ctx.width, ctx.height)
}

func (ctx *mineCtx) noteOpened() {
	ctx.perturbsSinceLastOpen = 0
}

func (ctx *mineCtx) String() string {
	return fmt.Sprintf("%dx%d(%d,%d)", ctx.width, ctx.height, ctx.sx, ctx.sy)
}

func (ctx *mineCtx) PrintGrid() string {
	var b strings.Builder
	for y := 0; y < ctx.height; y++ {
		for x := 0; x < ctx.width; x++ {
			switch {
			case x == ctx.sx && y == ctx.sy:
				b.WriteString("S ")
			case ctx.grid[y*ctx.width+x]:
				b.WriteString("* ")
			default:
				b.WriteString("- ")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
