package mines

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
)

// Status is a GameState's overall progress (spec.md §5).
type Status int

const (
	InProgress Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "in progress"
	}
}

// Notifier receives synchronous callbacks as a GameState's visible state
// changes. Implementations must return promptly: a slow Notifier blocks
// the call that triggered it.
type Notifier interface {
	CellsChanged(ctx context.Context, cells []int)
	GameOver(ctx context.Context, won bool)
}

type noopNotifier struct{}

func (noopNotifier) CellsChanged(context.Context, []int) {}
func (noopNotifier) GameOver(context.Context, bool)      {}

// ErrGameOver is returned by every mutating GameState method once the
// game has already finished.
var ErrGameOver = errors.New("mines: game already finished")

// GameState is the full state of one game, from the first click onward.
// It gob-encodes to a persistable blob; see [GameState.GobEncode].
type GameState struct {
	Params         GameParams
	Seed           Seed
	StartX, StartY int

	Mines   []bool
	Visible Grid
	Flags   []bool

	Status Status

	notifier Notifier
}

// NewGame generates a solvable layout for p and opens (sx,sy), returning
// the resulting game ready for further moves.
func NewGame(p GameParams, sx, sy int, seed Seed) (*GameState, error) {
	layout, err := GenerateLayout(p, sx, sy, seed)
	if err != nil {
		return nil, err
	}

	g := &GameState{
		Params: p, Seed: seed, StartX: sx, StartY: sy,
		Mines:    layout.Mines,
		Visible:  make(Grid, p.Width*p.Height),
		Flags:    make([]bool, p.Width*p.Height),
		notifier: noopNotifier{},
	}
	for i := range g.Visible {
		g.Visible[i] = Unknown
	}

	g.flood(sy*p.Width + sx)
	g.checkWin(context.Background())
	return g, nil
}

// SetNotifier attaches n to receive future state-change callbacks. A nil
// Notifier reverts to a no-op.
func (g *GameState) SetNotifier(n Notifier) {
	if n == nil {
		n = noopNotifier{}
	}
	g.notifier = n
}

func (g *GameState) index(x, y int) (int, bool) {
	if x < 0 || x >= g.Params.Width || y < 0 || y >= g.Params.Height {
		return 0, false
	}
	return y*g.Params.Width + x, true
}

// OpenCell opens (x,y), cascading through any connected zero-count
// region (spec.md §5). Opening a mine ends the game in a loss and
// reveals the whole board.
func (g *GameState) OpenCell(ctx context.Context, x, y int) error {
	if g.Status != InProgress {
		return ErrGameOver
	}
	i, ok := g.index(x, y)
	if !ok {
		return fmt.Errorf("mines: (%d,%d) outside %dx%d", x, y, g.Params.Width, g.Params.Height)
	}
	if g.Flags[i] || g.Visible[i] != Unknown {
		return nil
	}

	if g.Mines[i] {
		g.revealAll(ctx, i)
		return nil
	}

	changed := g.flood(i)
	if len(changed) > 0 {
		g.notifier.CellsChanged(ctx, changed)
	}
	g.checkWin(ctx)
	return nil
}

// flood opens start and cascades through every connected cell whose
// neighbour mine count turns out to be zero, returning the indices it
// newly revealed.
func (g *GameState) flood(start int) []int {
	w := g.Params.Width
	var changed []int
	wl := newCelltodo(w * g.Params.Height)
	wl.add(start)
	for {
		i, ok := wl.pop()
		if !ok {
			break
		}
		if g.Visible[i] != Unknown {
			continue
		}
		x, y := i%w, i/w

		n := 0
		var neighbours []int
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				ni, ok := g.index(x+dx, y+dy)
				if !ok {
					continue
				}
				if g.Mines[ni] {
					n++
				} else {
					neighbours = append(neighbours, ni)
				}
			}
		}

		g.Visible[i] = CellState(n)
		changed = append(changed, i)
		if n == 0 {
			for _, ni := range neighbours {
				if g.Visible[ni] == Unknown {
					wl.add(ni)
				}
			}
		}
	}
	return changed
}

// revealAll ends the game as a loss and reveals every cell's true
// mine/flag status, opening every still-covered non-mine cell with its
// neighbour mine count (spec.md §5, "loss reveal"). exploded names the
// mine that was actually clicked, or -1 on a [GameState.Forfeit].
func (g *GameState) revealAll(ctx context.Context, exploded int) {
	g.Status = Lost
	var changed []int
	for i := range g.Visible {
		switch {
		case i == exploded:
			g.Visible[i] = ExplodedMine
		case g.Mines[i] && g.Flags[i]:
			g.Visible[i] = CorrectlyFlagged
		case g.Mines[i]:
			g.Visible[i] = UnflaggedMine
		case g.Flags[i]:
			g.Visible[i] = FalselyFlagged
		case g.Visible[i] == Unknown:
			x, y := i%g.Params.Width, i/g.Params.Width
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if ni, ok := g.index(x+dx, y+dy); ok && g.Mines[ni] {
						n++
					}
				}
			}
			g.Visible[i] = CellState(n)
		default:
			continue
		}
		changed = append(changed, i)
	}
	if len(changed) > 0 {
		g.notifier.CellsChanged(ctx, changed)
	}
	g.notifier.GameOver(ctx, false)
}

// checkWin ends the game as a win once every non-mine cell has been
// opened, auto-flagging every remaining covered cell as a mine (spec.md
// §8, scenario 4) rather than leaving it Unknown.
func (g *GameState) checkWin(ctx context.Context) {
	for i, v := range g.Visible {
		if v == Unknown && !g.Mines[i] {
			return
		}
	}
	g.Status = Won

	var changed []int
	for i, v := range g.Visible {
		if v == Unknown {
			g.Flags[i] = true
			g.Visible[i] = CorrectlyFlagged
			changed = append(changed, i)
		}
	}
	if len(changed) > 0 {
		g.notifier.CellsChanged(ctx, changed)
	}
	g.notifier.GameOver(ctx, true)
}

// FlagCell toggles a flag on an unopened cell (spec.md §5).
func (g *GameState) FlagCell(ctx context.Context, x, y int) error {
	if g.Status != InProgress {
		return ErrGameOver
	}
	i, ok := g.index(x, y)
	if !ok {
		return fmt.Errorf("mines: (%d,%d) outside %dx%d", x, y, g.Params.Width, g.Params.Height)
	}
	if g.Visible[i] != Unknown {
		return nil
	}
	g.Flags[i] = !g.Flags[i]
	g.notifier.CellsChanged(ctx, []int{i})
	return nil
}

// ChordCell opens every unopened, unflagged neighbour of an already-open
// numbered cell whose flagged-neighbour count matches its number
// (spec.md §5, "chording").
func (g *GameState) ChordCell(ctx context.Context, x, y int) error {
	if g.Status != InProgress {
		return ErrGameOver
	}
	i, ok := g.index(x, y)
	if !ok {
		return fmt.Errorf("mines: (%d,%d) outside %dx%d", x, y, g.Params.Width, g.Params.Height)
	}
	if g.Visible[i] < 0 {
		return nil
	}

	want := int(g.Visible[i])
	flagged := 0
	var toOpen []int
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			ni, ok := g.index(x+dx, y+dy)
			if !ok {
				continue
			}
			if g.Flags[ni] {
				flagged++
			} else if g.Visible[ni] == Unknown {
				toOpen = append(toOpen, ni)
			}
		}
	}
	if flagged != want {
		return nil
	}

	w := g.Params.Width
	for _, ni := range toOpen {
		if err := g.OpenCell(ctx, ni%w, ni/w); err != nil {
			return err
		}
		if g.Status != InProgress {
			break
		}
	}
	return nil
}

// Forfeit ends the game as a loss without exploding any particular cell
// (spec.md §5, "forfeit").
func (g *GameState) Forfeit(ctx context.Context) {
	if g.Status != InProgress {
		return
	}
	g.revealAll(ctx, -1)
}

// RevealPlayerGrid returns a copy of the currently-visible board.
func (g *GameState) RevealPlayerGrid() Grid {
	out := make(Grid, len(g.Visible))
	copy(out, g.Visible)
	return out
}

// RevealAll returns a copy of the board for end-of-game display, with
// every still-covered mine shown as UnflaggedMine. A covered non-mine
// cell, which only an unfinished game still has, stays Unknown.
func (g *GameState) RevealAll() Grid {
	out := make(Grid, len(g.Visible))
	for i, v := range g.Visible {
		if v != Unknown || !g.Mines[i] {
			out[i] = v
			continue
		}
		out[i] = UnflaggedMine
	}
	return out
}

// gameWire is the gob-encoded form of a GameState: everything except the
// live Notifier, which a caller re-attaches after decode.
type gameWire struct {
	Params         GameParams
	Seed           Seed
	StartX, StartY int
	Mines          []bool
	Visible        Grid
	Flags          []bool
	Status         Status
}

// GobEncode persists a GameState for later resumption (spec.md §4.6).
func (g *GameState) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(gameWire{
		g.Params, g.Seed, g.StartX, g.StartY, g.Mines, g.Visible, g.Flags, g.Status,
	})
	return buf.Bytes(), err
}

// GobDecode restores a GameState previously produced by GobEncode. The
// Notifier is left as a no-op; callers must call [GameState.SetNotifier]
// to resume receiving callbacks.
func (g *GameState) GobDecode(data []byte) error {
	var w gameWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	g.Params, g.Seed = w.Params, w.Seed
	g.StartX, g.StartY = w.StartX, w.StartY
	g.Mines, g.Visible, g.Flags, g.Status = w.Mines, w.Visible, w.Flags, w.Status
	g.notifier = noopNotifier{}
	return nil
}
