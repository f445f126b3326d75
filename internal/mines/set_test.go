package mines

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstraintStoreAddCanonicalizesWindow(t *testing.T) {
	s := newConstraintStore()
	// mask selects only the bottom-right cell of the 3x3 window
	// anchored at (0,0); Add must trim the empty leading rows and
	// columns away so the stored window sits directly on that cell.
	s.Add(0, 0, 1<<8, 1)
	require.Equal(t, 1, s.Count())
	c := s.All()[0]
	require.Equal(t, 2, c.x)
	require.Equal(t, 2, c.y)
	require.Equal(t, word(1), c.mask)
}

func TestConstraintStoreAddIgnoresZeroMaskAndDuplicates(t *testing.T) {
	s := newConstraintStore()
	s.Add(0, 0, 0, 5)
	require.Equal(t, 0, s.Count())

	s.Add(0, 0, 1, 1)
	s.Add(0, 0, 1, 1)
	require.Equal(t, 1, s.Count())
}

func TestConstraintStoreWorkListIsFIFO(t *testing.T) {
	s := newConstraintStore()
	s.Add(0, 0, 1, 0)
	s.Add(5, 5, 1, 0)
	s.Add(9, 9, 1, 0)

	var order []int
	for {
		c := s.PopWork()
		if c == nil {
			break
		}
		order = append(order, c.x)
	}
	require.Equal(t, []int{0, 5, 9}, order)
}

func TestConstraintStoreRemoveClearsWorkListAndIndex(t *testing.T) {
	s := newConstraintStore()
	s.Add(0, 0, 1, 0)
	c := s.All()[0]

	s.Remove(c)
	require.Equal(t, 0, s.Count())
	require.Nil(t, s.PopWork())

	s.Remove(c) // removing twice is a no-op, not a panic
}

func TestConstraintStoreOverlappingWith(t *testing.T) {
	s := newConstraintStore()
	s.Add(0, 0, 1<<4, 1) // single cell at (1,1)
	s.Add(10, 10, 1, 0)  // far enough away to never overlap

	overlap := s.OverlappingWith(1, 1, 1)
	require.Len(t, overlap, 1)
	require.Equal(t, 1, overlap[0].x)
	require.Equal(t, 1, overlap[0].y)
}

func TestConstraintStorePickRandomUniform(t *testing.T) {
	s := newConstraintStore()
	require.Nil(t, s.PickRandom(rand.New(rand.NewPCG(1, 1)).IntN))

	s.Add(0, 0, 1, 0)
	s.Add(5, 5, 1, 0)
	r := rand.New(rand.NewPCG(1, 1))
	seen := map[int]bool{}
	for range 50 {
		c := s.PickRandom(r.IntN)
		require.NotNil(t, c)
		seen[c.x] = true
	}
	require.Len(t, seen, 2)
}
