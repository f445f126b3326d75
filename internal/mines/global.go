package mines

// globalCountClosure attempts spec.md §4.3's "global count closure": it
// looks for a set of pairwise-disjoint stored constraint windows whose
// combined mine count, compared against the total mines remaining on the
// whole board, forces every other still-unknown cell in the grid to be
// uniformly safe or uniformly mined. The search is a capped backtrack
// over the store's constraints (spec.md §9's DisjointUnionCap); stores
// larger than the cap are skipped entirely for this step, matching the
// rest of the deduction pipeline's allowance to occasionally miss a
// deduction it could in principle make.
func globalCountClosure(
	w, h, n int, grid Grid, cellWork *celltodo, o oracle, store *constraintStore,
) (progress []int, ok bool) {
	remaining := n
	unknown := 0
	for _, v := range grid {
		switch v {
		case Flagged:
			remaining--
		case Unknown:
			unknown++
		}
	}
	if remaining < 0 || unknown == 0 {
		return nil, false
	}

	// The degenerate case, U=∅: the total mine count alone already
	// determines every remaining Unknown cell, independent of anything
	// in the store (spec.md §4.3). This must be checked regardless
	// of whether the store holds any constraints at all, since an
	// isolated Unknown region bordering no numbered cell can still be
	// resolved this way.
	if remaining == 0 || remaining == unknown {
		markMine := remaining != 0
		for i, v := range grid {
			if v != Unknown {
				continue
			}
			x, y := i%w, i/w
			if markMine {
				grid[i] = Flagged
			} else {
				grid[i] = o.Open(x, y)
				if grid[i] == Flagged {
					panic(AssertionError{"oracle reported a mine at a cell the global closure deduced was clear"})
				}
			}
			cellWork.add(i)
			progress = append(progress, i)
		}
		return progress, len(progress) > 0
	}

	all := store.All()
	if len(all) == 0 || len(all) > DisjointUnionCap {
		return nil, false
	}

	// Every disjoint union of stored windows is a candidate for the
	// closure, not just the one with the most cells: a smaller union
	// can satisfy the count condition while a larger one built on top
	// of it no longer does, since both mines(U) and cells(U) grow as U
	// grows. So the condition is checked at every union reached during
	// the walk, and the search stops at the first one that satisfies
	// it rather than racing to the largest (spec.md §4.3).
	var found []*constraint
	var markMine bool
	var cur []*constraint

	var walk func(i int) bool
	walk = func(i int) bool {
		mines, cells := 0, 0
		for _, c := range cur {
			mines += c.mines
			cells += c.mask.bitCount()
		}
		if cells > 0 {
			switch {
			case mines == remaining && cells < unknown:
				found = append([]*constraint(nil), cur...)
				markMine = false
				return true
			case unknown-cells == remaining-mines:
				found = append([]*constraint(nil), cur...)
				markMine = true
				return true
			}
		}
		for ; i < len(all); i++ {
			c := all[i]
			disjoint := true
			for _, other := range cur {
				if alignAndCombine(c.x, c.y, c.mask, other.x, other.y, other.mask, false) != 0 {
					disjoint = false
					break
				}
			}
			if !disjoint {
				continue
			}
			cur = append(cur, c)
			if walk(i + 1) {
				return true
			}
			cur = cur[:len(cur)-1]
		}
		return false
	}
	if !walk(0) {
		return nil, false
	}

	inUnion := func(x, y int) bool {
		for _, c := range found {
			if alignAndCombine(c.x, c.y, c.mask, x, y, 1, false) != 0 {
				return true
			}
		}
		return false
	}

	for i, v := range grid {
		if v != Unknown {
			continue
		}
		x, y := i%w, i/w
		if inUnion(x, y) {
			continue
		}
		if markMine {
			grid[i] = Flagged
		} else {
			grid[i] = o.Open(x, y)
			if grid[i] == Flagged {
				panic(AssertionError{"oracle reported a mine at a cell the global closure deduced was clear"})
			}
		}
		cellWork.add(i)
		progress = append(progress, i)
	}

	for _, c := range found {
		store.Remove(c)
	}

	return progress, len(progress) > 0
}
