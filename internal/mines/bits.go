package mines

// alignAndCombine is spec.md §4.1's "align" + "combine" primitive. It
// translates mask2's 3x3 window at (x2,y2) into the coordinate system of
// the window at (x1,y1) — shifting a column out and zeroing it for every
// unit of horizontal offset, a row for every unit of vertical offset — and
// then either intersects the result with mask1 (diff==false) or subtracts
// it from mask1 (diff==true, i.e. mask1 &^ aligned-mask2).
//
// If the two windows are more than 2 cells apart on either axis the
// translated mask is entirely zero, per spec.md §4.1.
func alignAndCombine(x1, y1 int, mask1 word, x2, y2 int, mask2 word, diff bool) word {
	if absDiff(x2, x1) >= 3 || absDiff(y2, y1) >= 3 {
		mask2 = 0
	} else {
		for x2 > x1 {
			mask2 &^= 4 | 32 | 256 // drop right column
			mask2 <<= 1
			x2--
		}
		for x2 < x1 {
			mask2 &^= 1 | 8 | 64 // drop left column
			mask2 >>= 1
			x2++
		}
		for y2 > y1 {
			mask2 &^= 64 | 128 | 256 // drop bottom row
			mask2 <<= 3
			y2--
		}
		for y2 < y1 {
			mask2 &^= 1 | 2 | 4 // drop top row
			mask2 >>= 3
			y2++
		}
	}

	if diff {
		mask2 ^= 511
	}

	return mask1 & mask2
}
