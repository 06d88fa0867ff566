package fill

import (
	"github.com/halfpitch/laygrid/pkg/errors"
	"github.com/halfpitch/laygrid/pkg/interval"
)

// floorDiv and floorMod round toward negative infinity, so the packing
// arithmetic stays exact when intermediate values go negative.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int { return a - floorDiv(a, b)*b }

func ceilDiv(a, b int) int { return -floorDiv(-a, b) }

// SymmetricConstSpace fills a 1-D span of the given length while keeping the
// space between fill blocks as close to spMax as possible without exceeding
// it. The result is symmetric about the span center, the block lengths are
// as uniform as possible within [nMin, nMax], and space blocks abut both
// span boundaries. Intervals are returned in coordinates starting at offset.
func SymmetricConstSpace(area, spMax, nMin, nMax, offset int) ([]interval.Interval, error) {
	if nMin > nMax {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"min fill length %d > max fill length %d", nMin, nMax)
	}

	// Filled area is area - (N+1)*sp for N blocks, so maximize fill by
	// minimizing N, which means trying the largest block first.
	numFill := ceilDiv(area-spMax, nMax+spMax)
	if numFill <= 0 {
		// span fits inside one max space, no fill needed
		return nil, nil
	}

	// numFill-1 max blocks is not enough, numFill either fits or exceeds.
	blkLen := floorDiv(area-(numFill+1)*spMax, numFill)
	if blkLen >= nMin {
		sol, _, err := symmetricHelper(area, numFill, spMax, offset, false, false, false, false)
		return sol, err
	}

	// Blocks came out too small with spMax everywhere, so shrink the space.
	rem := floorMod(area-numFill*nMin, numFill+1)
	spMax = floorDiv(area-numFill*nMin, numFill+1)
	if nMax > nMin || rem == 0 {
		sol, _, err := symmetricHelper(area, numFill, spMax, offset, false, false, false, false)
		return sol, err
	}

	// Only one block length is allowed. Invert the problem: pack the space
	// blocks with the fill length acting as their separation.
	sol, sameSp, err := symmetricHelper(area, numFill+1, nMax, offset, false, true, true, false)
	if err != nil {
		return nil, err
	}
	if sameSp {
		return sol, nil
	}

	// numFill+1 is even, so numFill+2 is odd and always has a solution.
	sol, _, err = symmetricHelper(area, numFill+2, nMax, offset, false, true, true, false)
	return sol, err
}

// SymmetricMax fills a 1-D span of the given length as much as possible
// subject to a minimum space spMin between blocks. The result is symmetric
// about the span center and as uniform as possible, with block lengths in
// [nMin, nMax]. Fill blocks abut both span boundaries unless cyclic is set,
// in which case the span wraps around and space blocks abut the boundaries
// instead. Intervals are returned in coordinates starting at offset; in
// cyclic mode the first interval may start below offset.
func SymmetricMax(area, nMin, nMax, spMin, offset int, cyclic bool) ([]interval.Interval, error) {
	if nMin >= nMax {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"min fill length %d >= max fill length %d", nMin, nMax)
	}

	// special case: one block covers the whole span
	if nMin <= area && area <= nMax && !cyclic {
		return []interval.Interval{{Lo: offset, Hi: offset + area}}, nil
	}

	// step 1: largest block length that admits at least one block and one space
	numBlkMin, numSpMin := 0, 0
	blkLenMax := nMax
	for ; blkLenMax >= nMin; blkLenMax-- {
		if cyclic {
			numBlkMin = floorDiv(area, blkLenMax+spMin)
			numSpMin = numBlkMin
		} else {
			numBlkMin = floorDiv(area+spMin, blkLenMax+spMin)
			numSpMin = numBlkMin - 1
		}
		if numBlkMin > 0 && numSpMin > 0 {
			break
		}
	}
	if numBlkMin <= 0 || numSpMin <= 0 {
		return nil, nil
	}

	// step 2: leftover space when every block is at its maximum length
	minSpaceWithMaxBlk := area - numBlkMin*blkLenMax

	// step 3: one more block would cost at least one more minimum space
	if minSpaceWithMaxBlk <= (numSpMin+1)*spMin {
		// All blocks at blkLenMax; distribute the leftover space evenly by
		// solving the inverted problem on the space blocks.
		incSp := blkLenMax < nMax
		sol, _, err := symmetricHelper(area, numSpMin, blkLenMax, offset, incSp, true, cyclic, cyclic)
		return sol, err
	}

	// Use numBlkMin+1 blocks with minimum spacing everywhere.
	minBlkLen := floorDiv(area-(numSpMin+1)*spMin, numBlkMin+1)
	if minBlkLen < nMin {
		return nil, errors.New(errors.ErrCodeInfeasible,
			"no fill solution for area %d with lengths [%d, %d] and space %d",
			area, nMin, nMax, spMin)
	}
	sol, _, err := symmetricHelper(area, numBlkMin+1, spMin, offset, true, false, !cyclic, cyclic)
	return sol, err
}

// symmetricInfo solves the core packing problem: place numBlkTot fill
// blocks in totArea with the given space between them, symmetric about the
// center and as uniform as possible. Block lengths take at most two values
// differing by 1. When parity forbids an exact solution the middle space
// is adjusted by +1 (incSp) or -1.
//
// It returns the two block lengths blk0 and blk1 (blk1 is emitted first),
// the counts k and m driving the cumulative-modulo distribution, the middle
// block or space length (-1 when absent), and whether every space equals sp.
func symmetricInfo(totArea, numBlkTot, sp int, incSp, fillOnEdge, cyclic bool) (
	blk0, blk1, k, m, midBlkLen, midSpLen int, sameSp bool, err error) {

	adjSpSgn := -1
	if incSp {
		adjSpSgn = 1
	}

	var numSpTot int
	switch {
	case cyclic:
		numSpTot = numBlkTot
	case fillOnEdge:
		numSpTot = numBlkTot - 1
	default:
		numSpTot = numBlkTot + 1
	}

	fillArea := totArea - numSpTot*sp
	if numSpTot == 0 && sp != 0 {
		return 0, 0, 0, 0, 0, 0, false, errors.New(errors.ErrCodeInvalidInput,
			"cannot draw zero space blocks with nonzero spacing %d", sp)
	}

	sameSp = true
	midBlkLen, midSpLen = -1, -1

	blkLen := floorDiv(fillArea, numBlkTot)
	numBlk1 := floorMod(fillArea, numBlkTot)
	if blkLen <= 0 {
		return 0, 0, 0, 0, 0, 0, false, errors.New(errors.ErrCodeInfeasible,
			"fill block length %d <= 0 for area %d with %d blocks and space %d",
			blkLen, totArea, numBlkTot, sp)
	}

	if cyclic && fillOnEdge {
		// the two boundary blocks are halves of the same wrapped block
		numBlkTot++
	}

	// numBlkTot blocks of length blkLen, with numBlk1 leftover units to
	// distribute one per block.
	if numBlkTot%2 == 0 {
		// even block count puts a space block in the middle
		midSpLen = sp
		if numBlk1%2 == 1 {
			// odd leftover cannot split between two symmetric halves,
			// so trade one unit with the middle space
			midSpLen += adjSpSgn
			numBlk1 -= adjSpSgn
			sameSp = false
			fillArea -= adjSpSgn
		}
	} else {
		// odd block count puts a fill block in the middle
		midBlkLen = blkLen
		if numBlk1%2 == 1 {
			midBlkLen++
		}
	}

	numLarge := numBlk1 / 2
	numSmall := (numBlkTot - numBlk1) / 2
	m = numLarge + numSmall
	switch {
	case cyclic && !fillOnEdge && sp%2 == 1:
		return 0, 0, 0, 0, 0, 0, false, errors.New(errors.ErrCodeInfeasible,
			"cyclic fill with space on edge requires even space, got %d", sp)
	case cyclic && fillOnEdge:
		// the wrapped boundary block must have even length
		if blkLen%2 == 0 {
			blk1, blk0 = blkLen, blkLen+1
			k = numSmall
		} else {
			blk0, blk1 = blkLen, blkLen+1
			k = numLarge
		}
		if k == 0 && m > 0 {
			return 0, 0, 0, 0, 0, 0, false, errors.New(errors.ErrCodeInfeasible,
				"cyclic fill cannot place an even-length block on the wrap boundary")
		}
	default:
		// emit the more common length first for an even distribution
		if numLarge >= numSmall {
			blk0, blk1 = blkLen, blkLen+1
			k = numLarge
		} else {
			blk1, blk0 = blkLen, blkLen+1
			k = numSmall
		}
	}
	return blk0, blk1, k, m, midBlkLen, midSpLen, sameSp, nil
}

// symmetricHelper emits the intervals for the packing computed by
// symmetricInfo. With invert set it returns the space intervals instead of
// the fill intervals. The second half of the result is the first half
// reflected about the span center.
func symmetricHelper(totArea, numBlkTot, sp, offset int, incSp, invert, fillOnEdge, cyclic bool) (
	[]interval.Interval, bool, error) {

	blk0, blk1, k, m, midBlkLen, midSpLen, sameSp, err := symmetricInfo(
		totArea, numBlkTot, sp, incSp, fillOnEdge, cyclic)
	if err != nil {
		return nil, false, err
	}

	var ans []interval.Interval
	marker := offset
	if cyclic {
		if fillOnEdge {
			marker = offset - blk1/2
		} else {
			marker = offset - sp/2
		}
	}

	curSum, prevSum := 0, 1
	for i := 0; i < m; i++ {
		// cumulative counter wraps k times in m steps; each wrap emits
		// blk1. With k == m the counter is degenerate and every block is
		// blk1.
		curLen := blk0
		if k == m || curSum < prevSum {
			curLen = blk1
		}

		if invert {
			if fillOnEdge {
				ans = append(ans, interval.Interval{Lo: marker + curLen, Hi: marker + curLen + sp})
			} else {
				ans = append(ans, interval.Interval{Lo: marker, Hi: marker + sp})
			}
		} else {
			if fillOnEdge {
				ans = append(ans, interval.Interval{Lo: marker, Hi: marker + curLen})
			} else {
				ans = append(ans, interval.Interval{Lo: marker + sp, Hi: marker + sp + curLen})
			}
		}

		marker += curLen + sp
		prevSum = curSum
		curSum = (curSum + k) % m
	}

	// middle block or space is emitted once, not reflected
	var halfLen int
	if midBlkLen >= 0 {
		if invert {
			if !fillOnEdge {
				// one more space block before the middle fill block
				ans = append(ans, interval.Interval{Lo: marker, Hi: marker + sp})
			}
			halfLen = len(ans)
		} else {
			halfLen = len(ans)
			if fillOnEdge {
				ans = append(ans, interval.Interval{Lo: marker, Hi: marker + midBlkLen})
			} else {
				ans = append(ans, interval.Interval{Lo: marker + sp, Hi: marker + sp + midBlkLen})
			}
		}
	} else {
		if invert {
			if fillOnEdge {
				// the last emitted space belongs to the middle, drop it
				ans = ans[:len(ans)-1]
				marker -= sp
			}
			halfLen = len(ans)
			ans = append(ans, interval.Interval{Lo: marker, Hi: marker + midSpLen})
		} else {
			halfLen = len(ans)
		}
	}

	// reflect the first half about the span center
	shift := totArea + offset*2
	for idx := halfLen - 1; idx >= 0; idx-- {
		iv := ans[idx]
		ans = append(ans, interval.Interval{Lo: shift - iv.Hi, Hi: shift - iv.Lo})
	}
	return ans, sameSp, nil
}
