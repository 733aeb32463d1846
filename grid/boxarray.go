package grid

type BoxArray []Box

// NewBoxArray chops domain into patches no longer than maxSize in any
// active direction
func NewBoxArray(domain Box, maxSize int) (ba BoxArray) {
	var cuts [3][][2]int
	for d := 0; d < 3; d++ {
		if d >= domain.Dim {
			cuts[d] = [][2]int{{0, 0}}
			continue
		}
		for lo := domain.Lo[d]; lo <= domain.Hi[d]; lo += maxSize {
			cuts[d] = append(cuts[d], [2]int{lo, min(lo+maxSize-1, domain.Hi[d])})
		}
	}
	for _, ck := range cuts[2] {
		for _, cj := range cuts[1] {
			for _, ci := range cuts[0] {
				ba = append(ba, NewBox(IntVect{ci[0], cj[0], ck[0]}, IntVect{ci[1], cj[1], ck[1]}, domain.Dim))
			}
		}
	}
	return
}

func (ba BoxArray) NumPts() (n int) {
	for _, b := range ba {
		n += b.NumPts()
	}
	return
}

func (ba BoxArray) MinimalBox() (mb Box) {
	if len(ba) == 0 {
		return
	}
	mb = ba[0]
	for _, b := range ba[1:] {
		for d := 0; d < 3; d++ {
			mb.Lo[d] = min(mb.Lo[d], b.Lo[d])
			mb.Hi[d] = max(mb.Hi[d], b.Hi[d])
		}
	}
	return
}

func (ba BoxArray) Coarsen(r int) (cba BoxArray) {
	cba = make(BoxArray, len(ba))
	for i, b := range ba {
		cba[i] = b.Coarsen(r)
	}
	return
}

// Coarsenable is true when every box coarsens by r without losing cells
func (ba BoxArray) Coarsenable(r int) bool {
	for _, b := range ba {
		if b.Coarsen(r).Refine(r) != b {
			return false
		}
	}
	return true
}

// Intersections returns the indices of all boxes that overlap b
func (ba BoxArray) Intersections(b Box) (hits []int) {
	for i, bb := range ba {
		if _, ok := bb.Intersect(b); ok {
			hits = append(hits, i)
		}
	}
	return
}

// Covers reports whether iv lies in a box, returning its index
func (ba BoxArray) Covers(iv IntVect) (int, bool) {
	for i, b := range ba {
		if b.Contains(iv) {
			return i, true
		}
	}
	return -1, false
}

func (ba BoxArray) Equal(o BoxArray) bool {
	if len(ba) != len(o) {
		return false
	}
	for i := range ba {
		if ba[i] != o[i] {
			return false
		}
	}
	return true
}
