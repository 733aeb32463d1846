// Package grid describes the structured index space: cell boxes, face
// orientations, patch decompositions and periodic domains.
package grid

import "fmt"

type IntVect [3]int

func (iv IntVect) Add(o IntVect) IntVect { return IntVect{iv[0] + o[0], iv[1] + o[1], iv[2] + o[2]} }

func (iv IntVect) Sub(o IntVect) IntVect { return IntVect{iv[0] - o[0], iv[1] - o[1], iv[2] - o[2]} }

// Unit returns the IntVect with n in direction d
func Unit(d, n int) (iv IntVect) {
	iv[d] = n
	return
}

/*
Box is an inclusive, axis aligned range of cell indices. Only the first Dim
directions are active; a 2D box keeps Lo[2] == Hi[2] == 0 so loops over the
third axis run exactly once.
*/
type Box struct {
	Lo, Hi IntVect
	Dim    int
}

func NewBox(lo, hi IntVect, dim int) (b Box) {
	if dim < 1 || dim > 3 {
		panic(fmt.Errorf("box dimension must be 1, 2 or 3, have %d", dim))
	}
	b = Box{Lo: lo, Hi: hi, Dim: dim}
	for d := dim; d < 3; d++ {
		b.Lo[d], b.Hi[d] = 0, 0
	}
	return
}

func (b Box) Ok() bool {
	for d := 0; d < 3; d++ {
		if b.Hi[d] < b.Lo[d] {
			return false
		}
	}
	return b.Dim > 0
}

func (b Box) Length(d int) int { return b.Hi[d] - b.Lo[d] + 1 }

func (b Box) NumPts() int {
	if !b.Ok() {
		return 0
	}
	return b.Length(0) * b.Length(1) * b.Length(2)
}

func (b Box) Contains(iv IntVect) bool {
	for d := 0; d < 3; d++ {
		if iv[d] < b.Lo[d] || iv[d] > b.Hi[d] {
			return false
		}
	}
	return true
}

func (b Box) ContainsBox(o Box) bool { return b.Contains(o.Lo) && b.Contains(o.Hi) }

func (b Box) Intersect(o Box) (r Box, ok bool) {
	r = b
	for d := 0; d < 3; d++ {
		r.Lo[d] = max(b.Lo[d], o.Lo[d])
		r.Hi[d] = min(b.Hi[d], o.Hi[d])
	}
	ok = r.Ok()
	return
}

func (b Box) Grow(n int) Box {
	for d := 0; d < b.Dim; d++ {
		b.Lo[d] -= n
		b.Hi[d] += n
	}
	return b
}

func (b Box) GrowDir(d, n int) Box {
	b.Lo[d] -= n
	b.Hi[d] += n
	return b
}

func (b Box) GrowLo(d, n int) Box {
	b.Lo[d] -= n
	return b
}

func (b Box) GrowHi(d, n int) Box {
	b.Hi[d] += n
	return b
}

func (b Box) Shift(s IntVect) Box {
	b.Lo = b.Lo.Add(s)
	b.Hi = b.Hi.Add(s)
	return b
}

func (b Box) ShiftDir(d, n int) Box { return b.Shift(Unit(d, n)) }

// SurroundingNodes converts a cell box to the box of faces normal to d;
// face i lies between cells i-1 and i.
func (b Box) SurroundingNodes(d int) Box {
	b.Hi[d]++
	return b
}

// AdjCell returns the slab of width n just outside the face o of b
func (b Box) AdjCell(o Orientation, n int) Box {
	d := o.Dir
	if o.Side == Low {
		b.Hi[d] = b.Lo[d] - 1
		b.Lo[d] -= n
	} else {
		b.Lo[d] = b.Hi[d] + 1
		b.Hi[d] += n
	}
	return b
}

func (b Box) Coarsen(r int) Box {
	for d := 0; d < b.Dim; d++ {
		b.Lo[d] = floorDiv(b.Lo[d], r)
		b.Hi[d] = floorDiv(b.Hi[d], r)
	}
	return b
}

func (b Box) Refine(r int) Box {
	for d := 0; d < b.Dim; d++ {
		b.Lo[d] *= r
		b.Hi[d] = (b.Hi[d]+1)*r - 1
	}
	return b
}

func (b Box) SameShape(o Box) bool {
	for d := 0; d < 3; d++ {
		if b.Length(d) != o.Length(d) {
			return false
		}
	}
	return true
}

// Index is the linear offset of iv within b, i fastest
func (b Box) Index(iv IntVect) int {
	return (iv[0] - b.Lo[0]) + b.Length(0)*((iv[1]-b.Lo[1])+b.Length(1)*(iv[2]-b.Lo[2]))
}

func (b Box) ForEach(fn func(iv IntVect)) {
	if !b.Ok() {
		return
	}
	var iv IntVect
	for iv[2] = b.Lo[2]; iv[2] <= b.Hi[2]; iv[2]++ {
		for iv[1] = b.Lo[1]; iv[1] <= b.Hi[1]; iv[1]++ {
			for iv[0] = b.Lo[0]; iv[0] <= b.Hi[0]; iv[0]++ {
				fn(iv)
			}
		}
	}
}

func (b Box) String() string {
	return fmt.Sprintf("(%v,%v)", b.Lo[:b.Dim], b.Hi[:b.Dim])
}

func floorDiv(a, r int) int {
	if a >= 0 {
		return a / r
	}
	return -((-a + r - 1) / r)
}
