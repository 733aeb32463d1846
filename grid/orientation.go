package grid

type Side uint8

const (
	Low Side = iota
	High
)

// Orientation names one face of a box: a coordinate direction and a side
type Orientation struct {
	Dir  int
	Side Side
}

// Index follows the low faces first convention: Dir + Side*dim
func (o Orientation) Index(dim int) int { return o.Dir + int(o.Side)*dim }

// InwardStep is +1 on a low face and -1 on a high face
func (o Orientation) InwardStep() int {
	if o.Side == Low {
		return 1
	}
	return -1
}

func (o Orientation) Flip() Orientation { return Orientation{o.Dir, 1 - o.Side} }

func OrientationFromIndex(iface, dim int) Orientation {
	return Orientation{Dir: iface % dim, Side: Side(iface / dim)}
}

func NumFaces(dim int) int { return 2 * dim }

func Orientations(dim int) (faces []Orientation) {
	faces = make([]Orientation, 2*dim)
	for iface := range faces {
		faces[iface] = OrientationFromIndex(iface, dim)
	}
	return
}
