package ebgeom

import "math"

// ImplicitFunction is positive in the fluid and negative inside bodies
type ImplicitFunction interface {
	Value(x [3]float64) float64
}

type ImplicitFunc func(x [3]float64) float64

func (f ImplicitFunc) Value(x [3]float64) float64 { return f(x) }

// Sphere is a body of radius Radius; it is a circle for 2D grids
type Sphere struct {
	Center [3]float64
	Radius float64
	Dim    int
}

func (s Sphere) Value(x [3]float64) float64 {
	var r2 float64
	for d := 0; d < s.Dim; d++ {
		r2 += (x[d] - s.Center[d]) * (x[d] - s.Center[d])
	}
	return math.Sqrt(r2) - s.Radius
}

// Plane has its fluid on the side Normal points to
type Plane struct {
	Point, Normal [3]float64
}

func (p Plane) Value(x [3]float64) float64 {
	var v float64
	for d := 0; d < 3; d++ {
		v += (x[d] - p.Point[d]) * p.Normal[d]
	}
	return v
}

// Complement swaps fluid and body
type Complement struct {
	F ImplicitFunction
}

func (c Complement) Value(x [3]float64) float64 { return -c.F.Value(x) }

// Union is the union of bodies: fluid only where every function sees fluid
type Union []ImplicitFunction

func (u Union) Value(x [3]float64) float64 {
	v := math.Inf(1)
	for _, f := range u {
		v = math.Min(v, f.Value(x))
	}
	return v
}
