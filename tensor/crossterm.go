package tensor

import (
	"github.com/notargets/ebtensor/fab"
	"github.com/notargets/ebtensor/grid"
)

/*
CrossTermAssembler computes the part of

	-beta div( eta (grad u + grad u^T) + (kappa - 2/3 eta) (div u) I )

that couples different components through tangential derivatives. On the
faces normal to d the flux of component c is

	c == d:  -beta (kappa - 2/3 eta) sum_{e != d} du_e/dx_e
	c != d:  -beta eta du_d/dx_c

kappa only enters the trace part and eta the shear part. Tangential
derivatives are centred on the face from the four cells around it.
*/
type CrossTermAssembler struct {
	Beta float64
}

// Fluxes returns one Fab per direction over the faces of vbox normal to it.
// vel needs one ghost cell including edges; eta and kappa are face centred.
func (ca CrossTermAssembler) Fluxes(vbox grid.Box, vel *fab.Fab, eta, kappa [3]*fab.Fab,
	dxinv [3]float64) (fluxes [3]*fab.Fab) {
	dim := vbox.Dim
	for d := 0; d < dim; d++ {
		fx := fab.NewFab(vbox.SurroundingNodes(d), dim)
		fx.Box().ForEach(func(iv grid.IntVect) {
			var (
				etaf   = eta[d].Get(iv, 0)
				traceC = kappa[d].Get(iv, 0) - 2./3.*etaf
				divT   float64
			)
			for c := 0; c < dim; c++ {
				if c == d {
					continue
				}
				divT += tangential(vel, iv, d, c, c, dxinv[c])
				fx.Set(iv, c, -ca.Beta*etaf*tangential(vel, iv, d, c, d, dxinv[c]))
			}
			fx.Set(iv, d, -ca.Beta*traceC*divT)
		})
		fluxes[d] = fx
	}
	return
}

// tangential is du_comp/dx_e on the face iv normal to d
func tangential(vel *fab.Fab, iv grid.IntVect, d, e, comp int, dxinv float64) float64 {
	var (
		lo = iv.Add(grid.Unit(d, -1))
		pe = grid.Unit(e, 1)
		me = grid.Unit(e, -1)
	)
	return (vel.Get(iv.Add(pe), comp) + vel.Get(lo.Add(pe), comp) -
		vel.Get(iv.Add(me), comp) - vel.Get(lo.Add(me), comp)) * 0.25 * dxinv
}

// Divergence adds the flux divergence to out on vbox
func Divergence(vbox grid.Box, out *fab.Fab, fluxes [3]*fab.Fab, dxinv [3]float64) {
	dim := vbox.Dim
	vbox.ForEach(func(iv grid.IntVect) {
		for c := 0; c < dim; c++ {
			var div float64
			for d := 0; d < dim; d++ {
				div += (fluxes[d].Get(iv.Add(grid.Unit(d, 1)), c) - fluxes[d].Get(iv, c)) * dxinv[d]
			}
			out.Add(iv, c, div)
		}
	})
}

// Accumulate computes all the fluxes, then adds their divergence to out
func (ca CrossTermAssembler) Accumulate(vbox grid.Box, out, vel *fab.Fab, eta, kappa [3]*fab.Fab,
	dxinv [3]float64) {
	Divergence(vbox, out, ca.Fluxes(vbox, vel, eta, kappa, dxinv), dxinv)
}
