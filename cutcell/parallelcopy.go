package cutcell

import (
	"fmt"
	"sort"

	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/metrics"
	"github.com/notargets/ebtensor/utils"
)

type copyMsg struct {
	dstPatch grid.PatchIndex
	srcPatch grid.PatchIndex
	shift    int
	region   grid.Box // destination cells
	data     []float64
}

/*
ParallelCopy moves components [scomp, scomp+ncomp) of src into
[dcomp, dcomp+ncomp) of mcf wherever the source patches grown by sng overlap
the destination patches grown by dng, periodic images included. The two
collections may have different decompositions.

The copy is collective over the worker ranks: each rank packs the overlaps of
the source patches it owns and posts them to the owners of the destination
patches, then every rank unpacks what it received. Regions whose source or
destination store is Empty are skipped, so destination values there stay as
they were. Argument validation happens before any data moves; a returned
error leaves mcf unchanged.
*/
func (mcf *MultiCutFab) ParallelCopy(src *MultiCutFab, scomp, dcomp, ncomp, sng, dng int,
	period grid.Periodicity) (err error) {
	if err = mcf.checkParallelCopy(src, scomp, dcomp, ncomp, sng, dng); err != nil {
		return
	}
	var (
		shifts = period.Shifts()
		NP     = max(mcf.decomp.NRanks(), src.decomp.NRanks(), 1)
		mb     = utils.NewMailBox[*copyMsg](NP)
	)
	// Pack and post, one goroutine per rank
	utils.ForEachRank(NP, func(rank int) {
		var packed int
		for _, q := range src.decomp.DistMap.PatchesOf(rank) {
			sf := src.fabs[q]
			if !sf.IsAllocated() {
				continue
			}
			srcRegion := src.decomp.Box(q).Grow(sng)
			for p := range mcf.fabs {
				df := mcf.fabs[p]
				if !df.IsAllocated() {
					continue
				}
				dstRegion := mcf.decomp.Box(grid.PatchIndex(p)).Grow(dng)
				for is, s := range shifts {
					ov, ok := dstRegion.Intersect(srcRegion.Shift(s))
					if !ok {
						continue
					}
					msg := &copyMsg{
						dstPatch: grid.PatchIndex(p),
						srcPatch: q,
						shift:    is,
						region:   ov,
						data:     make([]float64, ov.NumPts()*ncomp),
					}
					packed += sf.CopyToMem(ov.Shift(grid.IntVect{}.Sub(s)), scomp, ncomp, msg.data)
					mb.PostMessage(rank, mcf.decomp.Owner(grid.PatchIndex(p)), msg)
				}
			}
		}
		metrics.Default.ParallelCopyBytes.Add(float64(packed))
		mb.DeliverMyMessages(rank)
	})
	// Every rank has delivered; unpack in a fixed order so overlapping
	// sources resolve the same way on every run
	utils.ForEachRank(NP, func(rank int) {
		msgs := append([]*copyMsg{}, mb.ReceiveMyMessages(rank)...)
		mb.ClearMyMessages(rank)
		sort.Slice(msgs, func(i, j int) bool {
			if msgs[i].srcPatch != msgs[j].srcPatch {
				return msgs[i].srcPatch < msgs[j].srcPatch
			}
			if msgs[i].dstPatch != msgs[j].dstPatch {
				return msgs[i].dstPatch < msgs[j].dstPatch
			}
			return msgs[i].shift < msgs[j].shift
		})
		for _, msg := range msgs {
			mcf.fabs[msg.dstPatch].CopyFromMem(msg.region, dcomp, ncomp, msg.data)
		}
	})
	return
}

func (mcf *MultiCutFab) checkParallelCopy(src *MultiCutFab, scomp, dcomp, ncomp, sng, dng int) error {
	switch {
	case mcf.decomp == nil || src.decomp == nil:
		return fmt.Errorf("%w: parallel copy on an undefined collection", utils.ErrConfiguration)
	case mcf.decomp.Dim() != src.decomp.Dim():
		return fmt.Errorf("%w: parallel copy between %dD and %dD collections",
			utils.ErrShapeMismatch, src.decomp.Dim(), mcf.decomp.Dim())
	case ncomp < 1 || scomp < 0 || dcomp < 0 || scomp+ncomp > src.nComp || dcomp+ncomp > mcf.nComp:
		return fmt.Errorf("%w: components [%d,%d) of %d into [%d,%d) of %d", utils.ErrShapeMismatch,
			scomp, scomp+ncomp, src.nComp, dcomp, dcomp+ncomp, mcf.nComp)
	case sng < 0 || dng < 0 || sng > src.nGrow || dng > mcf.nGrow:
		return fmt.Errorf("%w: ghost widths %d -> %d exceed %d -> %d", utils.ErrShapeMismatch,
			sng, dng, src.nGrow, mcf.nGrow)
	}
	return nil
}
