package grid

import (
	"fmt"
	"log"
	"math"

	metis "github.com/notargets/go-metis"

	"github.com/notargets/ebtensor/utils"
)

// DistributionMapping assigns every patch to an owning worker rank
type DistributionMapping struct {
	Owners []int
	NRanks int
}

// NewContiguousMapping hands each rank a contiguous run of patches
func NewContiguousMapping(nranks, npatches int) (dm DistributionMapping) {
	if nranks < 1 {
		nranks = 1
	}
	dm = DistributionMapping{Owners: make([]int, npatches), NRanks: nranks}
	if npatches == 0 {
		return
	}
	pm := utils.NewPartitionMap(nranks, npatches)
	for p := 0; p < npatches; p++ {
		bn, _, _ := pm.GetBucket(p)
		dm.Owners[p] = bn
	}
	return
}

/*
NewMetisMapping partitions the patch adjacency graph with METIS. Vertex
weights are patch cell counts, edge weights the number of cells two patches
exchange through one cell ghost layers. When there is nothing for METIS
to decide (one rank, fewer patches than ranks) the contiguous mapping is used.
*/
func NewMetisMapping(ba BoxArray, nranks int, imbalance float32) (dm DistributionMapping, err error) {
	if nranks <= 1 || len(ba) <= nranks {
		return NewContiguousMapping(nranks, len(ba)), nil
	}
	xadj, adjncy, vwgt, adjwgt := buildPatchGraph(ba)

	opts := make([]int32, metis.NoOptions)
	if err = metis.SetDefaultOptions(opts); err != nil {
		return dm, fmt.Errorf("failed to set METIS options: %w", err)
	}
	opts[metis.OptionObjType] = metis.ObjTypeVol
	ubvec := []float32{1 + imbalance}

	part, objval, err := metis.PartGraphKwayWeighted(
		xadj, adjncy, vwgt, adjwgt,
		int32(nranks), nil, ubvec, opts,
	)
	if err != nil {
		return dm, fmt.Errorf("METIS partitioning failed: %w", err)
	}
	dm = DistributionMapping{Owners: make([]int, len(ba)), NRanks: nranks}
	for p := range ba {
		dm.Owners[p] = int(part[p])
	}
	load := dm.RankLoads(ba)
	minLoad, maxLoad, avgLoad := math.MaxInt, 0, 0.
	for _, l := range load {
		minLoad, maxLoad = min(minLoad, l), max(maxLoad, l)
		avgLoad += float64(l)
	}
	avgLoad /= float64(nranks)
	log.Printf("METIS mapped %d patches onto %d ranks, comm volume %d, load min/avg/max = %d/%.1f/%d",
		len(ba), nranks, objval, minLoad, avgLoad, maxLoad)
	return
}

func buildPatchGraph(ba BoxArray) (xadj, adjncy, vwgt, adjwgt []int32) {
	np := len(ba)
	xadj = make([]int32, np+1)
	vwgt = make([]int32, np)
	for p, b := range ba {
		vwgt[p] = int32(b.NumPts())
		grown := b.Grow(1)
		for q, bq := range ba {
			if q == p {
				continue
			}
			// Both directions of the exchange, so the weights are symmetric
			if ov, ok := grown.Intersect(bq); ok {
				back, _ := bq.Grow(1).Intersect(b)
				adjncy = append(adjncy, int32(q))
				adjwgt = append(adjwgt, int32(ov.NumPts()+back.NumPts()))
			}
		}
		xadj[p+1] = int32(len(adjncy))
	}
	return
}

func (dm DistributionMapping) Owner(p PatchIndex) int { return dm.Owners[p] }

// PatchesOf lists the patches owned by rank in ascending order
func (dm DistributionMapping) PatchesOf(rank int) (patches []PatchIndex) {
	for p, owner := range dm.Owners {
		if owner == rank {
			patches = append(patches, PatchIndex(p))
		}
	}
	return
}

func (dm DistributionMapping) RankLoads(ba BoxArray) (load []int) {
	load = make([]int, dm.NRanks)
	for p, owner := range dm.Owners {
		load[owner] += ba[p].NumPts()
	}
	return
}
