package grid

import "fmt"

// PatchIndex identifies one patch of a Decomposition
type PatchIndex int

/*
Decomposition is a BoxArray together with the ranks that own its patches.
Ranks are worker goroutines sharing one address space, so every patch is
local to the process; ownership decides which worker moves a patch's data
during collective exchanges.
*/
type Decomposition struct {
	Boxes   BoxArray
	DistMap DistributionMapping
}

func NewDecomposition(ba BoxArray, dm DistributionMapping) *Decomposition {
	if len(ba) != len(dm.Owners) {
		panic(fmt.Errorf("distribution mapping has %d owners for %d patches", len(dm.Owners), len(ba)))
	}
	return &Decomposition{Boxes: ba, DistMap: dm}
}

func (dc *Decomposition) Dim() int {
	if len(dc.Boxes) == 0 {
		return 0
	}
	return dc.Boxes[0].Dim
}

func (dc *Decomposition) NumPatches() int { return len(dc.Boxes) }

func (dc *Decomposition) NRanks() int { return dc.DistMap.NRanks }

func (dc *Decomposition) Box(p PatchIndex) Box { return dc.Boxes[p] }

func (dc *Decomposition) Owner(p PatchIndex) int { return dc.DistMap.Owner(p) }

func (dc *Decomposition) LocalPatches() (patches []PatchIndex) {
	patches = make([]PatchIndex, len(dc.Boxes))
	for p := range patches {
		patches[p] = PatchIndex(p)
	}
	return
}

// Coarsen keeps the ownership of each patch
func (dc *Decomposition) Coarsen(r int) *Decomposition {
	return &Decomposition{Boxes: dc.Boxes.Coarsen(r), DistMap: dc.DistMap}
}

func (dc *Decomposition) Equal(o *Decomposition) bool {
	if dc == o {
		return true
	}
	if o == nil || !dc.Boxes.Equal(o.Boxes) {
		return false
	}
	for p := range dc.DistMap.Owners {
		if dc.DistMap.Owners[p] != o.DistMap.Owners[p] {
			return false
		}
	}
	return true
}
