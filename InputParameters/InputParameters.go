package InputParameters

import (
	"fmt"
	"os"
	"sort"

	"github.com/ghodss/yaml"

	"github.com/notargets/ebtensor/bc"
	"github.com/notargets/ebtensor/grid"
	"github.com/notargets/ebtensor/utils"
)

// Body describes the embedded geometry; the fluid is outside the body
type Body struct {
	Type   string    `json:"Type"` // "none", "sphere" or "plane"
	Center []float64 `json:"Center"`
	Radius float64   `json:"Radius"`
	Point  []float64 `json:"Point"`
	Normal []float64 `json:"Normal"`
	Invert bool      `json:"Invert"` // Fluid inside the body instead
}

// Parameters obtained from the YAML input file
type InputParametersEB struct {
	Title          string               `json:"Title"`
	Dimension      int                  `json:"Dimension"`
	Cells          []int                `json:"Cells"`
	ProbLo         []float64            `json:"ProbLo"`
	ProbHi         []float64            `json:"ProbHi"`
	Periodic       []bool               `json:"Periodic"`
	MaxGridSize    int                  `json:"MaxGridSize"`
	NRanks         int                  `json:"NRanks"`
	Partitioner    string               `json:"Partitioner"` // "contiguous" or "metis"
	NGrow          int                  `json:"NGrow"`
	NComp          int                  `json:"NComp"`
	VolFracSamples int                  `json:"VolFracSamples"`
	Body           Body                 `json:"Body"`
	BCs            map[string][]string  `json:"BCs"`            // Face name (xlo, yhi, ...) to per component kinds
	BoundaryValues map[string][]float64 `json:"BoundaryValues"` // Face name to per component values
	Alpha          float64              `json:"Alpha"`
	Beta           float64              `json:"Beta"`
	Eta            float64              `json:"Eta"`
	Kappa          float64              `json:"Kappa"`
	MaxOrder       int                  `json:"MaxOrder"`
	MaxCoarsening  int                  `json:"MaxCoarsening"`
}

var faceNames = []string{"xlo", "ylo", "zlo", "xhi", "yhi", "zhi"}

// FaceName is the input file name of face o, e.g. "xlo"
func FaceName(o grid.Orientation) string {
	return faceNames[o.Dir+3*int(o.Side)]
}

// NewInputParametersEB returns the defaults the input file overrides
func NewInputParametersEB() *InputParametersEB {
	return &InputParametersEB{
		Title:          "Untitled",
		Dimension:      2,
		MaxGridSize:    16,
		NRanks:         1,
		Partitioner:    "contiguous",
		NGrow:          1,
		NComp:          1,
		VolFracSamples: 4,
		Body:           Body{Type: "none"},
		Beta:           1,
		Eta:            1,
		MaxOrder:       2,
		MaxCoarsening:  8,
	}
}

func (ip *InputParametersEB) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

// ReadFile parses and validates an input file
func ReadFile(fileName string) (ip *InputParametersEB, err error) {
	var data []byte
	if data, err = os.ReadFile(fileName); err != nil {
		return
	}
	ip = NewInputParametersEB()
	if err = ip.Parse(data); err != nil {
		return nil, err
	}
	if err = ip.Validate(); err != nil {
		return nil, err
	}
	return
}

func (ip *InputParametersEB) Validate() error {
	dim := ip.Dimension
	switch {
	case dim != 2 && dim != 3:
		return configError("dimension %d, want 2 or 3", dim)
	case len(ip.Cells) != dim || len(ip.ProbLo) != dim || len(ip.ProbHi) != dim:
		return configError("Cells, ProbLo and ProbHi need %d entries", dim)
	case len(ip.Periodic) != 0 && len(ip.Periodic) != dim:
		return configError("Periodic needs %d entries", dim)
	case ip.MaxGridSize < 1 || ip.NRanks < 1 || ip.NComp < 1 || ip.NGrow < 0:
		return configError("MaxGridSize, NRanks and NComp must be positive, NGrow non negative")
	case ip.Partitioner != "contiguous" && ip.Partitioner != "metis":
		return configError("unknown partitioner %q", ip.Partitioner)
	}
	for d := 0; d < dim; d++ {
		if ip.Cells[d] < 1 || ip.ProbHi[d] <= ip.ProbLo[d] {
			return configError("direction %d has %d cells over [%g,%g]", d, ip.Cells[d], ip.ProbLo[d], ip.ProbHi[d])
		}
	}
	for name := range ip.BCs {
		if !isFaceName(name, dim) {
			return configError("unknown face %q in BCs", name)
		}
	}
	return bc.ValidateOrder(ip.MaxOrder)
}

func configError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", utils.ErrConfiguration, fmt.Sprintf(format, args...))
}

func isFaceName(name string, dim int) bool {
	for _, o := range grid.Orientations(dim) {
		if FaceName(o) == name {
			return true
		}
	}
	return false
}

func (ip *InputParametersEB) Domain() grid.Box {
	var hi grid.IntVect
	for d := 0; d < ip.Dimension; d++ {
		hi[d] = ip.Cells[d] - 1
	}
	return grid.NewBox(grid.IntVect{}, hi, ip.Dimension)
}

func (ip *InputParametersEB) Geometry() grid.Geometry {
	var lo, hi [3]float64
	var periodic [3]bool
	copy(lo[:], ip.ProbLo)
	copy(hi[:], ip.ProbHi)
	copy(periodic[:], ip.Periodic)
	return grid.NewGeometry(ip.Domain(), lo, hi, periodic)
}

/*
FaceBCs converts the BCs map to per face, per component kinds for ncomp
components. Faces on periodic directions are periodic; other faces missing
from the map are Dirichlet. A face listing a single kind applies it to every
component.
*/
func (ip *InputParametersEB) FaceBCs(ncomp int) (fb bc.FaceBCs, err error) {
	geom := ip.Geometry()
	fb = bc.UniformBCs(ip.Dimension, ncomp, bc.BCDirichlet)
	for _, o := range grid.Orientations(ip.Dimension) {
		kinds := fb[o.Index(ip.Dimension)]
		if geom.Periodic[o.Dir] {
			for n := range kinds {
				kinds[n] = bc.BCPeriodic
			}
			continue
		}
		names, ok := ip.BCs[FaceName(o)]
		if !ok {
			continue
		}
		if len(names) != 1 && len(names) != ncomp {
			return nil, fmt.Errorf("%w: face %s lists %d kinds for %d components",
				utils.ErrShapeMismatch, FaceName(o), len(names), ncomp)
		}
		for n := range kinds {
			name := names[0]
			if len(names) == ncomp {
				name = names[n]
			}
			if kinds[n], err = bc.ParseBCName(name); err != nil {
				return nil, err
			}
		}
	}
	return
}

// BoundaryValue is the prescribed value of comp on face o, zero if absent
func (ip *InputParametersEB) BoundaryValue(o grid.Orientation, comp int) float64 {
	vals := ip.BoundaryValues[FaceName(o)]
	switch {
	case len(vals) == 0:
		return 0
	case comp < len(vals):
		return vals[comp]
	default:
		return vals[len(vals)-1]
	}
}

func (ip *InputParametersEB) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d]\t\t\t= Dimension\n", ip.Dimension)
	fmt.Printf("%v\t\t= Cells\n", ip.Cells)
	fmt.Printf("%v - %v\t= Problem Extent\n", ip.ProbLo, ip.ProbHi)
	fmt.Printf("%v\t\t= Periodic\n", ip.Periodic)
	fmt.Printf("[%d]\t\t\t= Max Grid Size\n", ip.MaxGridSize)
	fmt.Printf("[%d, %s]\t\t= Ranks, Partitioner\n", ip.NRanks, ip.Partitioner)
	fmt.Printf("[%s]\t\t\t= Body\n", ip.Body.Type)
	fmt.Printf("%8.5f %8.5f\t= Alpha, Beta\n", ip.Alpha, ip.Beta)
	fmt.Printf("%8.5f %8.5f\t= Eta, Kappa\n", ip.Eta, ip.Kappa)
	fmt.Printf("[%d]\t\t\t= Extrapolation Order\n", ip.MaxOrder)
	keys := make([]string, len(ip.BCs))
	i := 0
	for k := range ip.BCs {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, ip.BCs[key])
	}
}
