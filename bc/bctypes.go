// Package bc describes physical domain boundaries per patch: the condition
// kind and boundary distance of every face and component, the masks telling
// real boundaries from patch neighbours, and the prescribed boundary data.
package bc

import (
	"fmt"
	"strings"

	"github.com/notargets/ebtensor/utils"
)

// BCType is the condition kind applied on one face to one component
type BCType uint8

const (
	// BCInterior marks a face with no physical boundary behind it
	BCInterior BCType = iota

	BCDirichlet  // Fixed value at the boundary
	BCNeumann    // Fixed outward normal derivative
	BCReflectOdd // Antisymmetric reflection, the normal velocity at a symmetry plane
	BCPeriodic   // Ghosts come from the periodic image
)

var bcNames = map[BCType]string{
	BCInterior:   "Interior",
	BCDirichlet:  "Dirichlet",
	BCNeumann:    "Neumann",
	BCReflectOdd: "ReflectOdd",
	BCPeriodic:   "Periodic",
}

func (bc BCType) String() string {
	if name, ok := bcNames[bc]; ok {
		return name
	}
	return "Unknown"
}

// IsPhysical is true for the kinds that extrapolate ghost values
func (bc BCType) IsPhysical() bool {
	return bc == BCDirichlet || bc == BCNeumann || bc == BCReflectOdd
}

// BCNameMap maps the names accepted in input files to BCType
// Keys are lowercase for case-insensitive matching
var BCNameMap = map[string]BCType{
	"interior": BCInterior,
	"internal": BCInterior,
	"none":     BCInterior,

	"dirichlet": BCDirichlet,
	"wall":      BCDirichlet,
	"no_slip":   BCDirichlet,
	"noslip":    BCDirichlet,
	"inflow":    BCDirichlet,

	"neumann":  BCNeumann,
	"outflow":  BCNeumann,
	"foextrap": BCNeumann,

	"reflect_odd": BCReflectOdd,
	"reflectodd":  BCReflectOdd,

	"periodic": BCPeriodic,
}

// ParseBCName converts a boundary condition name to BCType
// The matching is case-insensitive and trims whitespace
func ParseBCName(name string) (BCType, error) {
	lowerName := strings.ToLower(strings.TrimSpace(name))
	if bcType, ok := BCNameMap[lowerName]; ok {
		return bcType, nil
	}
	return BCInterior, fmt.Errorf("%w: unknown boundary condition %q", utils.ErrConfiguration, name)
}
