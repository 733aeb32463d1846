package utils

import "errors"

// Sentinel errors shared by the storage and operator packages. Callers wrap
// them with fmt.Errorf("%w: ...") and test with errors.Is.
var (
	// ErrConfiguration is returned when an operator is used before its
	// coefficients or parameters are set. It is fatal for a solve.
	ErrConfiguration = errors.New("ebtensor: configuration error")

	// ErrShapeMismatch is raised by copies between regions or component
	// ranges of incompatible shape. Data is never silently truncated.
	ErrShapeMismatch = errors.New("ebtensor: shape mismatch")
)
