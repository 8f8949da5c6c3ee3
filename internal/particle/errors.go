package particle

import "errors"

var (
	// ErrDuplicateType indicates a type with the same name is already registered.
	ErrDuplicateType = errors.New("particle: duplicate type")

	// ErrCapacityExceeded indicates the registry already holds MaxTypes types.
	ErrCapacityExceeded = errors.New("particle: capacity exceeded")

	// ErrNotFound indicates no type is registered under the requested name.
	ErrNotFound = errors.New("particle: type not found")

	// ErrIndexOutOfRange indicates an index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("particle: index out of range")

	// ErrInvalidType indicates a negative mass or width, a charge outside
	// {-1, 0, +1}, or an empty name.
	ErrInvalidType = errors.New("particle: invalid type")
)
