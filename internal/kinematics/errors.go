package kinematics

import "errors"

var (
	// ErrUnsetType indicates a particle whose species index is unset.
	ErrUnsetType = errors.New("kinematics: particle type not set")

	// ErrNegativeRadicand indicates (E1+E2)² - |p1+p2|² < 0.
	ErrNegativeRadicand = errors.New("kinematics: negative invariant mass radicand")

	// ErrSuperluminal indicates a boost with |β| >= 1.
	ErrSuperluminal = errors.New("kinematics: boost velocity not below c")

	// ErrMasslessParent indicates a decay of a particle with zero nominal mass.
	ErrMasslessParent = errors.New("kinematics: decay impossible: massless parent")

	// ErrMassDeficit indicates a parent mass below the sum of the daughter masses.
	ErrMassDeficit = errors.New("kinematics: decay impossible: mass deficit")
)
