package strata

import "errors"

var (
	errEntityIndexOverflow    = errors.New("strata: entity index space exhausted")
	errGenerationOverflow     = errors.New("strata: entity slot generation overflow")
	errComponentNotFound      = errors.New("strata: entity does not have component")
	errExclusiveWhileReserved = errors.New("strata: exclusive allocator operation called with reservations pending")
	errReservationOverflow    = errors.New("strata: reservation counter overflow")
)

// ErrComponentNotFound is returned by GetComponent when the entity's
// archetype doesn't include the requested component.
var ErrComponentNotFound = errComponentNotFound
