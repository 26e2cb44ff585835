// Package clinicerr defines the booking engine's error taxonomy. Callers
// classify failures with errors.Is; detail about the offending slot or date
// is carried by wrapping.
package clinicerr

import "errors"

var (
	// ErrNotFound reports a referenced slot or entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation reports malformed input: misaligned times, inverted
	// ranges, bad durations.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden reports a role or ownership gate failure.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict reports a slot that is not free at mutation time.
	ErrConflict = errors.New("slot not free")

	// ErrDiscontinuity reports a multi-slot chain with a missing link.
	ErrDiscontinuity = errors.New("slot chain not contiguous")

	// Checkout re-validation failures. Any one of them aborts the whole
	// checkout.
	ErrEmptyCart       = errors.New("cart is empty")
	ErrSlotGone        = errors.New("held slot no longer exists")
	ErrSlotUnavailable = errors.New("slot already booked")
	ErrSlotCancelled   = errors.New("slot was cancelled")
	ErrDoctorAbsent    = errors.New("doctor absent on slot date")
)
