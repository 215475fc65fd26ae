package flights

import "errors"

// Typed error taxonomy for the store operations. Callers distinguish the
// failure kind with errors.Is instead of matching message strings.
var (
	// ErrSeatTaken reports a reserve on a seat another passenger holds.
	ErrSeatTaken = errors.New("seat already reserved")

	// ErrReservationNotFound reports a cancel with no matching reservation.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrInvalidSeat reports a seat number outside the flight's seat range.
	ErrInvalidSeat = errors.New("seat number out of range")

	// ErrInvalidInput reports a missing or empty required argument.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable reports that the backing store could not be
	// reached or queried.
	ErrStoreUnavailable = errors.New("flight store unavailable")
)
