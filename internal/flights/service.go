package flights

import (
	"context"
	"errors"
	"fmt"

	"github.com/vuelacn/flightdesk/internal/storage/sqlite"
	"github.com/vuelacn/flightdesk/pkg/logger"
)

// DefaultSeatCount is the number of seats per flight when not configured
const DefaultSeatCount = 20

// Service implements the reservation and availability engine on top of the
// SQLite storage layer. Every operation is a short-lived unit of work: it
// reads or writes through the shared handle and returns, holding no state
// between calls.
type Service struct {
	flights      *sqlite.FlightStorage
	reservations *sqlite.ReservationStorage
	seatCount    int
	logger       *logger.Logger
}

// NewService creates a new flight service
func NewService(flights *sqlite.FlightStorage, reservations *sqlite.ReservationStorage, seatCount int, logger *logger.Logger) *Service {
	if seatCount <= 0 {
		seatCount = DefaultSeatCount
	}
	return &Service{
		flights:      flights,
		reservations: reservations,
		seatCount:    seatCount,
		logger:       logger.Named("flights-service"),
	}
}

// SeatCount returns the seat range bound used by availability and validation
func (s *Service) SeatCount() int {
	return s.seatCount
}

// GetStatus returns the status record for a flight. A flight with no record
// is not an error: it resolves to a synthetic Unknown view with the queried
// identifier echoed back and null route fields.
func (s *Service) GetStatus(ctx context.Context, flightID string) (*StatusView, error) {
	if flightID == "" {
		return nil, fmt.Errorf("%w: flight id must not be empty", ErrInvalidInput)
	}

	record, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if record == nil {
		return &StatusView{Flight: flightID, Status: StatusUnknown}, nil
	}

	return &StatusView{
		Flight:      record.ID,
		Status:      Status(record.Status),
		Origin:      &record.Origin,
		Destination: &record.Destination,
		Date:        &record.Date,
		Time:        &record.Time,
	}, nil
}

// ListOptions returns every flight on the given route and date together with
// its first available seat. The reservation set is read fresh for each
// flight, so two sequential calls may observe different availability.
func (s *Service) ListOptions(ctx context.Context, origin, destination, date string) (*OptionsView, error) {
	if origin == "" || destination == "" || date == "" {
		return nil, fmt.Errorf("%w: origin, destination and date must not be empty", ErrInvalidInput)
	}

	records, err := s.flights.FindByRoute(ctx, origin, destination, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	view := &OptionsView{
		Origin:      origin,
		Destination: destination,
		Date:        date,
		Options:     make([]FlightOption, 0, len(records)),
	}
	for _, record := range records {
		seat, err := s.firstAvailableSeat(ctx, record.ID)
		if err != nil {
			return nil, err
		}
		view.Options = append(view.Options, FlightOption{
			Flight: record.ID,
			Time:   record.Time,
			Status: Status(record.Status),
			Seat:   seat,
		})
	}

	return view, nil
}

// firstAvailableSeat scans seat numbers 1..seatCount in ascending order and
// returns the lowest one not present in the reservation set, or nil when the
// flight is full. Any reservation row counts as occupancy.
func (s *Service) firstAvailableSeat(ctx context.Context, flightID string) (*int, error) {
	taken, err := s.reservations.ReservedSeats(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	for n := 1; n <= s.seatCount; n++ {
		if !taken[n] {
			seat := n
			return &seat, nil
		}
	}
	return nil, nil
}

// Reserve allocates a seat on a flight to a passenger. The seat number must
// lie within 1..seatCount; a seat another passenger already holds yields
// ErrSeatTaken and no state change.
func (s *Service) Reserve(ctx context.Context, flightID string, seat int, passengerID string) (*ReservationView, error) {
	if flightID == "" || passengerID == "" {
		return nil, fmt.Errorf("%w: flight id and passenger id must not be empty", ErrInvalidInput)
	}
	if seat < 1 || seat > s.seatCount {
		return nil, fmt.Errorf("%w: seat %d not in 1..%d", ErrInvalidSeat, seat, s.seatCount)
	}

	err := s.reservations.Insert(ctx, &sqlite.ReservationRecord{
		Flight:    flightID,
		Seat:      seat,
		Passenger: passengerID,
	})
	if errors.Is(err, sqlite.ErrDuplicateReservation) {
		return nil, ErrSeatTaken
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.logger.Info("Reserved seat",
		logger.String("flight", flightID),
		logger.Int("seat", seat),
		logger.String("passenger", passengerID),
	)

	return &ReservationView{
		Flight:    flightID,
		Seat:      seat,
		Passenger: passengerID,
		Status:    "Reserved",
	}, nil
}

// Cancel releases a reservation. The delete matches on the full
// (flight, seat, passenger) triple; a non-matching triple yields
// ErrReservationNotFound and no state change.
func (s *Service) Cancel(ctx context.Context, flightID string, seat int, passengerID string) (*ReservationView, error) {
	if flightID == "" || passengerID == "" {
		return nil, fmt.Errorf("%w: flight id and passenger id must not be empty", ErrInvalidInput)
	}

	affected, err := s.reservations.Delete(ctx, flightID, seat, passengerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return nil, ErrReservationNotFound
	}

	s.logger.Info("Cancelled reservation",
		logger.String("flight", flightID),
		logger.Int("seat", seat),
		logger.String("passenger", passengerID),
	)

	return &ReservationView{
		Flight:    flightID,
		Seat:      seat,
		Passenger: passengerID,
		Status:    "Cancelled",
	}, nil
}

// Verify reports whether a passenger holds a reservation on a flight, and if
// so on which seat.
func (s *Service) Verify(ctx context.Context, flightID, passengerID string) (*VerificationView, error) {
	if flightID == "" || passengerID == "" {
		return nil, fmt.Errorf("%w: flight id and passenger id must not be empty", ErrInvalidInput)
	}

	record, err := s.reservations.Find(ctx, flightID, passengerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	view := &VerificationView{
		Flight:    flightID,
		Passenger: passengerID,
	}
	if record != nil {
		view.Reserved = true
		view.Seat = &record.Seat
	}
	return view, nil
}
