package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vuelacn/flightdesk/pkg/logger"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicateReservation is returned by Insert when the (flight, seat) pair
// is already held. It maps the database uniqueness violation so callers never
// have to inspect driver error codes themselves.
var ErrDuplicateReservation = errors.New("reservation already exists for this flight and seat")

// ReservationStorage handles storage of seat reservations
type ReservationStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewReservationStorage creates a new SQLite reservation storage
func NewReservationStorage(db *sql.DB, logger *logger.Logger) *ReservationStorage {
	return &ReservationStorage{
		db:     db,
		logger: logger.Named("sqlite-reservations"),
	}
}

// ReservedSeats returns the set of seat numbers currently held on a flight
func (s *ReservationStorage) ReservedSeats(ctx context.Context, flightID string) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT numero_asiento FROM reservas WHERE vuelo = ?`,
		flightID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query reserved seats: %w", err)
	}
	defer rows.Close()

	taken := make(map[int]bool)
	for rows.Next() {
		var seat int
		if err := rows.Scan(&seat); err != nil {
			return nil, fmt.Errorf("failed to scan seat number: %w", err)
		}
		taken[seat] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reserved seats: %w", err)
	}

	return taken, nil
}

// Insert stores a reservation. The existence check and the insert are a
// single statement, so two callers racing for the same seat cannot both
// succeed: the loser gets ErrDuplicateReservation from the UNIQUE constraint.
func (s *ReservationStorage) Insert(ctx context.Context, record *ReservationRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reservas (vuelo, numero_asiento, id_pasajero) VALUES (?, ?, ?)`,
		record.Flight, record.Seat, record.Passenger,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReservation
		}
		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	return nil
}

// Delete removes the reservation matching the full (flight, seat, passenger)
// triple and reports how many rows were removed. Matching on the passenger id
// as well is the ownership check: a passenger cannot release a seat someone
// else holds.
func (s *ReservationStorage) Delete(ctx context.Context, flightID string, seat int, passengerID string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM reservas WHERE vuelo = ? AND numero_asiento = ? AND id_pasajero = ?`,
		flightID, seat, passengerID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete reservation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected, nil
}

// Find returns the reservation a passenger holds on a flight, or nil when
// there is none.
func (s *ReservationStorage) Find(ctx context.Context, flightID, passengerID string) (*ReservationRecord, error) {
	var record ReservationRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT vuelo, numero_asiento, id_pasajero
		FROM reservas
		WHERE vuelo = ? AND id_pasajero = ?
		ORDER BY numero_asiento ASC
		LIMIT 1`,
		flightID, passengerID,
	).Scan(&record.Flight, &record.Seat, &record.Passenger)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query reservation: %w", err)
	}

	return &record, nil
}

// CountForFlight returns how many reservations exist for a flight
func (s *ReservationStorage) CountForFlight(ctx context.Context, flightID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservas WHERE vuelo = ?`,
		flightID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	return count, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
