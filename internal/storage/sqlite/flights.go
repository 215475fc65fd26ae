package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vuelacn/flightdesk/pkg/logger"
)

// FlightStorage handles read access to flight status records
type FlightStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewFlightStorage creates a new SQLite flight storage
func NewFlightStorage(db *sql.DB, logger *logger.Logger) *FlightStorage {
	return &FlightStorage{
		db:     db,
		logger: logger.Named("sqlite-flights"),
	}
}

// GetByID returns the flight with the given identifier, or nil when no row
// matches. The identifier is always bound as a parameter: short codes like
// "PSO" must never end up interpolated into the statement text.
func (s *FlightStorage) GetByID(ctx context.Context, flightID string) (*FlightRecord, error) {
	var record FlightRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT vuelo, estado, origen, destino, fecha, hora
		FROM estado_vuelos
		WHERE vuelo = ?`,
		flightID,
	).Scan(
		&record.ID,
		&record.Status,
		&record.Origin,
		&record.Destination,
		&record.Date,
		&record.Time,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query flight by id: %w", err)
	}

	return &record, nil
}

// FindByRoute returns every flight matching origin, destination and exact
// date, ordered by ascending flight id (the documented tie-break).
func (s *FlightStorage) FindByRoute(ctx context.Context, origin, destination, date string) ([]*FlightRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT vuelo, estado, origen, destino, fecha, hora
		FROM estado_vuelos
		WHERE origen = ? AND destino = ? AND fecha = ?
		ORDER BY vuelo ASC`,
		origin, destination, date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights by route: %w", err)
	}
	defer rows.Close()

	var records []*FlightRecord
	for rows.Next() {
		var record FlightRecord
		if err := rows.Scan(
			&record.ID,
			&record.Status,
			&record.Origin,
			&record.Destination,
			&record.Date,
			&record.Time,
		); err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flights: %w", err)
	}

	return records, nil
}
