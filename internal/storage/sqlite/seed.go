package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/vuelacn/flightdesk/pkg/logger"
)

// seedData is the fixed first-run content of the estado_vuelos table.
// PSO-ASU-101 is the reference flight used across the documented scenarios.
var seedData = []FlightRecord{
	{ID: "PSO-ASU-101", Status: "Active", Origin: "PSO", Destination: "ASU", Date: "2025-10-13", Time: 630},
	{ID: "PSO-ASU-205", Status: "Active", Origin: "PSO", Destination: "ASU", Date: "2025-10-13", Time: 1415},
	{ID: "ASU-PSO-102", Status: "Active", Origin: "ASU", Destination: "PSO", Date: "2025-10-14", Time: 900},
	{ID: "BOG-MDE-310", Status: "Cancelled", Origin: "BOG", Destination: "MDE", Date: "2025-10-13", Time: 1130},
	{ID: "LIM-CUZ-220", Status: "Active", Origin: "LIM", Destination: "CUZ", Date: "2025-10-15", Time: 745},
}

// seedFlights inserts the seed rows only when the flight table is empty, so
// repeated initialization never duplicates rows or touches reservations.
func seedFlights(db *sql.DB, log *logger.Logger) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM estado_vuelos`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count flights: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, flight := range seedData {
		_, err := tx.Exec(
			`INSERT INTO estado_vuelos (vuelo, estado, origen, destino, fecha, hora) VALUES (?, ?, ?, ?, ?, ?)`,
			flight.ID, flight.Status, flight.Origin, flight.Destination, flight.Date, flight.Time,
		)
		if err != nil {
			return fmt.Errorf("failed to insert seed flight %s: %w", flight.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	log.Info("Seeded flight table", logger.Int("flights", len(seedData)))
	return nil
}
