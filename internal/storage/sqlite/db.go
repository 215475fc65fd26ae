package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/vuelacn/flightdesk/pkg/logger"

	_ "modernc.org/sqlite"
)

// Open opens (creating if necessary) the SQLite database at the given path.
// The busy timeout keeps concurrent writers from failing immediately with
// SQLITE_BUSY while another short-lived operation holds the write lock.
func Open(path string, busyTimeoutMs int, log *logger.Logger) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		path, busyTimeoutMs,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	log.Info("Opened flight database", logger.String("path", path))
	return db, nil
}

// EnsureSchema creates the flight and reservation tables if they do not exist
// and seeds the flight table on first run. Calling it against an existing
// database is a no-op: tables are kept and seed rows are not duplicated.
func EnsureSchema(db *sql.DB, seed bool, log *logger.Logger) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS estado_vuelos (
			vuelo TEXT NOT NULL,
			estado TEXT NOT NULL,
			origen TEXT NOT NULL,
			destino TEXT NOT NULL,
			fecha TEXT NOT NULL,
			hora INTEGER NOT NULL,
			UNIQUE (vuelo, fecha)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create estado_vuelos table: %w", err)
	}

	// The UNIQUE(vuelo, numero_asiento) constraint is what makes two racing
	// reserve calls for the same seat mutually exclusive: the second insert
	// fails at the database level regardless of caller interleaving.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS reservas (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			vuelo TEXT NOT NULL,
			numero_asiento INTEGER NOT NULL,
			id_pasajero TEXT NOT NULL,
			UNIQUE (vuelo, numero_asiento)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create reservas table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_estado_vuelos_ruta ON estado_vuelos(origen, destino, fecha)`,
		`CREATE INDEX IF NOT EXISTS idx_reservas_pasajero ON reservas(vuelo, id_pasajero)`,
	}
	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if seed {
		if err := seedFlights(db, log); err != nil {
			return fmt.Errorf("failed to seed flight data: %w", err)
		}
	}

	return nil
}
