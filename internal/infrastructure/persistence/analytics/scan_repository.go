// Package analytics provides the concrete SQL-based implementations of
// the analytics domain repositories (Scan, Session, Event, Tag).
package analytics

import (
	"database/sql"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/persistence/database"
)

// SQLScanRepository is the SQL-based implementation of the ScanRepository.
type SQLScanRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLScanRepository creates a new instance of the repository.
func NewSQLScanRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLScanRepository {
	return &SQLScanRepository{db: db, logger: logger}
}

// FindByID retrieves a Scan by its unique identifier.
func (r *SQLScanRepository) FindByID(id string) (*analytics.Scan, error) {
	const query = `
		SELECT id, name, created_at
		FROM scans
		WHERE id = ?`

	start := time.Now()
	row := r.db.QueryRow(query, id)
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "")

	var scan analytics.Scan
	var createdAtStr string

	err := row.Scan(&scan.ID, &scan.Name, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, err
	}

	scan.CreatedAt, err = database.ParseTimestamp(createdAtStr)
	if err != nil {
		return nil, err
	}

	return &scan, nil
}

// Exists reports whether a scan with the given id is present.
func (r *SQLScanRepository) Exists(id string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM scans WHERE id = ?)`

	var exists bool
	if err := r.db.QueryRow(query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create saves a new Scan to the database.
func (r *SQLScanRepository) Create(scan *analytics.Scan) error {
	const query = `
		INSERT INTO scans (id, name, created_at)
		VALUES (?, ?, ?)`

	_, err := r.db.Exec(query, scan.ID, scan.Name, scan.CreatedAt.UTC().Format(time.RFC3339))
	return err
}
