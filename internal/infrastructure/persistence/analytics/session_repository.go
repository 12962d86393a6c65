package analytics

import (
	"database/sql"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/persistence/database"
)

// SQLSessionRepository is the SQL-based implementation of the SessionRepository.
type SQLSessionRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLSessionRepository creates a new instance of the repository.
func NewSQLSessionRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLSessionRepository {
	return &SQLSessionRepository{db: db, logger: logger}
}

// FindByID retrieves a Session by its unique identifier.
func (r *SQLSessionRepository) FindByID(id string) (*analytics.Session, error) {
	const query = `
		SELECT id, scan_id, visitor_id, device, entry_point, started_at, ended_at, duration, total_moves, total_zooms
		FROM scan_sessions
		WHERE id = ?`

	row := r.db.QueryRow(query, id)
	return r.scanSession(row)
}

// Create saves a new Session to the database.
func (r *SQLSessionRepository) Create(session *analytics.Session) error {
	const query = `
		INSERT INTO scan_sessions (id, scan_id, visitor_id, device, entry_point, started_at, duration, total_moves, total_zooms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	_, err := r.db.Exec(
		query,
		session.ID,
		session.ScanID,
		session.VisitorID,
		session.Device,
		session.EntryPoint,
		session.StartedAt.UTC().Format(time.RFC3339),
		session.Duration,
		session.TotalMoves,
		session.TotalZooms,
	)
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "")
	return err
}

// UpdateDuration refreshes the running duration on a heartbeat.
func (r *SQLSessionRepository) UpdateDuration(id string, duration int) error {
	const query = `UPDATE scan_sessions SET duration = ? WHERE id = ?`

	_, err := r.db.Exec(query, duration, id)
	return err
}

// End closes a session, recording its final duration and end time.
func (r *SQLSessionRepository) End(id string, duration int, endedAt time.Time) error {
	const query = `UPDATE scan_sessions SET duration = ?, ended_at = ? WHERE id = ?`

	_, err := r.db.Exec(query, duration, endedAt.UTC().Format(time.RFC3339), id)
	return err
}

// IncrementCounters bumps the move and zoom rollups for a session.
func (r *SQLSessionRepository) IncrementCounters(id string, moves, zooms int) error {
	const query = `
		UPDATE scan_sessions
		SET total_moves = total_moves + ?, total_zooms = total_zooms + ?
		WHERE id = ?`

	_, err := r.db.Exec(query, moves, zooms, id)
	return err
}

// FindByScan retrieves sessions for a scan, newest last. Bounds are
// inclusive; a nil bound leaves that side of the window open.
func (r *SQLSessionRepository) FindByScan(scanID string, since, until *time.Time) ([]*analytics.Session, error) {
	query := `
		SELECT id, scan_id, visitor_id, device, entry_point, started_at, ended_at, duration, total_moves, total_zooms
		FROM scan_sessions
		WHERE scan_id = ?`
	args := []any{scanID}

	if since != nil {
		query += ` AND started_at >= ?`
		args = append(args, since.UTC().Format(time.RFC3339))
	}
	if until != nil {
		query += ` AND started_at <= ?`
		args = append(args, until.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY started_at ASC`

	start := time.Now()
	rows, err := r.db.Query(query, args...)
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*analytics.Session
	for rows.Next() {
		session, err := r.scanSessionFromRows(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// scanSession is a helper function to scan a sql.Row into a Session struct.
func (r *SQLSessionRepository) scanSession(row *sql.Row) (*analytics.Session, error) {
	var session analytics.Session
	var endedAt sql.NullString
	var startedAtStr string

	err := row.Scan(
		&session.ID,
		&session.ScanID,
		&session.VisitorID,
		&session.Device,
		&session.EntryPoint,
		&startedAtStr,
		&endedAt,
		&session.Duration,
		&session.TotalMoves,
		&session.TotalZooms,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, err
	}

	if err := r.parseSessionTimes(&session, startedAtStr, endedAt); err != nil {
		return nil, err
	}

	return &session, nil
}

// scanSessionFromRows is a helper function to scan from sql.Rows into a Session struct.
func (r *SQLSessionRepository) scanSessionFromRows(rows *sql.Rows) (*analytics.Session, error) {
	var session analytics.Session
	var endedAt sql.NullString
	var startedAtStr string

	err := rows.Scan(
		&session.ID,
		&session.ScanID,
		&session.VisitorID,
		&session.Device,
		&session.EntryPoint,
		&startedAtStr,
		&endedAt,
		&session.Duration,
		&session.TotalMoves,
		&session.TotalZooms,
	)
	if err != nil {
		return nil, err
	}

	if err := r.parseSessionTimes(&session, startedAtStr, endedAt); err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *SQLSessionRepository) parseSessionTimes(session *analytics.Session, startedAtStr string, endedAt sql.NullString) error {
	var err error
	session.StartedAt, err = database.ParseTimestamp(startedAtStr)
	if err != nil {
		return err
	}

	if endedAt.Valid {
		t, err := database.ParseTimestamp(endedAt.String)
		if err != nil {
			return err
		}
		session.EndedAt = &t
	}
	return nil
}
