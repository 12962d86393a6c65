package analytics

import (
	"encoding/json"
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/persistence/database"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/security"
)

// SQLEventRepository is the SQL-based implementation of the EventRepository.
type SQLEventRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLEventRepository creates a new instance of the repository.
func NewSQLEventRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLEventRepository {
	return &SQLEventRepository{db: db, logger: logger}
}

// CreateBatch inserts a batch of events inside a single transaction.
// Events arriving without an id are assigned one.
func (r *SQLEventRepository) CreateBatch(events []*analytics.InteractionEvent) error {
	if len(events) == 0 {
		return nil
	}

	const query = `
		INSERT INTO scan_events (id, session_id, type, position_x, position_y, position_z, target_id, duration, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, event := range events {
		if event.ID == "" {
			event.ID = security.GenerateULID()
		}

		var posX, posY, posZ any
		if event.PositionX != nil {
			posX = *event.PositionX
		}
		if event.PositionY != nil {
			posY = *event.PositionY
		}
		if event.PositionZ != nil {
			posZ = *event.PositionZ
		}

		var metadataJSON any
		if len(event.Metadata) > 0 {
			data, err := json.Marshal(event.Metadata)
			if err != nil {
				return err
			}
			metadataJSON = string(data)
		}

		var targetID any
		if event.TargetID != nil {
			targetID = *event.TargetID
		}
		var duration any
		if event.Duration != nil {
			duration = *event.Duration
		}

		if _, err := stmt.Exec(
			event.ID,
			event.SessionID,
			string(event.Type),
			posX, posY, posZ,
			targetID,
			duration,
			metadataJSON,
			event.Timestamp.UTC().Format(time.RFC3339),
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	database.CheckAndLogSlowQuery(r.logger, "BULK_INSERT_SCAN_EVENTS", time.Since(start), "")
	return nil
}

// FindPositional retrieves MOVE and DWELL events with positions for a scan,
// optionally bounded by a start time. These are the inputs to heatmap
// aggregation.
func (r *SQLEventRepository) FindPositional(scanID string, since *time.Time) ([]*analytics.InteractionEvent, error) {
	query := `
		SELECT e.id, e.session_id, e.type, e.position_x, e.position_y, e.position_z, e.duration, e.created_at
		FROM scan_events e
		JOIN scan_sessions s ON s.id = e.session_id
		WHERE s.scan_id = ?
		  AND e.type IN ('MOVE', 'DWELL')
		  AND e.position_x IS NOT NULL`
	args := []any{scanID}

	if since != nil {
		query += ` AND e.created_at >= ?`
		args = append(args, since.UTC().Format(time.RFC3339))
	}

	start := time.Now()
	rows, err := r.db.Query(query, args...)
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*analytics.InteractionEvent
	for rows.Next() {
		var event analytics.InteractionEvent
		var pos analytics.Position
		var duration *float64
		var typeStr, createdAtStr string

		if err := rows.Scan(
			&event.ID,
			&event.SessionID,
			&typeStr,
			&pos.X, &pos.Y, &pos.Z,
			&duration,
			&createdAtStr,
		); err != nil {
			return nil, err
		}

		event.Type = analytics.EventType(typeStr)
		event.SetPosition(pos)
		event.Duration = duration
		event.Timestamp, err = database.ParseTimestamp(createdAtStr)
		if err != nil {
			return nil, err
		}

		events = append(events, &event)
	}

	return events, rows.Err()
}
