package analytics

import (
	"time"

	"github.com/judsonfisher/elias-immersive-platform/internal/domain/analytics"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/observability/logging"
	"github.com/judsonfisher/elias-immersive-platform/internal/infrastructure/persistence/database"
)

// SQLTagRepository is the SQL-based implementation of the TagRepository.
type SQLTagRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLTagRepository creates a new instance of the repository.
func NewSQLTagRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLTagRepository {
	return &SQLTagRepository{db: db, logger: logger}
}

// FindByScan retrieves all tags for a scan ordered by click count.
func (r *SQLTagRepository) FindByScan(scanID string) ([]*analytics.Tag, error) {
	const query = `
		SELECT id, scan_id, tag_id, label, category, position_x, position_y, position_z, click_count, dwell_time
		FROM scan_tags
		WHERE scan_id = ?
		ORDER BY click_count DESC`

	start := time.Now()
	rows, err := r.db.Query(query, scanID)
	database.CheckAndLogSlowQuery(r.logger, query, time.Since(start), "")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*analytics.Tag
	for rows.Next() {
		var tag analytics.Tag
		if err := rows.Scan(
			&tag.ID,
			&tag.ScanID,
			&tag.TagID,
			&tag.Label,
			&tag.Category,
			&tag.Position.X,
			&tag.Position.Y,
			&tag.Position.Z,
			&tag.ClickCount,
			&tag.DwellTime,
		); err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}

	return tags, rows.Err()
}

// IncrementClicks bumps the click counter on a tag, addressed by the
// viewer's tag identifier. The scan id guard keeps a session from
// incrementing tags belonging to another scan.
func (r *SQLTagRepository) IncrementClicks(tagID, scanID string) error {
	const query = `
		UPDATE scan_tags
		SET click_count = click_count + 1
		WHERE scan_id = ? AND tag_id = ?`

	_, err := r.db.Exec(query, scanID, tagID)
	return err
}

// AddDwellTime accumulates dwell seconds onto a tag.
func (r *SQLTagRepository) AddDwellTime(tagID, scanID string, seconds int) error {
	const query = `
		UPDATE scan_tags
		SET dwell_time = dwell_time + ?
		WHERE scan_id = ? AND tag_id = ?`

	_, err := r.db.Exec(query, seconds, scanID, tagID)
	return err
}
