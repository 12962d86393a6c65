package analytics

import "time"

// ScanRepository provides access to scan records.
type ScanRepository interface {
	FindByID(id string) (*Scan, error)
	Exists(id string) (bool, error)
	Create(scan *Scan) error
}

// SessionRepository provides access to walkthrough sessions.
type SessionRepository interface {
	FindByID(id string) (*Session, error)
	Create(session *Session) error
	UpdateDuration(id string, duration int) error
	End(id string, duration int, endedAt time.Time) error
	IncrementCounters(id string, moves, zooms int) error
	FindByScan(scanID string, since, until *time.Time) ([]*Session, error)
}

// EventRepository provides access to interaction events.
type EventRepository interface {
	CreateBatch(events []*InteractionEvent) error
	FindPositional(scanID string, since *time.Time) ([]*InteractionEvent, error)
}

// TagRepository provides access to scan tags.
type TagRepository interface {
	FindByScan(scanID string) ([]*Tag, error)
	IncrementClicks(tagID, scanID string) error
	AddDwellTime(tagID, scanID string, seconds int) error
}
