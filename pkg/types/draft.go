package types

import "time"

// DraftRecord is a persisted wizard snapshot, one per user.
type DraftRecord struct {
	UserID    int64     `db:"user_id"`
	Variant   string    `db:"variant"`
	Step      int       `db:"step"`
	Snapshot  []byte    `db:"snapshot"`
	SavedAt   time.Time `db:"saved_at"`
	CreatedAt time.Time `db:"created_at"`
}

// DraftSummary lists a draft without its payload.
type DraftSummary struct {
	UserID  int64     `db:"user_id"`
	Variant string    `db:"variant"`
	Step    int       `db:"step"`
	SavedAt time.Time `db:"saved_at"`
}
