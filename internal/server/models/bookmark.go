package models

import "time"

// Bookmark is a saved link owned by a single user. Tags always holds at least
// one entry.
type Bookmark struct {
	ID            string
	UserID        string
	Title         string
	URL           string
	Description   string
	Tags          []string
	Pinned        bool
	IsArchived    bool
	VisitCount    int64
	LastVisitedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
