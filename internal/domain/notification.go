package domain

import "time"

// Notification informs a user about state changes on their complaints.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}
