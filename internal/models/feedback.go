package models

import "time"

// Feedback represents a free-text comment with an optional rating.
type Feedback struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Subject   string    `db:"subject" json:"subject"`
	Message   string    `db:"message" json:"message"`
	Rating    int       `db:"rating" json:"rating"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FeedbackFilter captures list filtering for feedback entries.
type FeedbackFilter struct {
	UserID   string
	Page     int
	PageSize int
}
