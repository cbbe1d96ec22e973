package domain

import "time"

// UserSignedUpEvent represents the payload for yamdb.user.signed_up messages.
type UserSignedUpEvent struct {
	EventID  string
	UserID   string
	Username string
	Email    string
	Restored bool
	SignedAt time.Time
	Metadata map[string]any
}

// ReviewCreatedEvent represents the payload for yamdb.review.created messages.
type ReviewCreatedEvent struct {
	EventID   string
	ReviewID  string
	TitleID   string
	AuthorID  string
	Score     int
	CreatedAt time.Time
	Metadata  map[string]any
}
