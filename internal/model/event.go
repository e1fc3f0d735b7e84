package model

import (
	"time"

	"github.com/google/uuid"
)

// Event is one scheduled wish: a message tied to a calendar date and a
// minute-precision time of day, delivered over SMS and/or email.
type Event struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Date      time.Time  `json:"date"`
	Time      string     `json:"time"`
	Mobile    *string    `json:"mobile,omitempty"`
	Email     *string    `json:"email,omitempty"`
	Message   string     `json:"message"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// DueEvent is an event joined with its owner's sender fields, as returned
// by the due-window selector.
type DueEvent struct {
	Event
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
}

// User is the owning identity. The dispatcher only reads it as a join
// source for the sender display name and reply-to address.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
}
