package models

import "time"

type NotificationType string

const (
	NotificationRegistrationStatus NotificationType = "registration_status"
	NotificationDrawCompleted      NotificationType = "draw_completed"
	NotificationInvitation         NotificationType = "invitation"
	NotificationTournamentStatus   NotificationType = "tournament_status"
)

type Notification struct {
	ID        int              `json:"id" db:"id"`
	UserID    int              `json:"userId" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Link      *string          `json:"link,omitempty" db:"link"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}

type NotificationFilter struct {
	UserID     int
	UnreadOnly bool
	PageRequest
}
