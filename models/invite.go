package models

import "time"

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
	InvitationExpired  InvitationStatus = "expired"
)

type Invitation struct {
	ID        int              `json:"id" db:"id"`
	ClubID    int              `json:"clubId" db:"club_id"`
	Email     string           `json:"email" db:"email"`
	Token     string           `json:"-" db:"token"`
	Status    InvitationStatus `json:"status" db:"status"`
	InvitedBy int              `json:"invitedBy" db:"invited_by"`
	ExpiresAt time.Time        `json:"expiresAt" db:"expires_at"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`

	ClubName string `json:"clubName,omitempty" db:"-"`
}

func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
