package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/football-tournaments/models"
)

func TestAutoStatusFor(t *testing.T) {
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	tournament := models.Tournament{
		RegistrationDeadline: base,
		StartDate:            base.Add(24 * time.Hour),
		EndDate:              base.Add(72 * time.Hour),
	}

	tests := []struct {
		name     string
		status   models.TournamentStatus
		now      time.Time
		expected models.TournamentStatus
	}{
		{"open before deadline", models.TournamentRegistrationOpen, base.Add(-time.Hour), models.TournamentRegistrationOpen},
		{"open at deadline", models.TournamentRegistrationOpen, base, models.TournamentRegistrationClosed},
		{"catches up several steps", models.TournamentRegistrationOpen, base.Add(30 * time.Hour), models.TournamentInProgress},
		{"finished", models.TournamentRegistrationClosed, base.Add(100 * time.Hour), models.TournamentCompleted},
		{"draft is manual", models.TournamentDraft, base.Add(100 * time.Hour), models.TournamentDraft},
		{"cancelled stays", models.TournamentCancelled, base.Add(100 * time.Hour), models.TournamentCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := tournament
			tr.Status = tt.status
			assert.Equal(t, tt.expected, autoStatusFor(&tr, tt.now))
		})
	}
}

func TestScheduler_RunOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	tournaments := newFakeTournamentRepo()
	due := &models.Tournament{
		Name:                 "Autumn Cup",
		OrganizerID:          1,
		Status:               models.TournamentRegistrationOpen,
		RegistrationDeadline: now.Add(-48 * time.Hour),
		StartDate:            now.Add(-24 * time.Hour),
		EndDate:              now.Add(24 * time.Hour),
	}
	require.NoError(t, tournaments.Create(ctx, due))

	notifs := &fakeNotifications{}
	tournamentSvc := NewTournamentService(tournaments, newFakeAgeGroupRepo(), notifs, nil, discardLogger())

	invitations := newFakeInvitationRepo()
	require.NoError(t, invitations.Create(ctx, &models.Invitation{
		ClubID: 1, Email: "late@example.com", Token: "t1", Status: models.InvitationPending, ExpiresAt: now.Add(-time.Minute),
	}))
	inviteSvc := NewInvitationService(invitations, newFakeClubRepo(), newFakeUserRepo(), &fakeTx{}, notifs, nil, discardLogger())

	revoked := newFakeRevokedRepo()
	require.NoError(t, revoked.Revoke(ctx, "old", now.Add(-time.Hour)))
	require.NoError(t, revoked.Revoke(ctx, "live", now.Add(time.Hour)))

	NewScheduler(tournamentSvc, inviteSvc, revoked, time.Minute, discardLogger()).RunOnce(ctx)

	stored, err := tournaments.GetByID(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentInProgress, stored.Status)
	assert.Len(t, notifs.byType(models.NotificationTournamentStatus), 1)

	inv, err := invitations.GetByToken(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.InvitationExpired, inv.Status)

	gone, _ := revoked.IsRevoked(ctx, "old")
	kept, _ := revoked.IsRevoked(ctx, "live")
	assert.False(t, gone)
	assert.True(t, kept)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{interval: time.Millisecond, logger: discardLogger()}

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
