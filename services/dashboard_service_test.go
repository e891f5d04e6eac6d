package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/football-tournaments/models"
)

type dashboardFixture struct {
	svc           *dashboardService
	notifications *fakeNotificationRepo
	manager       Actor
	admin         Actor
}

// newDashboardFixture: четыре турнира, два клуба и заявки обоих клубов.
func newDashboardFixture(t *testing.T) *dashboardFixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	tournaments := newFakeTournamentRepo()
	for _, tr := range []*models.Tournament{
		{Name: "Open", Status: models.TournamentRegistrationOpen, StartDate: now.Add(10 * 24 * time.Hour)},
		{Name: "Draft", Status: models.TournamentDraft, StartDate: now.Add(20 * 24 * time.Hour)},
		{Name: "Closed", Status: models.TournamentRegistrationClosed, StartDate: now.Add(5 * 24 * time.Hour)},
		{Name: "Done", Status: models.TournamentCompleted, StartDate: now.Add(-30 * 24 * time.Hour)},
	} {
		require.NoError(t, tournaments.Create(ctx, tr))
	}

	clubs := newFakeClubRepo()
	mine := &models.Club{Name: "Mine", ManagerID: 10}
	theirs := &models.Club{Name: "Theirs", ManagerID: 20}
	require.NoError(t, clubs.Create(ctx, mine))
	require.NoError(t, clubs.Create(ctx, theirs))

	regs := newFakeRegistrationRepo()
	regs.clubs = clubs
	for i, r := range []models.Registration{
		{ClubID: mine.ID, TeamName: "Mine A", Status: models.RegistrationPending},
		{ClubID: mine.ID, TeamName: "Mine B", Status: models.RegistrationApproved},
		{ClubID: theirs.ID, TeamName: "Theirs A", Status: models.RegistrationPending},
		{ClubID: theirs.ID, TeamName: "Theirs B", Status: models.RegistrationPending},
	} {
		r.AgeGroupID = i + 1
		require.NoError(t, regs.Create(ctx, nil, &r))
	}

	notifications := newFakeNotificationRepo()
	require.NoError(t, notifications.Create(ctx, &models.Notification{UserID: 10, Title: "a"}))
	require.NoError(t, notifications.Create(ctx, &models.Notification{UserID: 10, Title: "b", Read: true}))
	require.NoError(t, notifications.Create(ctx, &models.Notification{UserID: 1, Title: "c"}))

	svc := NewDashboardService(tournaments, clubs, regs, notifications, newFakeUploader()).(*dashboardService)
	svc.now = func() time.Time { return now }
	return &dashboardFixture{
		svc:           svc,
		notifications: notifications,
		manager:       Actor{UserID: 10, Role: models.RoleClubManager},
		admin:         Actor{UserID: 1, Role: models.RoleAdmin},
	}
}

func TestDashboardService_GetStats(t *testing.T) {
	tests := []struct {
		name  string
		actor func(f *dashboardFixture) Actor
		want  models.DashboardStats
	}{
		{
			name:  "admin sees every registration",
			actor: func(f *dashboardFixture) Actor { return f.admin },
			want: models.DashboardStats{
				TournamentsTotal: 4, TournamentsActive: 2, ClubsTotal: 2,
				RegistrationsTotal: 4, RegistrationsPending: 3, UnreadNotifications: 1,
			},
		},
		{
			name:  "club manager sees own clubs only",
			actor: func(f *dashboardFixture) Actor { return f.manager },
			want: models.DashboardStats{
				TournamentsTotal: 4, TournamentsActive: 2, ClubsTotal: 2,
				RegistrationsTotal: 2, RegistrationsPending: 1, UnreadNotifications: 1,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDashboardFixture(t)
			stats, err := f.svc.GetStats(context.Background(), tt.actor(f))
			require.NoError(t, err)

			require.Len(t, stats.UpcomingTournaments, 2)
			assert.Equal(t, "Closed", stats.UpcomingTournaments[0].Name)
			assert.Equal(t, "Open", stats.UpcomingTournaments[1].Name)

			stats.UpcomingTournaments = nil
			assert.Equal(t, tt.want, stats)
		})
	}
}

func TestDashboardService_GetStats_FailsWhenOneCounterFails(t *testing.T) {
	f := newDashboardFixture(t)
	f.notifications.countErr = errors.New("connection refused")

	stats, err := f.svc.GetStats(context.Background(), f.admin)
	require.Error(t, err)
	assert.Equal(t, models.DashboardStats{}, stats)
}
