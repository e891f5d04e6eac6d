//go:build integration

package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Dosada05/football-tournaments/db"
	"github.com/Dosada05/football-tournaments/models"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "football_test",
			"POSTGRES_USER":     "test_user",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		log.Fatalf("failed to start container: %s", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("failed to get host: %s", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		log.Fatalf("failed to get port: %s", err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=test_user password=test_password dbname=football_test sslmode=disable",
		host, port.Port())
	testDB, err = db.Connect(dsn, 30*time.Second)
	if err != nil {
		log.Fatalf("failed to connect: %s", err)
	}
	if err := db.Migrate(ctx, testDB, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		log.Fatalf("failed to migrate: %s", err)
	}

	code := m.Run()

	_ = testDB.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

type fixtureSet struct {
	organizer  *models.User
	manager    *models.User
	club       *models.Club
	tournament *models.Tournament
	ageGroup   *models.AgeGroup
}

func seed(t *testing.T, suffix string) fixtureSet {
	t.Helper()
	ctx := context.Background()

	users := NewPostgresUserRepository(testDB)
	organizer := &models.User{FirstName: "Org", Email: "org-" + suffix + "@example.com", PasswordHash: "x", Role: models.RoleOrganizer}
	require.NoError(t, users.Create(ctx, organizer))
	manager := &models.User{FirstName: "Mgr", Email: "mgr-" + suffix + "@example.com", PasswordHash: "x", Role: models.RoleClubManager}
	require.NoError(t, users.Create(ctx, manager))

	club := &models.Club{Name: "FC " + suffix, City: "Split", Country: "HR", ContactEmail: "club@example.com", ManagerID: manager.ID}
	require.NoError(t, NewPostgresClubRepository(testDB).Create(ctx, club))

	now := time.Now().UTC().Truncate(time.Second)
	tournament := &models.Tournament{
		Name:                 "Cup " + suffix,
		Location:             "Split",
		RegistrationDeadline: now.Add(24 * time.Hour),
		StartDate:            now.Add(48 * time.Hour),
		EndDate:              now.Add(96 * time.Hour),
		Status:               models.TournamentRegistrationOpen,
		OrganizerID:          organizer.ID,
		Currency:             "EUR",
	}
	require.NoError(t, NewPostgresTournamentRepository(testDB).Create(ctx, tournament))

	ageGroup := &models.AgeGroup{TournamentID: tournament.ID, Name: "U12", BirthYearFrom: 2014, BirthYearTo: 2014, MaxTeams: 16, NumberOfGroups: 2}
	require.NoError(t, NewPostgresAgeGroupRepository(testDB).Create(ctx, ageGroup))

	return fixtureSet{organizer, manager, club, tournament, ageGroup}
}

func TestUserRepository_EmailConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgresUserRepository(testDB)

	u := &models.User{FirstName: "A", Email: "dup@example.com", PasswordHash: "x", Role: models.RoleClubManager}
	require.NoError(t, repo.Create(ctx, u))

	err := repo.Create(ctx, &models.User{FirstName: "B", Email: "dup@example.com", PasswordHash: "x", Role: models.RoleClubManager})
	assert.ErrorIs(t, err, ErrUserEmailConflict)

	got, err := repo.GetByEmail(ctx, "DUP@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetByID(ctx, -1)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestClubRepository_CreatorIsManager(t *testing.T) {
	ctx := context.Background()
	fx := seed(t, "clubs")
	repo := NewPostgresClubRepository(testDB)

	ok, err := repo.IsManager(ctx, fx.club.ID, fx.manager.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	managed := fx.manager.ID
	clubs, total, err := repo.List(ctx, models.ClubFilter{ManagedBy: &managed})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, fx.club.ID, clubs[0].ID)

	err = repo.Create(ctx, &models.Club{Name: fx.club.Name, City: "X", Country: "HR", ContactEmail: "x@example.com", ManagerID: fx.manager.ID})
	assert.ErrorIs(t, err, ErrClubNameConflict)
}

func TestRegistrationRepository_PotsAndDraw(t *testing.T) {
	ctx := context.Background()
	fx := seed(t, "draw")
	regs := NewPostgresRegistrationRepository(testDB)
	draws := NewPostgresDrawRepository(testDB)

	var ids []int
	for i := 0; i < 4; i++ {
		reg := &models.Registration{
			TournamentID:  fx.tournament.ID,
			AgeGroupID:    fx.ageGroup.ID,
			ClubID:        fx.club.ID,
			TeamName:      fmt.Sprintf("Team %d", i),
			CoachName:     "Coach",
			ContactEmail:  "coach@example.com",
			Status:        models.RegistrationApproved,
			PaymentStatus: models.PaymentUnpaid,
		}
		require.NoError(t, regs.Create(ctx, nil, reg))
		ids = append(ids, reg.ID)
	}

	dup := &models.Registration{TournamentID: fx.tournament.ID, AgeGroupID: fx.ageGroup.ID, ClubID: fx.club.ID,
		TeamName: "Team 0", CoachName: "C", ContactEmail: "c@example.com",
		Status: models.RegistrationPending, PaymentStatus: models.PaymentUnpaid}
	assert.ErrorIs(t, regs.Create(ctx, nil, dup), ErrRegistrationConflict)

	bad := 7
	assert.ErrorIs(t, regs.SetPot(ctx, nil, ids[0], &bad), ErrRegistrationPotInvalid)

	for i, id := range ids {
		pot := i/2 + 1
		require.NoError(t, regs.SetPot(ctx, nil, id, &pot))
	}
	approved, err := regs.ListApprovedByAgeGroup(ctx, nil, fx.ageGroup.ID)
	require.NoError(t, err)
	require.Len(t, approved, 4)
	assert.Equal(t, fx.club.Name, approved[0].ClubName)
	require.NotNil(t, approved[3].PotNumber)
	assert.Equal(t, 2, *approved[3].PotNumber)

	err = NewPostgresTxManager(testDB).WithinTx(ctx, func(exec SQLExecutor) error {
		g := &models.Group{TournamentID: fx.tournament.ID, AgeGroupID: fx.ageGroup.ID, Name: "A", Seed: 42}
		if err := draws.CreateGroup(ctx, exec, g); err != nil {
			return err
		}
		if err := draws.AssignTeam(ctx, exec, ids[0], g.ID, 1); err != nil {
			return err
		}
		if err := draws.AssignTeam(ctx, exec, ids[2], g.ID, 2); err != nil {
			return err
		}
		return draws.CreateFixture(ctx, exec, &models.Fixture{GroupID: g.ID, Round: 1, OrderInRound: 1, HomeTeamID: ids[0], AwayTeamID: ids[2]})
	})
	require.NoError(t, err)

	groups, err := draws.ListGroups(ctx, fx.ageGroup.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, int64(42), groups[0].Seed)
	assert.Len(t, groups[0].Teams, 2)
	assert.Len(t, groups[0].Fixtures, 1)

	require.NoError(t, draws.DeleteByAgeGroup(ctx, nil, fx.ageGroup.ID))
	groups, err = draws.ListGroups(ctx, fx.ageGroup.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)

	cleared, err := regs.ClearPots(ctx, nil, fx.ageGroup.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), cleared)
}

func TestInvitationRepository_PendingUnique(t *testing.T) {
	ctx := context.Background()
	fx := seed(t, "invites")
	repo := NewPostgresInvitationRepository(testDB)

	inv := &models.Invitation{ClubID: fx.club.ID, Email: "new@example.com", Token: "tok-1",
		Status: models.InvitationPending, InvitedBy: fx.manager.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, repo.Create(ctx, inv))

	again := &models.Invitation{ClubID: fx.club.ID, Email: "NEW@example.com", Token: "tok-2",
		Status: models.InvitationPending, InvitedBy: fx.manager.ID, ExpiresAt: time.Now().Add(time.Hour)}
	assert.ErrorIs(t, repo.Create(ctx, again), ErrInvitationPending)

	n, err := repo.ExpirePending(ctx, time.Now())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	got, err := repo.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, models.InvitationExpired, got.Status)
	assert.Equal(t, fx.club.Name, got.ClubName)
}

func TestNotificationRepository_ReadFlow(t *testing.T) {
	ctx := context.Background()
	fx := seed(t, "notify")
	repo := NewPostgresNotificationRepository(testDB)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Notification{UserID: fx.manager.ID,
			Type: models.NotificationDrawCompleted, Title: "t", Message: "m"}))
	}

	unread, err := repo.CountUnread(ctx, fx.manager.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, unread)

	items, total, err := repo.List(ctx, models.NotificationFilter{UserID: fx.manager.ID, PageRequest: models.PageRequest{Page: 1, PageSize: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 2)

	assert.ErrorIs(t, repo.MarkRead(ctx, items[0].ID, fx.organizer.ID), ErrNotificationNotFound)
	require.NoError(t, repo.MarkRead(ctx, items[0].ID, fx.manager.ID))

	n, err := repo.MarkAllRead(ctx, fx.manager.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
