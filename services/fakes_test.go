package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/realtime"
	"github.com/Dosada05/football-tournaments/repositories"
	"github.com/Dosada05/football-tournaments/storage"
)

// In-memory репозитории для unit-тестов сервисов. Реализуют только то,
// что реально вызывают сервисы; SQL проверяется интеграционными тестами.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTx выполняет транзакции строго по одной, как FOR UPDATE на одной строке.
type fakeTx struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return fn(nil)
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*models.User
	// referenced: пользователи, на которых ссылаются внешние ключи.
	referenced map[int]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]*models.User{}}
}

func (r *fakeUserRepo) add(u models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	if u.ID == 0 {
		u.ID = r.nextID
	}
	r.users[u.ID] = &u
	return &u
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrUserEmailConflict
		}
	}
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) find(match func(u *models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *fakeUserRepo) GetByConfirmationToken(ctx context.Context, token string) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return u.EmailConfirmationToken != nil && *u.EmailConfirmationToken == token
	})
}

func (r *fakeUserRepo) GetByPasswordResetToken(ctx context.Context, token string) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return u.PasswordResetToken != nil && *u.PasswordResetToken == token
	})
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateRole(ctx context.Context, id int, role models.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	if r.referenced[id] {
		return repositories.ErrUserHasReferences
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

type fakeRevokedRepo struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func newFakeRevokedRepo() *fakeRevokedRepo {
	return &fakeRevokedRepo{revoked: map[string]time.Time{}}
}

func (r *fakeRevokedRepo) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[jti] = expiresAt
	return nil
}

func (r *fakeRevokedRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[jti]
	return ok, nil
}

func (r *fakeRevokedRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for jti, exp := range r.revoked {
		if exp.Before(now) {
			delete(r.revoked, jti)
			n++
		}
	}
	return n, nil
}

type fakeClubRepo struct {
	mu       sync.Mutex
	clubs    map[int]*models.Club
	managers map[int][]int
	// withRegistrations: клубы, удаление которых упирается в заявки.
	withRegistrations map[int]bool
}

func newFakeClubRepo() *fakeClubRepo {
	return &fakeClubRepo{clubs: map[int]*models.Club{}, managers: map[int][]int{}}
}

func (r *fakeClubRepo) Create(ctx context.Context, club *models.Club) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	club.ID = len(r.clubs) + 1
	cp := *club
	r.clubs[club.ID] = &cp
	r.managers[club.ID] = append(r.managers[club.ID], club.ManagerID)
	return nil
}

func (r *fakeClubRepo) GetByID(ctx context.Context, id int) (*models.Club, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clubs[id]
	if !ok {
		return nil, repositories.ErrClubNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClubRepo) List(ctx context.Context, filter models.ClubFilter) ([]models.Club, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Club{}
	for id, c := range r.clubs {
		if filter.ManagedBy != nil && !r.isManagerLocked(id, *filter.ManagedBy) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *fakeClubRepo) Update(ctx context.Context, club *models.Club) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clubs[club.ID]; !ok {
		return repositories.ErrClubNotFound
	}
	cp := *club
	r.clubs[club.ID] = &cp
	return nil
}

func (r *fakeClubRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clubs[id]
	if !ok {
		return repositories.ErrClubNotFound
	}
	c.LogoKey = logoKey
	return nil
}

func (r *fakeClubRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clubs[id]; !ok {
		return repositories.ErrClubNotFound
	}
	if r.withRegistrations[id] {
		return repositories.ErrClubHasRegistrations
	}
	delete(r.clubs, id)
	delete(r.managers, id)
	return nil
}

func (r *fakeClubRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clubs), nil
}

func (r *fakeClubRepo) IsManager(ctx context.Context, clubID, userID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isManagerLocked(clubID, userID), nil
}

func (r *fakeClubRepo) isManagerLocked(clubID, userID int) bool {
	for _, id := range r.managers[clubID] {
		if id == userID {
			return true
		}
	}
	return false
}

func (r *fakeClubRepo) AddManager(ctx context.Context, exec repositories.SQLExecutor, clubID, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clubs[clubID]; !ok {
		return repositories.ErrClubNotFound
	}
	for _, id := range r.managers[clubID] {
		if id == userID {
			return nil
		}
	}
	r.managers[clubID] = append(r.managers[clubID], userID)
	return nil
}

func (r *fakeClubRepo) ListManagerIDs(ctx context.Context, clubID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.managers[clubID]...), nil
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: map[int]*models.Tournament{}}
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = len(r.tournaments) + 1
	cp := *t
	r.tournaments[t.ID] = &cp
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, filter models.TournamentFilter) ([]models.Tournament, int, error) {
	return nil, 0, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tournaments[t.ID] = &cp
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

func (r *fakeTournamentRepo) CountByStatus(ctx context.Context, statuses ...models.TournamentStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tournaments {
		if len(statuses) == 0 {
			n++
			continue
		}
		for _, s := range statuses {
			if t.Status == s {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *fakeTournamentRepo) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Tournament
	for _, t := range r.tournaments {
		open := t.Status == models.TournamentRegistrationOpen || t.Status == models.TournamentRegistrationClosed
		if t.StartDate.After(now) && open {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTournamentRepo) GetTournamentsForAutoStatusUpdate(ctx context.Context, exec repositories.SQLExecutor, now time.Time) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Tournament
	for _, t := range r.tournaments {
		if !t.Status.Terminal() {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAgeGroupRepo struct {
	mu     sync.Mutex
	groups map[int]*models.AgeGroup
	locked int
	// afterRead вызывается после каждого GetByID без блокировки.
	afterRead func(id int)
}

func newFakeAgeGroupRepo() *fakeAgeGroupRepo {
	return &fakeAgeGroupRepo{groups: map[int]*models.AgeGroup{}}
}

func (r *fakeAgeGroupRepo) Create(ctx context.Context, ag *models.AgeGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ag.ID = len(r.groups) + 1
	cp := *ag
	r.groups[ag.ID] = &cp
	return nil
}

func (r *fakeAgeGroupRepo) get(id int) (*models.AgeGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ag, ok := r.groups[id]
	if !ok {
		return nil, repositories.ErrAgeGroupNotFound
	}
	cp := *ag
	return &cp, nil
}

func (r *fakeAgeGroupRepo) GetByID(ctx context.Context, id int) (*models.AgeGroup, error) {
	ag, err := r.get(id)
	if err == nil && r.afterRead != nil {
		r.afterRead(id)
	}
	return ag, err
}

func (r *fakeAgeGroupRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.AgeGroup, error) {
	r.mu.Lock()
	r.locked++
	r.mu.Unlock()
	return r.get(id)
}

func (r *fakeAgeGroupRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.AgeGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.AgeGroup{}
	for _, ag := range r.groups {
		if ag.TournamentID == tournamentID {
			out = append(out, *ag)
		}
	}
	return out, nil
}

func (r *fakeAgeGroupRepo) Update(ctx context.Context, exec repositories.SQLExecutor, ag *models.AgeGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *ag
	r.groups[ag.ID] = &cp
	return nil
}

func (r *fakeAgeGroupRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups, id)
	return nil
}

func (r *fakeAgeGroupRepo) SetDrawCompleted(ctx context.Context, exec repositories.SQLExecutor, id int, at *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ag, ok := r.groups[id]
	if !ok {
		return repositories.ErrAgeGroupNotFound
	}
	ag.DrawCompletedAt = at
	return nil
}

type fakeRegistrationRepo struct {
	mu   sync.Mutex
	regs map[int]*models.Registration
	// clubs нужен только для фильтра ManagedBy.
	clubs *fakeClubRepo
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{regs: map[int]*models.Registration{}}
}

func (r *fakeRegistrationRepo) Create(ctx context.Context, exec repositories.SQLExecutor, reg *models.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.regs {
		if existing.AgeGroupID == reg.AgeGroupID && strings.EqualFold(existing.TeamName, reg.TeamName) {
			return repositories.ErrRegistrationConflict
		}
	}
	reg.ID = len(r.regs) + 1
	cp := *reg
	r.regs[reg.ID] = &cp
	return nil
}

func (r *fakeRegistrationRepo) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[id]
	if !ok {
		return nil, repositories.ErrRegistrationNotFound
	}
	cp := *reg
	return &cp, nil
}

func (r *fakeRegistrationRepo) filter(match func(reg *models.Registration) bool) []models.Registration {
	out := []models.Registration{}
	for _, reg := range r.regs {
		if match(reg) {
			out = append(out, *reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeRegistrationRepo) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.filter(func(reg *models.Registration) bool {
		return filter.AgeGroupID == nil || reg.AgeGroupID == *filter.AgeGroupID
	})
	return out, len(out), nil
}

func (r *fakeRegistrationRepo) Count(ctx context.Context, filter models.RegistrationFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.filter(func(reg *models.Registration) bool {
		if filter.ManagedBy != nil {
			if r.clubs == nil {
				return false
			}
			if ok, _ := r.clubs.IsManager(ctx, reg.ClubID, *filter.ManagedBy); !ok {
				return false
			}
		}
		return filter.Status == nil || reg.Status == *filter.Status
	})
	return len(out), nil
}

func (r *fakeRegistrationRepo) Update(ctx context.Context, reg *models.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *reg
	r.regs[reg.ID] = &cp
	return nil
}

func (r *fakeRegistrationRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.RegistrationStatus, clearDraw bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.Status = status
	if clearDraw {
		reg.PotNumber = nil
		reg.GroupID = nil
	}
	return nil
}

func (r *fakeRegistrationRepo) UpdatePaymentStatus(ctx context.Context, id int, status models.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	reg.PaymentStatus = status
	return nil
}

func (r *fakeRegistrationRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.regs[id]; !ok {
		return repositories.ErrRegistrationNotFound
	}
	delete(r.regs, id)
	return nil
}

func (r *fakeRegistrationRepo) CountActiveInAgeGroup(ctx context.Context, exec repositories.SQLExecutor, ageGroupID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.filter(func(reg *models.Registration) bool {
		return reg.AgeGroupID == ageGroupID &&
			(reg.Status == models.RegistrationPending || reg.Status == models.RegistrationApproved)
	})), nil
}

func (r *fakeRegistrationRepo) ListApprovedByAgeGroup(ctx context.Context, exec repositories.SQLExecutor, ageGroupID int) ([]models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter(func(reg *models.Registration) bool {
		return reg.AgeGroupID == ageGroupID && reg.Status == models.RegistrationApproved
	}), nil
}

func (r *fakeRegistrationRepo) SetPot(ctx context.Context, exec repositories.SQLExecutor, id int, potNumber *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[id]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}
	if potNumber != nil {
		n := *potNumber
		reg.PotNumber = &n
	} else {
		reg.PotNumber = nil
	}
	return nil
}

func (r *fakeRegistrationRepo) ClearPots(ctx context.Context, exec repositories.SQLExecutor, ageGroupID int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, reg := range r.regs {
		if reg.AgeGroupID == ageGroupID && reg.PotNumber != nil {
			reg.PotNumber = nil
			n++
		}
	}
	return n, nil
}

type fakeDrawRepo struct {
	mu       sync.Mutex
	regs     *fakeRegistrationRepo
	groups   []models.Group
	fixtures []models.Fixture
}

func (r *fakeDrawRepo) CreateGroup(ctx context.Context, exec repositories.SQLExecutor, g *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g.ID = len(r.groups) + 1
	r.groups = append(r.groups, *g)
	return nil
}

func (r *fakeDrawRepo) AssignTeam(ctx context.Context, exec repositories.SQLExecutor, registrationID, groupID, position int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.groups {
		if r.groups[i].ID == groupID {
			r.groups[i].Teams = append(r.groups[i].Teams, models.GroupTeam{RegistrationID: registrationID, Position: position})
		}
	}
	r.regs.mu.Lock()
	if reg, ok := r.regs.regs[registrationID]; ok {
		id := groupID
		reg.GroupID = &id
	}
	r.regs.mu.Unlock()
	return nil
}

func (r *fakeDrawRepo) CreateFixture(ctx context.Context, exec repositories.SQLExecutor, f *models.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.ID = len(r.fixtures) + 1
	r.fixtures = append(r.fixtures, *f)
	return nil
}

func (r *fakeDrawRepo) ListGroups(ctx context.Context, ageGroupID int) ([]models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Group
	for _, g := range r.groups {
		if g.AgeGroupID != ageGroupID {
			continue
		}
		for _, f := range r.fixtures {
			if f.GroupID == g.ID {
				g.Fixtures = append(g.Fixtures, f)
			}
		}
		out = append(out, g)
	}
	return out, nil
}

func (r *fakeDrawRepo) DeleteByAgeGroup(ctx context.Context, exec repositories.SQLExecutor, ageGroupID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.groups[:0]
	for _, g := range r.groups {
		if g.AgeGroupID != ageGroupID {
			kept = append(kept, g)
		}
	}
	r.groups = kept
	r.regs.mu.Lock()
	for _, reg := range r.regs.regs {
		if reg.AgeGroupID == ageGroupID {
			reg.GroupID = nil
		}
	}
	r.regs.mu.Unlock()
	return nil
}

type fakeNotifications struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (f *fakeNotifications) Notify(ctx context.Context, n *models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, *n)
}

func (f *fakeNotifications) List(ctx context.Context, filter models.NotificationFilter) (models.Page[models.Notification], error) {
	return models.NewPage[models.Notification](nil, 0, filter.PageRequest), nil
}

func (f *fakeNotifications) UnreadCount(ctx context.Context, userID int) (int, error) { return 0, nil }

func (f *fakeNotifications) MarkRead(ctx context.Context, userID, notificationID int) error {
	return nil
}

func (f *fakeNotifications) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	return 0, nil
}

func (f *fakeNotifications) Delete(ctx context.Context, userID, notificationID int) error {
	return nil
}

func (f *fakeNotifications) byType(t models.NotificationType) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.sent {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages map[string][]realtime.Message
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{messages: map[string][]realtime.Message{}}
}

func (b *fakeBroadcaster) BroadcastToRoom(room string, msg realtime.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages[room] = append(b.messages[room], msg)
}

func (b *fakeBroadcaster) types(room string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, m := range b.messages[room] {
		out = append(out, m.Type)
	}
	return out
}

type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations map[int]*models.Invitation
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: map[int]*models.Invitation{}}
}

func (r *fakeInvitationRepo) Create(ctx context.Context, inv *models.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invitations {
		if existing.ClubID == inv.ClubID && existing.Email == inv.Email && existing.Status == models.InvitationPending {
			return repositories.ErrInvitationPending
		}
	}
	inv.ID = len(r.invitations) + 1
	cp := *inv
	r.invitations[inv.ID] = &cp
	return nil
}

func (r *fakeInvitationRepo) GetByID(ctx context.Context, id int) (*models.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return nil, repositories.ErrInvitationNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvitationRepo) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invitations {
		if inv.Token == token {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, repositories.ErrInvitationNotFound
}

func (r *fakeInvitationRepo) ListByClub(ctx context.Context, clubID int) ([]models.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Invitation{}
	for _, inv := range r.invitations {
		if inv.ClubID == clubID {
			out = append(out, *inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeInvitationRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.InvitationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[id]
	if !ok {
		return repositories.ErrInvitationNotFound
	}
	inv.Status = status
	return nil
}

func (r *fakeInvitationRepo) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, inv := range r.invitations {
		if inv.Status == models.InvitationPending && inv.Expired(now) {
			inv.Status = models.InvitationExpired
			n++
		}
	}
	return n, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) Send(ctx context.Context, to []string, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, strings.Join(to, ",")+"|"+subject)
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications map[int]*models.Notification
	createErr     error
	countErr      error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: map[int]*models.Notification{}}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	n.ID = len(r.notifications) + 1
	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r *fakeNotificationRepo) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Notification{}
	for _, n := range r.notifications {
		if n.UserID == filter.UserID && (!filter.UnreadOnly || !n.Read) {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, userID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.countErr != nil {
		return 0, r.countErr
	}
	n := 0
	for _, item := range r.notifications {
		if item.UserID == userID && !item.Read {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return repositories.ErrNotificationNotFound
	}
	n.Read = true
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			changed++
		}
	}
	return changed, nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, id, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return repositories.ErrNotificationNotFound
	}
	delete(r.notifications, id)
	return nil
}

// fakeUploader хранит объекты в памяти; failUpload имитирует недоступный R2.
type fakeUploader struct {
	mu         sync.Mutex
	objects    map[string][]byte
	deleted    []string
	failUpload bool
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: map[string][]byte{}}
}

func (u *fakeUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.failUpload {
		return nil, errors.New("r2 unavailable")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = data
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}
