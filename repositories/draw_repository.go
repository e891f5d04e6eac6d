package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/lib/pq"
)

var (
	ErrDrawGroupConflict = errors.New("draw group already exists")
)

// DrawRepository хранит результат жеребьевки: группы, состав групп и календарь.
type DrawRepository interface {
	CreateGroup(ctx context.Context, exec SQLExecutor, group *models.Group) error
	AssignTeam(ctx context.Context, exec SQLExecutor, registrationID, groupID, position int) error
	CreateFixture(ctx context.Context, exec SQLExecutor, fixture *models.Fixture) error
	ListGroups(ctx context.Context, ageGroupID int) ([]models.Group, error)
	DeleteByAgeGroup(ctx context.Context, exec SQLExecutor, ageGroupID int) error
}

type postgresDrawRepository struct {
	db *sql.DB
}

func NewPostgresDrawRepository(db *sql.DB) DrawRepository {
	return &postgresDrawRepository{db: db}
}

func (r *postgresDrawRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	return executorOr(exec, r.db)
}

func (r *postgresDrawRepository) CreateGroup(ctx context.Context, exec SQLExecutor, g *models.Group) error {
	query := `
		INSERT INTO draw_groups (tournament_id, age_group_id, name, seed)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		g.TournamentID,
		g.AgeGroupID,
		g.Name,
		g.Seed,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == "23505" &&
			pqErr.Constraint == "draw_groups_age_group_id_name_key" {
			return ErrDrawGroupConflict
		}
		return fmt.Errorf("failed to create draw group: %w", err)
	}
	return nil
}

func (r *postgresDrawRepository) AssignTeam(ctx context.Context, exec SQLExecutor, registrationID, groupID, position int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE registrations SET group_id = $1, group_position = $2, updated_at = NOW() WHERE id = $3`,
		groupID, position, registrationID)
	if err != nil {
		return fmt.Errorf("failed to assign team to group: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresDrawRepository) CreateFixture(ctx context.Context, exec SQLExecutor, f *models.Fixture) error {
	query := `
		INSERT INTO fixtures (group_id, round, order_in_round, home_registration_id, away_registration_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		f.GroupID,
		f.Round,
		f.OrderInRound,
		f.HomeTeamID,
		f.AwayTeamID,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("failed to create fixture: %w", err)
	}
	return nil
}

func (r *postgresDrawRepository) ListGroups(ctx context.Context, ageGroupID int) ([]models.Group, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tournament_id, age_group_id, name, seed, created_at
		FROM draw_groups
		WHERE age_group_id = $1
		ORDER BY name ASC`, ageGroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draw groups: %w", err)
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	index := make(map[int]int)
	ids := make([]int64, 0)
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.TournamentID, &g.AgeGroupID, &g.Name, &g.Seed, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draw group: %w", err)
		}
		g.Teams = make([]models.GroupTeam, 0)
		g.Fixtures = make([]models.Fixture, 0)
		index[g.ID] = len(groups)
		ids = append(ids, int64(g.ID))
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draw groups: %w", err)
	}
	if len(groups) == 0 {
		return groups, nil
	}

	if err := r.loadTeams(ctx, ids, groups, index); err != nil {
		return nil, err
	}
	if err := r.loadFixtures(ctx, ids, groups, index); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *postgresDrawRepository) loadTeams(ctx context.Context, ids []int64, groups []models.Group, index map[int]int) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.group_id, r.id, r.team_name, r.club_id, c.name, COALESCE(r.pot_number, 0), COALESCE(r.group_position, 0)
		FROM registrations r
		JOIN clubs c ON c.id = r.club_id
		WHERE r.group_id = ANY($1)
		ORDER BY r.group_id, r.group_position`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to list group teams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var groupID int
		var t models.GroupTeam
		if err := rows.Scan(&groupID, &t.RegistrationID, &t.TeamName, &t.ClubID, &t.ClubName, &t.PotNumber, &t.Position); err != nil {
			return fmt.Errorf("failed to scan group team: %w", err)
		}
		if i, ok := index[groupID]; ok {
			groups[i].Teams = append(groups[i].Teams, t)
		}
	}
	return rows.Err()
}

func (r *postgresDrawRepository) loadFixtures(ctx context.Context, ids []int64, groups []models.Group, index map[int]int) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, group_id, round, order_in_round, home_registration_id, away_registration_id
		FROM fixtures
		WHERE group_id = ANY($1)
		ORDER BY group_id, round, order_in_round`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to list fixtures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f models.Fixture
		if err := rows.Scan(&f.ID, &f.GroupID, &f.Round, &f.OrderInRound, &f.HomeTeamID, &f.AwayTeamID); err != nil {
			return fmt.Errorf("failed to scan fixture: %w", err)
		}
		if i, ok := index[f.GroupID]; ok {
			groups[i].Fixtures = append(groups[i].Fixtures, f)
		}
	}
	return rows.Err()
}

// DeleteByAgeGroup удаляет группы (календарь уходит каскадом) и снимает команды с групп.
func (r *postgresDrawRepository) DeleteByAgeGroup(ctx context.Context, exec SQLExecutor, ageGroupID int) error {
	executor := r.getExecutor(exec)
	if _, err := executor.ExecContext(ctx,
		`UPDATE registrations SET group_id = NULL, group_position = NULL WHERE age_group_id = $1 AND group_id IS NOT NULL`,
		ageGroupID); err != nil {
		return fmt.Errorf("failed to detach teams from groups: %w", err)
	}
	if _, err := executor.ExecContext(ctx, `DELETE FROM draw_groups WHERE age_group_id = $1`, ageGroupID); err != nil {
		return fmt.Errorf("failed to delete draw groups: %w", err)
	}
	return nil
}
