package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/football-tournaments/models"
)

var (
	ErrAgeGroupNotFound     = errors.New("age group not found")
	ErrAgeGroupNameConflict = errors.New("age group name conflict")
)

type AgeGroupRepository interface {
	Create(ctx context.Context, ageGroup *models.AgeGroup) error
	GetByID(ctx context.Context, id int) (*models.AgeGroup, error)
	// GetByIDForUpdate блокирует строку до конца транзакции exec.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.AgeGroup, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.AgeGroup, error)
	Update(ctx context.Context, exec SQLExecutor, ageGroup *models.AgeGroup) error
	Delete(ctx context.Context, id int) error
	SetDrawCompleted(ctx context.Context, exec SQLExecutor, id int, at *time.Time) error
}

type postgresAgeGroupRepository struct {
	db *sql.DB
}

func NewPostgresAgeGroupRepository(db *sql.DB) AgeGroupRepository {
	return &postgresAgeGroupRepository{db: db}
}

const ageGroupColumns = `id, tournament_id, name, birth_year_from, birth_year_to, max_teams,
	number_of_groups, draw_completed_at, created_at`

func scanAgeGroup(row rowScanner) (*models.AgeGroup, error) {
	var a models.AgeGroup
	err := row.Scan(
		&a.ID,
		&a.TournamentID,
		&a.Name,
		&a.BirthYearFrom,
		&a.BirthYearTo,
		&a.MaxTeams,
		&a.NumberOfGroups,
		&a.DrawCompletedAt,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func handleAgeGroupError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAgeGroupNotFound
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "age_groups_tournament_id_name_key" {
				return ErrAgeGroupNameConflict
			}
		case "23503":
			return ErrTournamentNotFound
		}
	}
	return fmt.Errorf("age group repository: %w", err)
}

func (r *postgresAgeGroupRepository) Create(ctx context.Context, a *models.AgeGroup) error {
	query := `
		INSERT INTO age_groups (tournament_id, name, birth_year_from, birth_year_to, max_teams, number_of_groups)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		a.TournamentID,
		a.Name,
		a.BirthYearFrom,
		a.BirthYearTo,
		a.MaxTeams,
		a.NumberOfGroups,
	).Scan(&a.ID, &a.CreatedAt)
	return handleAgeGroupError(err)
}

func (r *postgresAgeGroupRepository) GetByID(ctx context.Context, id int) (*models.AgeGroup, error) {
	a, err := scanAgeGroup(r.db.QueryRowContext(ctx, `SELECT `+ageGroupColumns+` FROM age_groups WHERE id = $1`, id))
	if err != nil {
		return nil, handleAgeGroupError(err)
	}
	return a, nil
}

func (r *postgresAgeGroupRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.AgeGroup, error) {
	row := executorOr(exec, r.db).QueryRowContext(ctx,
		`SELECT `+ageGroupColumns+` FROM age_groups WHERE id = $1 FOR UPDATE`, id)
	a, err := scanAgeGroup(row)
	if err != nil {
		return nil, handleAgeGroupError(err)
	}
	return a, nil
}

func (r *postgresAgeGroupRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.AgeGroup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ageGroupColumns+` FROM age_groups WHERE tournament_id = $1 ORDER BY birth_year_from DESC, id ASC`,
		tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list age groups: %w", err)
	}
	defer rows.Close()

	groups := make([]models.AgeGroup, 0)
	for rows.Next() {
		a, err := scanAgeGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan age group row: %w", err)
		}
		groups = append(groups, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating age group rows: %w", err)
	}
	return groups, nil
}

func (r *postgresAgeGroupRepository) Update(ctx context.Context, exec SQLExecutor, a *models.AgeGroup) error {
	query := `
		UPDATE age_groups SET
			name = $1,
			birth_year_from = $2,
			birth_year_to = $3,
			max_teams = $4,
			number_of_groups = $5
		WHERE id = $6`

	result, err := executorOr(exec, r.db).ExecContext(ctx, query,
		a.Name,
		a.BirthYearFrom,
		a.BirthYearTo,
		a.MaxTeams,
		a.NumberOfGroups,
		a.ID,
	)
	if err != nil {
		return handleAgeGroupError(err)
	}
	return checkAffectedRows(result, ErrAgeGroupNotFound)
}

func (r *postgresAgeGroupRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM age_groups WHERE id = $1`, id)
	if err != nil {
		return handleAgeGroupError(err)
	}
	return checkAffectedRows(result, ErrAgeGroupNotFound)
}

func (r *postgresAgeGroupRepository) SetDrawCompleted(ctx context.Context, exec SQLExecutor, id int, at *time.Time) error {
	result, err := executorOr(exec, r.db).ExecContext(ctx,
		`UPDATE age_groups SET draw_completed_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return handleAgeGroupError(err)
	}
	return checkAffectedRows(result, ErrAgeGroupNotFound)
}
