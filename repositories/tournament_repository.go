package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound         = errors.New("tournament not found")
	ErrTournamentNameConflict     = errors.New("tournament name conflict")
	ErrTournamentOrganizerInvalid = errors.New("tournament organizer invalid")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter models.TournamentFilter) ([]models.Tournament, int, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
	CountByStatus(ctx context.Context, statuses ...models.TournamentStatus) (int, error)
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]models.Tournament, error)
	GetTournamentsForAutoStatusUpdate(ctx context.Context, exec SQLExecutor, now time.Time) ([]models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	return executorOr(exec, r.db)
}

const tournamentColumns = `id, name, description, location, start_date, end_date, registration_deadline,
	status, organizer_id, entry_fee, currency, logo_key, created_at, updated_at`

func scanTournament(row rowScanner) (*models.Tournament, error) {
	var t models.Tournament
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Location,
		&t.StartDate,
		&t.EndDate,
		&t.RegistrationDeadline,
		&t.Status,
		&t.OrganizerID,
		&t.EntryFee,
		&t.Currency,
		&t.LogoKey,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *postgresTournamentRepository) queryTournaments(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.Tournament, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (name, description, location, start_date, end_date, registration_deadline,
			status, organizer_id, entry_fee, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name,
		t.Description,
		t.Location,
		t.StartDate,
		t.EndDate,
		t.RegistrationDeadline,
		t.Status,
		t.OrganizerID,
		t.EntryFee,
		t.Currency,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := scanTournament(r.db.QueryRowContext(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`, id))
	if err != nil {
		return nil, r.handleTournamentError(err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter models.TournamentFilter) ([]models.Tournament, int, error) {
	var w whereBuilder
	if filter.Search != "" {
		w.add("(name ILIKE $%[1]d OR location ILIKE $%[1]d)", likePattern(filter.Search))
	}
	if filter.Status != nil {
		w.add("status = $%d", *filter.Status)
	}
	if filter.OrganizerID != nil {
		w.add("organizer_id = $%d", *filter.OrganizerID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tournaments: %w", err)
	}

	limit, args := w.paginate(filter.Limit(), filter.Offset())
	tournaments, err := r.queryTournaments(ctx, nil,
		`SELECT `+tournamentColumns+` FROM tournaments`+w.String()+` ORDER BY start_date DESC, id DESC`+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	return tournaments, total, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1,
			description = $2,
			location = $3,
			start_date = $4,
			end_date = $5,
			registration_deadline = $6,
			entry_fee = $7,
			currency = $8,
			updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name,
		t.Description,
		t.Location,
		t.StartDate,
		t.EndDate,
		t.RegistrationDeadline,
		t.EntryFee,
		t.Currency,
		t.ID,
	).Scan(&t.UpdatedAt)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE tournaments SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament status: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tournaments SET logo_key = $1, updated_at = NOW() WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// CountByStatus без аргументов считает все турниры.
func (r *postgresTournamentRepository) CountByStatus(ctx context.Context, statuses ...models.TournamentStatus) (int, error) {
	var n int
	var err error
	if len(statuses) == 0 {
		err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments`).Scan(&n)
	} else {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		err = r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM tournaments WHERE status = ANY($1)`, pq.Array(values)).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count tournaments: %w", err)
	}
	return n, nil
}

func (r *postgresTournamentRepository) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments
		WHERE start_date > $1 AND status IN ($2, $3)
		ORDER BY start_date ASC, id ASC
		LIMIT $4`
	return r.queryTournaments(ctx, nil, query,
		now, models.TournamentRegistrationOpen, models.TournamentRegistrationClosed, limit)
}

func (r *postgresTournamentRepository) GetTournamentsForAutoStatusUpdate(ctx context.Context, exec SQLExecutor, now time.Time) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments
		WHERE (status = $1 AND registration_deadline <= $4)
		   OR (status = $2 AND start_date <= $4)
		   OR (status = $3 AND end_date <= $4)`
	return r.queryTournaments(ctx, exec, query,
		models.TournamentRegistrationOpen,
		models.TournamentRegistrationClosed,
		models.TournamentInProgress,
		now,
	)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTournamentNotFound
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_organizer_id_name_key" {
				return ErrTournamentNameConflict
			}
		case "23503":
			if pqErr.Constraint == "tournaments_organizer_id_fkey" {
				return ErrTournamentOrganizerInvalid
			}
		}
	}
	return fmt.Errorf("tournament repository: %w", err)
}
