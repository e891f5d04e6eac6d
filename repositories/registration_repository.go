package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/football-tournaments/models"
)

var (
	ErrRegistrationNotFound          = errors.New("registration not found")
	ErrRegistrationConflict          = errors.New("team already registered in this age group")
	ErrRegistrationClubInvalid       = errors.New("registration club invalid")
	ErrRegistrationTournamentInvalid = errors.New("registration tournament invalid")
	ErrRegistrationPotInvalid        = errors.New("registration pot number out of range")
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
	GetByID(ctx context.Context, id int) (*models.Registration, error)
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error)
	Count(ctx context.Context, filter models.RegistrationFilter) (int, error)
	Update(ctx context.Context, reg *models.Registration) error
	// UpdateStatus при clearDraw=true снимает команду с корзины и из группы.
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus, clearDraw bool) error
	UpdatePaymentStatus(ctx context.Context, id int, status models.PaymentStatus) error
	Delete(ctx context.Context, id int) error

	CountActiveInAgeGroup(ctx context.Context, exec SQLExecutor, ageGroupID int) (int, error)
	ListApprovedByAgeGroup(ctx context.Context, exec SQLExecutor, ageGroupID int) ([]models.Registration, error)
	SetPot(ctx context.Context, exec SQLExecutor, id int, potNumber *int) error
	ClearPots(ctx context.Context, exec SQLExecutor, ageGroupID int) (int64, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	return executorOr(exec, r.db)
}

const registrationSelect = `
	SELECT r.id, r.tournament_id, r.age_group_id, r.club_id, r.team_name, r.coach_name, r.contact_email,
		r.contact_phone, r.notes, r.status, r.payment_status, r.pot_number, r.group_id,
		r.created_at, r.updated_at, c.name
	FROM registrations r
	JOIN clubs c ON c.id = r.club_id`

func scanRegistration(row rowScanner) (*models.Registration, error) {
	var reg models.Registration
	err := row.Scan(
		&reg.ID,
		&reg.TournamentID,
		&reg.AgeGroupID,
		&reg.ClubID,
		&reg.TeamName,
		&reg.CoachName,
		&reg.ContactEmail,
		&reg.ContactPhone,
		&reg.Notes,
		&reg.Status,
		&reg.PaymentStatus,
		&reg.PotNumber,
		&reg.GroupID,
		&reg.CreatedAt,
		&reg.UpdatedAt,
		&reg.ClubName,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *postgresRegistrationRepository) queryRegistrations(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.Registration, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close()

	regs := make([]models.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		regs = append(regs, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}
	return regs, nil
}

func handleRegistrationError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRegistrationNotFound
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "registrations_team_key" {
				return ErrRegistrationConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "registrations_club_id_fkey":
				return ErrRegistrationClubInvalid
			case "registrations_tournament_id_fkey":
				return ErrRegistrationTournamentInvalid
			default:
				return ErrAgeGroupNotFound
			}
		case "23514":
			return ErrRegistrationPotInvalid
		}
	}
	return fmt.Errorf("registration repository: %w", err)
}

func registrationWhere(filter models.RegistrationFilter) whereBuilder {
	var w whereBuilder
	if filter.TournamentID != nil {
		w.add("r.tournament_id = $%d", *filter.TournamentID)
	}
	if filter.AgeGroupID != nil {
		w.add("r.age_group_id = $%d", *filter.AgeGroupID)
	}
	if filter.ClubID != nil {
		w.add("r.club_id = $%d", *filter.ClubID)
	}
	if filter.ManagedBy != nil {
		w.add("EXISTS (SELECT 1 FROM club_managers cm WHERE cm.club_id = r.club_id AND cm.user_id = $%d)", *filter.ManagedBy)
	}
	if filter.Status != nil {
		w.add("r.status = $%d", *filter.Status)
	}
	if filter.Search != "" {
		w.add("(r.team_name ILIKE $%[1]d OR c.name ILIKE $%[1]d OR r.coach_name ILIKE $%[1]d)", likePattern(filter.Search))
	}
	return w
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (tournament_id, age_group_id, club_id, team_name, coach_name,
			contact_email, contact_phone, notes, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		reg.TournamentID,
		reg.AgeGroupID,
		reg.ClubID,
		reg.TeamName,
		reg.CoachName,
		reg.ContactEmail,
		reg.ContactPhone,
		reg.Notes,
		reg.Status,
		reg.PaymentStatus,
	).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
	return handleRegistrationError(err)
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	reg, err := scanRegistration(r.db.QueryRowContext(ctx, registrationSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, handleRegistrationError(err)
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	total, err := r.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	w := registrationWhere(filter)
	limit, args := w.paginate(filter.Limit(), filter.Offset())
	regs, err := r.queryRegistrations(ctx, nil,
		registrationSelect+w.String()+` ORDER BY r.created_at DESC, r.id DESC`+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

func (r *postgresRegistrationRepository) Count(ctx context.Context, filter models.RegistrationFilter) (int, error) {
	w := registrationWhere(filter)
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations r JOIN clubs c ON c.id = r.club_id`+w.String(), w.args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return total, nil
}

func (r *postgresRegistrationRepository) Update(ctx context.Context, reg *models.Registration) error {
	query := `
		UPDATE registrations SET
			team_name = $1,
			coach_name = $2,
			contact_email = $3,
			contact_phone = $4,
			notes = $5,
			updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		reg.TeamName,
		reg.CoachName,
		reg.ContactEmail,
		reg.ContactPhone,
		reg.Notes,
		reg.ID,
	).Scan(&reg.UpdatedAt)
	return handleRegistrationError(err)
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus, clearDraw bool) error {
	query := `UPDATE registrations SET status = $1, updated_at = NOW() WHERE id = $2`
	if clearDraw {
		query = `UPDATE registrations SET status = $1, pot_number = NULL, group_id = NULL, group_position = NULL,
			updated_at = NOW() WHERE id = $2`
	}
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, id)
	if err != nil {
		return handleRegistrationError(err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) UpdatePaymentStatus(ctx context.Context, id int, status models.PaymentStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET payment_status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return handleRegistrationError(err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return handleRegistrationError(err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) CountActiveInAgeGroup(ctx context.Context, exec SQLExecutor, ageGroupID int) (int, error) {
	var n int
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE age_group_id = $1 AND status IN ($2, $3)`,
		ageGroupID, models.RegistrationPending, models.RegistrationApproved).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count age group registrations: %w", err)
	}
	return n, nil
}

func (r *postgresRegistrationRepository) ListApprovedByAgeGroup(ctx context.Context, exec SQLExecutor, ageGroupID int) ([]models.Registration, error) {
	return r.queryRegistrations(ctx, exec,
		registrationSelect+` WHERE r.age_group_id = $1 AND r.status = $2 ORDER BY r.id ASC`,
		ageGroupID, models.RegistrationApproved)
}

func (r *postgresRegistrationRepository) SetPot(ctx context.Context, exec SQLExecutor, id int, potNumber *int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE registrations SET pot_number = $1, updated_at = NOW() WHERE id = $2`, potNumber, id)
	if err != nil {
		return handleRegistrationError(err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) ClearPots(ctx context.Context, exec SQLExecutor, ageGroupID int) (int64, error) {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE registrations SET pot_number = NULL, updated_at = NOW()
		 WHERE age_group_id = $1 AND pot_number IS NOT NULL`, ageGroupID)
	if err != nil {
		return 0, handleRegistrationError(err)
	}
	return result.RowsAffected()
}
