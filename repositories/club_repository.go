package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/football-tournaments/models"
)

var (
	ErrClubNotFound         = errors.New("club not found")
	ErrClubNameConflict     = errors.New("club name conflict")
	ErrClubManagerInvalid   = errors.New("club manager invalid")
	ErrClubHasRegistrations = errors.New("club has registrations")
)

type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id int) (*models.Club, error)
	List(ctx context.Context, filter models.ClubFilter) ([]models.Club, int, error)
	Update(ctx context.Context, club *models.Club) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)

	IsManager(ctx context.Context, clubID, userID int) (bool, error)
	AddManager(ctx context.Context, exec SQLExecutor, clubID, userID int) error
	ListManagerIDs(ctx context.Context, clubID int) ([]int, error)
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

const clubColumns = `c.id, c.name, c.short_name, c.city, c.country, c.founded_year, c.contact_email,
	c.contact_phone, c.manager_id, c.logo_key, c.created_at, c.updated_at`

func scanClub(row rowScanner) (*models.Club, error) {
	var c models.Club
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.ShortName,
		&c.City,
		&c.Country,
		&c.FoundedYear,
		&c.ContactEmail,
		&c.ContactPhone,
		&c.ManagerID,
		&c.LogoKey,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func mapClubError(err error) error {
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "clubs_name_key" {
				return ErrClubNameConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "clubs_manager_id_fkey":
				return ErrClubManagerInvalid
			case "registrations_club_id_fkey":
				return ErrClubHasRegistrations
			}
		}
	}
	return err
}

// Create сохраняет клуб и сразу делает его создателя менеджером.
func (r *postgresClubRepository) Create(ctx context.Context, club *models.Club) error {
	return NewPostgresTxManager(r.db).WithinTx(ctx, func(exec SQLExecutor) error {
		query := `
			INSERT INTO clubs (name, short_name, city, country, founded_year, contact_email, contact_phone, manager_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at`

		err := exec.QueryRowContext(ctx, query,
			club.Name,
			club.ShortName,
			club.City,
			club.Country,
			club.FoundedYear,
			club.ContactEmail,
			club.ContactPhone,
			club.ManagerID,
		).Scan(&club.ID, &club.CreatedAt, &club.UpdatedAt)
		if err != nil {
			return mapClubError(err)
		}
		return r.AddManager(ctx, exec, club.ID, club.ManagerID)
	})
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	club, err := scanClub(r.db.QueryRowContext(ctx, `SELECT `+clubColumns+` FROM clubs c WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to scan club: %w", err)
	}
	return club, nil
}

func (r *postgresClubRepository) List(ctx context.Context, filter models.ClubFilter) ([]models.Club, int, error) {
	var w whereBuilder
	if filter.Search != "" {
		w.add("(c.name ILIKE $%[1]d OR c.short_name ILIKE $%[1]d OR c.city ILIKE $%[1]d)", likePattern(filter.Search))
	}
	if filter.Country != "" {
		w.add("lower(c.country) = lower($%d)", filter.Country)
	}
	if filter.ManagedBy != nil {
		w.add("EXISTS (SELECT 1 FROM club_managers cm WHERE cm.club_id = c.id AND cm.user_id = $%d)", *filter.ManagedBy)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clubs c`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count clubs: %w", err)
	}

	limit, args := w.paginate(filter.Limit(), filter.Offset())
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clubColumns+` FROM clubs c`+w.String()+` ORDER BY c.name ASC, c.id ASC`+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clubs: %w", err)
	}
	defer rows.Close()

	clubs := make([]models.Club, 0)
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan club row: %w", err)
		}
		clubs = append(clubs, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating club rows: %w", err)
	}
	return clubs, total, nil
}

func (r *postgresClubRepository) Update(ctx context.Context, club *models.Club) error {
	query := `
		UPDATE clubs SET
			name = $1,
			short_name = $2,
			city = $3,
			country = $4,
			founded_year = $5,
			contact_email = $6,
			contact_phone = $7,
			updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		club.Name,
		club.ShortName,
		club.City,
		club.Country,
		club.FoundedYear,
		club.ContactEmail,
		club.ContactPhone,
		club.ID,
	).Scan(&club.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrClubNotFound
		}
		return mapClubError(err)
	}
	return nil
}

func (r *postgresClubRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE clubs SET logo_key = $1, updated_at = NOW() WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update club logo key: %w", err)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return mapClubError(err)
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clubs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count clubs: %w", err)
	}
	return n, nil
}

func (r *postgresClubRepository) IsManager(ctx context.Context, clubID, userID int) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM club_managers WHERE club_id = $1 AND user_id = $2)`,
		clubID, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check club manager: %w", err)
	}
	return ok, nil
}

func (r *postgresClubRepository) AddManager(ctx context.Context, exec SQLExecutor, clubID, userID int) error {
	_, err := executorOr(exec, r.db).ExecContext(ctx,
		`INSERT INTO club_managers (club_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		clubID, userID)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == "23503" {
			return ErrClubNotFound
		}
		return fmt.Errorf("failed to add club manager: %w", err)
	}
	return nil
}

func (r *postgresClubRepository) ListManagerIDs(ctx context.Context, clubID int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM club_managers WHERE club_id = $1 ORDER BY user_id`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list club managers: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan club manager: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
