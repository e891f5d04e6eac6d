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
	ErrInvitationNotFound      = errors.New("invitation not found")
	ErrInvitationTokenConflict = errors.New("invitation token conflict")
	ErrInvitationPending       = errors.New("pending invitation already exists for this email")
)

type InvitationRepository interface {
	Create(ctx context.Context, inv *models.Invitation) error
	GetByID(ctx context.Context, id int) (*models.Invitation, error)
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)
	ListByClub(ctx context.Context, clubID int) ([]models.Invitation, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.InvitationStatus) error
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

type postgresInvitationRepository struct {
	db *sql.DB
}

func NewPostgresInvitationRepository(db *sql.DB) InvitationRepository {
	return &postgresInvitationRepository{db: db}
}

const invitationSelect = `
	SELECT i.id, i.club_id, i.email, i.token, i.status, i.invited_by, i.expires_at, i.created_at, c.name
	FROM invitations i
	JOIN clubs c ON c.id = i.club_id`

func scanInvitation(row rowScanner) (*models.Invitation, error) {
	var inv models.Invitation
	err := row.Scan(
		&inv.ID,
		&inv.ClubID,
		&inv.Email,
		&inv.Token,
		&inv.Status,
		&inv.InvitedBy,
		&inv.ExpiresAt,
		&inv.CreatedAt,
		&inv.ClubName,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *postgresInvitationRepository) Create(ctx context.Context, inv *models.Invitation) error {
	query := `
		INSERT INTO invitations (club_id, email, token, status, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		inv.ClubID,
		inv.Email,
		inv.Token,
		inv.Status,
		inv.InvitedBy,
		inv.ExpiresAt,
	).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok {
			switch pqErr.Code {
			case "23505":
				switch pqErr.Constraint {
				case "invitations_token_key":
					return ErrInvitationTokenConflict
				case "invitations_pending_email_idx":
					return ErrInvitationPending
				}
			case "23503":
				return ErrClubNotFound
			}
		}
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

func (r *postgresInvitationRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.Invitation, error) {
	inv, err := scanInvitation(r.db.QueryRowContext(ctx, invitationSelect+` WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to scan invitation: %w", err)
	}
	return inv, nil
}

func (r *postgresInvitationRepository) GetByID(ctx context.Context, id int) (*models.Invitation, error) {
	return r.getOne(ctx, "i.id = $1", id)
}

func (r *postgresInvitationRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	return r.getOne(ctx, "i.token = $1", token)
}

func (r *postgresInvitationRepository) ListByClub(ctx context.Context, clubID int) ([]models.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, invitationSelect+` WHERE i.club_id = $1 ORDER BY i.created_at DESC, i.id DESC`, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	items := make([]models.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation row: %w", err)
		}
		items = append(items, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invitations: %w", err)
	}
	return items, nil
}

func (r *postgresInvitationRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.InvitationStatus) error {
	result, err := executorOr(exec, r.db).ExecContext(ctx,
		`UPDATE invitations SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update invitation status: %w", err)
	}
	return checkAffectedRows(result, ErrInvitationNotFound)
}

func (r *postgresInvitationRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = $1 WHERE status = $2 AND expires_at <= $3`,
		models.InvitationExpired, models.InvitationPending, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire invitations: %w", err)
	}
	return result.RowsAffected()
}
