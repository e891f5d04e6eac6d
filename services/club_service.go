package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/repositories"
	"github.com/Dosada05/football-tournaments/storage"
)

const clubLogoEntity = "clubs"

type ClubService interface {
	List(ctx context.Context, filter models.ClubFilter) (models.Page[models.Club], error)
	ListMine(ctx context.Context, actor Actor, page models.PageRequest) (models.Page[models.Club], error)
	GetByID(ctx context.Context, id int) (*models.Club, error)
	Create(ctx context.Context, actor Actor, input CreateClubInput) (*models.Club, error)
	Update(ctx context.Context, actor Actor, id int, input UpdateClubInput) (*models.Club, error)
	Delete(ctx context.Context, actor Actor, id int) error
	UploadLogo(ctx context.Context, actor Actor, id int, file io.Reader) (*models.Club, error)
}

type CreateClubInput struct {
	Name         string  `json:"name" validate:"required,max=150"`
	ShortName    string  `json:"shortName" validate:"max=20"`
	City         string  `json:"city" validate:"required,max=100"`
	Country      string  `json:"country" validate:"required,max=100"`
	FoundedYear  *int    `json:"foundedYear" validate:"omitempty,min=1850,max=2100"`
	ContactEmail string  `json:"contactEmail" validate:"required,email"`
	ContactPhone *string `json:"contactPhone" validate:"omitempty,max=30"`
}

type UpdateClubInput struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=150"`
	ShortName    *string `json:"shortName" validate:"omitempty,max=20"`
	City         *string `json:"city" validate:"omitempty,min=1,max=100"`
	Country      *string `json:"country" validate:"omitempty,min=1,max=100"`
	FoundedYear  *int    `json:"foundedYear" validate:"omitempty,min=1850,max=2100"`
	ContactEmail *string `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone *string `json:"contactPhone" validate:"omitempty,max=30"`
}

type clubService struct {
	clubRepo repositories.ClubRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewClubService(clubRepo repositories.ClubRepository, uploader storage.FileUploader, logger *slog.Logger) ClubService {
	return &clubService{clubRepo: clubRepo, uploader: uploader, logger: logger}
}

// ensureClubManager пропускает админа и менеджеров клуба.
func ensureClubManager(ctx context.Context, clubRepo repositories.ClubRepository, actor Actor, clubID int) error {
	if actor.IsAdmin() {
		return nil
	}
	ok, err := clubRepo.IsManager(ctx, clubID, actor.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbiddenOperation
	}
	return nil
}

func (s *clubService) page(ctx context.Context, filter models.ClubFilter) (models.Page[models.Club], error) {
	filter.PageRequest = filter.PageRequest.Normalize()
	clubs, total, err := s.clubRepo.List(ctx, filter)
	if err != nil {
		return models.Page[models.Club]{}, err
	}
	for i := range clubs {
		populateClubLogoURL(&clubs[i], s.uploader)
	}
	return models.NewPage(clubs, total, filter.PageRequest), nil
}

func (s *clubService) List(ctx context.Context, filter models.ClubFilter) (models.Page[models.Club], error) {
	return s.page(ctx, filter)
}

func (s *clubService) ListMine(ctx context.Context, actor Actor, page models.PageRequest) (models.Page[models.Club], error) {
	return s.page(ctx, models.ClubFilter{ManagedBy: &actor.UserID, PageRequest: page})
}

func (s *clubService) GetByID(ctx context.Context, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	populateClubLogoURL(club, s.uploader)
	return club, nil
}

func (s *clubService) Create(ctx context.Context, actor Actor, input CreateClubInput) (*models.Club, error) {
	club := &models.Club{
		Name:         strings.TrimSpace(input.Name),
		ShortName:    strings.TrimSpace(input.ShortName),
		City:         strings.TrimSpace(input.City),
		Country:      strings.TrimSpace(input.Country),
		FoundedYear:  input.FoundedYear,
		ContactEmail: normalizeEmail(input.ContactEmail),
		ContactPhone: input.ContactPhone,
		ManagerID:    actor.UserID,
	}
	if club.Name == "" || club.City == "" || club.Country == "" {
		return nil, fmt.Errorf("%w: name, city and country are required", ErrValidationFailed)
	}
	if err := s.clubRepo.Create(ctx, club); err != nil {
		return nil, mapRepoError(err)
	}
	s.logger.InfoContext(ctx, "club created", slog.Int("club_id", club.ID), slog.Int("manager_id", actor.UserID))
	return club, nil
}

func (s *clubService) Update(ctx context.Context, actor Actor, id int, input UpdateClubInput) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := ensureClubManager(ctx, s.clubRepo, actor, id); err != nil {
		return nil, err
	}

	if input.Name != nil {
		club.Name = strings.TrimSpace(*input.Name)
	}
	if input.ShortName != nil {
		club.ShortName = strings.TrimSpace(*input.ShortName)
	}
	if input.City != nil {
		club.City = strings.TrimSpace(*input.City)
	}
	if input.Country != nil {
		club.Country = strings.TrimSpace(*input.Country)
	}
	if input.FoundedYear != nil {
		club.FoundedYear = input.FoundedYear
	}
	if input.ContactEmail != nil {
		club.ContactEmail = normalizeEmail(*input.ContactEmail)
	}
	if input.ContactPhone != nil {
		club.ContactPhone = input.ContactPhone
	}
	if club.Name == "" || club.City == "" || club.Country == "" {
		return nil, fmt.Errorf("%w: name, city and country must not be empty", ErrValidationFailed)
	}

	if err := s.clubRepo.Update(ctx, club); err != nil {
		return nil, mapRepoError(err)
	}
	populateClubLogoURL(club, s.uploader)
	return club, nil
}

func (s *clubService) Delete(ctx context.Context, actor Actor, id int) error {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	if err := ensureClubManager(ctx, s.clubRepo, actor, id); err != nil {
		return err
	}
	if err := s.clubRepo.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}
	deleteOldLogo(ctx, s.uploader, club.LogoKey, s.logger)
	s.logger.InfoContext(ctx, "club deleted", slog.Int("club_id", id), slog.Int("by", actor.UserID))
	return nil
}

func (s *clubService) UploadLogo(ctx context.Context, actor Actor, id int, file io.Reader) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := ensureClubManager(ctx, s.clubRepo, actor, id); err != nil {
		return nil, err
	}

	key, err := uploadLogo(ctx, s.uploader, clubLogoEntity, id, file)
	if err != nil {
		return nil, err
	}
	if err := s.clubRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		deleteOldLogo(ctx, s.uploader, &key, s.logger)
		return nil, mapRepoError(err)
	}
	deleteOldLogo(ctx, s.uploader, club.LogoKey, s.logger)

	club.LogoKey = &key
	populateClubLogoURL(club, s.uploader)
	return club, nil
}
