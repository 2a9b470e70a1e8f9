package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fifanights/cup-tracker/models"
	"github.com/fifanights/cup-tracker/repositories"
	"github.com/fifanights/cup-tracker/storage"
)

type ClubInput struct {
	Name       string  `json:"name"`
	Game       string  `json:"game"`
	StarRating float64 `json:"star_rating"`
}

type ClubService interface {
	Create(ctx context.Context, input ClubInput) (*models.Club, error)
	GetByID(ctx context.Context, id int) (*models.Club, error)
	List(ctx context.Context, game string) ([]models.Club, error)
	Update(ctx context.Context, id int, input ClubInput) (*models.Club, error)
	Delete(ctx context.Context, id int) error
	UploadCrest(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Club, error)
}

type clubService struct {
	clubRepo repositories.ClubRepository
	uploader storage.FileUploader
}

func NewClubService(clubRepo repositories.ClubRepository, uploader storage.FileUploader) ClubService {
	return &clubService{clubRepo: clubRepo, uploader: uploader}
}

func validateClubInput(input *ClubInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return ErrClubNameRequired
	}
	if input.StarRating < 0.5 || input.StarRating > 5.0 {
		return ErrClubRatingOutOfRange
	}
	return nil
}

func (s *clubService) decorate(c *models.Club) *models.Club {
	if c.CrestKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*c.CrestKey)
		c.CrestURL = &url
	}
	return c
}

func (s *clubService) Create(ctx context.Context, input ClubInput) (*models.Club, error) {
	if err := validateClubInput(&input); err != nil {
		return nil, err
	}
	club := &models.Club{Name: input.Name, Game: input.Game, StarRating: input.StarRating}
	if err := s.clubRepo.Create(ctx, club); err != nil {
		if errors.Is(err, repositories.ErrClubNameConflict) {
			return nil, ErrClubNameConflict
		}
		return nil, fmt.Errorf("failed to create club: %w", err)
	}
	return club, nil
}

func (s *clubService) GetByID(ctx context.Context, id int) (*models.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club %d: %w", id, err)
	}
	return s.decorate(club), nil
}

func (s *clubService) List(ctx context.Context, game string) ([]models.Club, error) {
	clubs, err := s.clubRepo.List(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	for i := range clubs {
		s.decorate(&clubs[i])
	}
	return clubs, nil
}

func (s *clubService) Update(ctx context.Context, id int, input ClubInput) (*models.Club, error) {
	if err := validateClubInput(&input); err != nil {
		return nil, err
	}
	club, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	club.Name = input.Name
	club.Game = input.Game
	club.StarRating = input.StarRating
	if err := s.clubRepo.Update(ctx, club); err != nil {
		if errors.Is(err, repositories.ErrClubNameConflict) {
			return nil, ErrClubNameConflict
		}
		return nil, fmt.Errorf("failed to update club %d: %w", id, err)
	}
	return club, nil
}

func (s *clubService) Delete(ctx context.Context, id int) error {
	club, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.clubRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete club %d: %w", id, err)
	}
	if club.CrestKey != nil && s.uploader != nil {
		_ = s.uploader.Delete(ctx, *club.CrestKey)
	}
	return nil
}

func (s *clubService) UploadCrest(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Club, error) {
	if s.uploader == nil {
		return nil, ErrValidationFailed
	}
	club, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("clubs/%d/crest", id)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload crest for club %d: %w", id, err)
	}
	if err := s.clubRepo.UpdateCrestKey(ctx, id, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store crest key for club %d: %w", id, err)
	}
	club.CrestKey = &result.Key
	return s.decorate(club), nil
}
