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

type PlayerService interface {
	Create(ctx context.Context, displayName string) (*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	Rename(ctx context.Context, id int, displayName string) (*models.Player, error)
	Delete(ctx context.Context, id int) error
	UploadAvatar(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
}

func NewPlayerService(playerRepo repositories.PlayerRepository, uploader storage.FileUploader) PlayerService {
	return &playerService{playerRepo: playerRepo, uploader: uploader}
}

func (s *playerService) decorate(p *models.Player) *models.Player {
	if p.AvatarKey != nil && s.uploader != nil {
		url := s.uploader.GetPublicURL(*p.AvatarKey)
		p.AvatarURL = &url
	}
	return p
}

func (s *playerService) Create(ctx context.Context, displayName string) (*models.Player, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrPlayerNameRequired
	}
	player := &models.Player{DisplayName: displayName}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNameConflict) {
			return nil, ErrPlayerNameConflict
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

func (s *playerService) GetByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return s.decorate(player), nil
}

func (s *playerService) List(ctx context.Context) ([]models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	for i := range players {
		s.decorate(&players[i])
	}
	return players, nil
}

func (s *playerService) Rename(ctx context.Context, id int, displayName string) (*models.Player, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrPlayerNameRequired
	}
	player, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	player.DisplayName = displayName
	if err := s.playerRepo.Update(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNameConflict) {
			return nil, ErrPlayerNameConflict
		}
		return nil, fmt.Errorf("failed to rename player %d: %w", id, err)
	}
	return player, nil
}

func (s *playerService) Delete(ctx context.Context, id int) error {
	player, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.playerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete player %d: %w", id, err)
	}
	if player.AvatarKey != nil && s.uploader != nil {
		// Media cleanup is best effort; the row is already gone.
		_ = s.uploader.Delete(ctx, *player.AvatarKey)
	}
	return nil
}

func (s *playerService) UploadAvatar(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Player, error) {
	if s.uploader == nil {
		return nil, ErrValidationFailed
	}
	player, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("players/%d/avatar", id)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar for player %d: %w", id, err)
	}
	if err := s.playerRepo.UpdateAvatarKey(ctx, id, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store avatar key for player %d: %w", id, err)
	}
	player.AvatarKey = &result.Key
	return s.decorate(player), nil
}
