package services

import (
	"context"
	"errors"

	"github.com/Gosshi/gym-equipment-directory-sub001/internal/database"
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/models"
	"gorm.io/gorm"
)

type FavoriteService struct {
	db *database.DB
}

func NewFavoriteService(db *database.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// List returns the user's favorite gyms, newest first
func (s *FavoriteService) List(ctx context.Context, userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := s.db.WithContext(ctx).
		Preload("Gym").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	if err != nil {
		return nil, wrapStore(err)
	}
	return favorites, nil
}

// Add bookmarks a gym for the user. Adding twice is a no-op.
func (s *FavoriteService) Add(ctx context.Context, userID uint, gymSlug string) error {
	var gym models.Gym
	if err := s.db.WithContext(ctx).Where("slug = ?", gymSlug).First(&gym).Error; err != nil {
		return wrapStore(err)
	}

	var existing models.Favorite
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND gym_id = ?", userID, gym.ID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return &StoreError{Err: err}
	}

	favorite := models.Favorite{UserID: userID, GymID: gym.ID}
	return wrapStore(s.db.WithContext(ctx).Create(&favorite).Error)
}

// Remove deletes a bookmark
func (s *FavoriteService) Remove(ctx context.Context, userID uint, gymSlug string) error {
	var gym models.Gym
	if err := s.db.WithContext(ctx).Where("slug = ?", gymSlug).First(&gym).Error; err != nil {
		return wrapStore(err)
	}

	return wrapStore(s.db.WithContext(ctx).
		Where("user_id = ? AND gym_id = ?", userID, gym.ID).
		Delete(&models.Favorite{}).Error)
}
