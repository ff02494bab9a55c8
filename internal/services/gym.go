package services

import (
	"context"

	"github.com/Gosshi/gym-equipment-directory-sub001/internal/database"
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/models"
)

type GymService struct {
	db *database.DB
}

func NewGymService(db *database.DB) *GymService {
	return &GymService{db: db}
}

// GetBySlug retrieves a gym with its equipment links
func (s *GymService) GetBySlug(ctx context.Context, slug string) (*models.Gym, error) {
	var gym models.Gym
	err := s.db.WithContext(ctx).
		Preload("Equipments").
		Preload("Equipments.Equipment").
		Where("slug = ?", slug).
		First(&gym).Error
	if err != nil {
		return nil, wrapStore(err)
	}
	return &gym, nil
}

// ListEquipments returns the equipment master, optionally filtered by category
func (s *GymService) ListEquipments(ctx context.Context, category string) ([]models.Equipment, error) {
	query := s.db.WithContext(ctx).Model(&models.Equipment{}).Order("slug ASC")
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var equipments []models.Equipment
	if err := query.Find(&equipments).Error; err != nil {
		return nil, &StoreError{Err: err}
	}
	return equipments, nil
}

// RefreshFreshness recomputes last_verified_at_cached for the given gyms from
// their equipment links. This is the write-side collaborator behind the
// internal API; the search path never does this itself.
func (s *GymService) RefreshFreshness(ctx context.Context, gymIDs []uint) (int, error) {
	updated := 0
	for _, gymID := range gymIDs {
		result := s.db.WithContext(ctx).Model(&models.Gym{}).
			Where("id = ?", gymID).
			Update("last_verified_at_cached",
				s.db.Model(&models.GymEquipment{}).
					Select("MAX(last_verified_at)").
					Where("gym_id = ?", gymID),
			)
		if result.Error != nil {
			return updated, wrapStore(result.Error)
		}
		updated += int(result.RowsAffected)
	}
	return updated, nil
}

// CreateReport records a user-submitted data issue for a gym
func (s *GymService) CreateReport(ctx context.Context, gymSlug string, userID *uint, reportType, message string) (*models.GymReport, error) {
	gym, err := s.GetBySlug(ctx, gymSlug)
	if err != nil {
		return nil, err
	}

	report := models.GymReport{
		GymID:   gym.ID,
		UserID:  userID,
		Type:    reportType,
		Message: message,
		Status:  models.ReportStatusOpen,
	}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, wrapStore(err)
	}
	return &report, nil
}
