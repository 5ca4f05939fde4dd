package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "finny/internal/errors"
	"finny/internal/models"
)

// tagService handles tags and keeps their usage counters in step with
// transaction associations.
type tagService struct {
	db *gorm.DB
}

// NewTagService creates a new TagServicer.
func NewTagService(db *gorm.DB) TagServicer {
	return &tagService{db: db}
}

// CreateTag creates a tag with zero usage.
func (s *tagService) CreateTag(userID, name, color string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tag name is required")
	}
	if color == "" {
		color = models.DefaultTagColor
	}

	tag := &models.Tag{UserID: userID, Name: name, Color: color}
	if err := s.db.Create(tag).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tag, nil
}

// GetUserTags lists a user's tags, most used first.
func (s *tagService) GetUserTags(userID string) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.Where("user_id = ?", userID).
		Order("usage_count DESC").
		Order("created_at ASC").
		Find(&tags).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tags, nil
}

// SearchTags finds tags whose name contains query, ignoring case.
func (s *tagService) SearchTags(userID, query string) ([]models.Tag, error) {
	var tags []models.Tag
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	if err := s.db.Where("user_id = ? AND LOWER(name) LIKE ?", userID, pattern).
		Order("usage_count DESC").
		Find(&tags).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tags, nil
}

// GetTagByID retrieves a tag by ID for a specific user
func (s *tagService) GetTagByID(userID, tagID string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.Where("id = ? AND user_id = ?", tagID, userID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTagNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tag, nil
}

// RequireOwnedTags checks that every id names a live tag owned by userID.
func (s *tagService) RequireOwnedTags(tx *gorm.DB, userID string, tagIDs []string) error {
	ids := uniqueIDs(tagIDs)
	if len(ids) == 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&models.Tag{}).
		Where("id IN ? AND user_id = ?", ids, userID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count != int64(len(ids)) {
		return apperrors.ErrTagNotFound
	}
	return nil
}

// IncrementUsage bumps the counter of each owned tag once, ignoring unknown ids.
func (s *tagService) IncrementUsage(tx *gorm.DB, userID string, tagIDs []string) error {
	ids := uniqueIDs(tagIDs)
	if len(ids) == 0 {
		return nil
	}

	err := tx.Model(&models.Tag{}).
		Where("id IN ? AND user_id = ?", ids, userID).
		Updates(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count + ?", 1),
			"updated_at":  time.Now(),
		}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DecrementUsage floors at zero: counters already at zero are left alone,
// which can hide an earlier inconsistency instead of surfacing it.
func (s *tagService) DecrementUsage(tx *gorm.DB, userID string, tagIDs []string) error {
	ids := uniqueIDs(tagIDs)
	if len(ids) == 0 {
		return nil
	}

	err := tx.Model(&models.Tag{}).
		Where("id IN ? AND user_id = ? AND usage_count > 0", ids, userID).
		Updates(map[string]interface{}{
			"usage_count": gorm.Expr("usage_count - ?", 1),
			"updated_at":  time.Now(),
		}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
