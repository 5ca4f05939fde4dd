package services

import (
	"gorm.io/gorm"

	apperrors "finny/internal/errors"
	"finny/internal/models"
)

// tagIDsFor returns the tag ids linked to one transaction, sorted by id.
func tagIDsFor(tx *gorm.DB, transactionID string) ([]string, error) {
	ids := []string{}
	if err := tx.Model(&models.TransactionTag{}).
		Where("transaction_id = ?", transactionID).
		Order("tag_id ASC").
		Pluck("tag_id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ids, nil
}

// tagIDsForMany batch-loads tag ids for a page of transactions. Every
// requested id has an entry, possibly empty.
func tagIDsForMany(tx *gorm.DB, transactionIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(transactionIDs))
	for _, id := range transactionIDs {
		out[id] = []string{}
	}
	if len(transactionIDs) == 0 {
		return out, nil
	}

	var links []models.TransactionTag
	if err := tx.Where("transaction_id IN ?", transactionIDs).
		Order("tag_id ASC").
		Find(&links).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, l := range links {
		out[l.TransactionID] = append(out[l.TransactionID], l.TagID)
	}
	return out, nil
}

// replaceTags swaps the association rows of a transaction for tagIDs.
func replaceTags(tx *gorm.DB, transactionID string, tagIDs []string) error {
	if err := clearTags(tx, transactionID); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}

	links := make([]models.TransactionTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		links = append(links, models.TransactionTag{TransactionID: transactionID, TagID: id})
	}
	if err := tx.Create(&links).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func clearTags(tx *gorm.DB, transactionID string) error {
	if err := tx.Where("transaction_id = ?", transactionID).
		Delete(&models.TransactionTag{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
