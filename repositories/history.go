package repositories

import (
	"bagcount-gateway/models"
	"bagcount-gateway/repositories/base"
	"bagcount-gateway/repositories/interfaces"

	"gorm.io/gorm"
)

// HistoryRepository implements HistoryRepositoryInterface.
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new instance of HistoryRepository.
func NewHistoryRepository(db *gorm.DB) interfaces.HistoryRepositoryInterface {
	return &HistoryRepository{
		db: db,
	}
}

// Append writes one completed-order record.
func (hr *HistoryRepository) Append(entry *models.HistoryEntry) error {
	if err := hr.db.Create(entry).Error; err != nil {
		return base.WrapDBError("create", "history_entries", err)
	}
	return nil
}

// List retrieves history entries, newest first.
func (hr *HistoryRepository) List(limit, offset int) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	query := hr.db.Order("timestamp desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, base.WrapDBError("list", "history_entries", err)
	}
	return entries, nil
}

// Count returns the total number of history entries.
func (hr *HistoryRepository) Count() (int64, error) {
	var count int64
	if err := hr.db.Model(&models.HistoryEntry{}).Count(&count).Error; err != nil {
		return 0, base.WrapDBError("count", "history_entries", err)
	}
	return count, nil
}

// Clear removes all history entries.
func (hr *HistoryRepository) Clear() error {
	if err := hr.db.Where("1 = 1").Delete(&models.HistoryEntry{}).Error; err != nil {
		return base.WrapDBError("clear", "history_entries", err)
	}
	return nil
}
