package repositories

import (
	"bagcount-gateway/models"
	"bagcount-gateway/repositories/base"
	"bagcount-gateway/repositories/interfaces"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository implements SettingsRepositoryInterface.
type SettingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository.
func NewSettingsRepository(db *gorm.DB) interfaces.SettingsRepositoryInterface {
	return &SettingsRepository{
		db: db,
	}
}

// Get retrieves the persisted settings row, if any.
func (sr *SettingsRepository) Get() (*models.DeviceSettings, error) {
	var settings models.DeviceSettings
	err := sr.db.First(&settings, "id = ?", 1).Error
	if err != nil {
		return nil, base.HandleDBError("get", "device_settings", "ID 1", err)
	}
	return &settings, nil
}

// Save upserts the settings row.
func (sr *SettingsRepository) Save(settings *models.DeviceSettings) error {
	settings.ID = 1
	err := sr.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(settings).Error
	if err != nil {
		return base.WrapDBError("save", "device_settings", err)
	}
	return nil
}
