package interfaces

import (
	"bagcount-gateway/models"
)

// SettingsRepositoryInterface defines the contract for the settings singleton.
type SettingsRepositoryInterface interface {
	// Get retrieves the persisted settings row, if any.
	Get() (*models.DeviceSettings, error)

	// Save upserts the settings row.
	Save(settings *models.DeviceSettings) error
}
