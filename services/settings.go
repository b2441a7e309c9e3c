package services

import (
	"context"
	"log/slog"

	"bagcount-gateway/device"
	"bagcount-gateway/models"
	"bagcount-gateway/utils"
)

// SettingsService manages the device settings singleton and pushes applied
// values down to the device.
type SettingsService struct {
	state  *AppState
	store  Persister
	device *device.Client
	logger *slog.Logger
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(state *AppState, store Persister, deviceClient *device.Client, logger *slog.Logger) *SettingsService {
	return &SettingsService{
		state:  state,
		store:  store,
		device: deviceClient,
		logger: logger.With("component", "settings_service"),
	}
}

// Get returns the current settings.
func (s *SettingsService) Get() models.DeviceSettings {
	s.state.Lock()
	defer s.state.Unlock()
	return s.state.Settings
}

// Update validates and persists new settings.
func (s *SettingsService) Update(req *models.SettingsRequest) (*models.DeviceSettings, error) {
	if req.Brightness < 0 || req.Brightness > 100 {
		return nil, utils.NewBadRequestError("brightness must be between 0 and 100")
	}
	if req.SensorDelay < 0 || req.BagDetectionDelay < 0 || req.MinBagInterval < 0 {
		return nil, utils.NewBadRequestError("timing parameters must be non-negative")
	}

	s.state.Lock()
	settings := &s.state.Settings
	settings.DeviceName = utils.GetValueOrDefault(req.DeviceName, settings.DeviceName)
	settings.DeviceIP = utils.GetValueOrDefault(req.DeviceIP, settings.DeviceIP)
	settings.Gateway = utils.GetValueOrDefault(req.Gateway, settings.Gateway)
	settings.Subnet = utils.GetValueOrDefault(req.Subnet, settings.Subnet)
	settings.SensorDelay = req.SensorDelay
	settings.BagDetectionDelay = req.BagDetectionDelay
	settings.MinBagInterval = req.MinBagInterval
	settings.AutoReset = req.AutoReset
	settings.Brightness = req.Brightness
	updated := *settings
	s.state.Unlock()

	s.store.SaveSettings(&updated)
	s.logger.Info("Settings updated")
	return &updated, nil
}

// Apply pushes the timing parameters and brightness to the device as
// individual commands. The first device failure aborts and is reported; the
// settings themselves stay saved.
func (s *SettingsService) Apply(ctx context.Context) error {
	settings := s.Get()

	commands := []struct {
		cmd   string
		value int
	}{
		{models.CmdBrightness, settings.Brightness},
		{models.CmdSensorDelay, settings.SensorDelay},
		{models.CmdBagDetectionDelay, settings.BagDetectionDelay},
		{models.CmdMinBagInterval, settings.MinBagInterval},
	}

	for _, c := range commands {
		value := c.value
		if err := s.device.SendCommand(ctx, c.cmd, &value); err != nil {
			s.logger.Error("Failed to apply setting to device",
				"cmd", c.cmd, slog.Any("error", err))
			return utils.NewDeviceUnreachableError("failed to apply settings to device", err)
		}
	}

	s.logger.Info("Settings applied to device")
	return nil
}
