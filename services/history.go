package services

import (
	"log/slog"

	"bagcount-gateway/database"
	"bagcount-gateway/models"
	"bagcount-gateway/utils"
)

// HistoryService reads and clears the append-only counting history log.
// Entries are written by the counting controller when an order completes.
type HistoryService struct {
	db     *database.Database
	logger *slog.Logger
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(db *database.Database, logger *slog.Logger) *HistoryService {
	return &HistoryService{
		db:     db,
		logger: logger.With("component", "history_service"),
	}
}

// List returns history entries newest first, with the total count.
func (s *HistoryService) List(limit, offset int) ([]models.HistoryEntry, int64, error) {
	entries, err := s.db.HistoryRepo.List(limit, offset)
	if err != nil {
		return nil, 0, utils.NewInternalServerError("failed to load counting history", err)
	}
	total, err := s.db.HistoryRepo.Count()
	if err != nil {
		return nil, 0, utils.NewInternalServerError("failed to count history entries", err)
	}
	return entries, total, nil
}

// Clear removes all history entries after the confirm predicate passes.
func (s *HistoryService) Clear(confirm func() bool) error {
	if confirm != nil && !confirm() {
		return nil
	}

	if err := s.db.HistoryRepo.Clear(); err != nil {
		return utils.NewInternalServerError("failed to clear counting history", err)
	}
	s.logger.Info("Counting history cleared")
	return nil
}
