package interfaces

import (
	"bagcount-gateway/models"
)

// HistoryRepositoryInterface defines the contract for the counting history log.
type HistoryRepositoryInterface interface {
	// Append writes one completed-order record.
	Append(entry *models.HistoryEntry) error

	// List retrieves history entries, newest first.
	List(limit, offset int) ([]models.HistoryEntry, error)

	// Count returns the total number of history entries.
	Count() (int64, error)

	// Clear removes all history entries.
	Clear() error
}
