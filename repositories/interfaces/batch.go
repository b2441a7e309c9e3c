package interfaces

import (
	"bagcount-gateway/models"

	"gorm.io/gorm"
)

// BatchRepositoryInterface defines the contract for batch and order data access.
type BatchRepositoryInterface interface {
	// SaveBatch upserts a batch together with its orders within a transaction.
	SaveBatch(tx *gorm.DB, batch *models.Batch) error

	// SaveOrders rewrites the order rows of a batch within a transaction.
	SaveOrders(tx *gorm.DB, batchID string, orders []models.Order) error

	// GetByID retrieves a batch with its orders, sorted by sequence number.
	GetByID(id string) (*models.Batch, error)

	// List retrieves all batches with their orders.
	List() ([]models.Batch, error)

	// Delete removes a batch and its orders.
	Delete(id string) error
}
