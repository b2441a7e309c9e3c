package interfaces

import (
	"bagcount-gateway/models"
)

// ProductRepositoryInterface defines the contract for product data access.
type ProductRepositoryInterface interface {
	// Create inserts a new product.
	Create(product *models.Product) error

	// Update performs an in-place update keyed by product ID.
	Update(product *models.Product) error

	// Delete removes a product by ID.
	Delete(id string) error

	// GetByID retrieves a product by ID.
	GetByID(id string) (*models.Product, error)

	// List retrieves all products ordered by creation time.
	List() ([]models.Product, error)
}
