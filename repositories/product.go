package repositories

import (
	"bagcount-gateway/models"
	"bagcount-gateway/repositories/base"
	"bagcount-gateway/repositories/interfaces"

	"gorm.io/gorm"
)

// ProductRepository implements ProductRepositoryInterface.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *gorm.DB) interfaces.ProductRepositoryInterface {
	return &ProductRepository{
		db: db,
	}
}

// Create inserts a new product.
func (pr *ProductRepository) Create(product *models.Product) error {
	if err := pr.db.Create(product).Error; err != nil {
		return base.WrapDBError("create", "products", err)
	}
	return nil
}

// Update performs an in-place update keyed by product ID.
func (pr *ProductRepository) Update(product *models.Product) error {
	result := pr.db.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"name":        product.Name,
		"code":        product.Code,
		"unit_weight": product.UnitWeight,
	})
	if result.Error != nil {
		return base.WrapDBError("update", "products", result.Error)
	}
	if result.RowsAffected == 0 {
		return base.NewEntityNotFoundError("products", "ID "+product.ID)
	}
	return nil
}

// Delete removes a product by ID.
func (pr *ProductRepository) Delete(id string) error {
	result := pr.db.Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return base.WrapDBError("delete", "products", result.Error)
	}
	if result.RowsAffected == 0 {
		return base.NewEntityNotFoundError("products", "ID "+id)
	}
	return nil
}

// GetByID retrieves a product by ID.
func (pr *ProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	err := pr.db.Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, base.HandleDBError("get", "products", "ID "+id, err)
	}
	return &product, nil
}

// List retrieves all products ordered by creation time.
func (pr *ProductRepository) List() ([]models.Product, error) {
	var products []models.Product
	if err := pr.db.Order("created_at asc").Find(&products).Error; err != nil {
		return nil, base.WrapDBError("list", "products", err)
	}
	return products, nil
}
