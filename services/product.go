package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bagcount-gateway/device"
	"bagcount-gateway/models"
	"bagcount-gateway/utils"
)

// ProductService manages the product catalog. Edits are in-place updates
// keyed by ID; product codes are unique across the whole catalog. Created and
// deleted products are mirrored to the device's bag type registry
// best-effort.
type ProductService struct {
	state  *AppState
	store  Persister
	device *device.Client
	logger *slog.Logger
}

// NewProductService creates a ProductService.
func NewProductService(state *AppState, store Persister, deviceClient *device.Client, logger *slog.Logger) *ProductService {
	return &ProductService{
		state:  state,
		store:  store,
		device: deviceClient,
		logger: logger.With("component", "product_service"),
	}
}

// List returns a snapshot of all products.
func (s *ProductService) List() []models.Product {
	s.state.Lock()
	defer s.state.Unlock()

	products := make([]models.Product, len(s.state.Products))
	copy(products, s.state.Products)
	return products
}

// Get returns one product by ID.
func (s *ProductService) Get(id string) (*models.Product, error) {
	s.state.Lock()
	defer s.state.Unlock()

	for i := range s.state.Products {
		if s.state.Products[i].ID == id {
			p := s.state.Products[i]
			return &p, nil
		}
	}
	return nil, utils.NewNotFoundError(fmt.Sprintf("product '%s' not found", id))
}

// Create validates and adds a product, then registers its bag type on the
// device.
func (s *ProductService) Create(ctx context.Context, req *models.ProductRequest) (*models.Product, error) {
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	s.state.Lock()
	for i := range s.state.Products {
		if s.state.Products[i].Code == req.Code {
			s.state.Unlock()
			return nil, utils.NewConflictError(fmt.Sprintf("product code '%s' already exists", req.Code))
		}
	}

	product := models.Product{
		ID:         utils.GenerateProductID(),
		Name:       req.Name,
		Code:       req.Code,
		UnitWeight: req.UnitWeight,
		CreatedAt:  time.Now(),
	}
	s.state.Products = append(s.state.Products, product)
	s.state.Unlock()

	s.store.CreateProduct(&product)

	if err := s.device.CreateBagType(ctx, product.Name); err != nil {
		s.logger.Warn("Failed to register bag type on device",
			"product", product.Name, slog.Any("error", err))
	}

	s.logger.Info("Product created", "productId", product.ID, "code", product.Code)
	return &product, nil
}

// Update modifies a product in place. The destructive remove-then-re-add edit
// flow of older counter UIs is deliberately not reproduced.
func (s *ProductService) Update(id string, req *models.ProductRequest) (*models.Product, error) {
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	s.state.Lock()
	var target *models.Product
	for i := range s.state.Products {
		if s.state.Products[i].Code == req.Code && s.state.Products[i].ID != id {
			s.state.Unlock()
			return nil, utils.NewConflictError(fmt.Sprintf("product code '%s' already exists", req.Code))
		}
		if s.state.Products[i].ID == id {
			target = &s.state.Products[i]
		}
	}
	if target == nil {
		s.state.Unlock()
		return nil, utils.NewNotFoundError(fmt.Sprintf("product '%s' not found", id))
	}

	target.Name = req.Name
	target.Code = req.Code
	target.UnitWeight = req.UnitWeight
	updated := *target
	s.state.Unlock()

	s.store.UpdateProduct(&updated)

	s.logger.Info("Product updated", "productId", id, "code", updated.Code)
	return &updated, nil
}

// Delete removes a product unless an order still references it.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	s.state.Lock()

	for _, b := range s.state.Batches {
		for i := range b.Orders {
			if b.Orders[i].ProductID == id {
				s.state.Unlock()
				return utils.NewConflictError("product is referenced by an order and cannot be deleted")
			}
		}
	}

	var deleted *models.Product
	for i := range s.state.Products {
		if s.state.Products[i].ID == id {
			p := s.state.Products[i]
			deleted = &p
			s.state.Products = append(s.state.Products[:i], s.state.Products[i+1:]...)
			break
		}
	}
	s.state.Unlock()

	if deleted == nil {
		return utils.NewNotFoundError(fmt.Sprintf("product '%s' not found", id))
	}

	s.store.DeleteProduct(id)

	if err := s.device.DeleteBagType(ctx, deleted.Name); err != nil {
		s.logger.Warn("Failed to remove bag type from device",
			"product", deleted.Name, slog.Any("error", err))
	}

	s.logger.Info("Product deleted", "productId", id)
	return nil
}

func validateProductRequest(req *models.ProductRequest) error {
	if req.Name == "" || req.Code == "" {
		return utils.NewBadRequestError("product name and code are required")
	}
	if req.UnitWeight <= 0 {
		return utils.NewBadRequestError("unit weight must be positive")
	}
	return nil
}
