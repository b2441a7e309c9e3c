package services

import (
	"fmt"
	"log/slog"
	"time"

	"bagcount-gateway/models"
	"bagcount-gateway/utils"

	"github.com/google/uuid"
)

// Pagination moves accepted by Paginate.
const (
	PageFirst = "first"
	PagePrev  = "prev"
	PageNext  = "next"
	PageLast  = "last"
)

// BatchService manages batches, the orders within them, selection and
// pagination over the active batch's order list. Edits happen against a
// working copy; the stored batch is untouched until save.
type BatchService struct {
	state    *AppState
	store    Persister
	logger   *slog.Logger
	pageSize int

	// Working context for batch editing, guarded by the aggregate mutex.
	workingOpen bool
	editingID   string
	working     []models.Order
}

// NewBatchService creates a BatchService.
func NewBatchService(state *AppState, store Persister, pageSize int, logger *slog.Logger) *BatchService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &BatchService{
		state:    state,
		store:    store,
		logger:   logger.With("component", "batch_service"),
		pageSize: pageSize,
	}
}

// CreateBatch opens a new, empty working context. No identifier is assigned
// until the batch is saved.
func (s *BatchService) CreateBatch() {
	s.state.Lock()
	defer s.state.Unlock()

	s.workingOpen = true
	s.editingID = ""
	s.working = nil
}

// LoadBatchForEdit copies a stored batch's orders into the working context.
// Unknown IDs are a silent no-op.
func (s *BatchService) LoadBatchForEdit(batchID string) {
	s.state.Lock()
	defer s.state.Unlock()

	batch := s.state.findBatch(batchID)
	if batch == nil {
		return
	}

	s.workingOpen = true
	s.editingID = batchID
	s.working = make([]models.Order, len(batch.Orders))
	copy(s.working, batch.Orders)
}

// AddOrderToWorkingSet validates the fields, assigns the next sequence number
// and appends the order to the working set. The warning quantity defaults to
// 10% of the target, rounded down.
func (s *BatchService) AddOrderToWorkingSet(req *models.OrderRequest) (*models.Order, error) {
	s.state.Lock()
	defer s.state.Unlock()

	if !s.workingOpen {
		return nil, utils.NewBadRequestError("no batch is being edited")
	}

	if req.Customer == "" || req.Code == "" || req.Vehicle == "" || req.ProductID == "" {
		return nil, utils.NewBadRequestError("customer, code, vehicle and product are required")
	}
	if req.Target <= 0 {
		return nil, utils.NewBadRequestError("target quantity must be positive")
	}

	for i := range s.working {
		if s.working[i].Code == req.Code {
			return nil, utils.NewConflictError(fmt.Sprintf("order code '%s' already exists in this batch", req.Code))
		}
	}

	product := s.findProduct(req.ProductID)
	if product == nil {
		return nil, utils.NewBadRequestError(fmt.Sprintf("product '%s' not found", req.ProductID))
	}

	warn := req.Warn
	if warn <= 0 {
		warn = utils.DefaultWarnQuantity(req.Target)
	}

	order := models.Order{
		ID:          utils.GenerateOrderID(),
		Seq:         len(s.working) + 1,
		Customer:    req.Customer,
		Code:        req.Code,
		Vehicle:     req.Vehicle,
		ProductID:   product.ID,
		ProductName: product.Name,
		Target:      req.Target,
		Warn:        warn,
		Count:       0,
		Status:      models.OrderStatusWaiting,
		CreatedAt:   time.Now(),
	}
	s.working = append(s.working, order)

	return &order, nil
}

// RemoveOrderFromWorkingSet removes the order at index (0-based) after the
// confirm predicate passes, then renumbers the remaining orders from 1.
func (s *BatchService) RemoveOrderFromWorkingSet(index int, confirm func() bool) error {
	if confirm != nil && !confirm() {
		return nil
	}

	s.state.Lock()
	defer s.state.Unlock()

	if !s.workingOpen {
		return utils.NewBadRequestError("no batch is being edited")
	}
	if index < 0 || index >= len(s.working) {
		return utils.NewBadRequestError("order index out of range")
	}

	s.working = append(s.working[:index], s.working[index+1:]...)
	for i := range s.working {
		s.working[i].Seq = i + 1
	}

	return nil
}

// WorkingSet returns a copy of the current working orders.
func (s *BatchService) WorkingSet() []models.Order {
	s.state.Lock()
	defer s.state.Unlock()

	orders := make([]models.Order, len(s.working))
	copy(orders, s.working)
	return orders
}

// SaveBatch upserts the working context as a batch: in place when editing an
// existing batch, appended with a fresh identifier otherwise. The working
// context is cleared on success.
func (s *BatchService) SaveBatch(name, description string) (*models.Batch, error) {
	s.state.Lock()
	defer s.state.Unlock()

	if name == "" {
		return nil, utils.NewBadRequestError("batch name is required")
	}
	if !s.workingOpen || len(s.working) == 0 {
		return nil, utils.NewBadRequestError("batch has no orders")
	}

	var batch *models.Batch
	if s.editingID != "" {
		batch = s.state.findBatch(s.editingID)
	}
	if batch == nil {
		batch = &models.Batch{
			ID:        uuid.NewString(),
			CreatedAt: time.Now(),
		}
		s.state.Batches = append(s.state.Batches, batch)
	}

	batch.Name = name
	batch.Description = description
	batch.Orders = make([]models.Order, len(s.working))
	copy(batch.Orders, s.working)
	for i := range batch.Orders {
		batch.Orders[i].BatchID = batch.ID
	}

	s.store.SaveBatch(batch)

	s.workingOpen = false
	s.editingID = ""
	s.working = nil

	s.logger.Info("Batch saved", "batchId", batch.ID, "name", batch.Name, "orders", len(batch.Orders))
	return batch, nil
}

// SwitchActiveBatch marks exactly the given batch active and every other batch
// inactive, then resets pagination to the first page. Unknown IDs are a silent
// no-op.
func (s *BatchService) SwitchActiveBatch(batchID string) {
	s.state.Lock()
	defer s.state.Unlock()

	target := s.state.findBatch(batchID)
	if target == nil {
		return
	}

	for _, b := range s.state.Batches {
		wasActive := b.Active
		b.Active = b.ID == batchID
		if b.Active != wasActive {
			s.store.SaveBatch(b)
		}
	}
	s.state.Page = 1

	s.logger.Info("Active batch switched", "batchId", batchID, "name", target.Name)
}

// SelectOrder toggles one order's selection flag within the active batch.
func (s *BatchService) SelectOrder(orderID string, selected bool) error {
	s.state.Lock()
	defer s.state.Unlock()

	batch := s.state.activeBatch()
	if batch == nil {
		return utils.NewBadRequestError("no active batch")
	}

	for i := range batch.Orders {
		if batch.Orders[i].ID == orderID {
			batch.Orders[i].Selected = selected
			s.store.SaveBatch(batch)
			return nil
		}
	}
	return utils.NewNotFoundError(fmt.Sprintf("order '%s' not found in active batch", orderID))
}

// SelectAllOnPage toggles the selection flag of every order on the current
// page only; orders on other pages keep their flags.
func (s *BatchService) SelectAllOnPage(selected bool) error {
	s.state.Lock()
	defer s.state.Unlock()

	batch := s.state.activeBatch()
	if batch == nil {
		return utils.NewBadRequestError("no active batch")
	}

	start := (s.state.Page - 1) * s.pageSize
	end := start + s.pageSize
	for i := range batch.Orders {
		if i >= start && i < end {
			batch.Orders[i].Selected = selected
		}
	}
	s.store.SaveBatch(batch)
	return nil
}

// Paginate moves to an absolute page number or by a named move
// (first/prev/next/last) and returns the resulting page. Out-of-range targets
// clamp instead of erroring.
func (s *BatchService) Paginate(page int, move string) *models.OrderPage {
	s.state.Lock()
	defer s.state.Unlock()

	total := s.totalPages()
	switch move {
	case PageFirst:
		page = 1
	case PagePrev:
		page = s.state.Page - 1
	case PageNext:
		page = s.state.Page + 1
	case PageLast:
		page = total
	case "":
		// absolute page number
	default:
		page = s.state.Page
	}

	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}
	s.state.Page = page

	return s.currentPage()
}

// GetPage returns the current page of the active batch's order list.
func (s *BatchService) GetPage() *models.OrderPage {
	s.state.Lock()
	defer s.state.Unlock()
	return s.currentPage()
}

// ListBatches returns a snapshot of every batch.
func (s *BatchService) ListBatches() []models.Batch {
	s.state.Lock()
	defer s.state.Unlock()

	batches := make([]models.Batch, 0, len(s.state.Batches))
	for _, b := range s.state.Batches {
		batches = append(batches, *b)
	}
	return batches
}

// GetBatch returns one batch by ID.
func (s *BatchService) GetBatch(batchID string) (*models.Batch, error) {
	s.state.Lock()
	defer s.state.Unlock()

	batch := s.state.findBatch(batchID)
	if batch == nil {
		return nil, utils.NewNotFoundError(fmt.Sprintf("batch '%s' not found", batchID))
	}
	snapshot := *batch
	return &snapshot, nil
}

// DeleteBatch removes a batch after the confirm predicate passes.
func (s *BatchService) DeleteBatch(batchID string, confirm func() bool) error {
	if confirm != nil && !confirm() {
		return nil
	}

	s.state.Lock()
	defer s.state.Unlock()

	for i, b := range s.state.Batches {
		if b.ID == batchID {
			s.state.Batches = append(s.state.Batches[:i], s.state.Batches[i+1:]...)
			s.store.DeleteBatch(batchID)
			s.logger.Info("Batch deleted", "batchId", batchID)
			return nil
		}
	}
	return utils.NewNotFoundError(fmt.Sprintf("batch '%s' not found", batchID))
}

// Helpers below assume the caller holds the aggregate lock.

func (s *BatchService) findProduct(id string) *models.Product {
	for i := range s.state.Products {
		if s.state.Products[i].ID == id {
			return &s.state.Products[i]
		}
	}
	return nil
}

// totalPages is ceil(orderCount / pageSize), minimum 1 so an empty list still
// has a page to land on.
func (s *BatchService) totalPages() int {
	batch := s.state.activeBatch()
	if batch == nil || len(batch.Orders) == 0 {
		return 1
	}
	return (len(batch.Orders) + s.pageSize - 1) / s.pageSize
}

func (s *BatchService) currentPage() *models.OrderPage {
	page := &models.OrderPage{
		Page:       s.state.Page,
		TotalPages: s.totalPages(),
		PageSize:   s.pageSize,
		Orders:     []models.Order{},
	}

	batch := s.state.activeBatch()
	if batch == nil {
		return page
	}

	page.TotalCount = len(batch.Orders)
	start := (s.state.Page - 1) * s.pageSize
	if start >= len(batch.Orders) {
		return page
	}
	end := start + s.pageSize
	if end > len(batch.Orders) {
		end = len(batch.Orders)
	}
	page.Orders = append(page.Orders, batch.Orders[start:end]...)
	return page
}
