package services

import (
	"log/slog"
	"sync"

	"bagcount-gateway/database"
	"bagcount-gateway/models"
	"bagcount-gateway/repositories/base"

	"gorm.io/gorm"
)

// AppState is the shared in-memory aggregate: batches, products, settings and
// the transient counting state. It is loaded from the store once at startup
// and written back after every mutation. A single mutex guards the whole
// aggregate; poll results and operator actions race otherwise.
type AppState struct {
	mu sync.Mutex

	Batches  []*models.Batch
	Products []models.Product
	Settings models.DeviceSettings
	Counting models.CountingState
	Page     int
}

// Lock acquires the aggregate mutex.
func (st *AppState) Lock() { st.mu.Lock() }

// Unlock releases the aggregate mutex.
func (st *AppState) Unlock() { st.mu.Unlock() }

// The helpers below assume the caller holds the lock.

func (st *AppState) findBatch(id string) *models.Batch {
	for _, b := range st.Batches {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (st *AppState) activeBatch() *models.Batch {
	for _, b := range st.Batches {
		if b.Active {
			return b
		}
	}
	return nil
}

// selectedOrders returns pointers to the selected orders of a batch in
// sequence order. "Next order" during a run is strictly the next element of
// this view.
func selectedOrders(batch *models.Batch) []*models.Order {
	var selected []*models.Order
	for i := range batch.Orders {
		if batch.Orders[i].Selected {
			selected = append(selected, &batch.Orders[i])
		}
	}
	return selected
}

func countingOrder(batch *models.Batch) *models.Order {
	for i := range batch.Orders {
		if batch.Orders[i].Status == models.OrderStatusCounting {
			return &batch.Orders[i]
		}
	}
	return nil
}

// Persister writes aggregate mutations to the durable store. Writes are
// best-effort: implementations log failures and the in-memory state stands,
// so the gateway keeps operating against the device through a database
// outage.
type Persister interface {
	SaveBatch(batch *models.Batch)
	DeleteBatch(id string)
	AppendHistory(entry *models.HistoryEntry)
	SaveSettings(settings *models.DeviceSettings)
	CreateProduct(product *models.Product)
	UpdateProduct(product *models.Product)
	DeleteProduct(id string)
}

// StatusCache caches hot state (counting snapshot, device reachability) for
// dashboards. Implemented by the Redis client.
type StatusCache interface {
	SaveCountingStatus(status *models.CountingStatus) error
	SetDeviceOnline() error
	SetDeviceOffline() error
	IsDeviceOnline() bool
}

// Store implements Persister on top of the repository layer.
type Store struct {
	db     *database.Database
	logger *slog.Logger
}

// NewStore creates a Store.
func NewStore(db *database.Database, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// LoadState reads the persisted aggregate at startup. Settings default first,
// then the persisted row overlays them.
func (s *Store) LoadState() *AppState {
	state := &AppState{
		Settings: models.DefaultSettings(),
		Page:     1,
	}

	batches, err := s.db.BatchRepo.List()
	if err != nil {
		s.logger.Error("Failed to load batches, starting empty", slog.Any("error", err))
	}
	for i := range batches {
		state.Batches = append(state.Batches, &batches[i])
	}

	products, err := s.db.ProductRepo.List()
	if err != nil {
		s.logger.Error("Failed to load products, starting empty", slog.Any("error", err))
	}
	state.Products = products

	settings, err := s.db.SettingsRepo.Get()
	if err != nil {
		if !base.IsEntityNotFound(err) {
			s.logger.Error("Failed to load settings, using defaults", slog.Any("error", err))
		}
	} else {
		state.Settings = *settings
	}

	s.logger.Info("Application state loaded",
		"batches", len(state.Batches), "products", len(state.Products))
	return state
}

// SaveBatch writes a batch and its orders atomically.
func (s *Store) SaveBatch(batch *models.Batch) {
	err := s.db.UoW.Execute(func(tx *gorm.DB) error {
		return s.db.BatchRepo.SaveBatch(tx, batch)
	})
	if err != nil {
		s.logger.Error("Failed to persist batch, in-memory state stands",
			"batchId", batch.ID, slog.Any("error", err))
	}
}

// DeleteBatch removes a batch and its orders.
func (s *Store) DeleteBatch(id string) {
	if err := s.db.BatchRepo.Delete(id); err != nil {
		s.logger.Error("Failed to delete batch from store",
			"batchId", id, slog.Any("error", err))
	}
}

// AppendHistory writes one completed-order record.
func (s *Store) AppendHistory(entry *models.HistoryEntry) {
	if err := s.db.HistoryRepo.Append(entry); err != nil {
		s.logger.Error("Failed to persist history entry, in-memory state stands",
			slog.Any("error", err))
	}
}

// SaveSettings writes the settings singleton.
func (s *Store) SaveSettings(settings *models.DeviceSettings) {
	if err := s.db.SettingsRepo.Save(settings); err != nil {
		s.logger.Error("Failed to persist settings, in-memory state stands",
			slog.Any("error", err))
	}
}

// CreateProduct inserts a product row.
func (s *Store) CreateProduct(product *models.Product) {
	if err := s.db.ProductRepo.Create(product); err != nil {
		s.logger.Error("Failed to persist product, in-memory state stands",
			"productId", product.ID, slog.Any("error", err))
	}
}

// UpdateProduct rewrites a product row in place.
func (s *Store) UpdateProduct(product *models.Product) {
	if err := s.db.ProductRepo.Update(product); err != nil {
		s.logger.Error("Failed to persist product update, in-memory state stands",
			"productId", product.ID, slog.Any("error", err))
	}
}

// DeleteProduct removes a product row.
func (s *Store) DeleteProduct(id string) {
	if err := s.db.ProductRepo.Delete(id); err != nil {
		s.logger.Error("Failed to delete product from store, in-memory state stands",
			"productId", id, slog.Any("error", err))
	}
}
