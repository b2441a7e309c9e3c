package repositories

import (
	"bagcount-gateway/models"
	"bagcount-gateway/repositories/base"
	"bagcount-gateway/repositories/interfaces"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BatchRepository implements BatchRepositoryInterface.
type BatchRepository struct {
	db *gorm.DB
}

// NewBatchRepository creates a new instance of BatchRepository.
func NewBatchRepository(db *gorm.DB) interfaces.BatchRepositoryInterface {
	return &BatchRepository{
		db: db,
	}
}

// SaveBatch upserts a batch together with its orders within a transaction.
// Order rows are rewritten so sequence renumbering and deletions are reflected
// exactly.
func (br *BatchRepository) SaveBatch(tx *gorm.DB, batch *models.Batch) error {
	row := models.Batch{
		ID:          batch.ID,
		Name:        batch.Name,
		Description: batch.Description,
		Active:      batch.Active,
		CreatedAt:   batch.CreatedAt,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "active", "updated_at"}),
	}).Omit("Orders").Create(&row).Error
	if err != nil {
		return base.WrapDBError("save", "batches", err)
	}

	return br.SaveOrders(tx, batch.ID, batch.Orders)
}

// SaveOrders rewrites the order rows of a batch within a transaction.
func (br *BatchRepository) SaveOrders(tx *gorm.DB, batchID string, orders []models.Order) error {
	if err := tx.Where("batch_id = ?", batchID).Delete(&models.Order{}).Error; err != nil {
		return base.WrapDBError("delete", "orders", err)
	}
	if len(orders) == 0 {
		return nil
	}
	rows := make([]models.Order, len(orders))
	copy(rows, orders)
	for i := range rows {
		rows[i].BatchID = batchID
	}
	if err := tx.Create(&rows).Error; err != nil {
		return base.WrapDBError("save", "orders", err)
	}
	return nil
}

// GetByID retrieves a batch with its orders, sorted by sequence number.
func (br *BatchRepository) GetByID(id string) (*models.Batch, error) {
	var batch models.Batch
	err := br.db.Preload("Orders", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq asc")
	}).Where("id = ?", id).First(&batch).Error
	if err != nil {
		return nil, base.HandleDBError("get", "batches", "ID "+id, err)
	}
	return &batch, nil
}

// List retrieves all batches with their orders.
func (br *BatchRepository) List() ([]models.Batch, error) {
	var batches []models.Batch
	err := br.db.Preload("Orders", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq asc")
	}).Order("created_at asc").Find(&batches).Error
	if err != nil {
		return nil, base.WrapDBError("list", "batches", err)
	}
	return batches, nil
}

// Delete removes a batch and its orders.
func (br *BatchRepository) Delete(id string) error {
	return br.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("batch_id = ?", id).Delete(&models.Order{}).Error; err != nil {
			return base.WrapDBError("delete", "orders", err)
		}
		result := tx.Delete(&models.Batch{}, "id = ?", id)
		if result.Error != nil {
			return base.WrapDBError("delete", "batches", result.Error)
		}
		if result.RowsAffected == 0 {
			return base.NewEntityNotFoundError("batches", "ID "+id)
		}
		return nil
	})
}
