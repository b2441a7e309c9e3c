package database

import (
	"gorm.io/gorm"
)

// UnitOfWorkInterface abstracts transaction handling from the business layer.
// Batch saves rewrite two tables (batches + orders) and must land atomically.
type UnitOfWorkInterface interface {
	Begin() *gorm.DB
	Commit(tx *gorm.DB) error
	Rollback(tx *gorm.DB)

	// Execute runs fn inside a transaction, committing on nil and rolling
	// back on error or panic.
	Execute(fn func(tx *gorm.DB) error) error
}

type unitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(db *gorm.DB) UnitOfWorkInterface {
	return &unitOfWork{db: db}
}

func (uow *unitOfWork) Begin() *gorm.DB {
	return uow.db.Begin()
}

func (uow *unitOfWork) Commit(tx *gorm.DB) error {
	return tx.Commit().Error
}

func (uow *unitOfWork) Rollback(tx *gorm.DB) {
	// Only roll back if the transaction hasn't been committed or already rolled back.
	if tx.Error == nil {
		tx.Rollback()
	}
}

func (uow *unitOfWork) Execute(fn func(tx *gorm.DB) error) error {
	return uow.db.Transaction(fn)
}
