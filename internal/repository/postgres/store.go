package postgres

import "github.com/andresuchdata/supplyflow/internal/repository"

// Store is the Postgres-backed repository.Store
type Store struct {
	*catalogRepository
	*supplierRepository
	*planRepository
}

var _ repository.Store = (*Store)(nil)

func NewStore(db *DB, defaults repository.ItemDefaults) *Store {
	return &Store{
		catalogRepository:  NewCatalogRepository(db, defaults),
		supplierRepository: NewSupplierRepository(db),
		planRepository:     NewPlanRepository(db),
	}
}
