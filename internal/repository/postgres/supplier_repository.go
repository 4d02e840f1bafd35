package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/replenishment"
)

type supplierRepository struct {
	db *DB
}

func NewSupplierRepository(db *DB) *supplierRepository {
	return &supplierRepository{db: db}
}

const supplierColumns = `
	id, name, contact_person, email,
	average_lead_time_days, on_time_delivery_rate, quality_rating,
	total_orders, total_value, is_active
`

func (r *supplierRepository) ListSuppliers(ctx context.Context) ([]domain.SupplierProfile, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE is_active = TRUE ORDER BY name ASC`

	var suppliers []domain.SupplierProfile
	if err := sqlx.SelectContext(ctx, r.db, &suppliers, query); err != nil {
		log.Error().Err(err).Msg("failed to list suppliers")
		return nil, err
	}
	if suppliers == nil {
		suppliers = []domain.SupplierProfile{}
	}
	return suppliers, nil
}

func (r *supplierRepository) GetSupplier(ctx context.Context, id string) (*domain.SupplierProfile, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`

	var supplier domain.SupplierProfile
	err := r.db.GetContext(ctx, &supplier, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("supplier %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier %s: %w", id, err)
	}
	return &supplier, nil
}

// NudgeOnTimeRate locks the supplier row, applies the adjustment and writes it back.
func (r *supplierRepository) NudgeOnTimeRate(ctx context.Context, id string, onTime bool) (*domain.SupplierProfile, error) {
	var supplier domain.SupplierProfile

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1 FOR UPDATE`
		err := tx.GetContext(ctx, &supplier, query, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("supplier %s: %w", id, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to lock supplier %s: %w", id, err)
		}

		supplier.OnTimeDeliveryRate = replenishment.NudgeOnTimeRate(supplier.OnTimeDeliveryRate, onTime)
		if _, err := tx.ExecContext(ctx,
			`UPDATE suppliers SET on_time_delivery_rate = $1 WHERE id = $2`,
			supplier.OnTimeDeliveryRate, id,
		); err != nil {
			return fmt.Errorf("failed to update supplier %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &supplier, nil
}
