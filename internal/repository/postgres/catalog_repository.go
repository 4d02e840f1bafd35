package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/repository"
)

type catalogRepository struct {
	db       *DB
	defaults repository.ItemDefaults
}

func NewCatalogRepository(db *DB, defaults repository.ItemDefaults) *catalogRepository {
	return &catalogRepository{db: db, defaults: defaults}
}

// itemSelect joins the supplier and fills unset planning parameters from
// the defaults bound to $1..$5.
const itemSelect = `
	SELECT
		p.id, p.sku, p.name, p.category,
		p.current_stock, p.reorder_point, p.max_stock,
		p.unit_cost, p.selling_price, p.annual_demand,
		COALESCE(p.ordering_cost, $1)      AS ordering_cost,
		COALESCE(p.holding_cost_rate, $2)  AS holding_cost_rate,
		COALESCE(p.lead_time_days, $3)     AS lead_time_days,
		COALESCE(p.demand_variability, $4) AS demand_variability,
		COALESCE(p.service_level, $5)      AS service_level,
		p.total_sold, COALESCE(p.supplier_id, '') AS supplier_id,
		p.is_active, p.last_restocked, p.updated_at,
		s.name                   AS sup_name,
		s.contact_person         AS sup_contact_person,
		s.email                  AS sup_email,
		s.average_lead_time_days AS sup_average_lead_time_days,
		s.on_time_delivery_rate  AS sup_on_time_delivery_rate,
		s.quality_rating         AS sup_quality_rating,
		s.total_orders           AS sup_total_orders,
		s.total_value            AS sup_total_value,
		s.is_active              AS sup_is_active
	FROM products p
	LEFT JOIN suppliers s ON s.id = p.supplier_id
`

type itemRow struct {
	domain.StockItem

	SupName        sql.NullString      `db:"sup_name"`
	SupContact     sql.NullString      `db:"sup_contact_person"`
	SupEmail       sql.NullString      `db:"sup_email"`
	SupLeadTime    sql.NullFloat64     `db:"sup_average_lead_time_days"`
	SupOnTime      sql.NullFloat64     `db:"sup_on_time_delivery_rate"`
	SupQuality     sql.NullFloat64     `db:"sup_quality_rating"`
	SupTotalOrders sql.NullInt64       `db:"sup_total_orders"`
	SupTotalValue  decimal.NullDecimal `db:"sup_total_value"`
	SupIsActive    sql.NullBool        `db:"sup_is_active"`
}

func (r itemRow) toItem() domain.StockItem {
	item := r.StockItem
	if r.SupName.Valid {
		item.Supplier = &domain.SupplierProfile{
			ID:                  item.SupplierID,
			Name:                r.SupName.String,
			ContactPerson:       r.SupContact.String,
			Email:               r.SupEmail.String,
			AverageLeadTimeDays: r.SupLeadTime.Float64,
			OnTimeDeliveryRate:  r.SupOnTime.Float64,
			QualityRating:       r.SupQuality.Float64,
			TotalOrders:         int(r.SupTotalOrders.Int64),
			TotalValue:          r.SupTotalValue.Decimal,
			IsActive:            r.SupIsActive.Bool,
		}
	}
	return item
}

func (r *catalogRepository) defaultArgs() []interface{} {
	d := r.defaults
	return []interface{}{d.OrderingCost, d.HoldingCostRate, d.LeadTimeDays, d.DemandVariability, d.ServiceLevel}
}

func (r *catalogRepository) ListActiveItems(ctx context.Context) ([]domain.StockItem, error) {
	query := itemSelect + `
	WHERE p.is_active = TRUE
	ORDER BY p.created_at ASC, p.id ASC
	`

	var rows []itemRow
	if err := r.db.SelectContext(ctx, &rows, query, r.defaultArgs()...); err != nil {
		return nil, fmt.Errorf("failed to list active products: %w", err)
	}

	items := make([]domain.StockItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toItem())
	}
	return items, nil
}

func (r *catalogRepository) GetItem(ctx context.Context, id string) (*domain.StockItem, error) {
	query := itemSelect + `WHERE p.id = $6`

	var row itemRow
	err := r.db.GetContext(ctx, &row, query, append(r.defaultArgs(), id)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}

	item := row.toItem()
	return &item, nil
}

// AdjustStock applies the delta with a single conditional UPDATE so the
// stock check and the write happen on one locked row.
func (r *catalogRepository) AdjustStock(ctx context.Context, id string, op domain.StockOperation, quantity int) (*domain.StockItem, error) {
	delta, err := repository.StockDelta(op, quantity)
	if err != nil {
		return nil, err
	}

	sold := 0
	if op == domain.StockSubtract {
		sold = quantity
	}

	query := `
		UPDATE products SET
			current_stock  = current_stock + $1,
			total_sold     = total_sold + $2,
			last_restocked = CASE WHEN $1::int > 0 THEN NOW() ELSE last_restocked END,
			updated_at     = NOW()
		WHERE id = $3 AND current_stock + $1 >= 0
		RETURNING current_stock
	`

	var stock int
	err = r.db.GetContext(ctx, &stock, query, delta, sold, id)
	if errors.Is(err, sql.ErrNoRows) {
		var available int
		lookupErr := r.db.GetContext(ctx, &available, `SELECT current_stock FROM products WHERE id = $1`, id)
		if errors.Is(lookupErr, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		if lookupErr != nil {
			return nil, fmt.Errorf("failed to look up product %s: %w", id, lookupErr)
		}
		return nil, fmt.Errorf("product %s: %w: requested %d, available %d", id, domain.ErrInsufficientStock, quantity, available)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock for %s: %w", id, err)
	}

	return r.GetItem(ctx, id)
}
