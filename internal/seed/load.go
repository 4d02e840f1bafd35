package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/supplyflow/internal/repository/memory"
)

// IntoMemory loads the catalog into an in-memory store.
func (c *Catalog) IntoMemory(store *memory.Store) {
	for _, s := range c.Suppliers {
		store.AddSupplier(s)
	}
	for _, p := range c.Products {
		store.AddItem(p)
	}
}

const upsertSupplier = `
	INSERT INTO suppliers (
		id, name, contact_person, email, average_lead_time_days,
		on_time_delivery_rate, quality_rating, is_active
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		contact_person = EXCLUDED.contact_person,
		email = EXCLUDED.email,
		average_lead_time_days = EXCLUDED.average_lead_time_days,
		on_time_delivery_rate = EXCLUDED.on_time_delivery_rate,
		quality_rating = EXCLUDED.quality_rating,
		is_active = EXCLUDED.is_active
`

const upsertProduct = `
	INSERT INTO products (
		id, sku, name, category, current_stock, reorder_point, max_stock,
		unit_cost, selling_price, annual_demand, ordering_cost, holding_cost_rate,
		lead_time_days, demand_variability, service_level, total_sold,
		supplier_id, is_active
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	ON CONFLICT (id) DO UPDATE SET
		sku = EXCLUDED.sku,
		name = EXCLUDED.name,
		category = EXCLUDED.category,
		current_stock = EXCLUDED.current_stock,
		reorder_point = EXCLUDED.reorder_point,
		max_stock = EXCLUDED.max_stock,
		unit_cost = EXCLUDED.unit_cost,
		selling_price = EXCLUDED.selling_price,
		annual_demand = EXCLUDED.annual_demand,
		ordering_cost = EXCLUDED.ordering_cost,
		holding_cost_rate = EXCLUDED.holding_cost_rate,
		lead_time_days = EXCLUDED.lead_time_days,
		demand_variability = EXCLUDED.demand_variability,
		service_level = EXCLUDED.service_level,
		total_sold = EXCLUDED.total_sold,
		supplier_id = EXCLUDED.supplier_id,
		is_active = EXCLUDED.is_active,
		updated_at = NOW()
`

// Insert upserts the catalog inside tx. Blank planning parameters are
// stored as NULL so the configured defaults apply on read.
func (c *Catalog) Insert(ctx context.Context, tx *sql.Tx) error {
	for _, s := range c.Suppliers {
		if _, err := tx.ExecContext(ctx, upsertSupplier,
			s.ID, s.Name, s.ContactPerson, s.Email,
			orDefault(s.AverageLeadTimeDays, 7),
			orDefault(s.OnTimeDeliveryRate, 0.95),
			orDefault(s.QualityRating, 4),
			s.IsActive,
		); err != nil {
			return fmt.Errorf("failed to insert supplier %s: %w", s.ID, err)
		}
	}
	log.Info().Int("count", len(c.Suppliers)).Msg("Seeded suppliers")

	for _, p := range c.Products {
		if _, err := tx.ExecContext(ctx, upsertProduct,
			p.ID, p.SKU, p.Name, p.Category, p.CurrentStock, p.ReorderPoint, p.MaxStock,
			p.UnitCost, p.SellingPrice, p.AnnualDemand,
			nullIfZero(p.OrderingCost),
			nullIfZero(p.HoldingCostRate),
			nullIfZero(p.LeadTimeDays),
			nullIfZero(p.DemandVariability),
			nullIfZero(p.ServiceLevel),
			p.TotalSold,
			nullIfEmpty(p.SupplierID),
			p.IsActive,
		); err != nil {
			return fmt.Errorf("failed to insert product %s: %w", p.ID, err)
		}
	}
	log.Info().Int("count", len(c.Products)).Msg("Seeded products")

	return nil
}

func nullIfZero(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: v != 0}
}

// nullIfEmpty returns NULL if the string is empty, otherwise returns the string
func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func orDefault(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}
