package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/repository"
)

type planRepository struct {
	db *DB
}

func NewPlanRepository(db *DB) *planRepository {
	return &planRepository{db: db}
}

const planColumns = `
	id, supplier_id, supplier_name, total_amount, expected_delivery_date,
	origin, status, notes, created_at, delivered_at
`

type planLineRow struct {
	PlanID string `db:"plan_id"`
	domain.PlanLine
}

func (r *planRepository) SavePlans(ctx context.Context, plans []domain.ReorderPlan) error {
	if len(plans) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		planStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO reorder_plans (
				id, supplier_id, supplier_name, total_amount, expected_delivery_date,
				origin, status, notes, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare plan statement: %w", err)
		}
		defer planStmt.Close()

		lineStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO reorder_plan_lines (
				plan_id, line_no, product_id, sku, product_name, quantity, unit_cost, line_total
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare line statement: %w", err)
		}
		defer lineStmt.Close()

		for _, plan := range plans {
			if plan.ID == "" {
				return fmt.Errorf("%w: plan without id", domain.ErrInvalidParameter)
			}

			// 1. Bump supplier stats; a missing supplier aborts the whole batch
			res, err := tx.ExecContext(ctx, `
				UPDATE suppliers
				SET total_orders = total_orders + 1, total_value = total_value + $1
				WHERE id = $2
			`, plan.TotalAmount, plan.SupplierID)
			if err != nil {
				return fmt.Errorf("failed to update supplier %s: %w", plan.SupplierID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("supplier %s: %w", plan.SupplierID, domain.ErrNotFound)
			}

			// 2. Plan header
			if _, err := planStmt.ExecContext(ctx,
				plan.ID, plan.SupplierID, plan.SupplierName, plan.TotalAmount, plan.ExpectedDeliveryDate,
				string(plan.Origin), string(plan.Status), plan.Notes, plan.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert plan %s: %w", plan.ID, err)
			}

			// 3. Lines
			for i, line := range plan.Lines {
				if _, err := lineStmt.ExecContext(ctx,
					plan.ID, i+1, line.ProductID, line.SKU, line.ProductName,
					line.Quantity, line.UnitCost, line.LineTotal,
				); err != nil {
					return fmt.Errorf("failed to insert line %d of plan %s: %w", i+1, plan.ID, err)
				}
			}
		}

		return nil
	})
}

func (r *planRepository) GetPlan(ctx context.Context, id string) (*domain.ReorderPlan, error) {
	var plan domain.ReorderPlan
	err := r.db.GetContext(ctx, &plan, `SELECT `+planColumns+` FROM reorder_plans WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan %s: %w", id, err)
	}

	plans := []domain.ReorderPlan{plan}
	if err := r.attachLines(ctx, plans); err != nil {
		return nil, err
	}
	return &plans[0], nil
}

// ListPlans returns matching plans, newest first.
func (r *planRepository) ListPlans(ctx context.Context, filter repository.PlanFilter) ([]domain.ReorderPlan, error) {
	filter = filter.Normalize()

	var (
		conditions []string
		args       []interface{}
	)
	addCondition := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filter.SupplierID != "" {
		addCondition("supplier_id", filter.SupplierID)
	}
	if filter.Status != "" {
		addCondition("status", string(filter.Status))
	}
	if filter.Origin != "" {
		addCondition("origin", string(filter.Origin))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM reorder_plans
		%s
		ORDER BY created_at DESC, id ASC
		LIMIT $%d OFFSET $%d
	`, planColumns, where, len(args)-1, len(args))

	var plans []domain.ReorderPlan
	if err := sqlx.SelectContext(ctx, r.db, &plans, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	if plans == nil {
		return []domain.ReorderPlan{}, nil
	}

	if err := r.attachLines(ctx, plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *planRepository) attachLines(ctx context.Context, plans []domain.ReorderPlan) error {
	ids := make([]string, 0, len(plans))
	index := make(map[string]int, len(plans))
	for i := range plans {
		ids = append(ids, plans[i].ID)
		index[plans[i].ID] = i
		plans[i].Lines = []domain.PlanLine{}
	}

	var rows []planLineRow
	err := sqlx.SelectContext(ctx, r.db, &rows, `
		SELECT plan_id, product_id, sku, product_name, quantity, unit_cost, line_total
		FROM reorder_plan_lines
		WHERE plan_id = ANY($1)
		ORDER BY plan_id, line_no
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load plan lines: %w", err)
	}

	for _, row := range rows {
		i := index[row.PlanID]
		plans[i].Lines = append(plans[i].Lines, row.PlanLine)
	}
	return nil
}

// DeliverPlan locks the plan row, restocks every line and flips the status
// in one transaction. Any failure rolls the whole delivery back.
func (r *planRepository) DeliverPlan(ctx context.Context, id string, at time.Time) (*domain.ReorderPlan, []repository.Restock, error) {
	var restocks []repository.Restock

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		restocks = restocks[:0]

		var status string
		err := tx.GetContext(ctx, &status, `SELECT status FROM reorder_plans WHERE id = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("plan %s: %w", id, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to lock plan %s: %w", id, err)
		}
		if domain.PlanStatus(status) == domain.PlanStatusDelivered {
			return fmt.Errorf("plan %s: %w", id, domain.ErrPlanDelivered)
		}

		var lines []domain.PlanLine
		if err := tx.SelectContext(ctx, &lines, `
			SELECT product_id, sku, product_name, quantity, unit_cost, line_total
			FROM reorder_plan_lines
			WHERE plan_id = $1
			ORDER BY line_no
		`, id); err != nil {
			return fmt.Errorf("failed to load lines of plan %s: %w", id, err)
		}

		for _, line := range lines {
			quantity := repository.DeliveredQuantity(line)
			if quantity <= 0 {
				continue
			}

			restock := repository.Restock{ProductID: line.ProductID, Quantity: quantity}
			err := tx.QueryRowxContext(ctx, `
				UPDATE products SET
					current_stock  = current_stock + $1,
					last_restocked = $2,
					updated_at     = NOW()
				WHERE id = $3
				RETURNING sku, current_stock
			`, quantity, at, line.ProductID).Scan(&restock.SKU, &restock.CurrentStock)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("plan %s: product %s: %w", id, line.ProductID, domain.ErrNotFound)
			}
			if err != nil {
				return fmt.Errorf("failed to restock %s for plan %s: %w", line.ProductID, id, err)
			}
			restocks = append(restocks, restock)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE reorder_plans SET status = $1, delivered_at = $2 WHERE id = $3
		`, string(domain.PlanStatusDelivered), at, id); err != nil {
			return fmt.Errorf("failed to mark plan %s delivered: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	plan, err := r.GetPlan(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return plan, restocks, nil
}

func (r *planRepository) PendingProductIDs(ctx context.Context) (map[string]bool, error) {
	var ids []string
	err := sqlx.SelectContext(ctx, r.db, &ids, `
		SELECT DISTINCT l.product_id
		FROM reorder_plan_lines l
		JOIN reorder_plans p ON p.id = l.plan_id
		WHERE p.status = $1
	`, string(domain.PlanStatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to load pending products: %w", err)
	}

	pending := make(map[string]bool, len(ids))
	for _, id := range ids {
		pending[id] = true
	}
	return pending, nil
}
