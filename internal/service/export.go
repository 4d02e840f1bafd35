package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/andresuchdata/supplyflow/internal/domain"
	"github.com/andresuchdata/supplyflow/internal/storage"
)

const exportDateLayout = "2006-01-02"

// PlanExporter writes each created plan as a CSV object.
type PlanExporter struct {
	storage storage.ObjectStorage
	prefix  string
}

func NewPlanExporter(store storage.ObjectStorage, prefix string) *PlanExporter {
	return &PlanExporter{storage: store, prefix: prefix}
}

// Export uploads plan as <prefix>/<created date>/<plan id>.csv and returns the key.
func (e *PlanExporter) Export(ctx context.Context, plan domain.ReorderPlan) (string, error) {
	data, err := planCSV(plan)
	if err != nil {
		return "", fmt.Errorf("failed to render plan %s: %w", plan.ID, err)
	}

	key := fmt.Sprintf("%s/%s.csv", plan.CreatedAt.UTC().Format(exportDateLayout), plan.ID)
	if e.prefix != "" {
		key = e.prefix + "/" + key
	}

	if err := e.storage.UploadObject(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

// List returns the exported plan objects.
func (e *PlanExporter) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	return e.storage.ListObjects(ctx, e.prefix)
}

func planCSV(plan domain.ReorderPlan) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	// Write header
	header := []string{"Plan ID", "Supplier", "SKU", "Product Name", "Quantity", "Unit Cost", "Line Total", "Expected Delivery", "Origin"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	// Write data
	for _, line := range plan.Lines {
		record := []string{
			plan.ID,
			plan.SupplierName,
			line.SKU,
			line.ProductName,
			strconv.FormatFloat(line.Quantity, 'f', 2, 64),
			line.UnitCost.StringFixed(2),
			line.LineTotal.StringFixed(2),
			plan.ExpectedDeliveryDate.UTC().Format(exportDateLayout),
			string(plan.Origin),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	// Totals row
	if err := writer.Write([]string{plan.ID, plan.SupplierName, "", "TOTAL", "", "", plan.TotalAmount.StringFixed(2), "", ""}); err != nil {
		return nil, err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
