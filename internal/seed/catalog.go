// Package seed loads supplier and product master data from CSV files.
package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andresuchdata/supplyflow/internal/domain"
)

const (
	SuppliersFile = "suppliers.csv"
	ProductsFile  = "products.csv"
)

// Catalog is the master data read from a seed directory.
type Catalog struct {
	Suppliers []domain.SupplierProfile
	Products  []domain.StockItem
}

// LoadDir reads suppliers.csv and products.csv from dir. Columns are
// matched by header name; optional numeric columns may be blank.
func LoadDir(dir string) (*Catalog, error) {
	catalog := &Catalog{}

	if err := readCSV(filepath.Join(dir, SuppliersFile), []string{"id", "name"}, func(r row) error {
		supplier, err := parseSupplier(r)
		if err != nil {
			return err
		}
		catalog.Suppliers = append(catalog.Suppliers, supplier)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to load suppliers: %w", err)
	}

	if err := readCSV(filepath.Join(dir, ProductsFile), []string{"id", "sku", "name"}, func(r row) error {
		item, err := parseProduct(r)
		if err != nil {
			return err
		}
		catalog.Products = append(catalog.Products, item)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	return catalog, nil
}

// row gives header-indexed access to one CSV record.
type row struct {
	line   int
	index  map[string]int
	record []string
}

func (r row) str(col string) string {
	idx, ok := r.index[col]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}

func (r row) float(col string) (float64, error) {
	v := r.str(col)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %s: %w", r.line, col, err)
	}
	return f, nil
}

func (r row) int(col string) (int, error) {
	v := r.str(col)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("line %d: column %s: %w", r.line, col, err)
	}
	return n, nil
}

// boolOr parses col, returning fallback when it is blank.
func (r row) boolOr(col string, fallback bool) (bool, error) {
	v := r.str(col)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("line %d: column %s: %w", r.line, col, err)
	}
	return b, nil
}

func readCSV(path string, required []string, fn func(row) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("%s: missing required column %q", path, col)
		}
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read CSV record: %w", err)
		}
		line++

		r := row{line: line, index: index, record: record}
		for _, col := range required {
			if r.str(col) == "" {
				return fmt.Errorf("%s line %d: %s is required", path, line, col)
			}
		}
		if err := fn(r); err != nil {
			return err
		}
	}
}

func parseSupplier(r row) (domain.SupplierProfile, error) {
	s := domain.SupplierProfile{
		ID:            r.str("id"),
		Name:          r.str("name"),
		ContactPerson: r.str("contact_person"),
		Email:         r.str("email"),
	}

	var err error
	if s.AverageLeadTimeDays, err = r.float("average_lead_time_days"); err != nil {
		return s, err
	}
	if s.OnTimeDeliveryRate, err = r.float("on_time_delivery_rate"); err != nil {
		return s, err
	}
	if s.QualityRating, err = r.float("quality_rating"); err != nil {
		return s, err
	}
	if s.IsActive, err = r.boolOr("is_active", true); err != nil {
		return s, err
	}
	return s, nil
}

func parseProduct(r row) (domain.StockItem, error) {
	item := domain.StockItem{
		ID:         r.str("id"),
		SKU:        r.str("sku"),
		Name:       r.str("name"),
		Category:   r.str("category"),
		SupplierID: r.str("supplier_id"),
	}

	ints := []struct {
		col string
		dst *int
	}{
		{"current_stock", &item.CurrentStock},
		{"reorder_point", &item.ReorderPoint},
		{"max_stock", &item.MaxStock},
		{"total_sold", &item.TotalSold},
	}
	for _, f := range ints {
		v, err := r.int(f.col)
		if err != nil {
			return item, err
		}
		*f.dst = v
	}

	floats := []struct {
		col string
		dst *float64
	}{
		{"unit_cost", &item.UnitCost},
		{"selling_price", &item.SellingPrice},
		{"annual_demand", &item.AnnualDemand},
		{"ordering_cost", &item.OrderingCost},
		{"holding_cost_rate", &item.HoldingCostRate},
		{"lead_time_days", &item.LeadTimeDays},
		{"demand_variability", &item.DemandVariability},
		{"service_level", &item.ServiceLevel},
	}
	for _, f := range floats {
		v, err := r.float(f.col)
		if err != nil {
			return item, err
		}
		*f.dst = v
	}

	var err error
	if item.IsActive, err = r.boolOr("is_active", true); err != nil {
		return item, err
	}
	return item, nil
}
