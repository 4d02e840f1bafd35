package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/andresuchdata/supplyflow/internal/config"
	"github.com/andresuchdata/supplyflow/internal/seed"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.Set("STORE_DRIVER", config.StoreDriverMemory)
	return config.FromViper(v)
}

func TestNew_MemoryStoreSeeded(t *testing.T) {
	dir := t.TempDir()
	suppliers := "id,name,average_lead_time_days\nacme,Acme,5\n"
	products := "id,sku,name,current_stock,reorder_point,unit_cost,supplier_id\np1,SKU-1,Widget,1,10,3,acme\n"
	if err := os.WriteFile(filepath.Join(dir, seed.SuppliersFile), []byte(suppliers), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, seed.ProductsFile), []byte(products), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := memoryConfig(t)
	cfg.App.SeedDir = dir
	cfg.Export.Enabled = true
	cfg.Export.Dir = t.TempDir()

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to build app: %v", err)
	}
	defer a.Close()

	if a.DB != nil || a.Exporter == nil {
		t.Errorf("Expected a memory store with an exporter, got db=%v exporter=%v", a.DB, a.Exporter)
	}

	plans, err := a.Service.PlanAutoReorder(context.Background(), "")
	if err != nil || len(plans) != 1 {
		t.Fatalf("Expected one plan from the seeded catalog, got %d (err %v)", len(plans), err)
	}

	objects, err := a.Exporter.List(context.Background())
	if err != nil || len(objects) != 1 {
		t.Errorf("Expected one exported plan, got %d (err %v)", len(objects), err)
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.App.StoreDriver = "sqlite"

	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("Expected an error for an unknown store driver")
	}
}
