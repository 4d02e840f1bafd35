package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg := FromViper(v)

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.App.StoreDriver != StoreDriverPostgres || !cfg.Database.AutoMigrate {
		t.Errorf("Expected postgres with auto-migrate, got %+v %+v", cfg.App, cfg.Database)
	}

	r := cfg.Replenishment
	if r.OrderingCost != 50 || r.HoldingCostRate != 0.2 || r.LeadTimeDays != 7 ||
		r.DemandVariability != 0.1 || r.ServiceLevel != 0.95 || r.ForecastDays != 30 {
		t.Errorf("Unexpected replenishment defaults: %+v", r)
	}
	if r.ZScoreMode != "two_tier" {
		t.Errorf("Expected two_tier z-score mode, got %s", r.ZScoreMode)
	}
	if cfg.Scheduler.ReorderCheckInterval != time.Hour || !cfg.Scheduler.ReorderCheckEnabled {
		t.Errorf("Expected an hourly reorder check, got %+v", cfg.Scheduler)
	}
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092,")
	v.Set("REPLENISH_ZSCORE_MODE", "Inverse_Normal")
	v.Set("REORDER_CHECK_INTERVAL", "15m")
	v.Set("STORE_DRIVER", "MEMORY")

	cfg := FromViper(v)

	if !reflect.DeepEqual(cfg.Notify.KafkaBrokers, []string{"k1:9092", "k2:9092"}) {
		t.Errorf("Unexpected brokers: %v", cfg.Notify.KafkaBrokers)
	}
	if cfg.Replenishment.ZScoreMode != "inverse_normal" {
		t.Errorf("Expected lower-cased mode, got %s", cfg.Replenishment.ZScoreMode)
	}
	if cfg.Scheduler.ReorderCheckInterval != 15*time.Minute {
		t.Errorf("Expected 15m, got %v", cfg.Scheduler.ReorderCheckInterval)
	}
	if cfg.App.StoreDriver != StoreDriverMemory {
		t.Errorf("Expected memory driver, got %s", cfg.App.StoreDriver)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList([]string{"a,b", " c ", ""})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Unexpected split: %v", got)
	}
}
