package postgres_test

import (
	"context"
	"testing"
	"time"

	"nisabd/config"
	"nisabd/pkg/storage/postgres"
)

// go test -v --run TestDailyPriceCRUD
func TestDailyPriceCRUD(t *testing.T) {
	cfg := config.PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "yourpw",
		DBName:   "nisabd",
		SSLMode:  "disable",
		TimeZone: "UTC",
	}

	client, err := postgres.NewClient(cfg.DSN("dev"))
	if err != nil {
		t.Skipf("postgres not reachable: %v", err)
	}
	defer client.Close()

	ctx := context.Background()

	if err := client.AutoMigrateDailyPriceRecord(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	day := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	// Create
	if err := client.SaveDailyPrice(ctx, day, 85.1234, 0.9812, "metalpriceapi"); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// Upsert: a second write for the same day replaces the row
	if err := client.SaveDailyPrice(ctx, day, 86.0001, 0.9901, "goldapi"); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	// Read
	points, err := client.PricesBetween(ctx, day.AddDate(0, 0, -1), day)
	if err != nil {
		t.Fatalf("range query failed: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point after upsert, got %d", len(points))
	}
	if points[0].Date != "2025-06-15" {
		t.Errorf("unexpected date: %s", points[0].Date)
	}
	if points[0].GoldPrice != 86.0001 {
		t.Errorf("upsert did not replace gold price: %v", points[0].GoldPrice)
	}

	// Delete
	if err := client.DeleteOldPrices(ctx, day.AddDate(0, 0, 1)); err != nil {
		t.Errorf("delete failed: %v", err)
	}

	points, err = client.PricesBetween(ctx, day.AddDate(0, 0, -1), day)
	if err != nil {
		t.Fatalf("range query after delete failed: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected no points after delete, got %d", len(points))
	}
}
