package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/foodshare/internal/models"
	"github.com/diewo77/foodshare/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Donation{}, &models.FoodRequest{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestDonationsCSV(t *testing.T) {
	db := setupTestDB(t)
	donor := models.User{Username: "donor1", Email: "d@test.local", Password: "x", Role: models.RoleDonor, UniqueID: "1"}
	if err := db.Create(&donor).Error; err != nil {
		t.Fatalf("seed donor: %v", err)
	}
	expiry := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	d := models.Donation{DonorID: donor.ID, FoodType: "bread", Quantity: 5, QuantityUnit: "kg", Location: "dock", ExpiryDate: &expiry, Status: models.DonationAvailable}
	if err := db.Create(&d).Error; err != nil {
		t.Fatalf("seed donation: %v", err)
	}

	var buf bytes.Buffer
	n, err := Donations(&buf, db)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row exported, got %d", n)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(records))
	}
	header := strings.Join(records[0], ",")
	if !strings.Contains(header, "Donor Username") || !strings.Contains(header, "Claimed At") {
		t.Fatalf("unexpected header: %s", header)
	}
	row := records[1]
	if row[2] != "donor1" || row[3] != "bread" || row[8] != "2026-09-01" {
		t.Fatalf("unexpected row: %v", row)
	}
	// Unclaimed donation leaves the attribution columns empty.
	if row[11] != "" || row[12] != "" {
		t.Fatalf("expected empty claim columns, got %v", row)
	}
}

func TestUsersCSVHeader(t *testing.T) {
	db := setupTestDB(t)
	var buf bytes.Buffer
	if _, err := Users(&buf, db); err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "ID,Username,Email,User Type,Organization,Phone,Address,Created At"
	if got := strings.SplitN(buf.String(), "\n", 2)[0]; strings.TrimRight(got, "\r") != want {
		t.Fatalf("header mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestStatisticsCSV(t *testing.T) {
	db := setupTestDB(t)
	u := models.User{Username: "donor1", Email: "d@test.local", Password: "x", Role: models.RoleDonor, UniqueID: "1"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	sum := services.NewReportService(db, nil).Summarize()

	var buf bytes.Buffer
	if err := Statistics(&buf, sum); err != nil {
		t.Fatalf("export: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Total Users,1") || !strings.Contains(out, "Total Quantity (kg),0") {
		t.Fatalf("unexpected statistics:\n%s", out)
	}
}
