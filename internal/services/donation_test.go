package services

import (
	"errors"
	"testing"
	"time"

	"github.com/diewo77/foodshare/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
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

func seedUser(t *testing.T, db *gorm.DB, username string, role models.Role) models.User {
	t.Helper()
	u := models.User{
		Username: username,
		Email:    username + "@test.local",
		Password: "x",
		Role:     role,
		UniqueID: username,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func seedDonation(t *testing.T, db *gorm.DB, donorID uint, food string, expiry *time.Time, createdAt time.Time) models.Donation {
	t.Helper()
	d := models.Donation{
		DonorID:      donorID,
		FoodType:     food,
		Quantity:     10,
		QuantityUnit: "kg",
		Location:     "warehouse",
		ExpiryDate:   expiry,
		Status:       models.DonationAvailable,
	}
	if err := db.Create(&d).Error; err != nil {
		t.Fatalf("seed donation %s: %v", food, err)
	}
	// CreatedAt is set by gorm on insert; pin it for ordering assertions.
	if err := db.Model(&d).Update("created_at", createdAt).Error; err != nil {
		t.Fatalf("pin created_at: %v", err)
	}
	d.CreatedAt = createdAt
	return d
}

func datePtr(t time.Time) *time.Time { return &t }

func TestCreateDefaultsUnit(t *testing.T) {
	db := setupTestDB(t)
	donor := seedUser(t, db, "donor1", models.RoleDonor)
	svc := NewDonationService(db)

	d, err := svc.Create(donor.ID, DonationInput{FoodType: "rice", Quantity: 5, Location: "dock"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.QuantityUnit != "kg" {
		t.Fatalf("expected default unit kg, got %q", d.QuantityUnit)
	}
	if d.Status != models.DonationAvailable {
		t.Fatalf("expected status available, got %q", d.Status)
	}
}

func TestListAvailableOrdering(t *testing.T) {
	db := setupTestDB(t)
	donor := seedUser(t, db, "donor1", models.RoleDonor)
	svc := NewDonationService(db)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	soon := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	// Insert deliberately out of priority order.
	seedDonation(t, db, donor.ID, "no-expiry-old", nil, base)
	seedDonation(t, db, donor.ID, "later", &later, base.Add(1*time.Hour))
	seedDonation(t, db, donor.ID, "soon", &soon, base.Add(2*time.Hour))
	seedDonation(t, db, donor.ID, "no-expiry-new", nil, base.Add(3*time.Hour))

	got, err := svc.ListAvailable(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"soon", "later", "no-expiry-new", "no-expiry-old"}
	if len(got) != len(want) {
		t.Fatalf("expected %d donations, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].FoodType != w {
			t.Fatalf("position %d: expected %q got %q", i, w, got[i].FoodType)
		}
	}
}

func TestListAvailableSameExpiryNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	donor := seedUser(t, db, "donor1", models.RoleDonor)
	svc := NewDonationService(db)

	expiry := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedDonation(t, db, donor.ID, "older", &expiry, base)
	seedDonation(t, db, donor.ID, "newer", &expiry, base.Add(time.Hour))

	got, err := svc.ListAvailable(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].FoodType != "newer" || got[1].FoodType != "older" {
		t.Fatalf("expected newer before older, got %+v", got)
	}
}

func TestListAvailableExcludesClaimed(t *testing.T) {
	db := setupTestDB(t)
	donor := seedUser(t, db, "donor1", models.RoleDonor)
	receiver := seedUser(t, db, "recv1", models.RoleReceiver)
	svc := NewDonationService(db)

	base := time.Now().UTC()
	d := seedDonation(t, db, donor.ID, "bread", nil, base)
	seedDonation(t, db, donor.ID, "milk", nil, base.Add(time.Minute))

	if _, err := svc.Claim(d.ID, receiver.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	got, err := svc.ListAvailable(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].FoodType != "milk" {
		t.Fatalf("expected only milk to remain available, got %+v", got)
	}
}

func TestClaimSetsAttribution(t *testing.T) {
	db := setupTestDB(t)
	donor := seedUser(t, db, "donor1", models.RoleDonor)
	receiver := seedUser(t, db, "recv1", models.RoleReceiver)
	svc := NewDonationService(db)

	d := seedDonation(t, db, donor.ID, "bread", nil, time.Now().UTC())
	claimed, err := svc.Claim(d.ID, receiver.ID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.Status != models.DonationClaimed {
		t.Fatalf("expected status claimed, got %q", claimed.Status)
	}
	if claimed.ClaimedBy == nil || *claimed.ClaimedBy != receiver.ID {
		t.Fatalf("expected claimed_by %d, got %v", receiver.ID, claimed.ClaimedBy)
	}
	if claimed.ClaimedAt == nil {
		t.Fatal("expected claimed_at to be set")
	}
	if claimed.Donor.Username != "donor1" {
		t.Fatalf("expected donor preloaded, got %+v", claimed.Donor)
	}
}

func TestClaimSecondLoses(t *testing.T) {
	db := setupTestDB(t)
	donor := seedUser(t, db, "donor1", models.RoleDonor)
	first := seedUser(t, db, "recv1", models.RoleReceiver)
	second := seedUser(t, db, "recv2", models.RoleReceiver)
	svc := NewDonationService(db)

	d := seedDonation(t, db, donor.ID, "bread", nil, time.Now().UTC())
	if _, err := svc.Claim(d.ID, first.ID); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := svc.Claim(d.ID, second.ID); !errors.Is(err, ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable, got %v", err)
	}
	// The loser must not have overwritten the winner's attribution.
	got, err := svc.Get(d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ClaimedBy == nil || *got.ClaimedBy != first.ID {
		t.Fatalf("expected claim kept by %d, got %v", first.ID, got.ClaimedBy)
	}
}

func TestClaimMissingDonation(t *testing.T) {
	db := setupTestDB(t)
	receiver := seedUser(t, db, "recv1", models.RoleReceiver)
	svc := NewDonationService(db)

	if _, err := svc.Claim(9999, receiver.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompleteOwnership(t *testing.T) {
	db := setupTestDB(t)
	donor := seedUser(t, db, "donor1", models.RoleDonor)
	other := seedUser(t, db, "donor2", models.RoleDonor)
	receiver := seedUser(t, db, "recv1", models.RoleReceiver)
	svc := NewDonationService(db)

	d := seedDonation(t, db, donor.ID, "bread", nil, time.Now().UTC())
	if _, err := svc.Claim(d.ID, receiver.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}

	if _, err := svc.Complete(d.ID, other.ID, false); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for non-owner, got %v", err)
	}
	done, err := svc.Complete(d.ID, donor.ID, false)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != models.DonationCompleted {
		t.Fatalf("expected status completed, got %q", done.Status)
	}
	// A completed donation cannot be completed twice.
	if _, err := svc.Complete(d.ID, donor.ID, false); !errors.Is(err, ErrNotClaimed) {
		t.Fatalf("expected ErrNotClaimed, got %v", err)
	}
}

func TestCompleteAvailableRejected(t *testing.T) {
	db := setupTestDB(t)
	donor := seedUser(t, db, "donor1", models.RoleDonor)
	svc := NewDonationService(db)

	d := seedDonation(t, db, donor.ID, "bread", nil, time.Now().UTC())
	if _, err := svc.Complete(d.ID, donor.ID, false); !errors.Is(err, ErrNotClaimed) {
		t.Fatalf("expected ErrNotClaimed for available donation, got %v", err)
	}
}

func TestCompleteAsAdminBypassesOwnership(t *testing.T) {
	db := setupTestDB(t)
	donor := seedUser(t, db, "donor1", models.RoleDonor)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	receiver := seedUser(t, db, "recv1", models.RoleReceiver)
	svc := NewDonationService(db)

	d := seedDonation(t, db, donor.ID, "bread", nil, time.Now().UTC())
	if _, err := svc.Claim(d.ID, receiver.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := svc.Complete(d.ID, admin.ID, true); err != nil {
		t.Fatalf("admin complete: %v", err)
	}
}

func TestListClaimedBy(t *testing.T) {
	db := setupTestDB(t)
	donor := seedUser(t, db, "donor1", models.RoleDonor)
	receiver := seedUser(t, db, "recv1", models.RoleReceiver)
	other := seedUser(t, db, "recv2", models.RoleReceiver)
	svc := NewDonationService(db)

	base := time.Now().UTC()
	mine := seedDonation(t, db, donor.ID, "bread", nil, base)
	theirs := seedDonation(t, db, donor.ID, "milk", nil, base.Add(time.Minute))
	if _, err := svc.Claim(mine.ID, receiver.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := svc.Claim(theirs.ID, other.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}

	got, err := svc.ListClaimedBy(receiver.ID, 0)
	if err != nil {
		t.Fatalf("list claimed: %v", err)
	}
	if len(got) != 1 || got[0].FoodType != "bread" {
		t.Fatalf("expected only own claims, got %+v", got)
	}
}

func TestExpiryOrderingUsesDatePtr(t *testing.T) {
	db := setupTestDB(t)
	donor := seedUser(t, db, "donor1", models.RoleDonor)
	svc := NewDonationService(db)

	d, err := svc.Create(donor.ID, DonationInput{
		FoodType: "cheese", Quantity: 2, Location: "dock",
		ExpiryDate: datePtr(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.ExpiryDate == nil {
		t.Fatal("expected expiry date kept")
	}
}
