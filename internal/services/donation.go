package services

import (
	"errors"
	"time"

	"github.com/diewo77/foodshare/internal/models"
	"gorm.io/gorm"
)

// availableListLimit caps the receiver listing. Display limit only, not a
// correctness constraint.
const availableListLimit = 20

// DonationService owns the donation ledger and its lifecycle transitions.
type DonationService struct{ DB *gorm.DB }

func NewDonationService(db *gorm.DB) *DonationService { return &DonationService{DB: db} }

// DonationInput carries the donor form fields for a new offer.
type DonationInput struct {
	FoodType     string
	Quantity     int
	QuantityUnit string
	Description  string
	Location     string
	ExpiryDate   *time.Time
}

// Create posts a new donation in state available.
func (s *DonationService) Create(donorID uint, in DonationInput) (*models.Donation, error) {
	unit := in.QuantityUnit
	if unit == "" {
		unit = "kg"
	}
	d := models.Donation{
		DonorID:      donorID,
		FoodType:     in.FoodType,
		Quantity:     in.Quantity,
		QuantityUnit: unit,
		Description:  in.Description,
		Location:     in.Location,
		ExpiryDate:   in.ExpiryDate,
		Status:       models.DonationAvailable,
	}
	if err := s.DB.Create(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListAvailable returns the receiver's candidate list: available donations
// ordered by soonest expiry first, then newest post. A missing expiry means
// "no urgency bound", so null expiries sort after every set one; the explicit
// CASE key keeps that true on both sqlite and postgres.
func (s *DonationService) ListAvailable(limit int) ([]models.Donation, error) {
	if limit <= 0 || limit > availableListLimit {
		limit = availableListLimit
	}
	var out []models.Donation
	err := s.DB.Preload("Donor").
		Where("status = ?", models.DonationAvailable).
		Order("CASE WHEN expiry_date IS NULL THEN 1 ELSE 0 END").
		Order("expiry_date asc").
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListClaimedBy returns the receiver's own claims, newest claim first.
func (s *DonationService) ListClaimedBy(receiverID uint, limit int) ([]models.Donation, error) {
	if limit <= 0 || limit > availableListLimit {
		limit = availableListLimit
	}
	var out []models.Donation
	err := s.DB.Preload("Donor").
		Where("claimed_by = ? AND status = ?", receiverID, models.DonationClaimed).
		Order("claimed_at desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListByDonor returns the donor's recent donations, newest first.
func (s *DonationService) ListByDonor(donorID uint, limit int) ([]models.Donation, error) {
	var out []models.Donation
	q := s.DB.Where("donor_id = ?", donorID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Get loads a single donation with both parties preloaded.
func (s *DonationService) Get(id uint) (*models.Donation, error) {
	var d models.Donation
	if err := s.DB.Preload("Donor").Preload("Claimer").First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Claim transitions a donation available -> claimed for the acting receiver.
// The transition is a single conditional UPDATE keyed on the current status,
// so two concurrent claims cannot both succeed: the loser sees zero rows
// affected and gets ErrNotAvailable. The claim is committed before any
// notification is attempted; callers handle notifications separately.
func (s *DonationService) Claim(donationID, receiverID uint) (*models.Donation, error) {
	var exists int64
	if err := s.DB.Model(&models.Donation{}).Where("id = ?", donationID).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrNotFound
	}
	now := time.Now().UTC()
	res := s.DB.Model(&models.Donation{}).
		Where("id = ? AND status = ?", donationID, models.DonationAvailable).
		Updates(map[string]any{
			"status":     models.DonationClaimed,
			"claimed_by": receiverID,
			"claimed_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotAvailable
	}
	return s.Get(donationID)
}

// Complete transitions a donation claimed -> completed. Only the owning donor
// may complete it unless asAdmin is set. Same conditional-update guard as
// Claim: a donation that is not currently claimed is not touched.
func (s *DonationService) Complete(donationID, actorID uint, asAdmin bool) (*models.Donation, error) {
	d, err := s.Get(donationID)
	if err != nil {
		return nil, err
	}
	if !asAdmin && d.DonorID != actorID {
		return nil, ErrNotOwner
	}
	res := s.DB.Model(&models.Donation{}).
		Where("id = ? AND status = ?", donationID, models.DonationClaimed).
		Update("status", models.DonationCompleted)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotClaimed
	}
	return s.Get(donationID)
}
