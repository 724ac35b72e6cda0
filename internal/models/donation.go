package models

import "time"

// DonationStatus is the donation lifecycle state.
// available -> claimed (receiver action) -> completed (donor or admin action).
type DonationStatus string

const (
	DonationAvailable DonationStatus = "available"
	DonationClaimed   DonationStatus = "claimed"
	DonationCompleted DonationStatus = "completed"
)

// Donation is an offer of surplus food owned by one donor.
// ClaimedBy/ClaimedAt are null exactly while Status == available.
type Donation struct {
	ID           uint   `gorm:"primaryKey"`
	DonorID      uint   `gorm:"not null;index"`
	Donor        User   `gorm:"foreignKey:DonorID"`
	FoodType     string `gorm:"size:100;not null"`
	Quantity     int    `gorm:"not null"`
	QuantityUnit string `gorm:"size:20;not null;default:'kg'"`
	Description  string
	Location     string         `gorm:"size:200;not null"`
	ExpiryDate   *time.Time     `gorm:"type:date"`
	Status       DonationStatus `gorm:"size:20;not null;default:'available';index"`
	CreatedAt    time.Time
	ClaimedBy    *uint
	Claimer      *User `gorm:"foreignKey:ClaimedBy"`
	ClaimedAt    *time.Time
}

// GetUserID returns the owning donor, satisfying the policy Ownable check.
func (d *Donation) GetUserID() uint { return d.DonorID }
