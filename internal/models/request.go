package models

import "time"

// RequestStatus is the food-request lifecycle state. Requests are a standalone
// demand signal; they are never matched to donations automatically. The
// receiver resolves their own request by cancelling it or marking it fulfilled.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestFulfilled RequestStatus = "fulfilled"
	RequestCancelled RequestStatus = "cancelled"
)

// FoodRequest is a demand record owned by one receiver.
type FoodRequest struct {
	ID             uint   `gorm:"primaryKey"`
	ReceiverID     uint   `gorm:"not null;index"`
	Receiver       User   `gorm:"foreignKey:ReceiverID"`
	FoodTypeNeeded string `gorm:"size:100;not null"`
	QuantityNeeded int    `gorm:"not null"`
	QuantityUnit   string `gorm:"size:20;not null;default:'kg'"`
	Description    string
	Location       string        `gorm:"size:200;not null"`
	Status         RequestStatus `gorm:"size:20;not null;default:'pending';index"`
	CreatedAt      time.Time
	FulfilledAt    *time.Time
}

// GetUserID returns the owning receiver, satisfying the policy Ownable check.
func (r *FoodRequest) GetUserID() uint { return r.ReceiverID }
