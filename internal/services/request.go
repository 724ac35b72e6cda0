package services

import (
	"errors"
	"time"

	"github.com/diewo77/foodshare/internal/models"
	"gorm.io/gorm"
)

// RequestService owns the request ledger. Requests are standalone demand
// signals; the only transitions are receiver-initiated resolution.
type RequestService struct{ DB *gorm.DB }

func NewRequestService(db *gorm.DB) *RequestService { return &RequestService{DB: db} }

type RequestInput struct {
	FoodTypeNeeded string
	QuantityNeeded int
	QuantityUnit   string
	Description    string
	Location       string
}

// Create logs a new demand record in state pending.
func (s *RequestService) Create(receiverID uint, in RequestInput) (*models.FoodRequest, error) {
	unit := in.QuantityUnit
	if unit == "" {
		unit = "kg"
	}
	fr := models.FoodRequest{
		ReceiverID:     receiverID,
		FoodTypeNeeded: in.FoodTypeNeeded,
		QuantityNeeded: in.QuantityNeeded,
		QuantityUnit:   unit,
		Description:    in.Description,
		Location:       in.Location,
		Status:         models.RequestPending,
	}
	if err := s.DB.Create(&fr).Error; err != nil {
		return nil, err
	}
	return &fr, nil
}

// ListByReceiver returns the receiver's own requests, newest first.
func (s *RequestService) ListByReceiver(receiverID uint, limit int) ([]models.FoodRequest, error) {
	var out []models.FoodRequest
	q := s.DB.Where("receiver_id = ?", receiverID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Get loads a single request.
func (s *RequestService) Get(id uint) (*models.FoodRequest, error) {
	var fr models.FoodRequest
	if err := s.DB.First(&fr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &fr, nil
}

// Cancel transitions pending -> cancelled for the owning receiver.
func (s *RequestService) Cancel(requestID, receiverID uint) error {
	return s.resolve(requestID, receiverID, models.RequestCancelled, nil)
}

// Fulfill transitions pending -> fulfilled and stamps FulfilledAt.
func (s *RequestService) Fulfill(requestID, receiverID uint) error {
	now := time.Now().UTC()
	return s.resolve(requestID, receiverID, models.RequestFulfilled, &now)
}

func (s *RequestService) resolve(requestID, receiverID uint, to models.RequestStatus, at *time.Time) error {
	fr, err := s.Get(requestID)
	if err != nil {
		return err
	}
	if fr.ReceiverID != receiverID {
		return ErrNotOwner
	}
	updates := map[string]any{"status": to}
	if at != nil {
		updates["fulfilled_at"] = *at
	}
	res := s.DB.Model(&models.FoodRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}
