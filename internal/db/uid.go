package db

import (
	"crypto/rand"
	"errors"

	"github.com/diewo77/foodshare/internal/models"
	"gorm.io/gorm"
)

const uidLength = 10

// UniqueLoginID generates a random 10-digit identifier not yet assigned to any
// user. It doubles as an alternate login key, so collisions must be excluded
// before use.
func UniqueLoginID(db *gorm.DB) (string, error) {
	for attempt := 0; attempt < 50; attempt++ {
		uid, err := randomDigits(uidLength)
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(&models.User{}).Where("unique_id = ?", uid).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return uid, nil
		}
	}
	return "", errors.New("could not generate a free unique id")
}

func randomDigits(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = '0' + b[i]%10
	}
	return string(b), nil
}
