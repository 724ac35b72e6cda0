package services

import (
	"errors"

	"github.com/diewo77/foodshare/internal/db"
	"github.com/diewo77/foodshare/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService owns account creation and credential checks.
type UserService struct{ DB *gorm.DB }

func NewUserService(gdb *gorm.DB) *UserService { return &UserService{DB: gdb} }

// RegisterInput carries the signup form fields.
type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	Role         models.Role
	Organization string
	Phone        string
	Address      string
}

// Register creates a new account with a freshly generated unique login id.
// Duplicate username/email are checked up front so the caller gets a precise
// error instead of a driver-specific constraint violation.
func (s *UserService) Register(in RegisterInput) (*models.User, error) {
	var count int64
	if err := s.DB.Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateUsername
	}
	if err := s.DB.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	uid, err := db.UniqueLoginID(s.DB)
	if err != nil {
		return nil, err
	}
	u := models.User{
		Username:     in.Username,
		Email:        in.Email,
		Password:     string(hash),
		Role:         in.Role,
		Organization: in.Organization,
		Phone:        in.Phone,
		Address:      in.Address,
		UniqueID:     uid,
	}
	if err := s.DB.Create(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate resolves a login by username or unique id, with the selected
// role and password both required to match. Every failure mode returns the
// same ErrInvalidCredentials.
func (s *UserService) Authenticate(login, password string, role models.Role) (*models.User, error) {
	var u models.User
	err := s.DB.Where("(username = ? OR unique_id = ?) AND role = ?", login, login, role).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// Get loads a user by id.
func (s *UserService) Get(id uint) (*models.User, error) {
	var u models.User
	if err := s.DB.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Exists reports whether a user with the given id and role is on record.
// Used by the session verifier on every authenticated request.
func (s *UserService) Exists(id uint, role models.Role) bool {
	var count int64
	err := s.DB.Model(&models.User{}).Where("id = ? AND role = ?", id, role).Limit(1).Count(&count).Error
	return err == nil && count > 0
}
