package database

import (
	"errors"
	"os"

	"campus/internal/domain"
	"campus/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates the initial admin account if none exists. User and
// student provisioning beyond this lives in the admissions tooling.
func SeedAdmin(db *gorm.DB) {
	var existing models.User
	err := db.Where("role = ?", domain.RoleAdmin).First(&existing).Error
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return
	}
	_ = db.Create(&models.User{
		Email:        "admin@campus.local",
		FullName:     "Administrator",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}).Error
}
