package database

import (
	"errors"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/cocalhq/cocal-api/model"
	"github.com/cocalhq/cocal-api/utils/auth"
)

// RunSeeds creates the baseline accounts. Safe to run repeatedly; existing
// accounts are left untouched.
func RunSeeds(db *gorm.DB) error {
	if err := seedAdminUser(db); err != nil {
		return err
	}
	return nil
}

// seedAdminUser creates an admin account from ADMIN_EMAIL and ADMIN_PASSWORD.
// Skipped when either variable is unset.
func seedAdminUser(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing model.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		log.Println("Admin user already exists, skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:        email,
		PasswordHash: hash,
		Nickname:     "Admin",
		Role:         model.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("Admin user created:", email)
	return nil
}
