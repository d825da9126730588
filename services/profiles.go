package services

import (
	"fmt"

	"github.com/Shielded-Bit/QABA-sub000/models"

	"gorm.io/gorm"
)

// EnsureProfile idempotently creates the profile row matching the user's
// current role and returns it. Every profile access goes through here; there
// is no other creation path.
func EnsureProfile(db *gorm.DB, user *models.User) (interface{}, error) {
	switch user.Role {
	case models.RoleClient:
		var profile models.ClientProfile
		err := db.Where(models.ClientProfile{UserID: user.ID}).FirstOrCreate(&profile).Error
		return &profile, err
	case models.RoleAgent:
		var profile models.AgentProfile
		err := db.Where(models.AgentProfile{UserID: user.ID}).FirstOrCreate(&profile).Error
		return &profile, err
	case models.RoleLandlord:
		var profile models.LandlordProfile
		err := db.Where(models.LandlordProfile{UserID: user.ID}).FirstOrCreate(&profile).Error
		return &profile, err
	case models.RoleAdmin:
		var profile models.AdminProfile
		err := db.Where(models.AdminProfile{UserID: user.ID}).FirstOrCreate(&profile).Error
		return &profile, err
	}
	return nil, fmt.Errorf("unknown role %q", user.Role)
}
