package models

import "gorm.io/gorm"

type Favorite struct {
	gorm.Model
	UserID     uint     `json:"userID" gorm:"not null;index;uniqueIndex:idx_favorite_user_property"`
	PropertyID uint     `json:"propertyID" gorm:"not null;index;uniqueIndex:idx_favorite_user_property"`
	Property   Property `json:"property" gorm:"foreignKey:PropertyID"`
}
