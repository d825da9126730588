package models

import "gorm.io/gorm"

const (
	ReviewStatusPending  = "PENDING"
	ReviewStatusApproved = "APPROVED"
	ReviewStatusRejected = "REJECTED"
)

type PropertyReview struct {
	gorm.Model
	UserID     uint     `json:"userID" gorm:"not null;index;uniqueIndex:idx_review_user_property"`
	PropertyID uint     `json:"propertyID" gorm:"not null;index;uniqueIndex:idx_review_user_property"`
	User       User     `json:"user" gorm:"foreignKey:UserID"`
	Property   Property `json:"-" gorm:"foreignKey:PropertyID"`
	Rating     int      `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment    string   `json:"comment" gorm:"type:text"`
	Status     string   `json:"status" gorm:"type:varchar(20);default:PENDING;index"` // PENDING, APPROVED, REJECTED
}
