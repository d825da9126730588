package models

import "gorm.io/gorm"

type PropertyImage struct {
	gorm.Model
	PropertyID uint   `json:"propertyID" gorm:"not null;index"`
	UploaderID uint   `json:"uploaderID" gorm:"not null"`
	URL        string `json:"url" gorm:"not null"`
	Caption    string `json:"caption"`
}

type PropertyVideo struct {
	gorm.Model
	PropertyID uint   `json:"propertyID" gorm:"not null;index"`
	UploaderID uint   `json:"uploaderID" gorm:"not null"`
	URL        string `json:"url" gorm:"not null"`
	Caption    string `json:"caption"`
}

type PropertyDocument struct {
	gorm.Model
	PropertyID   uint   `json:"propertyID" gorm:"not null;index"`
	UploaderID   uint   `json:"uploaderID" gorm:"not null"`
	URL          string `json:"url" gorm:"not null"`
	FileName     string `json:"fileName"`
	DocumentType string `json:"documentType"` // deed, survey_plan, c_of_o, other
	IsVerified   bool   `json:"isVerified" gorm:"default:false"`
	VerifiedByID *uint  `json:"verifiedByID"`
}
