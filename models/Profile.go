package models

import "gorm.io/gorm"

// One profile row per role, created lazily on first access. A user that
// switches role keeps the old profile row; only the row matching the current
// role is served.

type ClientProfile struct {
	gorm.Model
	UserID        uint   `json:"userID" gorm:"uniqueIndex;not null"`
	User          User   `json:"-" gorm:"foreignKey:UserID"`
	PreferredCity string `json:"preferredCity"`
	BudgetNote    string `json:"budgetNote" gorm:"size:500"`
}

type AgentProfile struct {
	gorm.Model
	UserID        uint   `json:"userID" gorm:"uniqueIndex;not null"`
	User          User   `json:"-" gorm:"foreignKey:UserID"`
	AgencyName    string `json:"agencyName"`
	LicenseNumber string `json:"licenseNumber"`
	Bio           string `json:"bio" gorm:"type:text"`
	YearsActive   int    `json:"yearsActive"`
}

type LandlordProfile struct {
	gorm.Model
	UserID      uint   `json:"userID" gorm:"uniqueIndex;not null"`
	User        User   `json:"-" gorm:"foreignKey:UserID"`
	CompanyName string `json:"companyName"`
	Address     string `json:"address"`
}

type AdminProfile struct {
	gorm.Model
	UserID     uint   `json:"userID" gorm:"uniqueIndex;not null"`
	User       User   `json:"-" gorm:"foreignKey:UserID"`
	Department string `json:"department"`
}
