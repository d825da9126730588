package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PaymentMethodOnline  = "ONLINE"
	PaymentMethodOffline = "OFFLINE"
)

const (
	TransactionPending    = "PENDING"
	TransactionSuccessful = "SUCCESSFUL"
	TransactionFailed     = "FAILED"
)

type Transaction struct {
	gorm.Model
	UserID     uint     `json:"userID" gorm:"not null;index"`
	User       User     `json:"user" gorm:"foreignKey:UserID"`
	PropertyID uint     `json:"propertyID" gorm:"not null;index"`
	Property   Property `json:"property" gorm:"foreignKey:PropertyID"`

	PaymentMethod string  `json:"paymentMethod" gorm:"type:varchar(10);not null"`                 // ONLINE, OFFLINE
	Status        string  `json:"status" gorm:"type:varchar(20);default:PENDING;index"`           // PENDING, SUCCESSFUL, FAILED
	Amount        float64 `json:"amount" gorm:"not null"`
	Currency      string  `json:"currency" gorm:"type:varchar(3);default:NGN"`

	// Gateway references. TxRef is ours, FlwRef is assigned by the gateway.
	TxRef  string `json:"txRef" gorm:"uniqueIndex;not null"`
	FlwRef string `json:"flwRef" gorm:"index"`

	// Offline settlement
	NeedsVerification bool       `json:"needsVerification" gorm:"default:false"`
	ReceiptURL        string     `json:"receiptURL"`
	VerifiedByID      *uint      `json:"verifiedByID"`
	VerifiedAt        *time.Time `json:"verifiedAt"`
}
