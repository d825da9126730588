package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types used by the dispatcher.
const (
	NotificationListingSubmitted = "listing_submitted"
	NotificationListingApproved  = "listing_approved"
	NotificationListingDeclined  = "listing_declined"
	NotificationReviewSubmitted  = "review_submitted"
	NotificationReviewModerated  = "review_moderated"
	NotificationOfflinePayment   = "offline_payment_submitted"
	NotificationPaymentVerified  = "payment_verified"
	NotificationMeetingScheduled = "meeting_scheduled"
	NotificationMeetingUpdated   = "meeting_updated"
	NotificationJobApplication   = "job_application"
)

type Notification struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"userID" gorm:"not null;index"`
	User   User `json:"-" gorm:"foreignKey:UserID"`

	Type    string `json:"type" gorm:"size:40;index"`
	Title   string `json:"title" gorm:"size:120"`
	Message string `json:"message" gorm:"size:500"`

	// Linkage back to the entity that raised the notification.
	Metadata datatypes.JSON `json:"metadata"`

	IsRead    bool       `json:"isRead" gorm:"default:false"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt"`
}
