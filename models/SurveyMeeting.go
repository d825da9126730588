package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	MeetingStatusPending   = "PENDING"
	MeetingStatusConfirmed = "CONFIRMED"
	MeetingStatusCancelled = "CANCELLED"
	MeetingStatusCompleted = "COMPLETED"
)

// PropertySurveyMeeting is a scheduled viewing between a prospective client
// and the lister or an assigned agent.
type PropertySurveyMeeting struct {
	gorm.Model
	UserID     uint     `json:"userID" gorm:"not null;index"`
	User       User     `json:"user" gorm:"foreignKey:UserID"`
	PropertyID uint     `json:"propertyID" gorm:"not null;index"`
	Property   Property `json:"property" gorm:"foreignKey:PropertyID"`

	ScheduledAt time.Time `json:"scheduledAt" gorm:"not null"`
	Status      string    `json:"status" gorm:"type:varchar(20);default:PENDING;index"` // PENDING, CONFIRMED, CANCELLED, COMPLETED
	Note        string    `json:"note" gorm:"size:500"`

	AssignedAgentID *uint `json:"assignedAgentID"`
	AssignedAgent   *User `json:"assignedAgent,omitempty" gorm:"foreignKey:AssignedAgentID"`
}

// Active reports whether the meeting still blocks a new booking for the same
// user and property.
func (m *PropertySurveyMeeting) Active() bool {
	return m.Status == MeetingStatusPending || m.Status == MeetingStatusConfirmed
}
