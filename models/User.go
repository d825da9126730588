package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

const (
	RoleClient   = "client"
	RoleAgent    = "agent"
	RoleLandlord = "landlord"
	RoleAdmin    = "admin"
)

type User struct {
	gorm.Model
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email" gorm:"uniqueIndex;not null"`
	PhoneNumber    string `json:"phoneNumber" gorm:"index"`
	Password       string `json:"password"`
	Role           string `json:"role" gorm:"type:varchar(20);default:client;index"` // client, agent, landlord, admin
	EmailVerified  bool   `json:"emailVerified" gorm:"default:false"`
	SocialLogin    bool   `json:"socialLogin"`
	SocialProvider string `json:"socialProvider"` // google
	AvatarURL      string `json:"avatarURL"`

	Properties []Property `json:"properties,omitempty" gorm:"foreignKey:ListerID;references:ID"`
}

// IsStaff reports whether the user may act on resources they do not own.
func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin
}

// MarshalJSON hides the password hash and breaks the user<->property cycle.
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		Password   string     `json:"password,omitempty"`
		Properties []Property `json:"properties,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(u),
	}
	aux.Password = ""
	aux.Properties = nil
	return json.Marshal(aux)
}
