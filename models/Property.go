package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

const (
	ListingTypeSale = "SALE"
	ListingTypeRent = "RENT"
)

// Approval workflow of a listing.
const (
	ListingStatusDraft    = "DRAFT"
	ListingStatusPending  = "PENDING"
	ListingStatusApproved = "APPROVED"
	ListingStatusDeclined = "DECLINED"
)

// Availability of an approved listing.
const (
	PropertyStatusAvailable = "AVAILABLE"
	PropertyStatusSold      = "SOLD"
	PropertyStatusRented    = "RENTED"
)

const (
	RentFrequencyMonthly = "MONTHLY"
	RentFrequencyYearly  = "YEARLY"
)

type Property struct {
	gorm.Model
	ListerID     uint   `json:"listerID" gorm:"not null;index"`
	Lister       User   `json:"lister" gorm:"foreignKey:ListerID;references:ID"`
	Name         string `json:"name" gorm:"not null"`
	Description  string `json:"description" gorm:"type:text"`
	PropertyType string `json:"propertyType"` // apartment, duplex, bungalow, land, office
	ListingType  string `json:"listingType" gorm:"type:varchar(10);not null;index"`  // SALE, RENT
	ListingStatus  string `json:"listingStatus" gorm:"type:varchar(20);default:DRAFT;index"`      // DRAFT, PENDING, APPROVED, DECLINED
	PropertyStatus string `json:"propertyStatus" gorm:"type:varchar(20);default:AVAILABLE;index"` // AVAILABLE, SOLD, RENTED

	Address   string  `json:"address"`
	City      string  `json:"city" gorm:"index"`
	State     string  `json:"state"`
	Country   string  `json:"country"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Bedrooms  int     `json:"bedrooms"`
	Bathrooms int     `json:"bathrooms"`
	Area      float64 `json:"area"` // square meters

	// Pricing. Exactly one of the sale / rent paths is populated, matching
	// ListingType; TotalPrice is always the server-side recomputation.
	SalePrice       float64 `json:"salePrice"`
	RentPrice       float64 `json:"rentPrice"`
	RentFrequency   string  `json:"rentFrequency"` // MONTHLY, YEARLY
	QabaFee         float64 `json:"qabaFee"`
	AgentCommission float64 `json:"agentCommission"`
	ServiceCharge   float64 `json:"serviceCharge"`
	CautionFee      float64 `json:"cautionFee"`
	LegalFee        float64 `json:"legalFee"`
	TotalPrice      float64 `json:"totalPrice"`
	Currency        string  `json:"currency" gorm:"type:varchar(3);default:NGN"`

	IsVerified bool `json:"isVerified" gorm:"default:false"`

	Images    []PropertyImage    `json:"images" gorm:"constraint:OnDelete:CASCADE"`
	Videos    []PropertyVideo    `json:"videos" gorm:"constraint:OnDelete:CASCADE"`
	Documents []PropertyDocument `json:"documents" gorm:"constraint:OnDelete:CASCADE"`
	Reviews   []PropertyReview   `json:"reviews,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// BasePrice returns the price the fee computation starts from.
func (p *Property) BasePrice() float64 {
	if p.ListingType == ListingTypeRent {
		return p.RentPrice
	}
	return p.SalePrice
}

// MarshalJSON trims the lister to avoid a circular reference when the
// association is preloaded.
func (p *Property) MarshalJSON() ([]byte, error) {
	type Alias Property
	aux := &struct {
		Lister *User `json:"lister,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(p),
	}
	if p.Lister.ID > 0 {
		listerCopy := p.Lister
		listerCopy.Properties = nil
		aux.Lister = &listerCopy
	}
	return json.Marshal(aux)
}
