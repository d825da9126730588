package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openAnalyticsDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := storage.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	return db
}

func seedProperty(t *testing.T, db *gorm.DB, agentID uint, createdAt time.Time, listingType, listingStatus, propertyStatus string, price float64) {
	t.Helper()
	p := models.Property{
		ListerID:       agentID,
		Name:           "seed",
		ListingType:    listingType,
		ListingStatus:  listingStatus,
		PropertyStatus: propertyStatus,
	}
	if listingType == models.ListingTypeRent {
		p.RentPrice = price
		p.RentFrequency = models.RentFrequencyYearly
	} else {
		p.SalePrice = price
	}
	p.CreatedAt = createdAt
	require.NoError(t, db.Create(&p).Error)
}

func TestAgentMonthlyAnalytics(t *testing.T) {
	db := openAnalyticsDB(t)

	const agentID = 7
	year := 2025

	// March: one sold sale listing
	seedProperty(t, db, agentID, time.Date(year, time.March, 10, 12, 0, 0, 0, time.UTC),
		models.ListingTypeSale, models.ListingStatusApproved, models.PropertyStatusSold, 200000)
	// March: one rented rent listing
	seedProperty(t, db, agentID, time.Date(year, time.March, 20, 12, 0, 0, 0, time.UTC),
		models.ListingTypeRent, models.ListingStatusApproved, models.PropertyStatusRented, 1500)
	// July: one pending listing, no revenue
	seedProperty(t, db, agentID, time.Date(year, time.July, 1, 12, 0, 0, 0, time.UTC),
		models.ListingTypeSale, models.ListingStatusPending, models.PropertyStatusAvailable, 50000)
	// Another agent's listing must not leak in
	seedProperty(t, db, 99, time.Date(year, time.March, 5, 12, 0, 0, 0, time.UTC),
		models.ListingTypeSale, models.ListingStatusApproved, models.PropertyStatusSold, 999999)
	// Previous year is out of range
	seedProperty(t, db, agentID, time.Date(year-1, time.December, 31, 12, 0, 0, 0, time.UTC),
		models.ListingTypeSale, models.ListingStatusApproved, models.PropertyStatusSold, 888888)

	buckets, err := AgentMonthlyAnalytics(db, agentID, year)
	require.NoError(t, err)
	require.Len(t, buckets, 13) // 12 months + Total

	march := buckets[2]
	assert.Equal(t, "March", march.Label)
	assert.Equal(t, 2, march.TotalProperties)
	assert.Equal(t, 1, march.SoldProperties)
	assert.Equal(t, 1, march.RentedProperties)
	assert.Equal(t, 2, march.PublishedProperties)
	assert.Equal(t, 201500.0, march.TotalRevenue)

	july := buckets[6]
	assert.Equal(t, 1, july.TotalProperties)
	assert.Equal(t, 1, july.PendingProperties)
	assert.Zero(t, july.TotalRevenue)

	total := buckets[12]
	assert.Equal(t, "Total", total.Label)
	assert.Equal(t, 3, total.TotalProperties)
	assert.Equal(t, 201500.0, total.TotalRevenue)
}

func TestAgentYearlyAnalytics(t *testing.T) {
	db := openAnalyticsDB(t)

	const agentID = 7
	seedProperty(t, db, agentID, time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC),
		models.ListingTypeSale, models.ListingStatusApproved, models.PropertyStatusSold, 100000)
	seedProperty(t, db, agentID, time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC),
		models.ListingTypeRent, models.ListingStatusApproved, models.PropertyStatusRented, 2000)

	buckets, err := AgentYearlyAnalytics(db, agentID, 2023, 2025)
	require.NoError(t, err)
	require.Len(t, buckets, 4) // 3 years + Total

	assert.Equal(t, "2023", buckets[0].Label)
	assert.Equal(t, 1, buckets[0].SoldProperties)
	assert.Equal(t, 100000.0, buckets[0].TotalRevenue)

	assert.Equal(t, "2024", buckets[1].Label)
	assert.Zero(t, buckets[1].TotalProperties)

	assert.Equal(t, 1, buckets[2].RentedProperties)

	total := buckets[3]
	assert.Equal(t, 2, total.TotalProperties)
	assert.Equal(t, 102000.0, total.TotalRevenue)
}
