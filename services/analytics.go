package services

import (
	"time"

	"github.com/Shielded-Bit/QABA-sub000/models"

	"gorm.io/gorm"
)

// AnalyticsBucket is one month (or year) of an agent's listing activity.
type AnalyticsBucket struct {
	Label               string  `json:"label"`
	TotalProperties     int     `json:"totalProperties"`
	SoldProperties      int     `json:"soldProperties"`
	RentedProperties    int     `json:"rentedProperties"`
	PendingProperties   int     `json:"pendingProperties"`
	PublishedProperties int     `json:"publishedProperties"`
	TotalRevenue        float64 `json:"totalRevenue"`
}

func (b *AnalyticsBucket) add(p *models.Property) {
	b.TotalProperties++
	switch p.PropertyStatus {
	case models.PropertyStatusSold:
		b.SoldProperties++
		b.TotalRevenue += p.SalePrice
	case models.PropertyStatusRented:
		b.RentedProperties++
		b.TotalRevenue += p.RentPrice
	}
	switch p.ListingStatus {
	case models.ListingStatusPending:
		b.PendingProperties++
	case models.ListingStatusApproved:
		b.PublishedProperties++
	}
}

func totalOf(buckets []AnalyticsBucket) AnalyticsBucket {
	total := AnalyticsBucket{Label: "Total"}
	for _, b := range buckets {
		total.TotalProperties += b.TotalProperties
		total.SoldProperties += b.SoldProperties
		total.RentedProperties += b.RentedProperties
		total.PendingProperties += b.PendingProperties
		total.PublishedProperties += b.PublishedProperties
		total.TotalRevenue += b.TotalRevenue
	}
	return total
}

// AgentMonthlyAnalytics partitions an agent's listings for one year into 12
// month buckets plus a synthetic "Total" bucket. Bucketing happens in Go so
// the query stays portable across dialects.
func AgentMonthlyAnalytics(db *gorm.DB, agentID uint, year int) ([]AnalyticsBucket, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var properties []models.Property
	if err := db.Where("lister_id = ? AND created_at >= ? AND created_at < ?", agentID, start, end).
		Find(&properties).Error; err != nil {
		return nil, err
	}

	buckets := make([]AnalyticsBucket, 12)
	for i := range buckets {
		buckets[i].Label = time.Month(i + 1).String()
	}
	for i := range properties {
		buckets[properties[i].CreatedAt.Month()-1].add(&properties[i])
	}

	return append(buckets, totalOf(buckets)), nil
}

// AgentYearlyAnalytics buckets an agent's listings by year over an inclusive
// range, plus the "Total" bucket.
func AgentYearlyAnalytics(db *gorm.DB, agentID uint, fromYear, toYear int) ([]AnalyticsBucket, error) {
	start := time.Date(fromYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(toYear+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	var properties []models.Property
	if err := db.Where("lister_id = ? AND created_at >= ? AND created_at < ?", agentID, start, end).
		Find(&properties).Error; err != nil {
		return nil, err
	}

	buckets := make([]AnalyticsBucket, toYear-fromYear+1)
	for i := range buckets {
		buckets[i].Label = time.Date(fromYear+i, time.January, 1, 0, 0, 0, 0, time.UTC).Format("2006")
	}
	for i := range properties {
		buckets[properties[i].CreatedAt.Year()-fromYear].add(&properties[i])
	}

	return append(buckets, totalOf(buckets)), nil
}
