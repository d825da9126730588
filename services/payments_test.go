package services

import (
	"fmt"
	"testing"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openPaymentsDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := storage.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	return db
}

func seedTransaction(t *testing.T, db *gorm.DB, listingType string) (*models.Transaction, *models.Property) {
	t.Helper()
	property := models.Property{
		ListerID:       1,
		Name:           "seed",
		ListingType:    listingType,
		ListingStatus:  models.ListingStatusApproved,
		PropertyStatus: models.PropertyStatusAvailable,
		SalePrice:      200000,
		RentPrice:      1500,
		RentFrequency:  models.RentFrequencyYearly,
	}
	require.NoError(t, db.Create(&property).Error)

	txn := models.Transaction{
		UserID:        2,
		PropertyID:    property.ID,
		PaymentMethod: models.PaymentMethodOnline,
		Status:        models.TransactionPending,
		Amount:        210000,
		Currency:      "NGN",
		TxRef:         "QABA-test-" + listingType,
	}
	require.NoError(t, db.Create(&txn).Error)
	return &txn, &property
}

func TestApplySuccessfulPaymentSale(t *testing.T) {
	db := openPaymentsDB(t)
	txn, property := seedTransaction(t, db, models.ListingTypeSale)

	require.NoError(t, ApplySuccessfulPayment(db, txn, "FLW-123"))

	var reloadedTxn models.Transaction
	require.NoError(t, db.First(&reloadedTxn, txn.ID).Error)
	assert.Equal(t, models.TransactionSuccessful, reloadedTxn.Status)
	assert.Equal(t, "FLW-123", reloadedTxn.FlwRef)
	assert.NotNil(t, reloadedTxn.VerifiedAt)

	var reloadedProperty models.Property
	require.NoError(t, db.First(&reloadedProperty, property.ID).Error)
	assert.Equal(t, models.PropertyStatusSold, reloadedProperty.PropertyStatus)
}

func TestApplySuccessfulPaymentRent(t *testing.T) {
	db := openPaymentsDB(t)
	txn, property := seedTransaction(t, db, models.ListingTypeRent)

	require.NoError(t, ApplySuccessfulPayment(db, txn, ""))

	var reloadedProperty models.Property
	require.NoError(t, db.First(&reloadedProperty, property.ID).Error)
	assert.Equal(t, models.PropertyStatusRented, reloadedProperty.PropertyStatus)
}

func TestApplySuccessfulPaymentIsIdempotent(t *testing.T) {
	db := openPaymentsDB(t)
	txn, _ := seedTransaction(t, db, models.ListingTypeSale)

	require.NoError(t, ApplySuccessfulPayment(db, txn, "FLW-123"))

	// Redelivery must not rewrite the row
	require.NoError(t, ApplySuccessfulPayment(db, txn, "FLW-456"))

	var reloaded models.Transaction
	require.NoError(t, db.First(&reloaded, txn.ID).Error)
	assert.Equal(t, "FLW-123", reloaded.FlwRef)
	assert.Equal(t, models.TransactionSuccessful, reloaded.Status)
}

func TestMarkPaymentFailedNeverDowngradesSuccess(t *testing.T) {
	db := openPaymentsDB(t)
	txn, _ := seedTransaction(t, db, models.ListingTypeSale)

	require.NoError(t, ApplySuccessfulPayment(db, txn, "FLW-123"))
	require.NoError(t, MarkPaymentFailed(db, txn))

	var reloaded models.Transaction
	require.NoError(t, db.First(&reloaded, txn.ID).Error)
	assert.Equal(t, models.TransactionSuccessful, reloaded.Status)
}

func TestMarkPaymentFailed(t *testing.T) {
	db := openPaymentsDB(t)
	txn, property := seedTransaction(t, db, models.ListingTypeSale)

	require.NoError(t, MarkPaymentFailed(db, txn))

	var reloaded models.Transaction
	require.NoError(t, db.First(&reloaded, txn.ID).Error)
	assert.Equal(t, models.TransactionFailed, reloaded.Status)

	// A failed payment leaves the property available
	var reloadedProperty models.Property
	require.NoError(t, db.First(&reloadedProperty, property.ID).Error)
	assert.Equal(t, models.PropertyStatusAvailable, reloadedProperty.PropertyStatus)
}
