package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/Shielded-Bit/QABA-sub000/models"

	"gorm.io/gorm"
)

// Flutterwave v3 client. FLW_SECRET_KEY authorizes API calls; the same
// account's verif-hash secret authenticates inbound webhooks.

var gatewayHTTPClient = &http.Client{Timeout: 30 * time.Second}

func gatewayBaseURL() string {
	if base := os.Getenv("FLW_BASE_URL"); base != "" {
		return base
	}
	return "https://api.flutterwave.com/v3"
}

// GatewayError carries the gateway's own message so handlers can surface it
// as a 400 without retrying.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string { return "payment gateway: " + e.Message }

type initiatePaymentRequest struct {
	TxRef       string                 `json:"tx_ref"`
	Amount      string                 `json:"amount"`
	Currency    string                 `json:"currency"`
	RedirectURL string                 `json:"redirect_url"`
	Customer    map[string]string      `json:"customer"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}

type gatewayEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// GatewayTransaction is the verification payload for a charge.
type GatewayTransaction struct {
	Status   string  `json:"status"` // successful, failed, pending
	TxRef    string  `json:"tx_ref"`
	FlwRef   string  `json:"flw_ref"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// InitiateHostedPayment creates a hosted checkout session and returns the
// payment link. No local state is written here; the caller persists the
// PENDING transaction only after the gateway accepts the session.
func InitiateHostedPayment(txRef string, amount float64, currency, customerEmail string, propertyID uint) (string, error) {
	payload := initiatePaymentRequest{
		TxRef:       txRef,
		Amount:      fmt.Sprintf("%.2f", amount),
		Currency:    currency,
		RedirectURL: os.Getenv("PAYMENT_REDIRECT_URL"),
		Customer:    map[string]string{"email": customerEmail},
		Meta:        map[string]interface{}{"property_id": propertyID},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, gatewayBaseURL()+"/payments", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+os.Getenv("FLW_SECRET_KEY"))
	req.Header.Set("Content-Type", "application/json")

	res, err := gatewayHTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var envelope gatewayEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("payment gateway: unexpected response (status %d)", res.StatusCode)
	}
	if envelope.Status != "success" {
		return "", &GatewayError{Message: envelope.Message}
	}

	var data struct {
		Link string `json:"link"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil || data.Link == "" {
		return "", errors.New("payment gateway: no payment link in response")
	}
	return data.Link, nil
}

// VerifyByReference asks the gateway for the final status of a charge.
func VerifyByReference(txRef string) (*GatewayTransaction, error) {
	endpoint := gatewayBaseURL() + "/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(txRef)

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+os.Getenv("FLW_SECRET_KEY"))

	res, err := gatewayHTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var envelope gatewayEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("payment gateway: unexpected response (status %d)", res.StatusCode)
	}
	if envelope.Status != "success" {
		return nil, &GatewayError{Message: envelope.Message}
	}

	var txn GatewayTransaction
	if err := json.Unmarshal(envelope.Data, &txn); err != nil {
		return nil, errors.New("payment gateway: malformed verification payload")
	}
	return &txn, nil
}

// ApplySuccessfulPayment moves a transaction to SUCCESSFUL and flips the
// property availability (SALE -> SOLD, RENT -> RENTED). Safe to call again
// for an already-successful transaction; repeat webhook delivery is a no-op.
func ApplySuccessfulPayment(db *gorm.DB, txn *models.Transaction, flwRef string) error {
	if txn.Status == models.TransactionSuccessful {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		updates := map[string]interface{}{
			"status":      models.TransactionSuccessful,
			"verified_at": &now,
		}
		if flwRef != "" {
			updates["flw_ref"] = flwRef
		}
		if err := tx.Model(txn).Updates(updates).Error; err != nil {
			return err
		}

		var property models.Property
		if err := tx.First(&property, txn.PropertyID).Error; err != nil {
			return err
		}
		newStatus := models.PropertyStatusSold
		if property.ListingType == models.ListingTypeRent {
			newStatus = models.PropertyStatusRented
		}
		return tx.Model(&property).Update("property_status", newStatus).Error
	})
}

// MarkPaymentFailed moves a transaction to FAILED. Terminal SUCCESSFUL rows
// are never downgraded.
func MarkPaymentFailed(db *gorm.DB, txn *models.Transaction) error {
	if txn.Status == models.TransactionSuccessful {
		return nil
	}
	return db.Model(txn).Update("status", models.TransactionFailed).Error
}
