package routes

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/services"
	"github.com/Shielded-Bit/QABA-sub000/storage"
	"github.com/Shielded-Bit/QABA-sub000/utils"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func newTxRef() string {
	return "QABA-" + uuid.NewString()
}

// payableProperty checks that the target listing can take a payment.
func payableProperty(ctx iris.Context, propertyID uint) *models.Property {
	var property models.Property
	result := storage.DB.Limit(1).Find(&property, propertyID)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil
	}
	if property.ListingStatus != models.ListingStatusApproved {
		utils.CreateFieldError(ctx, "propertyID", "This listing is not open for payment")
		return nil
	}
	if property.PropertyStatus != models.PropertyStatusAvailable {
		utils.CreateFieldError(ctx, "propertyID", "This property is no longer available")
		return nil
	}
	return &property
}

type InitiateOnlinePaymentInput struct {
	PropertyID uint `json:"propertyID" validate:"required"`
}

// InitiateOnlinePayment creates a hosted checkout session. The PENDING
// transaction row is only written after the gateway accepts the session, so
// a gateway failure leaves no local state behind.
func InitiateOnlinePayment(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	var input InitiateOnlinePaymentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	property := payableProperty(ctx, input.PropertyID)
	if property == nil {
		return
	}

	txRef := newTxRef()
	link, err := services.InitiateHostedPayment(txRef, property.TotalPrice, property.Currency, user.Email, property.ID)
	if err != nil {
		var gatewayErr *services.GatewayError
		if errors.As(err, &gatewayErr) {
			utils.CreateError(ctx, iris.StatusBadRequest, "Payment could not be initiated",
				iris.Map{"gateway": gatewayErr.Message})
			return
		}
		utils.CreateError(ctx, iris.StatusBadRequest, "Payment could not be initiated",
			iris.Map{"gateway": err.Error()})
		return
	}

	txn := models.Transaction{
		UserID:        user.ID,
		PropertyID:    property.ID,
		PaymentMethod: models.PaymentMethodOnline,
		Status:        models.TransactionPending,
		Amount:        property.TotalPrice,
		Currency:      property.Currency,
		TxRef:         txRef,
	}
	if err := storage.DB.Create(&txn).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusCreated, "Payment initiated", iris.Map{
		"txRef":       txRef,
		"paymentLink": link,
		"amount":      txn.Amount,
		"currency":    txn.Currency,
	})
}

// pendingOfflineExists reports whether the user already has a PENDING offline
// transaction for the property.
func pendingOfflineExists(db *gorm.DB, userID, propertyID uint) (bool, error) {
	var count int64
	err := db.Model(&models.Transaction{}).
		Where("user_id = ? AND property_id = ? AND payment_method = ? AND status = ?",
			userID, propertyID, models.PaymentMethodOffline, models.TransactionPending).
		Count(&count).Error
	return count > 0, err
}

// InitiateOfflinePayment records an out-of-band settlement evidenced by an
// uploaded receipt. At most one PENDING offline transaction may exist per
// (user, property): a duplicate is rejected before the receipt is uploaded,
// and the insert re-checks under a row lock on the listing so concurrent
// submitters serialize.
func InitiateOfflinePayment(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	propertyID, ok := paramUint(ctx, "id")
	if !ok {
		return
	}
	property := payableProperty(ctx, propertyID)
	if property == nil {
		return
	}

	exists, err := pendingOfflineExists(storage.DB, user.ID, property.ID)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if exists {
		utils.CreateFieldError(ctx, "propertyID", "An offline payment for this property is already awaiting verification")
		return
	}

	file, header, err := ctx.FormFile("receipt")
	if err != nil {
		utils.CreateFieldError(ctx, "receipt", "A payment receipt (image or PDF) is required")
		return
	}
	defer file.Close()

	if err := utils.ValidateUpload(header.Filename, header.Size, utils.ReceiptExtensions, utils.MaxReceiptSize); err != nil {
		utils.CreateFieldError(ctx, "receipt", err.Error())
		return
	}

	receiptURL, err := storage.UploadFile(file, header.Filename, "image",
		fmt.Sprintf("receipt_%d_%s", property.ID, utils.GenerateShortToken(4)))
	if err != nil {
		utils.CreateError(ctx, iris.StatusBadRequest, "Receipt upload failed", iris.Map{"receipt": err.Error()})
		return
	}

	txn := models.Transaction{
		UserID:            user.ID,
		PropertyID:        property.ID,
		PaymentMethod:     models.PaymentMethodOffline,
		Status:            models.TransactionPending,
		Amount:            property.TotalPrice,
		Currency:          property.Currency,
		TxRef:             newTxRef(),
		NeedsVerification: true,
		ReceiptURL:        receiptURL,
	}

	duplicate := false
	err = storage.DB.Transaction(func(tx *gorm.DB) error {
		// At READ COMMITTED two concurrent submitters can both count zero;
		// the lock on the listing row serializes them.
		var locked models.Property
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, property.ID).Error; err != nil {
			return err
		}
		dup, err := pendingOfflineExists(tx, user.ID, property.ID)
		if err != nil {
			return err
		}
		if dup {
			duplicate = true
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		if duplicate {
			utils.CreateFieldError(ctx, "propertyID", "An offline payment for this property is already awaiting verification")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	services.NewDispatcher().OfflinePaymentSubmitted(&txn, property)

	utils.Respond(ctx, iris.StatusCreated, "Offline payment submitted for verification", txn)
}

type VerifyPaymentInput struct {
	TxRef string `json:"txRef" validate:"required"`
}

// VerifyPayment resolves the final status of an online payment against the
// gateway. Verification of an already-successful transaction is idempotent
// and does not call the gateway again.
func VerifyPayment(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	var input VerifyPaymentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var txn models.Transaction
	result := storage.DB.Where("tx_ref = ?", input.TxRef).Limit(1).Find(&txn)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}
	if txn.UserID != user.ID && !user.IsStaff() {
		utils.CreateForbidden(ctx)
		return
	}

	if txn.Status == models.TransactionSuccessful {
		utils.Respond(ctx, iris.StatusOK, "Payment already confirmed", txn)
		return
	}

	if txn.PaymentMethod == models.PaymentMethodOffline {
		utils.CreateFieldError(ctx, "txRef", "Offline payments are verified manually by our team")
		return
	}

	gatewayTxn, err := services.VerifyByReference(txn.TxRef)
	if err != nil {
		utils.CreateError(ctx, iris.StatusBadRequest, "Payment verification failed",
			iris.Map{"gateway": err.Error()})
		return
	}

	var property models.Property
	if err := storage.DB.First(&property, txn.PropertyID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// A "successful" charge for the wrong amount or currency is not a success.
	if gatewayTxn.Status == "successful" && gatewayTxn.Amount >= txn.Amount && gatewayTxn.Currency == txn.Currency {
		if err := services.ApplySuccessfulPayment(storage.DB, &txn, gatewayTxn.FlwRef); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		services.NewDispatcher().PaymentVerified(&txn, &property, true)
		utils.Respond(ctx, iris.StatusOK, "Payment confirmed", txn)
		return
	}

	if err := services.MarkPaymentFailed(storage.DB, &txn); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	services.NewDispatcher().PaymentVerified(&txn, &property, false)
	utils.Respond(ctx, iris.StatusOK, "Payment not successful", txn)
}

// PaymentHistory lists the caller's transactions, newest first.
func PaymentHistory(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	page, perPage, offset := pagination(ctx)

	query := storage.DB.Model(&models.Transaction{}).Where("user_id = ?", user.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var transactions []models.Transaction
	if err := query.Preload("Property").Order("created_at DESC").
		Offset(offset).Limit(perPage).Find(&transactions).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.RespondPage(ctx, "Payment history", transactions, page, perPage, total)
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		TxRef  string `json:"tx_ref"`
		FlwRef string `json:"flw_ref"`
		Status string `json:"status"`
	} `json:"data"`
}

// PaymentWebhook handles gateway callbacks. The verif-hash header must equal
// the configured secret: absent -> 400, mismatched -> 401. Delivery may be
// retried by the gateway, so the SUCCESSFUL transition is a no-op on repeat.
func PaymentWebhook(ctx iris.Context) {
	signature := ctx.GetHeader("verif-hash")
	if signature == "" {
		utils.CreateError(ctx, iris.StatusBadRequest, "Missing webhook signature", nil)
		return
	}
	if signature != os.Getenv("FLW_WEBHOOK_SECRET") {
		utils.CreateError(ctx, iris.StatusUnauthorized, "Invalid webhook signature", nil)
		return
	}

	var payload webhookPayload
	if err := ctx.ReadJSON(&payload); err != nil {
		utils.CreateError(ctx, iris.StatusBadRequest, "Malformed webhook payload", nil)
		return
	}

	if payload.Event != "charge.completed" || payload.Data.Status != "successful" {
		utils.Respond(ctx, iris.StatusOK, "Event ignored", nil)
		return
	}

	var txn models.Transaction
	result := storage.DB.Where("tx_ref = ?", payload.Data.TxRef).Limit(1).Find(&txn)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		log.Printf("webhook: unknown tx_ref %q acknowledged", payload.Data.TxRef)
		utils.Respond(ctx, iris.StatusOK, "Acknowledged", nil)
		return
	}

	if txn.Status == models.TransactionSuccessful {
		utils.Respond(ctx, iris.StatusOK, "Already processed", nil)
		return
	}

	if err := services.ApplySuccessfulPayment(storage.DB, &txn, payload.Data.FlwRef); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var property models.Property
	if storage.DB.First(&property, txn.PropertyID).Error == nil {
		services.NewDispatcher().PaymentVerified(&txn, &property, true)
	}

	utils.Respond(ctx, iris.StatusOK, "Payment processed", nil)
}
