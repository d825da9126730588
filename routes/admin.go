package routes

import (
	"time"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/services"
	"github.com/Shielded-Bit/QABA-sub000/storage"
	"github.com/Shielded-Bit/QABA-sub000/utils"

	"github.com/kataras/iris/v12"
)

func AdminListUsers(ctx iris.Context) {
	page, perPage, offset := pagination(ctx)

	query := storage.DB.Model(&models.User{})
	if role := ctx.URLParam("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var users []models.User
	if err := query.Order("created_at DESC").Offset(offset).Limit(perPage).
		Find(&users).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.RespondPage(ctx, "Users", users, page, perPage, total)
}

func AdminGetUser(ctx iris.Context) {
	userID, ok := paramUint(ctx, "id")
	if !ok {
		return
	}

	var user models.User
	result := storage.DB.Limit(1).Find(&user, userID)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	profile, err := services.EnsureProfile(storage.DB, &user)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var listings int64
	storage.DB.Model(&models.Property{}).Where("lister_id = ?", user.ID).Count(&listings)

	utils.Respond(ctx, iris.StatusOK, "User", iris.Map{
		"user":         &user,
		"profile":      profile,
		"listingCount": listings,
	})
}

type ChangeRoleInput struct {
	Role string `json:"role" validate:"required,oneof=client agent landlord admin"`
}

func AdminChangeUserRole(ctx iris.Context) {
	userID, ok := paramUint(ctx, "id")
	if !ok {
		return
	}

	var input ChangeRoleInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var user models.User
	result := storage.DB.Limit(1).Find(&user, userID)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	before := user.Role
	if err := storage.DB.Model(&user).Update("role", input.Role).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	user.Role = input.Role

	utils.Audit(ctx, "user.role_change", "user", user.ID,
		iris.Map{"role": before}, iris.Map{"role": input.Role})

	utils.Respond(ctx, iris.StatusOK, "Role updated", &user)
}

// AdminListProperties serves the moderation queue; defaults to PENDING.
func AdminListProperties(ctx iris.Context) {
	page, perPage, offset := pagination(ctx)

	status := ctx.URLParamDefault("listing_status", models.ListingStatusPending)
	query := storage.DB.Model(&models.Property{}).Where("listing_status = ?", status)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var properties []models.Property
	if err := query.Preload("Lister").Preload("Documents").
		Order("created_at ASC").Offset(offset).Limit(perPage).
		Find(&properties).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.RespondPage(ctx, "Listings", properties, page, perPage, total)
}

type ModerateListingInput struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason" validate:"max=500"`
}

// AdminModerateProperty resolves a PENDING listing to APPROVED or DECLINED
// and notifies the lister.
func AdminModerateProperty(ctx iris.Context) {
	property := getPropertyOrNotFound(ctx)
	if property == nil {
		return
	}
	if property.ListingStatus != models.ListingStatusPending {
		utils.CreateFieldError(ctx, "listingStatus", "Only pending listings can be moderated")
		return
	}

	var input ModerateListingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	newStatus := models.ListingStatusDeclined
	if input.Approve {
		newStatus = models.ListingStatusApproved
	}

	before := property.ListingStatus
	if err := storage.DB.Model(property).Update("listing_status", newStatus).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	property.ListingStatus = newStatus

	utils.Audit(ctx, "property.moderate", "property", property.ID,
		iris.Map{"listingStatus": before}, iris.Map{"listingStatus": newStatus, "reason": input.Reason})

	services.NewDispatcher().ListingModerated(property, input.Approve, input.Reason)

	utils.Respond(ctx, iris.StatusOK, "Listing moderated", property)
}

// AdminListReviews serves the review moderation queue; defaults to PENDING.
func AdminListReviews(ctx iris.Context) {
	page, perPage, offset := pagination(ctx)

	status := ctx.URLParamDefault("status", models.ReviewStatusPending)
	query := storage.DB.Model(&models.PropertyReview{}).Where("status = ?", status)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var reviews []models.PropertyReview
	if err := query.Preload("User").Order("created_at ASC").
		Offset(offset).Limit(perPage).Find(&reviews).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.RespondPage(ctx, "Reviews", reviews, page, perPage, total)
}

type ModerateReviewInput struct {
	Approve bool `json:"approve"`
}

func AdminModerateReview(ctx iris.Context) {
	reviewID, ok := paramUint(ctx, "id")
	if !ok {
		return
	}

	var review models.PropertyReview
	result := storage.DB.Limit(1).Find(&review, reviewID)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}
	if review.Status != models.ReviewStatusPending {
		utils.CreateFieldError(ctx, "status", "Only pending reviews can be moderated")
		return
	}

	var input ModerateReviewInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	newStatus := models.ReviewStatusRejected
	if input.Approve {
		newStatus = models.ReviewStatusApproved
	}

	before := review.Status
	if err := storage.DB.Model(&review).Update("status", newStatus).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	review.Status = newStatus

	utils.Audit(ctx, "review.moderate", "review", review.ID,
		iris.Map{"status": before}, iris.Map{"status": newStatus})

	services.NewDispatcher().ReviewModerated(&review, input.Approve)

	utils.Respond(ctx, iris.StatusOK, "Review moderated", review)
}

// AdminVerifyDocument marks a property document as verified.
func AdminVerifyDocument(ctx iris.Context) {
	documentID, ok := paramUint(ctx, "id")
	if !ok {
		return
	}

	var document models.PropertyDocument
	result := storage.DB.Limit(1).Find(&document, documentID)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	adminID := utils.ContextUserID(ctx)
	if err := storage.DB.Model(&document).Updates(map[string]interface{}{
		"is_verified":    true,
		"verified_by_id": adminID,
	}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "document.verify", "property_document", document.ID, nil,
		iris.Map{"isVerified": true})

	utils.Respond(ctx, iris.StatusOK, "Document verified", document)
}

// AdminListOfflinePayments lists offline transactions awaiting verification.
func AdminListOfflinePayments(ctx iris.Context) {
	page, perPage, offset := pagination(ctx)

	query := storage.DB.Model(&models.Transaction{}).
		Where("payment_method = ? AND status = ? AND needs_verification = ?",
			models.PaymentMethodOffline, models.TransactionPending, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var transactions []models.Transaction
	if err := query.Preload("User").Preload("Property").Order("created_at ASC").
		Offset(offset).Limit(perPage).Find(&transactions).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.RespondPage(ctx, "Offline payments awaiting verification", transactions, page, perPage, total)
}

type VerifyOfflinePaymentInput struct {
	Approve bool `json:"approve"`
}

// AdminVerifyOfflinePayment is the only path that advances an offline
// transaction out of PENDING.
func AdminVerifyOfflinePayment(ctx iris.Context) {
	transactionID, ok := paramUint(ctx, "id")
	if !ok {
		return
	}

	var txn models.Transaction
	result := storage.DB.Limit(1).Find(&txn, transactionID)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}
	if txn.PaymentMethod != models.PaymentMethodOffline {
		utils.CreateFieldError(ctx, "id", "Only offline payments are verified here")
		return
	}
	if txn.Status != models.TransactionPending {
		utils.CreateFieldError(ctx, "status", "This payment has already been resolved")
		return
	}

	var input VerifyOfflinePaymentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	adminID := utils.ContextUserID(ctx)

	var property models.Property
	if err := storage.DB.First(&property, txn.PropertyID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if input.Approve {
		if err := services.ApplySuccessfulPayment(storage.DB, &txn, ""); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	} else {
		if err := services.MarkPaymentFailed(storage.DB, &txn); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	now := time.Now()
	storage.DB.Model(&txn).Updates(map[string]interface{}{
		"verified_by_id":     adminID,
		"verified_at":        &now,
		"needs_verification": false,
	})

	utils.Audit(ctx, "transaction.verify_offline", "transaction", txn.ID,
		iris.Map{"status": models.TransactionPending}, iris.Map{"status": txn.Status, "approve": input.Approve})

	services.NewDispatcher().PaymentVerified(&txn, &property, input.Approve)

	utils.Respond(ctx, iris.StatusOK, "Offline payment resolved", txn)
}

// AdminListMeetings serves all survey meetings, optionally by status.
func AdminListMeetings(ctx iris.Context) {
	page, perPage, offset := pagination(ctx)

	query := storage.DB.Model(&models.PropertySurveyMeeting{})
	if status := ctx.URLParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var meetings []models.PropertySurveyMeeting
	if err := query.Preload("User").Preload("Property").Order("scheduled_at ASC").
		Offset(offset).Limit(perPage).Find(&meetings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.RespondPage(ctx, "Survey meetings", meetings, page, perPage, total)
}

type UpdateMeetingInput struct {
	Status          string `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
	AssignedAgentID *uint  `json:"assignedAgentID"`
}

// AdminUpdateMeeting changes a meeting's status and/or assigns an agent.
func AdminUpdateMeeting(ctx iris.Context) {
	meetingID, ok := paramUint(ctx, "id")
	if !ok {
		return
	}

	var meeting models.PropertySurveyMeeting
	result := storage.DB.Limit(1).Find(&meeting, meetingID)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	var input UpdateMeetingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.Status != "" {
		updates["status"] = input.Status
	}
	if input.AssignedAgentID != nil {
		var agent models.User
		agentRes := storage.DB.Where("role = ?", models.RoleAgent).Limit(1).Find(&agent, *input.AssignedAgentID)
		if agentRes.Error != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		if agentRes.RowsAffected == 0 {
			utils.CreateFieldError(ctx, "assignedAgentID", "No agent with this id")
			return
		}
		updates["assigned_agent_id"] = *input.AssignedAgentID
	}
	if len(updates) == 0 {
		utils.CreateFieldError(ctx, "status", "Nothing to update")
		return
	}

	if err := storage.DB.Model(&meeting).Updates(updates).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if input.Status != "" {
		meeting.Status = input.Status
	}
	if input.AssignedAgentID != nil {
		meeting.AssignedAgentID = input.AssignedAgentID
	}

	utils.Audit(ctx, "meeting.update", "survey_meeting", meeting.ID, nil, updates)

	var property models.Property
	if storage.DB.First(&property, meeting.PropertyID).Error == nil {
		services.NewDispatcher().MeetingUpdated(&meeting, &property)
	}

	utils.Respond(ctx, iris.StatusOK, "Meeting updated", meeting)
}
