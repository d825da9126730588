package routes

import (
	"errors"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/services"
	"github.com/Shielded-Bit/QABA-sub000/storage"
	"github.com/Shielded-Bit/QABA-sub000/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type CreateReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// CreateReview accepts one review per (reviewer, property) on the listing
// addressed by the request path; the lister can never review their own
// listing. New reviews await moderation.
func CreateReview(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	property := getPropertyOrNotFound(ctx)
	if property == nil {
		return
	}

	var input CreateReviewInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if property.ListerID == user.ID {
		utils.CreateFieldError(ctx, "propertyID", "You cannot review your own listing")
		return
	}

	var existing models.PropertyReview
	dup := storage.DB.Where("user_id = ? AND property_id = ?", user.ID, property.ID).
		Limit(1).Find(&existing)
	if dup.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if dup.RowsAffected > 0 {
		utils.CreateFieldError(ctx, "propertyID", "You have already reviewed this listing")
		return
	}

	review := models.PropertyReview{
		UserID:     user.ID,
		PropertyID: property.ID,
		Rating:     input.Rating,
		Comment:    input.Comment,
		Status:     models.ReviewStatusPending,
	}
	if err := storage.DB.Create(&review).Error; err != nil {
		// The unique index is the last line of defense against a concurrent
		// duplicate submission.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.CreateFieldError(ctx, "propertyID", "You have already reviewed this listing")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	services.NewDispatcher().ReviewSubmitted(&review, property)

	utils.Respond(ctx, iris.StatusCreated, "Review submitted for moderation", review)
}

// ListPropertyReviews returns the approved reviews of a listing.
func ListPropertyReviews(ctx iris.Context) {
	property := getPropertyOrNotFound(ctx)
	if property == nil {
		return
	}

	var reviews []models.PropertyReview
	if err := storage.DB.Preload("User").
		Where("property_id = ? AND status = ?", property.ID, models.ReviewStatusApproved).
		Order("created_at DESC").Find(&reviews).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Reviews", reviews)
}

// GetMyReviews returns every review the caller has written, in any status.
func GetMyReviews(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	var reviews []models.PropertyReview
	if err := storage.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").Find(&reviews).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Your reviews", reviews)
}

func DeleteReview(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}
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
	if review.UserID != user.ID && !user.IsStaff() {
		utils.CreateForbidden(ctx)
		return
	}

	if err := storage.DB.Delete(&review).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Review deleted", nil)
}
