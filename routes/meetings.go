package routes

import (
	"time"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/services"
	"github.com/Shielded-Bit/QABA-sub000/storage"
	"github.com/Shielded-Bit/QABA-sub000/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Survey meetings may only be booked inside business hours and at most 90
// days ahead.
const (
	meetingOpenHour    = 9
	meetingCloseHour   = 18
	meetingHorizonDays = 90
)

type ScheduleMeetingInput struct {
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Note        string    `json:"note" validate:"max=500"`
}

func validateMeetingTime(ctx iris.Context, at time.Time) bool {
	now := time.Now()
	if !at.After(now) {
		utils.CreateFieldError(ctx, "scheduledAt", "Meeting time must be in the future")
		return false
	}
	if at.After(now.AddDate(0, 0, meetingHorizonDays)) {
		utils.CreateFieldError(ctx, "scheduledAt", "Meetings can be booked at most 90 days ahead")
		return false
	}
	hour := at.Hour()
	if hour < meetingOpenHour || hour >= meetingCloseHour {
		utils.CreateFieldError(ctx, "scheduledAt", "Meetings must fall between 09:00 and 18:00")
		return false
	}
	return true
}

// ScheduleMeeting books a survey meeting on the listing addressed by the
// request path. The duplicate-active check and the insert share one database
// transaction, re-checked under a row lock on the listing.
func ScheduleMeeting(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	property := getPropertyOrNotFound(ctx)
	if property == nil {
		return
	}

	var input ScheduleMeetingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !validateMeetingTime(ctx, input.ScheduledAt) {
		return
	}

	meeting := models.PropertySurveyMeeting{
		UserID:      user.ID,
		PropertyID:  property.ID,
		ScheduledAt: input.ScheduledAt,
		Status:      models.MeetingStatusPending,
		Note:        input.Note,
	}

	duplicate := false
	err := storage.DB.Transaction(func(tx *gorm.DB) error {
		// At READ COMMITTED two concurrent bookings can both count zero;
		// the lock on the listing row serializes them.
		var locked models.Property
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, property.ID).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.PropertySurveyMeeting{}).
			Where("user_id = ? AND property_id = ? AND status IN ?",
				user.ID, property.ID,
				[]string{models.MeetingStatusPending, models.MeetingStatusConfirmed}).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			duplicate = true
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(&meeting).Error
	})
	if err != nil {
		if duplicate {
			utils.CreateFieldError(ctx, "propertyID", "You already have an active meeting for this listing")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	services.NewDispatcher().MeetingScheduled(&meeting, property)

	utils.Respond(ctx, iris.StatusCreated, "Survey meeting requested", meeting)
}

func ListMyMeetings(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	var meetings []models.PropertySurveyMeeting
	if err := storage.DB.Preload("Property").
		Where("user_id = ?", user.ID).Order("scheduled_at DESC").
		Find(&meetings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Your meetings", meetings)
}

// CancelMeeting lets the booking client cancel an active meeting.
func CancelMeeting(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}
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
	if meeting.UserID != user.ID && !user.IsStaff() {
		utils.CreateForbidden(ctx)
		return
	}
	if !meeting.Active() {
		utils.CreateFieldError(ctx, "status", "Only pending or confirmed meetings can be cancelled")
		return
	}

	if err := storage.DB.Model(&meeting).Update("status", models.MeetingStatusCancelled).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	meeting.Status = models.MeetingStatusCancelled

	var property models.Property
	if storage.DB.First(&property, meeting.PropertyID).Error == nil {
		services.NewDispatcher().MeetingUpdated(&meeting, &property)
	}

	utils.Respond(ctx, iris.StatusOK, "Meeting cancelled", meeting)
}
