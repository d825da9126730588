package routes

import (
	"time"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/storage"
	"github.com/Shielded-Bit/QABA-sub000/utils"

	"github.com/kataras/iris/v12"
)

func ListMyNotifications(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	page, perPage, offset := pagination(ctx)

	query := storage.DB.Model(&models.Notification{}).Where("user_id = ?", user.ID)
	if ctx.URLParam("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Offset(offset).Limit(perPage).
		Find(&notifications).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.RespondPage(ctx, "Notifications", notifications, page, perPage, total)
}

func MarkNotificationRead(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}
	notificationID, ok := paramUint(ctx, "id")
	if !ok {
		return
	}

	var notification models.Notification
	result := storage.DB.Where("id = ? AND user_id = ?", notificationID, user.ID).
		Limit(1).Find(&notification)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	now := time.Now()
	if err := storage.DB.Model(&notification).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Notification marked as read", nil)
}

func MarkAllNotificationsRead(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	now := time.Now()
	if err := storage.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "All notifications marked as read", nil)
}
