package routes

import (
	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/storage"
	"github.com/Shielded-Bit/QABA-sub000/utils"

	"github.com/kataras/iris/v12"
)

// ToggleFavorite adds the property to the caller's favorites, or removes it
// if already present.
func ToggleFavorite(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	property := getPropertyOrNotFound(ctx)
	if property == nil {
		return
	}

	var favorite models.Favorite
	result := storage.DB.Where("user_id = ? AND property_id = ?", user.ID, property.ID).
		Limit(1).Find(&favorite)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if result.RowsAffected > 0 {
		if err := storage.DB.Unscoped().Delete(&favorite).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
		utils.Respond(ctx, iris.StatusOK, "Removed from favorites", iris.Map{"favorited": false})
		return
	}

	favorite = models.Favorite{UserID: user.ID, PropertyID: property.ID}
	if err := storage.DB.Create(&favorite).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Added to favorites", iris.Map{"favorited": true})
}

func ListFavorites(ctx iris.Context) {
	user := currentUser(ctx)
	if user == nil {
		return
	}

	var favorites []models.Favorite
	if err := storage.DB.Preload("Property").Preload("Property.Images").
		Where("user_id = ?", user.ID).Order("created_at DESC").
		Find(&favorites).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Respond(ctx, iris.StatusOK, "Favorites", favorites)
}
