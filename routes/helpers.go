package routes

import (
	"strconv"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/storage"
	"github.com/Shielded-Bit/QABA-sub000/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// currentUser loads the authenticated user placed in context by the auth
// middleware. Writes a 401 and returns nil when the lookup fails.
func currentUser(ctx iris.Context) *models.User {
	id := utils.ContextUserID(ctx)
	if id == 0 {
		utils.CreateUnauthorized(ctx)
		return nil
	}
	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.CreateUnauthorized(ctx)
		return nil
	}
	return &user
}

// jwtmiddlewareClaims extracts password-reset claims from the verified token.
func jwtmiddlewareClaims(ctx iris.Context) *utils.ForgotPasswordToken {
	if tok := jwt.Get(ctx); tok != nil {
		if claims, ok := tok.(*utils.ForgotPasswordToken); ok {
			return claims
		}
	}
	return nil
}

// paramUint parses a numeric path parameter, writing a 400 on failure.
func paramUint(ctx iris.Context, name string) (uint, bool) {
	raw := ctx.Params().Get(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		utils.CreateFieldError(ctx, name, "must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// getPropertyOrNotFound loads a property by path id.
func getPropertyOrNotFound(ctx iris.Context) *models.Property {
	id, ok := paramUint(ctx, "id")
	if !ok {
		return nil
	}
	var property models.Property
	result := storage.DB.Limit(1).Find(&property, id)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil
	}
	if result.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil
	}
	return &property
}

// pagination reads ?page and ?per_page with sane bounds.
func pagination(ctx iris.Context) (page, perPage int, offset int) {
	page = ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	perPage = ctx.URLParamIntDefault("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage, (page - 1) * perPage
}
