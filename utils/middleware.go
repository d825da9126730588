package utils

import (
	"golang.org/x/exp/slices"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// UserIDFromTokenMiddleware extracts the caller identity from the verified
// JWT and stores it in the request context.
func UserIDFromTokenMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	ctx.Values().Set("userID", claims.ID)
	ctx.Values().Set("userRole", claims.Role)
	ctx.Next()
}

// RolesMiddleware allows only the given roles through.
func RolesMiddleware(roles ...string) iris.Handler {
	return func(ctx iris.Context) {
		claims := jwt.Get(ctx).(*AccessToken)
		if !slices.Contains(roles, claims.Role) {
			CreateForbidden(ctx)
			return
		}
		ctx.Values().Set("userID", claims.ID)
		ctx.Values().Set("userRole", claims.Role)
		ctx.Next()
	}
}

// AdminOnlyMiddleware gates the admin surface.
func AdminOnlyMiddleware(ctx iris.Context) {
	claims := jwt.Get(ctx).(*AccessToken)
	if claims.Role != "admin" {
		CreateForbidden(ctx)
		return
	}
	ctx.Values().Set("userID", claims.ID)
	ctx.Values().Set("userRole", claims.Role)
	ctx.Next()
}

// ContextUserID returns the caller id placed by the middlewares above.
func ContextUserID(ctx iris.Context) uint {
	if v := ctx.Values().Get("userID"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// ContextUserRole returns the caller role placed by the middlewares above.
func ContextUserRole(ctx iris.Context) string {
	if v := ctx.Values().Get("userRole"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}
