package utils

import (
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

// Envelope is the standard response shape for every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Errors  interface{} `json:"errors"`
}

type PageMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

func Respond(ctx iris.Context, status int, message string, data interface{}) {
	ctx.StatusCode(status)
	ctx.JSON(Envelope{Success: true, Message: message, Data: data})
}

func RespondPage(ctx iris.Context, message string, data interface{}, page, perPage int, total int64) {
	ctx.JSON(Envelope{
		Success: true,
		Message: message,
		Data: iris.Map{
			"items": data,
			"meta":  PageMeta{Page: page, PerPage: perPage, Total: total},
		},
	})
}

func CreateError(ctx iris.Context, status int, message string, errs interface{}) {
	ctx.StopWithJSON(status, Envelope{Success: false, Message: message, Errors: errs})
}

func CreateFieldError(ctx iris.Context, field, detail string) {
	CreateError(ctx, iris.StatusBadRequest, detail, iris.Map{field: detail})
}

func CreateNotFound(ctx iris.Context) {
	CreateError(ctx, iris.StatusNotFound, "Resource not found", nil)
}

func CreateForbidden(ctx iris.Context) {
	CreateError(ctx, iris.StatusForbidden, "You do not have permission to perform this action", nil)
}

func CreateUnauthorized(ctx iris.Context) {
	CreateError(ctx, iris.StatusUnauthorized, "Authentication required", nil)
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(ctx, iris.StatusInternalServerError, "Internal server error", nil)
}

// HandleValidationErrors maps go-playground validation failures to
// field-specific messages inside the envelope.
func HandleValidationErrors(err error, ctx iris.Context) {
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		out := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			out[fe.Field()] = "failed on the '" + fe.Tag() + "' rule"
		}
		CreateError(ctx, iris.StatusBadRequest, "Validation failed", out)
		return
	}
	CreateError(ctx, iris.StatusBadRequest, "Invalid request body", iris.Map{"body": err.Error()})
}
