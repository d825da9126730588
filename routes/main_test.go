package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/storage"
	"github.com/Shielded-Bit/QABA-sub000/utils"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/driver/sqlite"
)

// openTestDB points the global connection at a fresh in-memory database.
func openTestDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	if _, err := storage.Open(sqlite.Open(dsn)); err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// A client pointing nowhere: token-pair issuance tolerates Redis being
	// down, and OTP checks simply fail closed.
	if storage.Redis == nil {
		storage.Redis = redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		})
	}
}

// buildTestApp wires the routes under test behind the real JWT verifier and
// role middlewares, mirroring the production registration.
func buildTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")

	app := iris.New()
	app.Validator = validator.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	authed := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	listerOnly := utils.RolesMiddleware("agent", "landlord", "admin")

	api := app.Party("/api/v1")

	user := api.Party("/user")
	{
		user.Post("/register", Register)
		user.Post("/login", Login)
		user.Post("/verify-otp", VerifyOTP)
		user.Get("/profile", authed, utils.UserIDFromTokenMiddleware, GetProfile)
	}

	property := api.Party("/property")
	{
		property.Get("/", ListProperties)
		property.Get("/{id:uint}", GetProperty)
		property.Post("/", authed, utils.UserIDFromTokenMiddleware, listerOnly, CreateProperty)
		property.Patch("/{id:uint}", authed, utils.UserIDFromTokenMiddleware, UpdateProperty)
		property.Post("/{id:uint}/submit", authed, utils.UserIDFromTokenMiddleware, SubmitPropertyForReview)
		property.Post("/{id:uint}/reviews", authed, utils.UserIDFromTokenMiddleware, CreateReview)
		property.Get("/{id:uint}/reviews", ListPropertyReviews)
		property.Post("/{id:uint}/meetings", authed, utils.UserIDFromTokenMiddleware, ScheduleMeeting)
		property.Post("/{id:uint}/payments/offline", authed, utils.UserIDFromTokenMiddleware, InitiateOfflinePayment)
	}

	payments := api.Party("/payments")
	{
		payments.Post("/webhook", PaymentWebhook)
		payments.Post("/verify", authed, utils.UserIDFromTokenMiddleware, VerifyPayment)
		payments.Get("/history", authed, utils.UserIDFromTokenMiddleware, PaymentHistory)
	}

	meetings := api.Party("/meetings", authed, utils.UserIDFromTokenMiddleware)
	{
		meetings.Post("/{id:uint}/cancel", CancelMeeting)
	}

	admin := api.Party("/admin", authed, utils.UserIDFromTokenMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Post("/properties/{id:uint}/moderate", AdminModerateProperty)
		admin.Post("/payments/offline/{id:uint}/verify", AdminVerifyOfflinePayment)
	}

	app.Build()
	return app
}

func signTestToken(t *testing.T, id uint, role string) string {
	t.Helper()
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), time.Hour)
	token, err := signer.Sign(utils.AccessToken{ID: id, Role: role})
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return string(token)
}

func createTestUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	user := models.User{
		FirstName:     "Test",
		LastName:      "User",
		Email:         email,
		Password:      "irrelevant",
		Role:          role,
		EmailVerified: true,
	}
	if err := storage.DB.Create(&user).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return &user
}

func createTestProperty(t *testing.T, listerID uint, listingType, listingStatus string) *models.Property {
	t.Helper()
	property := models.Property{
		ListerID:       listerID,
		Name:           "3 Bedroom Apartment, Lekki",
		PropertyType:   "apartment",
		ListingType:    listingType,
		ListingStatus:  listingStatus,
		PropertyStatus: models.PropertyStatusAvailable,
		City:           "Lagos",
		Currency:       "NGN",
	}
	if listingType == models.ListingTypeRent {
		property.RentPrice = 1500
		property.RentFrequency = models.RentFrequencyYearly
		property.TotalPrice = 1575
	} else {
		property.SalePrice = 200000
		property.TotalPrice = 210000
	}
	if err := storage.DB.Create(&property).Error; err != nil {
		t.Fatalf("create test property: %v", err)
	}
	return &property
}

func doJSON(t *testing.T, app *iris.Application, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) utils.Envelope {
	t.Helper()
	var envelope utils.Envelope
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response envelope: %v (body %s)", err, resp.Body.String())
	}
	return envelope
}

func TestHTTPRequiresToken(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()

	resp := doJSON(t, app, http.MethodPost, "/api/v1/property", "", iris.Map{})
	if resp.Code == http.StatusOK || resp.Code == http.StatusCreated {
		t.Fatalf("expected rejection without token, got %d", resp.Code)
	}
}
