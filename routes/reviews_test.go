package routes

import (
	"net/http"
	"testing"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/storage"

	"github.com/kataras/iris/v12"
)

func TestCreateReviewFlow(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()

	agent := createTestUser(t, "agent@example.com", models.RoleAgent)
	reviewer := createTestUser(t, "reviewer@example.com", models.RoleClient)
	property := createTestProperty(t, agent.ID, models.ListingTypeSale, models.ListingStatusApproved)

	reviewerToken := signTestToken(t, reviewer.ID, reviewer.Role)
	body := iris.Map{"rating": 4, "comment": "Clean and as described."}

	resp := doJSON(t, app, http.MethodPost,
		"/api/v1/property/"+uintStr(property.ID)+"/reviews", reviewerToken, body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body %s)", resp.Code, resp.Body.String())
	}

	var review models.PropertyReview
	if err := storage.DB.Where("user_id = ?", reviewer.ID).First(&review).Error; err != nil {
		t.Fatalf("load review: %v", err)
	}
	if review.Status != models.ReviewStatusPending {
		t.Errorf("new review status = %q, want PENDING", review.Status)
	}

	// Second review for the same listing is rejected
	resp = doJSON(t, app, http.MethodPost,
		"/api/v1/property/"+uintStr(property.ID)+"/reviews", reviewerToken, body)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("duplicate review: expected 400, got %d", resp.Code)
	}
}

func TestCreateReviewRejectsOwnListing(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()

	agent := createTestUser(t, "agent@example.com", models.RoleAgent)
	property := createTestProperty(t, agent.ID, models.ListingTypeSale, models.ListingStatusApproved)

	resp := doJSON(t, app, http.MethodPost,
		"/api/v1/property/"+uintStr(property.ID)+"/reviews",
		signTestToken(t, agent.ID, agent.Role),
		iris.Map{"rating": 5})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a self-review, got %d", resp.Code)
	}
}

func TestCreateReviewTargetsPathListing(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()

	agent := createTestUser(t, "agent@example.com", models.RoleAgent)
	reviewer := createTestUser(t, "reviewer@example.com", models.RoleClient)
	target := createTestProperty(t, agent.ID, models.ListingTypeSale, models.ListingStatusApproved)
	other := createTestProperty(t, agent.ID, models.ListingTypeSale, models.ListingStatusApproved)

	// A propertyID smuggled into the body must not redirect the review.
	resp := doJSON(t, app, http.MethodPost,
		"/api/v1/property/"+uintStr(target.ID)+"/reviews",
		signTestToken(t, reviewer.ID, reviewer.Role),
		iris.Map{"propertyID": other.ID, "rating": 3})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body %s)", resp.Code, resp.Body.String())
	}

	var review models.PropertyReview
	if err := storage.DB.Where("user_id = ?", reviewer.ID).First(&review).Error; err != nil {
		t.Fatalf("load review: %v", err)
	}
	if review.PropertyID != target.ID {
		t.Errorf("review landed on property %d, want the path listing %d", review.PropertyID, target.ID)
	}
}

func TestPublicReviewsOnlyShowApproved(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()

	agent := createTestUser(t, "agent@example.com", models.RoleAgent)
	reviewer := createTestUser(t, "reviewer@example.com", models.RoleClient)
	property := createTestProperty(t, agent.ID, models.ListingTypeSale, models.ListingStatusApproved)

	pending := models.PropertyReview{UserID: reviewer.ID, PropertyID: property.ID, Rating: 2, Status: models.ReviewStatusPending}
	storage.DB.Create(&pending)

	resp := doJSON(t, app, http.MethodGet,
		"/api/v1/property/"+uintStr(property.ID)+"/reviews", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	envelope := decodeEnvelope(t, resp)
	reviews, ok := envelope.Data.([]interface{})
	if !ok {
		t.Fatalf("unexpected data shape: %T", envelope.Data)
	}
	if len(reviews) != 0 {
		t.Errorf("pending reviews must be hidden from the public list, got %d", len(reviews))
	}
}
