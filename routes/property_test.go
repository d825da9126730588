package routes

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/storage"

	"github.com/kataras/iris/v12"
)

func saleListingBody() iris.Map {
	return iris.Map{
		"name":         "4 Bedroom Duplex, Ikoyi",
		"propertyType": "duplex",
		"listingType":  "SALE",
		"city":         "Lagos",
		"salePrice":    100000,
	}
}

func TestCreatePropertyRejectsClientRole(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()
	client := createTestUser(t, "client@example.com", models.RoleClient)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/property",
		signTestToken(t, client.ID, client.Role), saleListingBody())
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for client role, got %d (body %s)", resp.Code, resp.Body.String())
	}
}

func TestCreatePropertyComputesFeesServerSide(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()
	agent := createTestUser(t, "agent@example.com", models.RoleAgent)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/property",
		signTestToken(t, agent.ID, agent.Role), saleListingBody())
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body %s)", resp.Code, resp.Body.String())
	}

	var property models.Property
	if err := storage.DB.Where("lister_id = ?", agent.ID).First(&property).Error; err != nil {
		t.Fatalf("load created listing: %v", err)
	}
	// 5% platform fee, 10% agent commission on a 100000 sale
	if property.QabaFee != 5000 {
		t.Errorf("qaba fee = %v, want 5000", property.QabaFee)
	}
	if property.AgentCommission != 10000 {
		t.Errorf("agent commission = %v, want 10000", property.AgentCommission)
	}
	if property.TotalPrice != 115000 {
		t.Errorf("total price = %v, want 115000", property.TotalPrice)
	}
	if property.ListingStatus != models.ListingStatusDraft {
		t.Errorf("listing status = %q, want DRAFT", property.ListingStatus)
	}
}

func TestCreatePropertyNoCommissionForLandlord(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()
	landlord := createTestUser(t, "landlord@example.com", models.RoleLandlord)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/property",
		signTestToken(t, landlord.ID, landlord.Role), saleListingBody())
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body %s)", resp.Code, resp.Body.String())
	}

	var property models.Property
	if err := storage.DB.Where("lister_id = ?", landlord.ID).First(&property).Error; err != nil {
		t.Fatalf("load created listing: %v", err)
	}
	if property.AgentCommission != 0 {
		t.Errorf("agent commission = %v, want 0 for landlord lister", property.AgentCommission)
	}
	if property.TotalPrice != 105000 {
		t.Errorf("total price = %v, want 105000", property.TotalPrice)
	}
}

func TestCreatePropertyRejectsTamperedTotal(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()
	agent := createTestUser(t, "agent@example.com", models.RoleAgent)

	body := saleListingBody()
	body["totalPrice"] = 100001 // disagrees with the server-side recomputation

	resp := doJSON(t, app, http.MethodPost, "/api/v1/property",
		signTestToken(t, agent.ID, agent.Role), body)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for tampered total, got %d", resp.Code)
	}

	var count int64
	storage.DB.Model(&models.Property{}).Count(&count)
	if count != 0 {
		t.Errorf("no listing should be created on a rejected total, found %d", count)
	}
}

func TestCreatePropertyRentRequiresFrequency(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()
	agent := createTestUser(t, "agent@example.com", models.RoleAgent)

	body := iris.Map{
		"name":         "Studio Flat, Yaba",
		"propertyType": "apartment",
		"listingType":  "RENT",
		"city":         "Lagos",
		"rentPrice":    1500,
		// rentFrequency missing
	}
	resp := doJSON(t, app, http.MethodPost, "/api/v1/property",
		signTestToken(t, agent.ID, agent.Role), body)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when rentFrequency is missing, got %d", resp.Code)
	}
}

func TestCreatePropertyRejectsMixedPricing(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()
	agent := createTestUser(t, "agent@example.com", models.RoleAgent)

	body := saleListingBody()
	body["rentPrice"] = 500

	resp := doJSON(t, app, http.MethodPost, "/api/v1/property",
		signTestToken(t, agent.ID, agent.Role), body)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for rent fields on a SALE listing, got %d", resp.Code)
	}
}

func TestSubmitForReviewAndModeration(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()
	agent := createTestUser(t, "agent@example.com", models.RoleAgent)
	admin := createTestUser(t, "admin@example.com", models.RoleAdmin)
	property := createTestProperty(t, agent.ID, models.ListingTypeSale, models.ListingStatusDraft)

	agentToken := signTestToken(t, agent.ID, agent.Role)

	resp := doJSON(t, app, http.MethodPost,
		"/api/v1/property/"+uintStr(property.ID)+"/submit", agentToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d (body %s)", resp.Code, resp.Body.String())
	}

	// Resubmitting a pending listing is rejected
	resp = doJSON(t, app, http.MethodPost,
		"/api/v1/property/"+uintStr(property.ID)+"/submit", agentToken, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("resubmit: expected 400, got %d", resp.Code)
	}

	// A non-admin cannot moderate
	resp = doJSON(t, app, http.MethodPost,
		"/api/v1/admin/properties/"+uintStr(property.ID)+"/moderate", agentToken,
		iris.Map{"approve": true})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("moderate as agent: expected 403, got %d", resp.Code)
	}

	resp = doJSON(t, app, http.MethodPost,
		"/api/v1/admin/properties/"+uintStr(property.ID)+"/moderate",
		signTestToken(t, admin.ID, admin.Role), iris.Map{"approve": true})
	if resp.Code != http.StatusOK {
		t.Fatalf("moderate as admin: expected 200, got %d (body %s)", resp.Code, resp.Body.String())
	}

	var reloaded models.Property
	storage.DB.First(&reloaded, property.ID)
	if reloaded.ListingStatus != models.ListingStatusApproved {
		t.Errorf("listing status = %q, want APPROVED", reloaded.ListingStatus)
	}

	// The lister is told about the approval
	var note models.Notification
	if err := storage.DB.Where("user_id = ? AND type = ?",
		agent.ID, models.NotificationListingApproved).First(&note).Error; err != nil {
		t.Errorf("expected an approval notification for the lister: %v", err)
	}
}

func TestPublicListingsOnlyShowApproved(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()
	agent := createTestUser(t, "agent@example.com", models.RoleAgent)
	createTestProperty(t, agent.ID, models.ListingTypeSale, models.ListingStatusDraft)
	approved := createTestProperty(t, agent.ID, models.ListingTypeSale, models.ListingStatusApproved)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/property", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	envelope := decodeEnvelope(t, resp)
	data, ok := envelope.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data shape: %T", envelope.Data)
	}
	items, ok := data["items"].([]interface{})
	if !ok || len(items) != 1 {
		t.Fatalf("expected exactly 1 public listing, got %v", data["items"])
	}
	first := items[0].(map[string]interface{})
	if uint(first["ID"].(float64)) != approved.ID {
		t.Errorf("public listing id = %v, want %d", first["ID"], approved.ID)
	}
}

func uintStr(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
