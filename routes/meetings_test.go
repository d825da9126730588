package routes

import (
	"net/http"
	"testing"
	"time"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/storage"

	"github.com/kataras/iris/v12"
)

// nextBusinessSlot returns a time a few days out that falls inside the
// bookable window.
func nextBusinessSlot() time.Time {
	at := time.Now().AddDate(0, 0, 3)
	return time.Date(at.Year(), at.Month(), at.Day(), 11, 0, 0, 0, time.Local)
}

func TestScheduleMeetingFlow(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()

	agent := createTestUser(t, "agent@example.com", models.RoleAgent)
	client := createTestUser(t, "client@example.com", models.RoleClient)
	property := createTestProperty(t, agent.ID, models.ListingTypeSale, models.ListingStatusApproved)

	clientToken := signTestToken(t, client.ID, client.Role)
	body := iris.Map{
		"scheduledAt": nextBusinessSlot().Format(time.RFC3339),
		"note":        "Prefer a morning visit.",
	}

	resp := doJSON(t, app, http.MethodPost,
		"/api/v1/property/"+uintStr(property.ID)+"/meetings", clientToken, body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body %s)", resp.Code, resp.Body.String())
	}

	// A second active meeting for the same listing is rejected
	resp = doJSON(t, app, http.MethodPost,
		"/api/v1/property/"+uintStr(property.ID)+"/meetings", clientToken, body)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("duplicate meeting: expected 400, got %d", resp.Code)
	}

	var meeting models.PropertySurveyMeeting
	if err := storage.DB.Where("user_id = ?", client.ID).First(&meeting).Error; err != nil {
		t.Fatalf("load meeting: %v", err)
	}

	resp = doJSON(t, app, http.MethodPost,
		"/api/v1/meetings/"+uintStr(meeting.ID)+"/cancel", clientToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d (body %s)", resp.Code, resp.Body.String())
	}

	storage.DB.First(&meeting, meeting.ID)
	if meeting.Status != models.MeetingStatusCancelled {
		t.Errorf("meeting status = %q, want CANCELLED", meeting.Status)
	}

	// After cancellation a new booking is allowed again
	resp = doJSON(t, app, http.MethodPost,
		"/api/v1/property/"+uintStr(property.ID)+"/meetings", clientToken, body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("rebook after cancel: expected 201, got %d", resp.Code)
	}
}

func TestScheduleMeetingValidatesTime(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()

	agent := createTestUser(t, "agent@example.com", models.RoleAgent)
	client := createTestUser(t, "client@example.com", models.RoleClient)
	property := createTestProperty(t, agent.ID, models.ListingTypeSale, models.ListingStatusApproved)

	clientToken := signTestToken(t, client.ID, client.Role)

	cases := []struct {
		name string
		at   time.Time
	}{
		{"past", time.Now().AddDate(0, 0, -1)},
		{"beyond horizon", time.Now().AddDate(0, 0, 120)},
		{"outside business hours", func() time.Time {
			at := time.Now().AddDate(0, 0, 3)
			return time.Date(at.Year(), at.Month(), at.Day(), 22, 0, 0, 0, time.Local)
		}()},
	}

	for _, tc := range cases {
		resp := doJSON(t, app, http.MethodPost,
			"/api/v1/property/"+uintStr(property.ID)+"/meetings", clientToken,
			iris.Map{"scheduledAt": tc.at.Format(time.RFC3339)})
		if resp.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, resp.Code)
		}
	}
}

func TestScheduleMeetingTargetsPathListing(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()

	agent := createTestUser(t, "agent@example.com", models.RoleAgent)
	client := createTestUser(t, "client@example.com", models.RoleClient)
	target := createTestProperty(t, agent.ID, models.ListingTypeSale, models.ListingStatusApproved)
	other := createTestProperty(t, agent.ID, models.ListingTypeSale, models.ListingStatusApproved)

	// A propertyID smuggled into the body must not redirect the booking.
	resp := doJSON(t, app, http.MethodPost,
		"/api/v1/property/"+uintStr(target.ID)+"/meetings",
		signTestToken(t, client.ID, client.Role),
		iris.Map{"propertyID": other.ID, "scheduledAt": nextBusinessSlot().Format(time.RFC3339)})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body %s)", resp.Code, resp.Body.String())
	}

	var meeting models.PropertySurveyMeeting
	if err := storage.DB.Where("user_id = ?", client.ID).First(&meeting).Error; err != nil {
		t.Fatalf("load meeting: %v", err)
	}
	if meeting.PropertyID != target.ID {
		t.Errorf("meeting landed on property %d, want the path listing %d", meeting.PropertyID, target.ID)
	}
}

func TestCancelMeetingForbidsOtherUsers(t *testing.T) {
	openTestDB(t)
	app := buildTestApp()

	agent := createTestUser(t, "agent@example.com", models.RoleAgent)
	client := createTestUser(t, "client@example.com", models.RoleClient)
	stranger := createTestUser(t, "stranger@example.com", models.RoleClient)
	property := createTestProperty(t, agent.ID, models.ListingTypeSale, models.ListingStatusApproved)

	meeting := models.PropertySurveyMeeting{
		UserID:      client.ID,
		PropertyID:  property.ID,
		ScheduledAt: nextBusinessSlot(),
		Status:      models.MeetingStatusPending,
	}
	storage.DB.Create(&meeting)

	resp := doJSON(t, app, http.MethodPost,
		"/api/v1/meetings/"+uintStr(meeting.ID)+"/cancel",
		signTestToken(t, stranger.ID, stranger.Role), nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another user's meeting, got %d", resp.Code)
	}
}
