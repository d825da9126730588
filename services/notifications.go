package services

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/Shielded-Bit/QABA-sub000/models"
	"github.com/Shielded-Bit/QABA-sub000/storage"

	"gorm.io/datatypes"
)

// Dispatcher fans out in-app notifications and best-effort emails on state
// changes. Email failures are logged and swallowed; the notification row and
// the primary state change always stand.
type Dispatcher struct{}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

func (d *Dispatcher) notify(user *models.User, ntype, title, message string, meta map[string]interface{}) {
	var metadata datatypes.JSON
	if meta != nil {
		if raw, err := json.Marshal(meta); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	row := models.Notification{
		UserID:   user.ID,
		Type:     ntype,
		Title:    title,
		Message:  message,
		Metadata: metadata,
	}
	if err := storage.DB.Create(&row).Error; err != nil {
		log.Printf("notification insert failed for user %d: %v", user.ID, err)
		return
	}

	if err := SendMail(user.Email, title, emailTemplate(title, message)); err != nil {
		log.Printf("email to %s failed: %v", user.Email, err)
	}
}

// NotifyUser looks up the recipient and delivers a single notification.
func (d *Dispatcher) NotifyUser(userID uint, ntype, title, message string, meta map[string]interface{}) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		log.Printf("notification recipient %d not found: %v", userID, err)
		return
	}
	d.notify(&user, ntype, title, message, meta)
}

// NotifyAdmins fans a notification out to every admin user.
func (d *Dispatcher) NotifyAdmins(ntype, title, message string, meta map[string]interface{}) {
	var admins []models.User
	if err := storage.DB.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
		log.Printf("admin fan-out query failed: %v", err)
		return
	}
	for i := range admins {
		d.notify(&admins[i], ntype, title, message, meta)
	}
}

func (d *Dispatcher) ListingSubmitted(property *models.Property) {
	d.NotifyAdmins(
		models.NotificationListingSubmitted,
		"Listing awaiting review",
		fmt.Sprintf("%q was submitted for review and needs approval.", property.Name),
		map[string]interface{}{"propertyId": property.ID},
	)
}

func (d *Dispatcher) ListingModerated(property *models.Property, approved bool, reason string) {
	ntype := models.NotificationListingApproved
	title := "Listing approved"
	message := fmt.Sprintf("Your listing %q has been approved and is now live.", property.Name)
	if !approved {
		ntype = models.NotificationListingDeclined
		title = "Listing declined"
		message = fmt.Sprintf("Your listing %q was declined.", property.Name)
		if reason != "" {
			message += " Reason: " + reason
		}
	}
	d.NotifyUser(property.ListerID, ntype, title, message,
		map[string]interface{}{"propertyId": property.ID})
}

func (d *Dispatcher) ReviewSubmitted(review *models.PropertyReview, property *models.Property) {
	d.NotifyAdmins(
		models.NotificationReviewSubmitted,
		"Review awaiting moderation",
		fmt.Sprintf("A new review for %q needs moderation.", property.Name),
		map[string]interface{}{"reviewId": review.ID, "propertyId": property.ID},
	)
}

func (d *Dispatcher) ReviewModerated(review *models.PropertyReview, approved bool) {
	title := "Your review was approved"
	message := "Your review has been approved and is now visible."
	if !approved {
		title = "Your review was rejected"
		message = "Your review did not meet our guidelines and was rejected."
	}
	d.NotifyUser(review.UserID, models.NotificationReviewModerated, title, message,
		map[string]interface{}{"reviewId": review.ID, "propertyId": review.PropertyID})
}

func (d *Dispatcher) OfflinePaymentSubmitted(txn *models.Transaction, property *models.Property) {
	meta := map[string]interface{}{"transactionId": txn.ID, "txRef": txn.TxRef, "propertyId": property.ID}
	d.NotifyAdmins(
		models.NotificationOfflinePayment,
		"Offline payment needs verification",
		fmt.Sprintf("An offline payment of %.2f %s for %q is awaiting verification.", txn.Amount, txn.Currency, property.Name),
		meta,
	)
	d.NotifyUser(txn.UserID,
		models.NotificationOfflinePayment,
		"Payment received",
		fmt.Sprintf("We received your payment evidence for %q. Our team will verify it shortly.", property.Name),
		meta,
	)
}

func (d *Dispatcher) PaymentVerified(txn *models.Transaction, property *models.Property, successful bool) {
	title := "Payment confirmed"
	message := fmt.Sprintf("Your payment of %.2f %s for %q has been confirmed.", txn.Amount, txn.Currency, property.Name)
	if !successful {
		title = "Payment failed"
		message = fmt.Sprintf("Your payment for %q could not be confirmed.", property.Name)
	}
	d.NotifyUser(txn.UserID, models.NotificationPaymentVerified, title, message,
		map[string]interface{}{"transactionId": txn.ID, "txRef": txn.TxRef, "propertyId": property.ID})
}

func (d *Dispatcher) MeetingScheduled(meeting *models.PropertySurveyMeeting, property *models.Property) {
	meta := map[string]interface{}{"meetingId": meeting.ID, "propertyId": property.ID}
	d.NotifyAdmins(
		models.NotificationMeetingScheduled,
		"Survey meeting requested",
		fmt.Sprintf("A survey meeting for %q was requested for %s.", property.Name, meeting.ScheduledAt.Format("Jan 2, 2006 15:04")),
		meta,
	)
	d.NotifyUser(meeting.UserID,
		models.NotificationMeetingScheduled,
		"Survey meeting requested",
		fmt.Sprintf("Your survey meeting for %q on %s is pending confirmation.", property.Name, meeting.ScheduledAt.Format("Jan 2, 2006 15:04")),
		meta,
	)
}

func (d *Dispatcher) MeetingUpdated(meeting *models.PropertySurveyMeeting, property *models.Property) {
	meta := map[string]interface{}{"meetingId": meeting.ID, "propertyId": property.ID, "status": meeting.Status}
	d.NotifyUser(meeting.UserID,
		models.NotificationMeetingUpdated,
		"Survey meeting updated",
		fmt.Sprintf("Your survey meeting for %q is now %s.", property.Name, meeting.Status),
		meta,
	)
	if meeting.AssignedAgentID != nil {
		d.NotifyUser(*meeting.AssignedAgentID,
			models.NotificationMeetingUpdated,
			"Survey meeting assigned",
			fmt.Sprintf("You have been assigned a survey meeting for %q (%s).", property.Name, meeting.Status),
			meta,
		)
	}
}

func (d *Dispatcher) JobApplicationReceived(job *models.Job, application *models.JobApplication) {
	d.NotifyAdmins(
		models.NotificationJobApplication,
		"New job application",
		fmt.Sprintf("A new application for %q has been submitted.", job.Title),
		map[string]interface{}{"jobId": job.ID, "applicationId": application.ID},
	)
}
