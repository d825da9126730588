package services

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// SendMail delivers a templated email over SMTP. Delivery is best-effort:
// a missing SMTP configuration logs and returns nil so notification fan-out
// never fails the primary operation.
func SendMail(to, subject, htmlBody string) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Printf("SMTP_HOST not set, skipping email to %s (%s)", to, subject)
		return nil
	}

	port := 587
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil {
			port = p
		}
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASSWORD"))
	return d.DialAndSend(m)
}

// emailTemplate wraps a message body in the shared layout.
func emailTemplate(title, body string) string {
	return fmt.Sprintf(`<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
<h2 style="color:#0a6847">%s</h2>
<p>%s</p>
<p style="color:#888;font-size:12px">Qaba &mdash; find your next home.</p>
</div>`, title, body)
}
