// Package notify sends best-effort booking emails. Delivery failures are
// logged and never fail the request that triggered them.
package notify

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/servease/marketplace/config"
	"github.com/servease/marketplace/logger"
	"github.com/servease/marketplace/models"
)

type Mailer struct {
	host string
	port int
	user string
	pass string
}

// New builds a Mailer from config. Returns nil when SMTP is not configured;
// a nil Mailer silently drops every notification.
func New(cfg *config.Config) *Mailer {
	if cfg.SMTPHost == "" {
		return nil
	}
	return &Mailer{host: cfg.SMTPHost, port: cfg.SMTPPort, user: cfg.EmailUser, pass: cfg.EmailPass}
}

// BookingCreated notifies the customer that their booking was placed.
func (m *Mailer) BookingCreated(customer *models.User, b *models.Booking, serviceTitle string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your booking has been placed and is awaiting provider confirmation.</p>
		<ul>
			<li><strong>Service:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Address:</strong> %s</li>
			<li><strong>Amount:</strong> %.2f</li>
		</ul>
		<p>Best regards,<br>The Servease Team</p>
	`, customer.Name, serviceTitle, b.BookingDate.Format("2006-01-02 15:04"), b.Address, b.TotalAmount)
	m.send(customer.Email, "Booking received", body)
}

// BookingStatusChanged notifies the customer of a lifecycle change.
func (m *Mailer) BookingStatusChanged(customer *models.User, b *models.Booking) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your booking scheduled for %s is now <strong>%s</strong>.</p>
		<p>Best regards,<br>The Servease Team</p>
	`, customer.Name, b.BookingDate.Format("2006-01-02 15:04"), b.Status)
	m.send(customer.Email, "Booking "+string(b.Status), body)
}

func (m *Mailer) send(to, subject, body string) {
	if m == nil {
		return
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.user)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := d.DialAndSend(msg); err != nil {
		log := logger.Get()
		log.Warn().Err(err).Str("to", to).Str("subject", subject).Msg("email delivery failed")
	}
}
