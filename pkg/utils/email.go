package utils

import (
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"github.com/ridepool/ridepool-backend/internal/models"
)

const companyName = "RidePool"

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; color: #333333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .banner { background-color: #1a73e8; color: #ffffff; padding: 16px; font-size: 20px; }
  .content { padding: 16px; }
  .footer { color: #888888; font-size: 12px; padding: 16px; }
</style>
</head>
<body>
<div class="container">
<div class="banner">` + companyName + `</div>
<div class="content">
`

const emailFooter = `
</div>
<div class="footer">This is an automated message from ` + companyName + `. Please do not reply.</div>
</div>
</body>
</html>
`

// Mailer sends notification emails over SMTP. It is the transport behind the
// notification sink; callers must treat every send as best-effort.
type Mailer struct {
	from     string
	password string
	host     string
	port     string
}

// NewMailerFromEnv builds a Mailer from EMAIL_FROM, EMAIL_PASSWORD, SMTP_HOST
// and SMTP_PORT.
func NewMailerFromEnv() *Mailer {
	return &Mailer{
		from:     os.Getenv("EMAIL_FROM"),
		password: os.Getenv("EMAIL_PASSWORD"),
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
	}
}

func (m *Mailer) send(to []string, subject, body string) error {
	if m.from == "" || m.password == "" || m.host == "" || m.port == "" {
		return fmt.Errorf("email configuration not set")
	}

	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", companyName, m.from)
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	auth := smtp.PlainAuth("", m.from, m.password, m.host)
	return smtp.SendMail(m.host+":"+m.port, auth, m.from, to, []byte(message))
}

// bookingRecipient falls back to a placeholder domain when the contact field
// holds a phone number instead of an email address.
func bookingRecipient(contact string) string {
	if strings.Contains(contact, "@") {
		return contact
	}
	return contact + "@sms-gateway.invalid"
}

func (m *Mailer) SendWelcome(user *models.User) error {
	subject := "Welcome to " + companyName + "!"
	body := emailHeader + fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account has been created. You can now post rides, join rides
		and book travel slots.</p>
	`, user.Name) + emailFooter
	return m.send([]string{user.Email}, subject, body)
}

func (m *Mailer) SendBookingConfirmation(booking *models.Booking) error {
	subject := fmt.Sprintf("Booking Confirmed - %s #%d", companyName, booking.ID)
	body := emailHeader + fmt.Sprintf(`
		<h2>Your booking is confirmed</h2>
		<p><strong>Passenger:</strong> %s</p>
		<p><strong>From:</strong> %s</p>
		<p><strong>To:</strong> %s</p>
		<p><strong>Date:</strong> %s at %s</p>
		<p><strong>Passengers:</strong> %d</p>
		<p>You can cancel free of charge up to 2 hours before travel.</p>
	`, booking.Name, booking.Location, booking.Destination,
		booking.TravelDate.Format("2006-01-02"), booking.TravelTime, booking.Passengers) + emailFooter
	return m.send([]string{bookingRecipient(booking.Contact)}, subject, body)
}

func (m *Mailer) SendBookingCancellation(booking *models.Booking) error {
	subject := fmt.Sprintf("Booking Cancelled - %s #%d", companyName, booking.ID)
	body := emailHeader + fmt.Sprintf(`
		<h2>Your booking has been cancelled</h2>
		<p>Booking #%d from %s to %s on %s at %s has been cancelled.</p>
	`, booking.ID, booking.Location, booking.Destination,
		booking.TravelDate.Format("2006-01-02"), booking.TravelTime) + emailFooter
	return m.send([]string{bookingRecipient(booking.Contact)}, subject, body)
}

func (m *Mailer) SendAdminBookingNotification(adminEmail string, booking *models.Booking) error {
	subject := fmt.Sprintf("New Booking Received - %s #%d", companyName, booking.ID)
	body := emailHeader + fmt.Sprintf(`
		<h2>New booking</h2>
		<p><strong>Passenger:</strong> %s (%s)</p>
		<p><strong>From:</strong> %s</p>
		<p><strong>To:</strong> %s</p>
		<p><strong>Date:</strong> %s at %s</p>
		<p><strong>Passengers:</strong> %d</p>
	`, booking.Name, booking.Contact, booking.Location, booking.Destination,
		booking.TravelDate.Format("2006-01-02"), booking.TravelTime, booking.Passengers) + emailFooter
	return m.send([]string{adminEmail}, subject, body)
}

func (m *Mailer) SendRideJoinNotification(driverEmail string, ride *models.Ride, joiningUser *models.User) error {
	subject := "New Passenger Joined Your Ride - " + companyName
	body := emailHeader + fmt.Sprintf(`
		<h2>Someone joined your ride</h2>
		<p><strong>%s</strong> joined your ride from %s to %s.</p>
		<p>Contact them at %s to coordinate.</p>
	`, joiningUser.Name, ride.Origin, ride.Destination, joiningUser.Contact) + emailFooter
	return m.send([]string{driverEmail}, subject, body)
}
