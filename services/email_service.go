package services

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"rideboard-api/config"
)

// EmailService sends match digest emails over authenticated SMTP.
type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
}

func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)

	return &EmailService{
		config: cfg,
		dialer: dialer,
	}
}

// SendMatchDigest emails a subscriber the current match set for a route
// and date. The caller treats any returned error as non-fatal.
func (es *EmailService) SendMatchDigest(toEmail, toName string, origin, destination, date string, matches []ScoredTrip) error {
	if es.config.SMTPHost == "" {
		return errors.New("mail is not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("New ride matches: %s → %s on %s", origin, destination, date))

	var rows strings.Builder
	var lines strings.Builder
	for _, match := range matches {
		rows.WriteString(fmt.Sprintf(`
            <tr>
                <td>%s</td>
                <td>%s → %s</td>
                <td>%s–%s</td>
                <td>$%.0f–$%.0f</td>
                <td>%d</td>
                <td>%s</td>
            </tr>`,
			match.Name, match.Origin, match.Destination,
			match.TimeFrom, match.TimeTo,
			match.PriceMin, match.PriceMax,
			match.Bags, match.Contact))

		lines.WriteString(fmt.Sprintf("- %s · %s → %s · %s–%s · $%.0f–$%.0f · contact: %s\n",
			match.Name, match.Origin, match.Destination,
			match.TimeFrom, match.TimeTo,
			match.PriceMin, match.PriceMax, match.Contact))
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Ride Matches</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { text-align: center; background: #007bff; color: white; padding: 20px; border-radius: 10px 10px 0 0; }
        .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
        table { width: 100%%; border-collapse: collapse; margin: 20px 0; }
        th, td { padding: 8px; border-bottom: 1px solid #dee2e6; text-align: left; }
        th { background: #e9ecef; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🚗 RideBoard</h1>
            <p>New trips on your route</p>
        </div>
        <div class="content">
            <h2>Hello %s!</h2>
            <p>Someone just posted a trip matching your route <strong>%s → %s</strong> on <strong>%s</strong>. Here is the current match list:</p>
            <table>
                <tr><th>Name</th><th>Route</th><th>Time</th><th>Price</th><th>Bags</th><th>Contact</th></tr>%s
            </table>
            <p>Reach out directly using the contact shown. RideBoard does not broker the ride.</p>
            <p>Safe travels!</p>
        </div>
        <div class="footer">
            <p>You received this because your post has match notifications enabled.</p>
            <p>This is an automated email, please do not reply.</p>
        </div>
    </div>
</body>
</html>`, toName, origin, destination, date, rows.String())

	textBody := fmt.Sprintf(`Hello %s!

Someone just posted a trip matching your route %s → %s on %s.

Current matches:
%s
Reach out directly using the contact shown. RideBoard does not broker the ride.

You received this because your post has match notifications enabled.
This is an automated email, please do not reply.
`, toName, origin, destination, date, lines.String())

	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send match digest: %w", err)
	}

	return nil
}
