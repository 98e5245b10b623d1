// Package notify emails students about enrollments and certificates.
package notify

import (
	"academy/models"
	"fmt"
	"html"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Sender delivers one HTML email.
type Sender interface {
	Send(toName, toEmail, subject, htmlBody string) error
}

// Mailer builds notification emails and sends them in the background.
type Mailer struct {
	sender    Sender
	publicURL string
	brand     string
	log       *zap.Logger
	// async sends run on their own goroutine.
	async bool
}

// New returns a Mailer backed by SendGrid, or one that only logs when apiKey
// is empty.
func New(apiKey, fromEmail, fromName, publicURL string, log *zap.Logger) *Mailer {
	var sender Sender = logSender{log: log}
	if apiKey != "" {
		sender = &sendGridSender{client: sendgrid.NewSendClient(apiKey), from: mail.NewEmail(fromName, fromEmail)}
	}
	return &Mailer{sender: sender, publicURL: publicURL, brand: fromName, log: log, async: true}
}

// NewWithSender is used when the caller supplies its own transport.
func NewWithSender(sender Sender, brand, publicURL string, log *zap.Logger) *Mailer {
	return &Mailer{sender: sender, publicURL: publicURL, brand: brand, log: log}
}

// EnrollmentConfirmed tells the student they are enrolled.
func (m *Mailer) EnrollmentConfirmed(student models.User, course models.Course) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are now enrolled in <strong>%s</strong>.</p>
		<div class="info-box">
			<strong>Next Steps:</strong> Work through the course material, then take the final exam from your dashboard.
		</div>
		<a class="btn" href="%s/student/dashboard">Go to dashboard</a>
	`, html.EscapeString(student.FirstName), html.EscapeString(course.Name), m.publicURL)

	m.dispatch(student, "Enrollment Confirmed: "+course.Name, m.template("Enrollment Confirmed", body))
}

// CertificateIssued tells the student their certificate is ready.
func (m *Mailer) CertificateIssued(student models.User, course models.Course, cert models.Certificate) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations on completing <strong>%s</strong>.</p>
		<div class="info-box">
			Certificate number: <strong>%s</strong><br>
			Completion date: %s
		</div>
		<a class="btn" href="%s/api/certificates/download/%d">Download certificate</a>
	`, html.EscapeString(student.FirstName), html.EscapeString(course.Name),
		cert.CertificateNumber, cert.CompletionDate.Format("01/02/2006"), m.publicURL, cert.ID)

	m.dispatch(student, "Your certificate for "+course.Name, m.template("Certificate Issued", body))
}

func (m *Mailer) dispatch(to models.User, subject, body string) {
	send := func() {
		if err := m.sender.Send(to.FullName(), to.Email, subject, body); err != nil {
			m.log.Warn("email not sent", zap.String("to", to.Email), zap.String("subject", subject), zap.Error(err))
		}
	}
	if m.async {
		go send()
		return
	}
	send()
}

func (m *Mailer) template(title, content string) string {
	brand := html.EscapeString(m.brand)
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1B2A4A; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 22px; }
			.content { padding: 40px 30px; color: #1B2A4A; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #B8860B; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #EEF2F8; padding: 15px; border-radius: 4px; border-left: 4px solid #B8860B; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">You received this email because you have an account with %s.</div>
		</div>
	</body>
	</html>
	`, brand, title, content, brand)
}

type sendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

func (s *sendGridSender) Send(toName, toEmail, subject, htmlBody string) error {
	msg := mail.NewSingleEmail(s.from, subject, mail.NewEmail(toName, toEmail), "", htmlBody)
	resp, err := s.client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

type logSender struct{ log *zap.Logger }

func (l logSender) Send(_, toEmail, subject, _ string) error {
	l.log.Info("email skipped, no SendGrid key", zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}
