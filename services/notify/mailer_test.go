package notify

import (
	"academy/models"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sent struct {
	to, subject, body string
}

type captureSender struct {
	msgs []sent
	err  error
}

func (c *captureSender) Send(_, toEmail, subject, htmlBody string) error {
	c.msgs = append(c.msgs, sent{to: toEmail, subject: subject, body: htmlBody})
	return c.err
}

func TestEnrollmentConfirmed(t *testing.T) {
	cs := &captureSender{}
	m := NewWithSender(cs, "Lone Star Academy", "https://academy.example.com", zap.NewNop())

	m.EnrollmentConfirmed(models.User{FirstName: "Jane", Email: "jane@example.com"}, models.Course{Name: "Level <II>"})

	require.Len(t, cs.msgs, 1)
	assert.Equal(t, "jane@example.com", cs.msgs[0].to)
	assert.Equal(t, "Enrollment Confirmed: Level <II>", cs.msgs[0].subject)
	assert.Contains(t, cs.msgs[0].body, "Level &lt;II&gt;")
	assert.Contains(t, cs.msgs[0].body, "https://academy.example.com/student/dashboard")
}

func TestCertificateIssued(t *testing.T) {
	cs := &captureSender{err: errors.New("boom")}
	m := NewWithSender(cs, "Academy", "https://academy.example.com", zap.NewNop())

	cert := models.Certificate{ID: 4, CertificateNumber: "SR-1-4", CompletionDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)}
	m.CertificateIssued(models.User{FirstName: "Jane", Email: "jane@example.com"}, models.Course{Name: "Level II"}, cert)

	require.Len(t, cs.msgs, 1)
	assert.Contains(t, cs.msgs[0].body, "SR-1-4")
	assert.Contains(t, cs.msgs[0].body, "06/02/2025")
	assert.Contains(t, cs.msgs[0].body, "/api/certificates/download/4")
}
