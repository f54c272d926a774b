// Package notify sends transactional email to newly provisioned company admins.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidEmail is returned when a welcome email is missing required fields.
var ErrInvalidEmail = errors.New("invalid welcome email")

// WelcomeEmail is the payload of the welcome notification sent to a company admin.
type WelcomeEmail struct {
	To          string
	FirstName   string
	LastName    string
	CompanyName string
	LoginURL    string
}

// Validate checks the fields every sender relies on.
func (e WelcomeEmail) Validate() error {
	if e.To == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidEmail)
	}
	return nil
}

// Receipt identifies an accepted message.
type Receipt struct {
	MessageID string    `json:"id"`
	SentAt    time.Time `json:"sent_at"`
}

// Notifier delivers welcome emails. Callers treat failures as best effort.
type Notifier interface {
	SendWelcomeEmail(ctx context.Context, email WelcomeEmail) (*Receipt, error)
}

const welcomeSubject = "Your company account has been approved"

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body>
<p>Hi {{.FirstName}} {{.LastName}},</p>
<p>The registration of <strong>{{if .CompanyName}}{{.CompanyName}}{{else}}your company{{end}}</strong> has been approved and your administrator account is ready.</p>
{{if .LoginURL}}<p><a href="{{.LoginURL}}">Sign in to the back office</a></p>{{end}}
</body>
</html>
`))

// RenderWelcome renders the HTML body of a welcome email.
func RenderWelcome(email WelcomeEmail) (string, error) {
	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, email); err != nil {
		return "", fmt.Errorf("failed to render welcome email: %w", err)
	}
	return buf.String(), nil
}

func newReceipt() *Receipt {
	return &Receipt{
		MessageID: uuid.Must(uuid.NewV7()).String(),
		SentAt:    time.Now(),
	}
}
