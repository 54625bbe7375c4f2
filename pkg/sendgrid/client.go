// Package sendgrid wraps the SendGrid v3 mail API behind a small Send call.
package sendgrid

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	"github.com/sendgrid/rest"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a single-recipient transactional email.
type Message struct {
	ToEmail   string
	ToName    string
	Subject   string
	PlainText string
	HTML      string
}

type apiSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Client sends transactional email from a fixed sender.
type Client struct {
	api  apiSender
	from *mail.Email
}

// NewClient builds a client for the given API key and sender identity.
func NewClient(apiKey, fromEmail, fromName string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sendgrid api key is required")
	}
	return newClient(sg.NewSendClient(apiKey), fromEmail, fromName)
}

func newClient(api apiSender, fromEmail, fromName string) (*Client, error) {
	if strings.TrimSpace(fromEmail) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sendgrid sender email is required")
	}
	return &Client{api: api, from: mail.NewEmail(fromName, fromEmail)}, nil
}

// Send delivers msg. Any non-2xx answer is a dependency error.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.ToEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient email is required")
	}

	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	payload := mail.NewSingleEmail(c.from, msg.Subject, to, msg.PlainText, msg.HTML)

	resp, err := c.api.SendWithContext(ctx, payload)
	if err != nil {
		return pkgerrors.FromContext(err, "sendgrid request failed")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("sendgrid returned status %d", resp.StatusCode)).
			WithDetails(map[string]any{"body": resp.Body})
	}
	return nil
}
