package contact

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/MarceloMarchiori/m3class-backend/pkg/config"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// Message is a contact-form submission forwarded to the operations inbox.
type Message struct {
	FromName  string
	FromEmail string
	Subject   string
	Body      string
}

type mailSender interface {
	Send(ctx context.Context, mail *sgmail.SGMailV3) error
}

// Service relays contact-form messages through SendGrid.
type Service interface {
	Send(ctx context.Context, msg Message) error
}

type service struct {
	sender mailSender
	cfg    config.SendgridConfig
}

// NewService builds the contact relay. The destination inbox comes from
// configuration, never from the request.
func NewService(sender mailSender, cfg config.SendgridConfig) (Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if cfg.DefaultFrom == "" {
		return nil, fmt.Errorf("sendgrid from address required")
	}
	if cfg.ContactTo == "" {
		return nil, fmt.Errorf("sendgrid contact address required")
	}
	return &service{sender: sender, cfg: cfg}, nil
}

func (s *service) Send(ctx context.Context, msg Message) error {
	msg.FromName = strings.TrimSpace(msg.FromName)
	msg.FromEmail = strings.TrimSpace(msg.FromEmail)
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Body = strings.TrimSpace(msg.Body)

	if msg.FromEmail == "" || !strings.Contains(msg.FromEmail, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "valid sender email required")
	}
	if msg.Subject == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subject required")
	}
	if msg.Body == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message body required")
	}

	mail := s.prepare(msg)
	if err := s.sender.Send(ctx, mail); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send contact email")
	}
	return nil
}

func (s *service) prepare(msg Message) *sgmail.SGMailV3 {
	personalization := sgmail.NewPersonalization()
	personalization.Subject = "[Contato] " + msg.Subject
	personalization.AddTos(sgmail.NewEmail("", s.cfg.ContactTo))

	mail := sgmail.NewV3Mail()
	mail.SetFrom(sgmail.NewEmail(msg.FromName, s.cfg.DefaultFrom))
	mail.SetReplyTo(sgmail.NewEmail(msg.FromName, msg.FromEmail))
	mail.AddPersonalizations(personalization)
	mail.AddContent(sgmail.NewContent("text/plain", msg.Body))
	return mail
}

// SendgridSender performs the HTTP call against the SendGrid v3 API.
type SendgridSender struct {
	apiKey string
}

// NewSendgridSender wires the real API client.
func NewSendgridSender(cfg config.SendgridConfig) (*SendgridSender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sendgrid api key required")
	}
	return &SendgridSender{apiKey: cfg.APIKey}, nil
}

// Send posts the mail and treats any 4xx/5xx as a failure.
func (s *SendgridSender) Send(ctx context.Context, mail *sgmail.SGMailV3) error {
	req := sendgrid.GetRequest(s.apiKey, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(mail)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
