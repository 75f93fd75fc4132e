package controllers

import (
	"net/http"

	"github.com/MarceloMarchiori/m3class-backend/api/responses"
	"github.com/MarceloMarchiori/m3class-backend/api/validators"
	"github.com/MarceloMarchiori/m3class-backend/internal/contact"
	pkgerrors "github.com/MarceloMarchiori/m3class-backend/pkg/errors"
	"github.com/MarceloMarchiori/m3class-backend/pkg/logger"
)

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// ContactSend relays a public contact-form submission to the support inbox.
func ContactSend(svc contact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		var body contactRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		msg := contact.Message{
			FromName:  body.Name,
			FromEmail: body.Email,
			Subject:   body.Subject,
			Body:      body.Body,
		}
		if err := svc.Send(r.Context(), msg); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{"status": "sent"})
	}
}
