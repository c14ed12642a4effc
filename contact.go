package siteadmin

import (
	"context"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"

	"github.com/gumboot/siteadmin/mailer"
	"github.com/gumboot/siteadmin/textbody"
)

const (
	msgMissingFields    = "Missing required fields."
	msgInvalidEmail     = "Invalid email address."
	msgCaptchaFailed    = "Failed reCAPTCHA validation."
	msgCaptchaMisconfig = "Server misconfiguration (captcha)."
	msgEmailMisconfig   = "Server email configuration error."
	msgMailUnreachable  = "Could not connect to mail server."
	msgSendFailed       = "Server error sending message."
)

// contactTimeout bounds the captcha check plus SMTP delivery.
const contactTimeout = 30 * time.Second

// ContactRequest is the body posted by the public contact form.
type ContactRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Message        string `json:"message"`
	RecaptchaToken string `json:"recaptchaToken"`
}

// Validate reports missing fields; the email format is checked separately
// so the two failures get distinct messages.
func (r ContactRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Message, validation.Required),
		validation.Field(&r.RecaptchaToken, validation.Required),
	)
}

type contactError struct {
	Error string `json:"error"`
}

type contactSuccess struct {
	Success bool `json:"success"`
}

// handleContact verifies the reCAPTCHA token, then mails the message to the
// site inbox with Reply-To set to the sender.
func (a *App) handleContact(c echo.Context) error {
	var req ContactRequest
	if err := json.NewDecoder(io.LimitReader(c.Request().Body, 64<<10)).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, contactError{Error: msgMissingFields})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		a.Logger.Warn().Err(err).Msg("contact: missing fields")
		return c.JSON(http.StatusBadRequest, contactError{Error: msgMissingFields})
	}
	if err := validation.Validate(req.Email, is.EmailFormat); err != nil {
		return c.JSON(http.StatusBadRequest, contactError{Error: msgInvalidEmail})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), contactTimeout)
	defer cancel()

	if a.Captcha == nil {
		a.Logger.Error().Msg("contact: RECAPTCHA_SECRET_KEY not set")
		return c.JSON(http.StatusInternalServerError, contactError{Error: msgCaptchaMisconfig})
	}
	res, err := a.Captcha.Verify(ctx, req.RecaptchaToken, c.RealIP())
	if err != nil {
		a.Logger.Error().Err(err).Msg("contact: recaptcha verify failed")
		return c.JSON(http.StatusInternalServerError, contactError{Error: msgSendFailed})
	}
	if !res.Success {
		a.Logger.Warn().Strs("codes", res.ErrorCodes).Msg("contact: recaptcha rejected")
		return c.JSON(http.StatusBadRequest, contactError{Error: msgCaptchaFailed})
	}

	if a.Mailer == nil {
		a.Logger.Error().
			Bool("host", a.Config.Email.Host != "").
			Bool("user", a.Config.Email.User != "").
			Bool("password", a.Config.Email.Password != "").
			Msg("contact: email settings missing")
		return c.JSON(http.StatusInternalServerError, contactError{Error: msgEmailMisconfig})
	}
	if err := a.Mailer.Verify(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("contact: smtp verify failed")
		return c.JSON(http.StatusInternalServerError, contactError{Error: msgMailUnreachable})
	}
	if err := a.Mailer.Send(ctx, a.contactMessage(req)); err != nil {
		a.Logger.Error().Err(err).Msg("contact: send failed")
		return c.JSON(http.StatusInternalServerError, contactError{Error: msgSendFailed})
	}

	a.Logger.Info().Str("from", req.Email).Msg("contact: message sent")
	return c.JSON(http.StatusOK, contactSuccess{Success: true})
}

func (a *App) contactMessage(req ContactRequest) mailer.Message {
	inbox := mail.Address{Address: a.Config.Email.From}
	sender := mail.Address{Name: req.Name, Address: req.Email}
	return mailer.Message{
		From:    mail.Address{Name: a.Config.Name + " Website", Address: a.Config.Email.From},
		To:      []mail.Address{inbox},
		ReplyTo: &sender,
		Subject: a.Config.Name + " contact from " + req.Name,
		Text:    "From: " + sender.String() + "\n\n" + req.Message,
		HTML: "<p><strong>From:</strong> " + html.EscapeString(req.Name) + " (" + html.EscapeString(req.Email) + ")</p>" +
			textbody.HTML(req.Message),
	}
}

type subscribeRequest struct {
	Email string `json:"email"`
}

// handleSubscribe adds an address to the launch waitlist.
func (a *App) handleSubscribe(c echo.Context) error {
	var req subscribeRequest
	if err := json.NewDecoder(io.LimitReader(c.Request().Body, 4<<10)).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, okResponse{OK: false})
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Validate(req.Email, validation.Required, is.EmailFormat); err != nil {
		return c.JSON(http.StatusBadRequest, okResponse{OK: false})
	}
	if err := a.Store.AddToWaitlist(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okResponse{OK: true})
}
