package siteadmin

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gumboot/siteadmin/mailer"
	"github.com/gumboot/siteadmin/recaptcha"
)

type fakeCaptcha struct {
	res    recaptcha.Response
	err    error
	tokens []string
}

func (f *fakeCaptcha) Verify(_ context.Context, token, _ string) (recaptcha.Response, error) {
	f.tokens = append(f.tokens, token)
	return f.res, f.err
}

type fakeMailer struct {
	verifyErr error
	sendErr   error
	sent      []mailer.Message
}

func (f *fakeMailer) Verify(context.Context) error { return f.verifyErr }

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

var validContact = ContactRequest{
	Name:           "Ana Lima",
	Email:          "ana@example.com",
	Message:        "Can I post gardening jobs?\n\nThanks!",
	RecaptchaToken: "token-123",
}

func TestContactSendsMail(t *testing.T) {
	captcha := &fakeCaptcha{res: recaptcha.Response{Success: true}}
	m := &fakeMailer{}
	ts := newTestServer(t, WithCaptcha(captcha), WithMailer(m))

	res, raw := ts.doJSON(http.MethodPost, "/api/contact", validContact)
	require.Equal(t, http.StatusOK, res.StatusCode, string(raw))
	assert.JSONEq(t, `{"success":true}`, string(raw))

	assert.Equal(t, []string{"token-123"}, captcha.tokens)
	require.Len(t, m.sent, 1)
	msg := m.sent[0]
	assert.Equal(t, "hello@gumboot.app", msg.From.Address)
	require.Len(t, msg.To, 1)
	assert.Equal(t, "hello@gumboot.app", msg.To[0].Address)
	require.NotNil(t, msg.ReplyTo)
	assert.Equal(t, "ana@example.com", msg.ReplyTo.Address)
	assert.Equal(t, "Gumboot contact from Ana Lima", msg.Subject)
	assert.Contains(t, msg.Text, "Can I post gardening jobs?")
	assert.Contains(t, msg.HTML, "<p>Can I post gardening jobs?</p><p>Thanks!</p>")
}

func TestContactErrors(t *testing.T) {
	okCaptcha := func() *fakeCaptcha { return &fakeCaptcha{res: recaptcha.Response{Success: true}} }

	tests := []struct {
		name    string
		opts    []Option
		body    any
		status  int
		message string
	}{
		{
			name:    "missing fields",
			opts:    []Option{WithCaptcha(okCaptcha()), WithMailer(&fakeMailer{})},
			body:    ContactRequest{Name: "Ana", Email: "ana@example.com"},
			status:  http.StatusBadRequest,
			message: msgMissingFields,
		},
		{
			name:    "invalid email",
			opts:    []Option{WithCaptcha(okCaptcha()), WithMailer(&fakeMailer{})},
			body:    ContactRequest{Name: "Ana", Email: "not-an-email", Message: "hi", RecaptchaToken: "t"},
			status:  http.StatusBadRequest,
			message: msgInvalidEmail,
		},
		{
			name:    "captcha not configured",
			opts:    []Option{WithMailer(&fakeMailer{})},
			body:    validContact,
			status:  http.StatusInternalServerError,
			message: msgCaptchaMisconfig,
		},
		{
			name:    "captcha rejected",
			opts:    []Option{WithCaptcha(&fakeCaptcha{res: recaptcha.Response{Success: false}}), WithMailer(&fakeMailer{})},
			body:    validContact,
			status:  http.StatusBadRequest,
			message: msgCaptchaFailed,
		},
		{
			name:    "captcha unreachable",
			opts:    []Option{WithCaptcha(&fakeCaptcha{err: errors.New("timeout")}), WithMailer(&fakeMailer{})},
			body:    validContact,
			status:  http.StatusInternalServerError,
			message: msgSendFailed,
		},
		{
			name:    "mail not configured",
			opts:    []Option{WithCaptcha(okCaptcha())},
			body:    validContact,
			status:  http.StatusInternalServerError,
			message: msgEmailMisconfig,
		},
		{
			name:    "smtp unreachable",
			opts:    []Option{WithCaptcha(okCaptcha()), WithMailer(&fakeMailer{verifyErr: errors.New("dial tcp: refused")})},
			body:    validContact,
			status:  http.StatusInternalServerError,
			message: msgMailUnreachable,
		},
		{
			name:    "send fails",
			opts:    []Option{WithCaptcha(okCaptcha()), WithMailer(&fakeMailer{sendErr: errors.New("550 rejected")})},
			body:    validContact,
			status:  http.StatusInternalServerError,
			message: msgSendFailed,
		},
		{
			name:    "malformed body",
			opts:    []Option{WithCaptcha(okCaptcha()), WithMailer(&fakeMailer{})},
			body:    `{"name": `,
			status:  http.StatusBadRequest,
			message: msgMissingFields,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.opts...)
			res, raw := ts.doJSON(http.MethodPost, "/api/contact", tt.body)
			assert.Equal(t, tt.status, res.StatusCode)
			assert.Equal(t, tt.message, decode[contactError](t, raw).Error)
		})
	}
}

func TestSubscribe(t *testing.T) {
	ts := newTestServer(t)

	res, raw := ts.doJSON(http.MethodPost, "/api/subscribe", map[string]string{"email": ""})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.JSONEq(t, `{"ok":false}`, string(raw))

	res, _ = ts.doJSON(http.MethodPost, "/api/subscribe", map[string]string{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, raw = ts.doJSON(http.MethodPost, "/api/subscribe", map[string]string{"email": "Bo@Example.com"})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(raw))

	ts.mustLogin()
	res, raw = ts.doJSON(http.MethodGet, "/api/admin/waitlist", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	entries := decode[[]WaitlistEntry](t, raw)
	require.Len(t, entries, 1)
	assert.Equal(t, "bo@example.com", entries[0].Email)
}
