package mailer

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage() Message {
	return Message{
		From:    mail.Address{Name: "Gumboot", Address: "hello@gumboot.app"},
		To:      []mail.Address{{Address: "team@gumboot.app"}},
		ReplyTo: &mail.Address{Name: "Ana", Address: "ana@example.com"},
		Subject: "New contact form message from Ana",
		Text:    "Hello there,\nI need a plumber.",
		HTML:    "<p>Hello there,<br>I need a plumber.</p>",
		Date:    time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

// Text-mode quoted-printable writes line breaks as CRLF.
func crlfToLF(b []byte) string {
	return strings.ReplaceAll(string(b), "\r\n", "\n")
}

func TestBuildMultipart(t *testing.T) {
	raw, err := Build(testMessage())
	require.NoError(t, err)

	m, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, `"Gumboot" <hello@gumboot.app>`, m.Header.Get("From"))
	assert.Equal(t, "<team@gumboot.app>", m.Header.Get("To"))
	assert.Equal(t, `"Ana" <ana@example.com>`, m.Header.Get("Reply-To"))
	assert.Equal(t, "1.0", m.Header.Get("MIME-Version"))

	subject, err := new(mime.WordDecoder).DecodeHeader(m.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "New contact form message from Ana", subject)

	mediaType, params, err := mime.ParseMediaType(m.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	mr := multipart.NewReader(m.Body, params["boundary"])
	var types, bodies []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		// multipart.Reader decodes quoted-printable parts transparently.
		b, err := io.ReadAll(p)
		require.NoError(t, err)
		types = append(types, p.Header.Get("Content-Type"))
		bodies = append(bodies, crlfToLF(b))
	}
	assert.Equal(t, []string{"text/plain; charset=utf-8", "text/html; charset=utf-8"}, types)
	assert.Equal(t, "Hello there,\nI need a plumber.", bodies[0])
	assert.Equal(t, "<p>Hello there,<br>I need a plumber.</p>", bodies[1])
}

func TestBuildTextOnly(t *testing.T) {
	msg := testMessage()
	msg.HTML = ""
	msg.ReplyTo = nil

	raw, err := Build(msg)
	require.NoError(t, err)

	m, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", m.Header.Get("Content-Type"))
	assert.Empty(t, m.Header.Get("Reply-To"))

	b, err := io.ReadAll(quotedprintable.NewReader(m.Body))
	require.NoError(t, err)
	assert.Equal(t, msg.Text, crlfToLF(b))
}

func TestBuildFixedBoundary(t *testing.T) {
	msg := testMessage()
	msg.Boundary = "gumboot-boundary"

	raw, err := Build(msg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Content-Type: multipart/alternative; boundary=gumboot-boundary\r\n")
	assert.Contains(t, string(raw), "--gumboot-boundary--")
}

func TestSendWithoutRecipients(t *testing.T) {
	msg := testMessage()
	msg.To = nil
	err := NewSMTP("127.0.0.1", 1, "", "").Send(context.Background(), msg)
	assert.EqualError(t, err, "mailer: message has no recipients")
}

func TestVerifyUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// Port 1 on loopback is not expected to accept connections.
	err := NewSMTP("127.0.0.1", 1, "user", "pass").Verify(ctx)
	assert.Error(t, err)
}
