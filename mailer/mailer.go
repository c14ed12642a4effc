// Package mailer delivers plain-text and HTML email over SMTP with STARTTLS.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

// Message is a single outgoing email.
type Message struct {
	From     mail.Address
	To       []mail.Address
	ReplyTo  *mail.Address
	Subject  string
	Text     string
	HTML     string
	Date     time.Time
	Boundary string // multipart boundary; random when empty
}

// SMTP sends messages through an authenticated SMTP server.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// NewSMTP returns an SMTP mailer with a 15 second dial timeout.
func NewSMTP(host string, port int, username, password string) *SMTP {
	return &SMTP{Host: host, Port: port, Username: username, Password: password, Timeout: 15 * time.Second}
}

func (s *SMTP) addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// dial connects, upgrades to TLS when the server offers STARTTLS and
// authenticates.
func (s *SMTP) dial(ctx context.Context) (*smtp.Client, error) {
	d := net.Dialer{Timeout: s.Timeout}
	conn, err := d.DialContext(ctx, "tcp", s.addr())
	if err != nil {
		return nil, fmt.Errorf("mailer: dial %s: %w", s.addr(), err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("mailer: greeting: %w", err)
	}
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.Host, MinVersion: tls.VersionTLS12}); err != nil {
			c.Close()
			return nil, fmt.Errorf("mailer: starttls: %w", err)
		}
	}
	if s.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", s.Username, s.Password, s.Host)); err != nil {
				c.Close()
				return nil, fmt.Errorf("mailer: auth: %w", err)
			}
		}
	}
	return c, nil
}

// Verify checks that the server accepts a connection and the credentials.
func (s *SMTP) Verify(ctx context.Context) error {
	c, err := s.dial(ctx)
	if err != nil {
		return err
	}
	return c.Quit()
}

// Send delivers msg.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("mailer: message has no recipients")
	}
	body, err := Build(msg)
	if err != nil {
		return err
	}

	c, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Mail(msg.From.Address); err != nil {
		return fmt.Errorf("mailer: MAIL FROM: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := c.Rcpt(rcpt.Address); err != nil {
			return fmt.Errorf("mailer: RCPT TO %s: %w", rcpt.Address, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("mailer: DATA: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		w.Close()
		return fmt.Errorf("mailer: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mailer: end DATA: %w", err)
	}
	return c.Quit()
}

// Build renders msg as an RFC 5322 message with a multipart/alternative
// body. When HTML is empty only the text part is written.
func Build(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	date := msg.Date
	if date.IsZero() {
		date = time.Now()
	}

	to := make([]string, len(msg.To))
	for i, a := range msg.To {
		to[i] = a.String()
	}

	h := textproto.MIMEHeader{}
	h.Set("From", msg.From.String())
	h.Set("To", strings.Join(to, ", "))
	if msg.ReplyTo != nil {
		h.Set("Reply-To", msg.ReplyTo.String())
	}
	h.Set("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	h.Set("Date", date.Format(time.RFC1123Z))
	h.Set("MIME-Version", "1.0")

	if msg.HTML == "" {
		h.Set("Content-Type", "text/plain; charset=utf-8")
		h.Set("Content-Transfer-Encoding", "quoted-printable")
		writeHeader(&buf, h)
		if err := writeQP(&buf, msg.Text); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if msg.Boundary != "" {
		if err := mw.SetBoundary(msg.Boundary); err != nil {
			return nil, fmt.Errorf("mailer: boundary: %w", err)
		}
	}
	for _, part := range []struct{ ctype, content string }{
		{"text/plain; charset=utf-8", msg.Text},
		{"text/html; charset=utf-8", msg.HTML},
	} {
		ph := textproto.MIMEHeader{}
		ph.Set("Content-Type", part.ctype)
		ph.Set("Content-Transfer-Encoding", "quoted-printable")
		pw, err := mw.CreatePart(ph)
		if err != nil {
			return nil, fmt.Errorf("mailer: create part: %w", err)
		}
		if err := writeQP(pw, part.content); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("mailer: close multipart: %w", err)
	}

	h.Set("Content-Type", "multipart/alternative; boundary="+mw.Boundary())
	writeHeader(&buf, h)
	buf.Write(body.Bytes())
	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, h textproto.MIMEHeader) {
	for _, k := range []string{"From", "To", "Reply-To", "Subject", "Date", "MIME-Version", "Content-Type", "Content-Transfer-Encoding"} {
		if v := h.Get(k); v != "" {
			buf.WriteString(k + ": " + v + "\r\n")
		}
	}
	buf.WriteString("\r\n")
}

func writeQP(w io.Writer, s string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(s)); err != nil {
		return fmt.Errorf("mailer: encode body: %w", err)
	}
	return qp.Close()
}
