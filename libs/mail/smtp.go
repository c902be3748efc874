package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	netmail "net/mail"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPSender sends email via SMTP. Without a username the connection is
// unauthenticated (Mailpit-compatible).
type SMTPSender struct {
	addr     string
	host     string
	username string
	password string
	send     func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error
	dial     func(ctx context.Context, network, addr string) (net.Conn, error)
	timeout  time.Duration
	now      func() time.Time
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	host := strings.TrimSpace(cfg.Host)
	port := strings.TrimSpace(cfg.Port)
	if port == "" {
		port = "25"
	}
	s := &SMTPSender{
		addr:     net.JoinHostPort(host, port),
		host:     host,
		username: strings.TrimSpace(cfg.Username),
		password: cfg.Password,
		dial:     (&net.Dialer{}).DialContext,
		timeout:  30 * time.Second,
		now:      time.Now,
	}
	s.send = s.deliver
	return s
}

func (s *SMTPSender) ProviderID() string {
	return "smtp"
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.From == "" || len(msg.To) == 0 {
		return errors.New("mail: sender and recipient are required")
	}
	raw, err := buildMessage(msg, s.now())
	if err != nil {
		return err
	}
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	return s.send(ctx, s.addr, auth, envelopeAddress(msg.From), msg.To, raw)
}

// deliver runs one SMTP transaction like smtp.SendMail, bounded by ctx. The
// connection deadline is ctx's deadline or the sender timeout, and a
// cancelled ctx aborts any pending read or write.
func (s *SMTPSender) deliver(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := s.dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = s.now().Add(s.timeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if auth != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server does not support AUTH")
		}
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(envelopeAddress(rcpt)); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return c.Quit()
}

// buildMessage renders an RFC 5322 message: a multipart/mixed envelope holding
// a multipart/alternative body followed by the attachments.
func buildMessage(msg Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	header := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}
	header("From", msg.From)
	header("To", strings.Join(msg.To, ", "))
	if msg.ReplyTo != "" {
		header("Reply-To", msg.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", "<"+uuid.NewString()+"@"+domainOf(msg.From)+">")
	header("MIME-Version", "1.0")

	mixed := multipart.NewWriter(&buf)
	header("Content-Type", `multipart/mixed; boundary="`+mixed.Boundary()+`"`)
	buf.WriteString("\r\n")

	var altBody bytes.Buffer
	alt := multipart.NewWriter(&altBody)
	if msg.Text != "" {
		if err := writeBody(alt, "text/plain; charset=utf-8", msg.Text); err != nil {
			return nil, err
		}
	}
	if msg.HTML != "" {
		if err := writeBody(alt, "text/html; charset=utf-8", msg.HTML); err != nil {
			return nil, err
		}
	}
	if err := alt.Close(); err != nil {
		return nil, err
	}
	altPart, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`multipart/alternative; boundary="` + alt.Boundary() + `"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := altPart.Write(altBody.Bytes()); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		part, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {attachmentType(a.ContentType, a.Filename)},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, a.Content); err != nil {
			return nil, err
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBody(w *multipart.Writer, contentType, body string) error {
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

// writeBase64 wraps encoded content at 76 columns as RFC 2045 requires.
func writeBase64(w io.Writer, content []byte) error {
	encoded := base64.StdEncoding.EncodeToString(content)
	for len(encoded) > 76 {
		if _, err := io.WriteString(w, encoded[:76]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := io.WriteString(w, encoded+"\r\n")
	return err
}

func attachmentType(contentType, filename string) string {
	mediatype, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediatype, params = "application/octet-stream", map[string]string{}
	}
	if filename != "" {
		params["name"] = filename
	}
	return mime.FormatMediaType(mediatype, params)
}

// envelopeAddress strips a display name: "Booking <info@x.de>" -> "info@x.de".
func envelopeAddress(addr string) string {
	parsed, err := netmail.ParseAddress(addr)
	if err != nil {
		return strings.TrimSpace(addr)
	}
	return parsed.Address
}

func domainOf(addr string) string {
	addr = envelopeAddress(addr)
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
