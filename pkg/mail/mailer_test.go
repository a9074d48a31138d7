package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	from    string
	rcpts   []string
	data    bytes.Buffer
	quit    bool
	authErr error
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func (f *fakeClient) Mail(from string) error            { f.from = from; return nil }
func (f *fakeClient) Rcpt(rcpt string) error            { f.rcpts = append(f.rcpts, rcpt); return nil }
func (f *fakeClient) Data() (io.WriteCloser, error)     { return nopWriteCloser{&f.data}, nil }
func (f *fakeClient) Quit() error                       { f.quit = true; return nil }
func (f *fakeClient) Close() error                      { return nil }
func (f *fakeClient) StartTLS(*tls.Config) error        { return nil }
func (f *fakeClient) Auth(smtp.Auth) error              { return f.authErr }
func (f *fakeClient) Extension(string) (bool, string)   { return false, "" }

func newTestMailer(t *testing.T, cfg SMTPSettings, client *fakeClient) Mailer {
	t.Helper()

	m, err := NewSMTPMailer(cfg)
	require.NoError(t, err)

	impl := m.(*smtpMailer)
	impl.dial = func(ctx context.Context, cfg SMTPSettings) (net.Conn, smtpClient, error) {
		server, conn := net.Pipe()
		_ = server.Close()
		return conn, client, nil
	}
	impl.auth = func(c smtpClient, cfg SMTPSettings) error { return c.Auth(nil) }
	return impl
}

func TestSendDisabled(t *testing.T) {
	m, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)

	err = m.Send(context.Background(), Message{To: []string{"teacher@example.com"}})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestSendWritesHeadersAndBody(t *testing.T) {
	client := &fakeClient{}
	m := newTestMailer(t, SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "noreply@ecm.edu.vn",
		Timeout: time.Second,
	}, client)

	err := m.Send(context.Background(), Message{
		To:      []string{"teacher@example.com", "teacher@example.com"},
		Subject: "Verification code",
		Body:    "Your code is 123456",
	})
	require.NoError(t, err)

	require.Equal(t, "noreply@ecm.edu.vn", client.from)
	require.Equal(t, []string{"teacher@example.com"}, client.rcpts)
	require.Contains(t, client.data.String(), "Subject: Verification code")
	require.Contains(t, client.data.String(), "Your code is 123456")
	require.True(t, client.quit)
}

func TestSendRequiresRecipient(t *testing.T) {
	client := &fakeClient{}
	m := newTestMailer(t, SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "noreply@ecm.edu.vn",
	}, client)

	err := m.Send(context.Background(), Message{})
	require.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	require.Error(t, err)

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.example.com"})
	require.Error(t, err)
}
