package email

import (
	"strings"
	"testing"

	"attendsuite/internal/platform/config"
)

func TestNewFallsBackToNoopMailer(t *testing.T) {
	if _, ok := New(config.Config{EmailEnabled: false}).(noopMailer); !ok {
		t.Fatal("expected noop mailer when email is disabled")
	}
	if _, ok := New(config.Config{EmailEnabled: true, SMTPHost: ""}).(noopMailer); !ok {
		t.Fatal("expected noop mailer when no SMTP host is configured")
	}
	if _, ok := New(config.Config{EmailEnabled: true, SMTPHost: "mail.example.com"}).(*smtpMailer); !ok {
		t.Fatal("expected smtp mailer when delivery is configured")
	}
}

func TestFormatMessage(t *testing.T) {
	msg := string(formatMessage("hr@example.com", "dana@example.com", "Leave approved", "Enjoy your time off."))

	headerEnd := strings.Index(msg, "\r\n\r\n")
	if headerEnd < 0 {
		t.Fatal("expected a blank line between headers and body")
	}
	headers := msg[:headerEnd]
	for _, want := range []string{
		"From: hr@example.com",
		"To: dana@example.com",
		"Subject: Leave approved",
		"Date: ",
		"Content-Type: text/plain",
	} {
		if !strings.Contains(headers, want) {
			t.Fatalf("expected headers to contain %q, got %q", want, headers)
		}
	}
	if !strings.HasSuffix(msg, "Enjoy your time off.") {
		t.Fatalf("expected body at the end of the message, got %q", msg)
	}
}
