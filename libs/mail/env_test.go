package mail

import "testing"

func TestSenderFromEnv(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "noop")
	s, err := SenderFromEnv(nil)
	if err != nil || s.ProviderID() != "noop" {
		t.Fatalf("expected noop sender, got %v (%v)", s, err)
	}

	t.Setenv("EMAIL_PROVIDER", "SMTP")
	s, err = SenderFromEnv(nil)
	if err != nil || s.ProviderID() != "smtp" {
		t.Fatalf("expected smtp sender, got %v (%v)", s, err)
	}

	t.Setenv("EMAIL_PROVIDER", "resend")
	t.Setenv("RESEND_API_KEY", "")
	if _, err := SenderFromEnv(nil); err == nil {
		t.Fatal("expected error without api key")
	}
	t.Setenv("RESEND_API_KEY", "re_test")
	s, err = SenderFromEnv(nil)
	if err != nil || s.ProviderID() != "resend" {
		t.Fatalf("expected resend sender, got %v (%v)", s, err)
	}

	t.Setenv("EMAIL_PROVIDER", "pigeon")
	if _, err := SenderFromEnv(nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
