package config

import (
	"testing"
	"time"
)

func TestStringFallback(t *testing.T) {
	t.Setenv("CFG_TEST_STRING", "  ")
	if got := String("CFG_TEST_STRING", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("CFG_TEST_STRING", "value")
	if got := String("CFG_TEST_STRING", "fallback"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
}

func TestRequiredString(t *testing.T) {
	t.Setenv("CFG_TEST_REQUIRED", "")
	if _, err := RequiredString("CFG_TEST_REQUIRED"); err == nil {
		t.Fatal("expected error for empty variable")
	}
}

func TestPort(t *testing.T) {
	t.Setenv("CFG_TEST_PORT", "70000")
	if _, err := Port("CFG_TEST_PORT", "8080"); err == nil {
		t.Fatal("expected error for out of range port")
	}
	t.Setenv("CFG_TEST_PORT", "")
	p, err := Port("CFG_TEST_PORT", "8080")
	if err != nil || p != "8080" {
		t.Fatalf("expected default port, got %q (%v)", p, err)
	}
}

func TestIntAndBool(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "12")
	n, err := Int("CFG_TEST_INT", 1)
	if err != nil || n != 12 {
		t.Fatalf("expected 12, got %d (%v)", n, err)
	}
	t.Setenv("CFG_TEST_INT", "twelve")
	if _, err := Int("CFG_TEST_INT", 1); err == nil {
		t.Fatal("expected error for non-numeric value")
	}

	t.Setenv("CFG_TEST_BOOL", "false")
	b, err := Bool("CFG_TEST_BOOL", true)
	if err != nil || b {
		t.Fatalf("expected false, got %v (%v)", b, err)
	}
}

func TestMinutes(t *testing.T) {
	t.Setenv("CFG_TEST_MINUTES", "45")
	d, err := Minutes("CFG_TEST_MINUTES", time.Minute)
	if err != nil || d != 45*time.Minute {
		t.Fatalf("expected 45m, got %s (%v)", d, err)
	}
	t.Setenv("CFG_TEST_MINUTES", "0")
	if _, err := Minutes("CFG_TEST_MINUTES", time.Minute); err == nil {
		t.Fatal("expected error for zero minutes")
	}
}

func TestList(t *testing.T) {
	t.Setenv("CFG_TEST_LIST", " https://a.example, ,https://b.example ")
	got := List("CFG_TEST_LIST")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected list: %#v", got)
	}
}

func TestLocation(t *testing.T) {
	t.Setenv("CFG_TEST_TZ", "")
	loc, err := Location("CFG_TEST_TZ", "UTC")
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("expected UTC, got %v (%v)", loc, err)
	}
	t.Setenv("CFG_TEST_TZ", "Not/AZone")
	if _, err := Location("CFG_TEST_TZ", "UTC"); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}

func TestFraction(t *testing.T) {
	t.Setenv("RATIO", "")
	if f, err := Fraction("RATIO", 0.5); err != nil || f != 0.5 {
		t.Fatalf("expected fallback, got %v %v", f, err)
	}
	t.Setenv("RATIO", "0.25")
	if f, err := Fraction("RATIO", 1); err != nil || f != 0.25 {
		t.Fatalf("expected 0.25, got %v %v", f, err)
	}
	for _, bad := range []string{"1.5", "-0.1", "half"} {
		t.Setenv("RATIO", bad)
		if _, err := Fraction("RATIO", 1); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
