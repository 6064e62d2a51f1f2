package tui

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintBanner_AllInterfaces(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, BannerInfo{Name: "hello", Version: "dev", Addr: "0.0.0.0:8000", CSRF: true})

	out := buf.String()
	for _, want := range []string{
		" * Serving hello (dev)",
		" * CSRF protection: on",
		"WARNING: This is a development server.",
		" * Running on all addresses (0.0.0.0)",
		" * Running on http://127.0.0.1:8000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("banner missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("expected no escape sequences for a non-terminal writer")
	}
}

func TestPrintBanner_SpecificHost(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, BannerInfo{Name: "hello", Version: "dev", Addr: "127.0.0.1:9000", MetricsAddr: ":2112"})

	out := buf.String()
	if !strings.Contains(out, " * Running on http://127.0.0.1:9000") {
		t.Errorf("unexpected banner:\n%s", out)
	}
	if strings.Contains(out, "all addresses") {
		t.Errorf("did not expect all-addresses notice:\n%s", out)
	}
	if !strings.Contains(out, " * CSRF protection: off") {
		t.Errorf("expected csrf off:\n%s", out)
	}
	if !strings.Contains(out, "/metrics") {
		t.Errorf("expected metrics line:\n%s", out)
	}
}
