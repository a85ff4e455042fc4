package upgrade

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestUpgradeURLCarriesToken(t *testing.T) {
	tokens := func(ctx context.Context) (string, error) { return "id-token-123", nil }
	b := NewLinkBuilder("https://app.example.com/", tokens, nil)

	link := b.UpgradeURL(context.Background(), "/upgrade", url.Values{"plan": {"pro_monthly"}})

	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("built link does not parse: %v", err)
	}
	if parsed.Path != "/upgrade" {
		t.Errorf("path = %q, want /upgrade", parsed.Path)
	}
	q := parsed.Query()
	if q.Get("idToken") != "id-token-123" {
		t.Errorf("idToken = %q, want the fetched token", q.Get("idToken"))
	}
	if q.Get("plan") != "pro_monthly" {
		t.Errorf("plan = %q, extra values must survive", q.Get("plan"))
	}
}

func TestUpgradeURLFallsBackWithoutToken(t *testing.T) {
	tokens := func(ctx context.Context) (string, error) { return "", errors.New("no session") }
	b := NewLinkBuilder("https://app.example.com", tokens, nil)

	link := b.UpgradeURL(context.Background(), "billing", nil)
	if link != "https://app.example.com/billing" {
		t.Errorf("link = %q, want a bare token-less link", link)
	}
	if strings.Contains(link, "idToken") {
		t.Error("a failed token fetch must not leak an idToken parameter")
	}
}

func TestUpgradeURLNilTokenSource(t *testing.T) {
	b := NewLinkBuilder("https://app.example.com", nil, nil)
	link := b.UpgradeURL(context.Background(), "/upgrade", nil)
	if link != "https://app.example.com/upgrade" {
		t.Errorf("link = %q", link)
	}
}
