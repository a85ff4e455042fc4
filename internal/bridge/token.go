package bridge

import (
	"fmt"
	"net/url"
	"strings"
)

// ExtractAccessToken pulls the OAuth access token out of an implicit-grant
// callback URL, where the provider returns it in the fragment
// (...#access_token=...&token_type=Bearer).
func ExtractAccessToken(callbackURL string) (string, error) {
	parsed, err := url.Parse(callbackURL)
	if err != nil {
		return "", fmt.Errorf("invalid callback url: %w", err)
	}
	fragment := parsed.Fragment
	if fragment == "" {
		// Some providers hand the token back as a query parameter instead.
		fragment = parsed.RawQuery
	}
	values, err := url.ParseQuery(fragment)
	if err != nil {
		return "", fmt.Errorf("invalid callback fragment: %w", err)
	}
	token := strings.TrimSpace(values.Get("access_token"))
	if token == "" {
		return "", fmt.Errorf("callback url carries no access token")
	}
	return token, nil
}
