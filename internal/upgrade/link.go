// Package upgrade builds links from the extension into the web app's
// billing pages, carrying the session across when possible.
package upgrade

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TokenSource supplies a fresh ID token for the signed-in user.
type TokenSource func(ctx context.Context) (string, error)

const tokenTimeout = 3 * time.Second

// LinkBuilder builds upgrade URLs into the web app. When a token can be
// fetched quickly the link carries it so the web app signs the user in
// transparently; otherwise the bare link still works and the web app asks
// the user to sign in again.
type LinkBuilder struct {
	baseURL string
	tokens  TokenSource
	logger  *zap.Logger
}

// NewLinkBuilder creates a LinkBuilder. tokens may be nil, in which case
// every link is token-less.
func NewLinkBuilder(baseURL string, tokens TokenSource, logger *zap.Logger) *LinkBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkBuilder{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		logger:  logger,
	}
}

// UpgradeURL returns the full URL for the given web-app path with any extra
// query values attached. Token fetch failures degrade to a token-less link;
// this method never returns an error and never blocks past tokenTimeout.
func (b *LinkBuilder) UpgradeURL(ctx context.Context, path string, extra url.Values) string {
	values := url.Values{}
	for key, list := range extra {
		for _, v := range list {
			values.Add(key, v)
		}
	}

	if b.tokens != nil {
		tokenCtx, cancel := context.WithTimeout(ctx, tokenTimeout)
		defer cancel()
		token, err := b.tokens(tokenCtx)
		if err != nil {
			b.logger.Warn("building upgrade link without token", zap.Error(err))
		} else if token != "" {
			values.Set("idToken", token)
		}
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	link := b.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return link
}
