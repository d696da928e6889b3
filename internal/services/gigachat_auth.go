package services

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// tokenRefreshMargin renews the access token this long before it expires.
const tokenRefreshMargin = time.Minute

// GigaChatAuth is an http.RoundTripper that authenticates requests to the
// GigaChat API. It exchanges the authorization key for a short-lived access
// token and caches it until shortly before expiry.
type GigaChatAuth struct {
	AuthURL     string
	Credentials string // base64 authorization key issued for the project
	Scope       string
	Base        http.RoundTripper

	now func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewGigaChatAuth builds the authenticating transport. insecureSkipVerify
// disables certificate checks for hosts signed by a CA missing from the
// system trust store.
func NewGigaChatAuth(authURL, credentials, scope string, insecureSkipVerify bool) *GigaChatAuth {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if insecureSkipVerify {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		log.Warn("TLS certificate verification is disabled for GigaChat")
	}
	return &GigaChatAuth{
		AuthURL:     authURL,
		Credentials: credentials,
		Scope:       scope,
		Base:        base,
	}
}

func (a *GigaChatAuth) base() http.RoundTripper {
	if a.Base != nil {
		return a.Base
	}
	return http.DefaultTransport
}

func (a *GigaChatAuth) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}

// RoundTrip adds a bearer token to a copy of the request.
func (a *GigaChatAuth) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := a.Token(req.Context())
	if err != nil {
		return nil, err
	}
	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", "Bearer "+token)
	return a.base().RoundTrip(authed)
}

// Token returns a valid access token, fetching a new one when needed.
func (a *GigaChatAuth) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.clock().Add(tokenRefreshMargin).Before(a.expires) {
		return a.token, nil
	}

	token, expires, err := a.fetchToken(ctx)
	if err != nil {
		return "", err
	}
	a.token, a.expires = token, expires
	log.Debugf("Obtained GigaChat access token valid until %s", expires.Format(time.RFC3339))
	return token, nil
}

type gigaChatTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"` // unix milliseconds
}

func (a *GigaChatAuth) fetchToken(ctx context.Context) (string, time.Time, error) {
	form := url.Values{"scope": {a.Scope}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build gigachat token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.NewString())
	req.Header.Set("Authorization", "Basic "+a.Credentials)

	resp, err := (&http.Client{Transport: a.base()}).Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("gigachat token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("read gigachat token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("gigachat token request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed gigaChatTokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", time.Time{}, fmt.Errorf("decode gigachat token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("gigachat token response has no access_token")
	}
	return parsed.AccessToken, time.UnixMilli(parsed.ExpiresAt), nil
}
