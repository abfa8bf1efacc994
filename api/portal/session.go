package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/geonet-ops/portal-admin-services/models"
)

const (
	codeInvalidToken  = 498
	codeTokenRequired = 499
	codeRateLimited   = 429

	// refreshMargin is how close to expiry a cached token may get before it
	// is refreshed instead of reused.
	refreshMargin = 60 * time.Second

	defaultTokenLifetime = 60 * time.Minute
	defaultReferer       = "portal-admin"

	userAgent = "portal-admin-services/1.0"
)

// SessionConfig holds everything needed to open a Portal session. Either
// Username+Password or a pre-issued Token must be provided; with only a
// token, the session cannot refresh once it expires.
type SessionConfig struct {
	// URL is the Portal root, e.g. https://org.maps.arcgis.com. The
	// sharing/rest suffix is appended by the session.
	URL      string
	Username string
	Password string
	Token    string

	// Referer is sent both as the token binding and as a request header.
	Referer string

	// TokenLifetime is the requested token validity. Defaults to an hour.
	TokenLifetime time.Duration

	// Timeout applies to each HTTP round trip. Zero means no timeout.
	Timeout time.Duration

	// RequestsPerSecond enables client-side request pacing when > 0.
	RequestsPerSecond float64

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Session manages a Portal token and performs the REST round trips. All
// resource operations go through post, which transparently refreshes an
// expired token and retries the call exactly once.
type Session struct {
	restURL  string
	username string
	password string
	referer  string
	lifetime time.Duration
	http     *http.Client
	limiter  *rate.Limiter

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewSession builds a session from the config. It does not contact Portal;
// call Authenticate or let the first operation fetch a token lazily.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.URL == "" {
		return nil, errors.New("portal URL is required")
	}
	if cfg.Token == "" && (cfg.Username == "" || cfg.Password == "") {
		return nil, errors.New("portal credentials or a token are required")
	}

	s := &Session{
		restURL:  strings.TrimRight(cfg.URL, "/") + "/sharing/rest/",
		username: cfg.Username,
		password: cfg.Password,
		referer:  cfg.Referer,
		lifetime: cfg.TokenLifetime,
		http:     cfg.HTTPClient,
		token:    cfg.Token,
	}
	if s.referer == "" {
		s.referer = defaultReferer
	}
	if s.lifetime <= 0 {
		s.lifetime = defaultTokenLifetime
	}
	if s.http == nil {
		s.http = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return s, nil
}

// Authenticate fetches a fresh token with the stored credentials.
func (s *Session) Authenticate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	_, err := s.refreshLocked(ctx)
	return err
}

// Token returns the cached token, refreshing it first if it expires within
// the safety margin. Safe for concurrent use.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" && (s.expires.IsZero() || time.Until(s.expires) > refreshMargin) {
		return s.token, nil
	}
	return s.refreshLocked(ctx)
}

// Logout discards the cached token. The next operation re-authenticates.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expires = time.Time{}
}

func (s *Session) refreshLocked(ctx context.Context) (string, error) {
	if s.username == "" || s.password == "" {
		return "", &AuthError{Message: "no credentials available to refresh the token"}
	}
	resp, err := s.generateToken(ctx, s.username, s.password)
	if err != nil {
		return "", err
	}
	s.token = resp.Token
	s.expires = time.UnixMilli(resp.Expires)
	log.Info().Str("username", s.username).Time("expires", s.expires).Msg("portal token refreshed")
	return s.token, nil
}

// generateToken calls the token endpoint. Tokens are bound to the referer,
// so the same value is sent here and on every request.
func (s *Session) generateToken(ctx context.Context, username, password string) (*models.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("client", "referer")
	form.Set("referer", s.referer)
	form.Set("expiration", strconv.Itoa(int(s.lifetime.Minutes())))

	raw, err := s.postOnce(ctx, "generateToken", form, "")
	if err != nil {
		if pe := envelopeError(err); pe != nil {
			return nil, &AuthError{Message: "unable to generate token", Cause: pe}
		}
		return nil, err
	}

	var resp models.TokenResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("decoding generateToken response: %v", err)}
	}
	if resp.Token == "" {
		return nil, &AuthError{Message: "portal returned an empty token"}
	}
	return &resp, nil
}

// post performs a token-carrying form POST against the REST endpoint at
// path. If Portal rejects the token as expired, the token is refreshed and
// the call retried once; a second rejection surfaces as an AuthError.
func (s *Session) post(ctx context.Context, path string, form url.Values) (json.RawMessage, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := s.postOnce(ctx, path, form, token)
	if err == nil || !IsInvalidToken(err) {
		return raw, err
	}

	log.Info().Str("path", path).Msg("token rejected mid-call, refreshing and retrying")

	// Discard the rejected token unless another caller refreshed it already.
	s.mu.Lock()
	if s.token == token {
		s.token = ""
	}
	s.mu.Unlock()

	token, err = s.Token(ctx)
	if err != nil {
		return nil, err
	}
	raw, err = s.postOnce(ctx, path, form, token)
	if err != nil && IsInvalidToken(err) {
		return nil, &AuthError{Message: "portal rejected a freshly issued token", Cause: envelopeError(err)}
	}
	return raw, err
}

// postOnce performs a single round trip, maps transport failures to
// ConnectionError and decodes the error envelope Portal embeds in HTTP 200
// responses.
func (s *Session) postOnce(ctx context.Context, path string, form url.Values, token string) (json.RawMessage, error) {
	reqURL := s.restURL + path

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, &ConnectionError{URL: reqURL, Err: err}
		}
	}

	body := url.Values{}
	for k, v := range form {
		body[k] = v
	}
	body.Set("f", "json")
	if token != "" {
		body.Set("token", token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(body.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", s.referer)
	req.Header.Set("User-Agent", userAgent)

	requestID := uuid.NewString()
	log.Debug().Str("request_id", requestID).Str("path", path).Msg("portal request")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, &ConnectionError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{URL: reqURL, Err: err}
	}

	log.Debug().Str("request_id", requestID).Int("status", resp.StatusCode).Int("bytes", len(respBody)).Msg("portal response")

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{}
	}
	if resp.StatusCode >= 400 {
		return nil, &ServerError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	// Business errors arrive inside a 200 response and must be checked on
	// every call.
	var env models.ErrorEnvelope
	if err := json.Unmarshal(respBody, &env); err == nil && env.Error != nil {
		if env.Error.Code == codeRateLimited {
			return nil, &RateLimitError{Cause: env.Error}
		}
		return nil, env.Error
	}

	return respBody, nil
}
