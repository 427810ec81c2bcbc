// Package api provides the HTTP transport and admin API client for the ftp-server
// admin API
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ProjectName is set at build time - used for User-Agent
var ProjectName = "ftp-admin"

// Version is set at build time
var Version = "dev"

// SessionState is the read-only view of the session the transport needs
type SessionState interface {
	Token() string
	Offline() bool
}

// Observer is notified of failures that change session state
type Observer interface {
	NetworkUnreachable(reason string)
	Unauthorized()
}

// Transport executes single admin API requests and normalizes the result
type Transport struct {
	BaseURL    string
	HTTPClient *http.Client

	session  SessionState
	logger   *slog.Logger
	timeout  time.Duration
	mu       sync.RWMutex
	observer Observer
}

// Option configures a Transport
type Option func(*Transport)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) {
		if c != nil {
			t.HTTPClient = c
		}
	}
}

// WithTimeout sets the request timeout. It is applied to a copy of the HTTP client
// after all options ran, so a client given through WithHTTPClient is never modified.
// Zero keeps the client's own timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.timeout = d
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTransport creates a transport bound to the given session
func NewTransport(baseURL string, state SessionState, opts ...Option) *Transport {
	t := &Transport{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		session:    state,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.timeout > 0 {
		hc := *t.HTTPClient
		hc.Timeout = t.timeout
		t.HTTPClient = &hc
	}
	return t
}

// SetObserver registers the receiver of offline and 401 notifications
func (t *Transport) SetObserver(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observer = o
}

func (t *Transport) getObserver() Observer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.observer
}

// Body is a decoded response body. JSON is set for application/json responses
// (nil when the body was not valid JSON), Text otherwise.
type Body struct {
	ContentType string
	JSON        any
	Text        string
	isJSON      bool
	raw         []byte
}

// IsJSON reports whether the response declared a JSON content type
func (b *Body) IsJSON() bool {
	return b != nil && b.isJSON
}

// Decode unmarshals a JSON body into v. A null or unparsable JSON body leaves v untouched.
func (b *Body) Decode(v any) error {
	if b == nil || b.raw == nil {
		if b != nil && !b.isJSON && strings.TrimSpace(b.Text) != "" {
			return fmt.Errorf("%w: unexpected content type %q", ErrDecode, b.ContentType)
		}
		return nil
	}
	if err := json.Unmarshal(b.raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// String renders the body for display: compact JSON or the raw text
func (b *Body) String() string {
	if b == nil {
		return ""
	}
	if !b.isJSON {
		return b.Text
	}
	if b.JSON == nil {
		return ""
	}
	out, err := json.Marshal(b.JSON)
	if err != nil {
		return ""
	}
	return string(out)
}

// Request performs one HTTP call. Authenticated requests are refused without network
// traffic while the session is offline.
func (t *Transport) Request(ctx context.Context, method, path string, body any, requiresAuth bool) (*Body, error) {
	if requiresAuth && t.session != nil && t.session.Offline() {
		return nil, ErrOffline
	}

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("User-Agent", fmt.Sprintf("%s-cli/%s", ProjectName, Version))
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requiresAuth && t.session != nil {
		if tok := strings.TrimSpace(t.session.Token()); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	log := t.logger.With("request_id", reqID, "method", method, "path", path)
	log.Debug("api request", "auth", requiresAuth)
	start := time.Now()

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		// A cancelled caller is not a server outage
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Warn("server unreachable", "error", err)
		if o := t.getObserver(); o != nil {
			o.NetworkUnreachable(OfflineReason)
		}
		return nil, &NetworkError{Reason: OfflineReason, Err: err}
	}
	defer resp.Body.Close()

	decoded := readBody(resp)
	log.Debug("api response", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := decoded.String()
		if resp.StatusCode == http.StatusUnauthorized && requiresAuth {
			if o := t.getObserver(); o != nil {
				o.Unauthorized()
			}
			return nil, &UnauthorizedError{Detail: detail}
		}
		return nil, &RequestError{Status: resp.StatusCode, Detail: detail}
	}
	return decoded, nil
}

// readBody selects JSON or text by content type. Read and parse failures degrade to
// an empty body instead of an error.
func readBody(resp *http.Response) *Body {
	ct := resp.Header.Get("Content-Type")
	b := &Body{
		ContentType: ct,
		isJSON:      strings.Contains(ct, "application/json"),
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return b
	}
	if !b.isJSON {
		b.Text = string(data)
		return b
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return b
	}
	b.JSON = v
	if v != nil {
		b.raw = data
	}
	return b
}
