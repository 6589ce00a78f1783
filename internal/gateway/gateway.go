// Package gateway provides the session-gated HTTP proxy between
// dashboard clients and the remote system of record.
//
// The gateway validates the inbound session cookie on every request,
// attaches the server-held shared secret, and relays the remote
// response. It holds no session state of its own: validity is purely a
// function of the credential's fields.
package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmoralesp/turnero/internal/logging"
	"github.com/dmoralesp/turnero/internal/remote"
	"github.com/dmoralesp/turnero/internal/session"
)

// Code classifies a gateway-level failure on the wire.
type Code string

const (
	// CodeUnauthorized covers missing, malformed, and expired
	// credentials alike. Callers cannot distinguish them; the merged
	// behavior is deliberate.
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeServerConfig means the shared secret is unset server-side.
	CodeServerConfig Code = "SERVER_CONFIG_ERROR"
	// CodeConnection means the remote system could not be reached.
	CodeConnection Code = "CONNECTION_ERROR"
)

// Gateway proxies authenticated requests to the remote system.
type Gateway struct {
	remoteBase string
	apiKey     string
	client     *http.Client
	logger     logging.Logger
	now        func() time.Time
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the outbound HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// WithClock replaces the clock used for session expiry checks.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// New creates a Gateway forwarding to the given remote base URL with
// the given shared secret.
func New(remoteBase, apiKey string, logger logging.Logger, opts ...Option) *Gateway {
	if logger == nil {
		logger = logging.Noop{}
	}
	g := &Gateway{
		remoteBase: strings.TrimRight(remoteBase, "/"),
		apiKey:     apiKey,
		client:     &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Router returns the gateway's HTTP surface: the wildcard proxy under
// /api and the thin login/logout routes.
func (g *Gateway) Router() chi.Router {
	r := chi.NewRouter()
	r.Post("/auth/login", g.handleLogin)
	r.Post("/auth/logout", g.handleLogout)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete} {
		r.MethodFunc(method, "/api/*", g.handleProxy)
	}
	return r
}

// handleProxy validates the session credential and forwards the request
// verbatim: method, JSON body for mutating methods, and query string.
func (g *Gateway) handleProxy(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromRequest(r)
	if err != nil {
		g.reject(w, http.StatusUnauthorized, CodeUnauthorized)
		return
	}
	if err := sess.Validate(g.now()); err != nil {
		g.reject(w, http.StatusUnauthorized, CodeUnauthorized)
		return
	}
	if g.apiKey == "" {
		g.logger.Error("gateway api key is not configured")
		g.reject(w, http.StatusInternalServerError, CodeServerConfig)
		return
	}

	path := "/" + chi.URLParam(r, "*")
	target := g.remoteBase + path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	var body io.Reader
	if r.Method == http.MethodPut || r.Method == http.MethodPost || r.Method == http.MethodDelete {
		body = r.Body
	}
	out, err := http.NewRequestWithContext(r.Context(), r.Method, target, body)
	if err != nil {
		g.logger.Error("failed to build outbound request", "error", err)
		g.reject(w, http.StatusInternalServerError, CodeConnection)
		return
	}
	out.Header.Set(remote.APIKeyHeader, g.apiKey)
	if ct := r.Header.Get("Content-Type"); ct != "" {
		out.Header.Set("Content-Type", ct)
	}

	resp, err := g.client.Do(out)
	if err != nil {
		g.logger.Warn("remote system unreachable", "path", path, "error", err)
		g.reject(w, http.StatusInternalServerError, CodeConnection)
		return
	}
	defer resp.Body.Close()

	g.relay(w, resp, path)
}

// relay writes the remote response through. JSON payloads are decoded
// and re-encoded; anything else is streamed raw with the original
// content type and disposition headers preserved.
func (g *Gateway) relay(w http.ResponseWriter, resp *http.Response, path string) {
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		if cd := resp.Header.Get("Content-Disposition"); cd != "" {
			w.Header().Set("Content-Disposition", cd)
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			g.logger.Warn("failed to stream remote payload", "path", path, "error", err)
		}
		return
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		g.logger.Warn("remote returned invalid JSON", "path", path, "error", err)
		g.reject(w, http.StatusInternalServerError, CodeConnection)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		g.logger.Warn("failed to write response", "path", path, "error", err)
	}
}

// reject writes a structured gateway failure: {success:false, code}.
func (g *Gateway) reject(w http.ResponseWriter, status int, code Code) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"code":    code,
	})
}

// loginRequest is the inbound login payload.
type loginRequest struct {
	Usuario  string `json:"usuario"`
	Password string `json:"password"`
}

// loginResponse is the remote login endpoint's envelope.
type loginResponse struct {
	Success bool   `json:"success"`
	Usuario string `json:"usuario"`
	Negocio string `json:"negocio"`
	Nombre  string `json:"nombre"`
	Token   string `json:"token"`
}

// handleLogin forwards credentials to the remote login endpoint and, on
// success, issues the session cookie. Credential verification itself is
// owned by the remote system.
func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	if g.apiKey == "" {
		g.logger.Error("gateway api key is not configured")
		g.reject(w, http.StatusInternalServerError, CodeServerConfig)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Usuario == "" {
		g.reject(w, http.StatusUnauthorized, CodeUnauthorized)
		return
	}

	payload, _ := json.Marshal(req)
	out, err := http.NewRequestWithContext(r.Context(), http.MethodPost, g.remoteBase+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		g.reject(w, http.StatusInternalServerError, CodeConnection)
		return
	}
	out.Header.Set("Content-Type", "application/json")
	out.Header.Set(remote.APIKeyHeader, g.apiKey)

	resp, err := g.client.Do(out)
	if err != nil {
		g.logger.Warn("login forwarding failed", "error", err)
		g.reject(w, http.StatusInternalServerError, CodeConnection)
		return
	}
	defer resp.Body.Close()

	var login loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		g.reject(w, http.StatusInternalServerError, CodeConnection)
		return
	}
	if !login.Success {
		g.reject(w, http.StatusUnauthorized, CodeUnauthorized)
		return
	}

	sess := &session.Session{
		Usuario:   login.Usuario,
		Negocio:   login.Negocio,
		Token:     login.Token,
		Timestamp: g.now().UnixMilli(),
	}
	if err := session.SetCookie(w, sess); err != nil {
		g.reject(w, http.StatusInternalServerError, CodeConnection)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(login)
}

// handleLogout clears the session cookie. There is no server-side
// session state to destroy.
func (g *Gateway) handleLogout(w http.ResponseWriter, r *http.Request) {
	session.ClearCookie(w)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
}
