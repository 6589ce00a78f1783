package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmoralesp/turnero/internal/remote"
	"github.com/dmoralesp/turnero/internal/session"
)

const testAPIKey = "shared-secret"

func newTestGateway(t *testing.T, remoteHandler http.HandlerFunc, apiKey string) *httptest.Server {
	t.Helper()
	upstream := httptest.NewServer(remoteHandler)
	t.Cleanup(upstream.Close)

	gw := New(upstream.URL, apiKey, nil)
	srv := httptest.NewServer(gw.Router())
	t.Cleanup(srv.Close)
	return srv
}

func sessionCookie(t *testing.T, sess *session.Session) *http.Cookie {
	t.Helper()
	value, err := sess.Encode()
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: value}
}

func freshSession() *session.Session {
	return &session.Session{
		Usuario:   "marta",
		Negocio:   "barberia-centro",
		Token:     "tok",
		Timestamp: time.Now().UnixMilli(),
	}
}

func decodeReject(t *testing.T, resp *http.Response) (bool, string) {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Code    string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Success, body.Code
}

func TestGateway_Unauthorized(t *testing.T) {
	srv := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("remote must not be reached without a valid session")
	}, testAPIKey)

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"missing cookie", nil},
		{"malformed cookie", &http.Cookie{Name: session.CookieName, Value: "garbage"}},
		{
			"expired by 1ms",
			&http.Cookie{Name: session.CookieName, Value: mustEncode(&session.Session{
				Usuario:   "marta",
				Negocio:   "barberia-centro",
				Token:     "tok",
				Timestamp: time.Now().Add(-session.MaxAge - time.Millisecond).UnixMilli(),
			})},
		},
		{
			"missing negocio",
			&http.Cookie{Name: session.CookieName, Value: mustEncode(&session.Session{
				Usuario:   "marta",
				Token:     "tok",
				Timestamp: time.Now().UnixMilli(),
			})},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/citas", nil)
			require.NoError(t, err)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			success, code := decodeReject(t, resp)
			assert.False(t, success)
			assert.Equal(t, string(CodeUnauthorized), code)
		})
	}
}

func mustEncode(s *session.Session) string {
	v, err := s.Encode()
	if err != nil {
		panic(err)
	}
	return v
}

func TestGateway_ServerConfigError(t *testing.T) {
	// Valid session but no API key configured.
	srv := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("remote must not be reached without an api key")
	}, "")

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/citas", nil)
	require.NoError(t, err)
	req.AddCookie(sessionCookie(t, freshSession()))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	success, code := decodeReject(t, resp)
	assert.False(t, success)
	assert.Equal(t, string(CodeServerConfig), code)
}

func TestGateway_ConnectionError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // remote is down

	gw := New(upstream.URL, testAPIKey, nil)
	srv := httptest.NewServer(gw.Router())
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/citas", nil)
	require.NoError(t, err)
	req.AddCookie(sessionCookie(t, freshSession()))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	success, code := decodeReject(t, resp)
	assert.False(t, success)
	assert.Equal(t, string(CodeConnection), code)
}

func TestGateway_ForwardsRequestVerbatim(t *testing.T) {
	var seen struct {
		method string
		path   string
		query  url.Values
		apiKey string
		body   string
	}
	srv := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		seen.method = r.Method
		seen.path = r.URL.Path
		seen.query = r.URL.Query()
		seen.apiKey = r.Header.Get(remote.APIKeyHeader)
		data, _ := io.ReadAll(r.Body)
		seen.body = string(data)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}, testAPIKey)

	req, err := http.NewRequest(http.MethodPut,
		srv.URL+"/api/citas/3/estado?negocio=centro",
		strings.NewReader(`{"estado":"Completed"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(sessionCookie(t, freshSession()))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.MethodPut, seen.method)
	assert.Equal(t, "/citas/3/estado", seen.path)
	assert.Equal(t, "centro", seen.query.Get("negocio"))
	assert.Equal(t, testAPIKey, seen.apiKey)
	assert.JSONEq(t, `{"estado":"Completed"}`, seen.body)
}

func TestGateway_PassesThroughRemoteStatus(t *testing.T) {
	srv := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":"no such row"}`))
	}, testAPIKey)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/citas/99", nil)
	require.NoError(t, err)
	req.AddCookie(sessionCookie(t, freshSession()))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"no such row"}`, string(body))
}

func TestGateway_StreamsNonJSONPayload(t *testing.T) {
	payload := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0x01}
	srv := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="reporte.pdf"`)
		w.Write(payload)
	}, testAPIKey)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/reportes/dia", nil)
	require.NoError(t, err)
	req.AddCookie(sessionCookie(t, freshSession()))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="reporte.pdf"`, resp.Header.Get("Content-Disposition"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, body)
}

func TestGateway_Login(t *testing.T) {
	srv := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, testAPIKey, r.Header.Get(remote.APIKeyHeader))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"usuario":"marta","negocio":"barberia-centro","nombre":"Marta","token":"tok-9"}`))
	}, testAPIKey)

	resp, err := http.Post(srv.URL+"/auth/login", "application/json",
		strings.NewReader(`{"usuario":"marta","password":"hunter2"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "login must set the session cookie")

	sess, err := session.Parse(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "barberia-centro", sess.Negocio)
	assert.Equal(t, "tok-9", sess.Token)
	assert.NoError(t, sess.Validate(time.Now()))
}

func TestGateway_LoginRejected(t *testing.T) {
	srv := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false}`))
	}, testAPIKey)

	resp, err := http.Post(srv.URL+"/auth/login", "application/json",
		strings.NewReader(`{"usuario":"marta","password":"wrong"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Cookies())
}

func TestGateway_Logout(t *testing.T) {
	srv := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {}, testAPIKey)

	resp, err := http.Post(srv.URL+"/auth/logout", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
