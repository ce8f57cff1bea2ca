package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/budget-be/internal/auth"
	"github.com/hongminglow/budget-be/internal/http/respond"
	"github.com/hongminglow/budget-be/internal/logger"
	"github.com/hongminglow/budget-be/internal/models"
)

func TestJWTAuth(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "budget-test", time.Hour)
	authn := auth.NewAuthenticator(nil, nil, tokens)
	valid, err := tokens.Generate(models.User{ID: 3, Username: "carol"})
	require.NoError(t, err)
	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "budget-test",
		Subject:   "carol",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	var logs bytes.Buffer
	base := logger.New(&logs, "info", "text")
	h := JWTAuth(authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("reached handler")
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name    string
		header  string
		want    int
		message string
	}{
		{"missing", "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid authorization format"},
		{"garbage", "Bearer abc", http.StatusUnauthorized, auth.MsgTokenInvalid},
		{"non-numeric subject", "Bearer " + badSubject, http.StatusUnauthorized, auth.MsgTokenInvalid},
		{"valid", "Bearer " + valid, http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			req = req.WithContext(logger.WithContext(req.Context(), base))
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.message != "" {
				var env respond.Envelope
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
				assert.Equal(t, tc.message, env.Message)
				assert.NotEmpty(t, env.Timestamp)
			}
		})
	}
	assert.Contains(t, logs.String(), "reached handler")
	assert.Contains(t, logs.String(), "user_id=3")
}

func TestLoggingSetsRequestID(t *testing.T) {
	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"https://app.example"})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "https://APP.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://APP.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
