package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/football-tournaments/models"
	"github.com/Dosada05/football-tournaments/services"
)

type stubAuthenticator map[string]*services.TokenClaims

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (*services.TokenClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, services.ErrAuthenticationFailed
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeError(t *testing.T, body *bytes.Buffer) (bool, string) {
	t.Helper()
	var env struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(body).Decode(&env))
	return env.Success, env.Error.Code
}

func TestAuthenticate(t *testing.T) {
	auth := stubAuthenticator{
		"good": {UserID: 7, Role: models.RoleOrganizer, JTI: "j1"},
	}
	var seen *services.TokenClaims
	handler := Authenticate(auth, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetClaims(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusNoContent},
		{"scheme is case insensitive", "bearer good", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				success, code := decodeError(t, rec.Body)
				assert.False(t, success)
				assert.Equal(t, "UNAUTHORIZED", code)
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, 7, seen.UserID)
		})
	}
}

func TestAuthorize(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := Authorize(models.RoleAdmin)(ok)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), &services.TokenClaims{UserID: 1, Role: models.RoleClubManager}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	_, code := decodeError(t, rec.Body)
	assert.Equal(t, "FORBIDDEN", code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), &services.TokenClaims{UserID: 1, Role: models.RoleAdmin}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetActor(t *testing.T) {
	_, err := GetActor(context.Background())
	assert.True(t, errors.Is(err, ErrNoClaims))

	ctx := WithClaims(context.Background(), &services.TokenClaims{UserID: 3, Role: models.RoleOrganizer})
	actor, err := GetActor(ctx)
	require.NoError(t, err)
	assert.Equal(t, services.Actor{UserID: 3, Role: models.RoleOrganizer}, actor)
}
