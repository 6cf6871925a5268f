package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"cricketbook/internal/auth"
	"cricketbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func TestRequireUserAndAdmin(t *testing.T) {
	userOnly := auth.RequireUser(http.HandlerFunc(okHandler))
	adminOnly := auth.RequireAdmin(http.HandlerFunc(okHandler))

	anon := httptest.NewRequest(http.MethodGet, "/", nil)
	user := anon.WithContext(auth.WithSession(context.Background(), &models.Session{UserID: "u1", Role: models.RoleUser}))
	admin := anon.WithContext(auth.WithSession(context.Background(), &models.Session{UserID: "a1", Role: models.RoleAdmin}))

	cases := []struct {
		name    string
		handler http.Handler
		req     *http.Request
		status  int
	}{
		{"anonymous user route", userOnly, anon, http.StatusUnauthorized},
		{"user route", userOnly, user, http.StatusNoContent},
		{"anonymous admin route", adminOnly, anon, http.StatusUnauthorized},
		{"user on admin route", adminOnly, user, http.StatusForbidden},
		{"admin route", adminOnly, admin, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.handler.ServeHTTP(rec, tc.req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestMiddlewareResolvesBearerAndCookie(t *testing.T) {
	svc, _ := setupService(t)
	result, err := svc.SignUp(context.Background(), auth.SignUpInput{Email: "fan@cricket.test", Password: "secret1", Name: "Fan"})
	require.NoError(t, err)

	var seen *models.Session
	h := auth.Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.SessionFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+result.Token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)
	assert.Equal(t, result.Session.UserID, seen.UserID)

	seen = nil
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: result.Token})
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)

	seen = &models.Session{}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Nil(t, seen)
}
