package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Santiago1809/auth-ms/internal/domain"
	jwtinfra "github.com/Santiago1809/auth-ms/internal/infrastructure/jwt"
)

type fakeUserGetter struct {
	user *domain.User
	err  error
}

func (f *fakeUserGetter) GetByIdentifier(context.Context, string) (*domain.User, error) {
	return f.user, f.err
}

func requestWithClaims(username string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	claims := &jwtinfra.SessionClaims{Username: username, Role: domain.RoleUser}
	return req.WithContext(context.WithValue(req.Context(), ClaimsKey, claims))
}

func TestRequireVerified_UnverifiedPhoneIsForbidden(t *testing.T) {
	phone := "3001112222"
	users := &fakeUserGetter{user: &domain.User{
		Username: "ana", PhoneNumber: &phone,
		EmailVerified: true, PhoneVerified: false,
	}}

	rr := httptest.NewRecorder()
	RequireVerified(users)(http.HandlerFunc(okHandler)).ServeHTTP(rr, requestWithClaims("ana"))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireVerified_PhonelessUserPassesOnEmailAlone(t *testing.T) {
	users := &fakeUserGetter{user: &domain.User{
		Username: "ana", EmailVerified: true,
	}}

	rr := httptest.NewRecorder()
	RequireVerified(users)(http.HandlerFunc(okHandler)).ServeHTTP(rr, requestWithClaims("ana"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireVerified_MissingClaims(t *testing.T) {
	users := &fakeUserGetter{err: domain.ErrNotFound}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	RequireVerified(users)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
