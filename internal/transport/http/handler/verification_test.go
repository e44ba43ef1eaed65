package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Santiago1809/auth-ms/internal/application/auth"
	"github.com/Santiago1809/auth-ms/internal/domain"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Signup(ctx context.Context, req domain.SignupRequest) (*auth.AuthResult, error) {
	args := m.Called(ctx, req)
	if res, _ := args.Get(0).(*auth.AuthResult); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) Signin(ctx context.Context, req domain.SigninRequest) (*auth.AuthResult, error) {
	args := m.Called(ctx, req)
	if res, _ := args.Get(0).(*auth.AuthResult); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthService) SendOTP(ctx context.Context, identifier string, ch domain.Channel) error {
	return m.Called(ctx, identifier, ch).Error(0)
}
func (m *mockAuthService) VerifyOTP(ctx context.Context, identifier, code string, ch domain.Channel) (bool, error) {
	args := m.Called(ctx, identifier, code, ch)
	return args.Bool(0), args.Error(1)
}
func (m *mockAuthService) Resend(ctx context.Context, identifier string) error {
	return m.Called(ctx, identifier).Error(0)
}
func (m *mockAuthService) VerifyEmailToken(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}
func (m *mockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockAuthService) VerifyPasswordReset(ctx context.Context, email, code string) (string, error) {
	args := m.Called(ctx, email, code)
	return args.String(0), args.Error(1)
}
func (m *mockAuthService) ChangePassword(ctx context.Context, resetToken, newPassword string) error {
	return m.Called(ctx, resetToken, newPassword).Error(0)
}

type mockReconciler struct{ mock.Mock }

func (m *mockReconciler) OnChannelVerified(ctx context.Context, identifier string, ch domain.Channel) error {
	return m.Called(ctx, identifier, ch).Error(0)
}
func (m *mockReconciler) Status(ctx context.Context, identifier string) (*domain.VerificationStatus, error) {
	args := m.Called(ctx, identifier)
	if st, _ := args.Get(0).(*domain.VerificationStatus); st != nil {
		return st, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestVerifyOTP_Success(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOTP", mock.Anything, "ana@example.com", "123456", domain.ChannelEmail).
		Return(true, nil)
	h := NewVerificationHandler(svc, &mockReconciler{}, "https://app.example.com")

	body := `{"identifier":"ana@example.com","code":"123456","channel":"email"}`
	req := httptest.NewRequest(http.MethodPost, "/verification/verify-otp", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "verified")
}

func TestVerifyOTP_WrongCodeIsOpaque(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyOTP", mock.Anything, "ana@example.com", "000000", domain.ChannelEmail).
		Return(false, nil)
	h := NewVerificationHandler(svc, &mockReconciler{}, "https://app.example.com")

	body := `{"identifier":"ana@example.com","code":"000000","channel":"email"}`
	req := httptest.NewRequest(http.MethodPost, "/verification/verify-otp", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid or expired code")
}

func TestVerifyOTP_RejectsUnknownChannel(t *testing.T) {
	svc := &mockAuthService{}
	h := NewVerificationHandler(svc, &mockReconciler{}, "https://app.example.com")

	body := `{"identifier":"ana@example.com","code":"123456","channel":"carrier-pigeon"}`
	req := httptest.NewRequest(http.MethodPost, "/verification/verify-otp", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.VerifyOTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "VerifyOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyEmail_RedirectsToFrontend(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyEmailToken", mock.Anything, "Ab12Cd").Return(true, nil)
	h := NewVerificationHandler(svc, &mockReconciler{}, "https://app.example.com")

	req := httptest.NewRequest(http.MethodGet, "/verification/verify-email?token=Ab12Cd", nil)
	rr := httptest.NewRecorder()
	h.VerifyEmail(rr, req)

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://app.example.com", rr.Header().Get("Location"))
}

func TestVerifyEmail_BadToken(t *testing.T) {
	svc := &mockAuthService{}
	svc.On("VerifyEmailToken", mock.Anything, "zzzzzz").Return(false, nil)
	h := NewVerificationHandler(svc, &mockReconciler{}, "https://app.example.com")

	req := httptest.NewRequest(http.MethodGet, "/verification/verify-email?token=zzzzzz", nil)
	rr := httptest.NewRecorder()
	h.VerifyEmail(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyEmail_MissingToken(t *testing.T) {
	h := NewVerificationHandler(&mockAuthService{}, &mockReconciler{}, "https://app.example.com")

	req := httptest.NewRequest(http.MethodGet, "/verification/verify-email", nil)
	rr := httptest.NewRecorder()
	h.VerifyEmail(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStatus_ReturnsProjection(t *testing.T) {
	rec := &mockReconciler{}
	rec.On("Status", mock.Anything, "ana").Return(&domain.VerificationStatus{
		Username: "ana", Email: "ana@example.com",
		EmailVerified: true, PhoneVerified: false, NeedsVerification: true,
	}, nil)
	h := NewVerificationHandler(&mockAuthService{}, rec, "https://app.example.com")

	router := chi.NewRouter()
	router.Get("/verification/status/{identifier}", h.Status)
	req := httptest.NewRequest(http.MethodGet, "/verification/status/ana", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"needs_verification":true`)
}

func TestStatus_UnknownIdentifier(t *testing.T) {
	rec := &mockReconciler{}
	rec.On("Status", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)
	h := NewVerificationHandler(&mockAuthService{}, rec, "https://app.example.com")

	router := chi.NewRouter()
	router.Get("/verification/status/{identifier}", h.Status)
	req := httptest.NewRequest(http.MethodGet, "/verification/status/ghost", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
