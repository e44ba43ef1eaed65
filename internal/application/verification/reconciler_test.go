package verification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Santiago1809/auth-ms/internal/domain"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	args := m.Called(ctx, identifier)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, html string) error {
	return m.Called(to, subject, html).Error(0)
}

func strptr(s string) *string { return &s }

func TestOnChannelVerified_PartialStateSkipsWelcome(t *testing.T) {
	users := &mockUserStore{}
	users.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		Username: "ana", Email: "a@b.com", PhoneNumber: strptr("3001112222"),
		EmailVerified: true, PhoneVerified: false,
	}, nil)
	sender := &mockMailer{}

	rec := NewReconciler(ReconcilerDeps{Users: users, Mailer: sender, FrontendURL: "https://app.example.com"})
	require.NoError(t, rec.OnChannelVerified(context.Background(), "a@b.com", domain.ChannelEmail))

	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestOnChannelVerified_BothChannelsSendsWelcome(t *testing.T) {
	users := &mockUserStore{}
	users.On("GetByPhone", mock.Anything, "573001112222").Return(&domain.User{
		Username: "ana", Email: "a@b.com", PhoneNumber: strptr("3001112222"),
		EmailVerified: true, PhoneVerified: true,
	}, nil)

	sender := &mockMailer{}
	var body string
	sender.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { body = args.String(2) }).Return(nil)

	rec := NewReconciler(ReconcilerDeps{Users: users, Mailer: sender, FrontendURL: "https://app.example.com"})
	require.NoError(t, rec.OnChannelVerified(context.Background(), "573001112222", domain.ChannelPhone))

	sender.AssertExpectations(t)
	assert.Contains(t, body, "ana")
	assert.Contains(t, body, "https://app.example.com")
}

func TestOnChannelVerified_DeliveryFailureIsSwallowed(t *testing.T) {
	users := &mockUserStore{}
	users.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		Username: "ana", Email: "a@b.com",
		EmailVerified: true, PhoneVerified: true,
	}, nil)
	sender := &mockMailer{}
	sender.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ErrDelivery)

	rec := NewReconciler(ReconcilerDeps{Users: users, Mailer: sender})
	assert.NoError(t, rec.OnChannelVerified(context.Background(), "a@b.com", domain.ChannelEmail),
		"welcome delivery failure must not fail the verification")
}

func TestOnChannelVerified_UnknownIdentifier(t *testing.T) {
	users := &mockUserStore{}
	users.On("GetByEmail", mock.Anything, "nobody@b.com").
		Return(nil, domain.ErrNotFound)

	rec := NewReconciler(ReconcilerDeps{Users: users, Mailer: &mockMailer{}})
	err := rec.OnChannelVerified(context.Background(), "nobody@b.com", domain.ChannelEmail)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStatus_ProjectsDerivedFlags(t *testing.T) {
	users := &mockUserStore{}
	users.On("GetByIdentifier", mock.Anything, "ana").Return(&domain.User{
		Username: "ana", Email: "a@b.com", PhoneNumber: strptr("3001112222"),
		EmailVerified: true, PhoneVerified: false,
	}, nil)

	rec := NewReconciler(ReconcilerDeps{Users: users, Mailer: &mockMailer{}})
	st, err := rec.Status(context.Background(), "ana")

	require.NoError(t, err)
	assert.Equal(t, "ana", st.Username)
	assert.True(t, st.EmailVerified)
	assert.False(t, st.PhoneVerified)
	assert.False(t, st.IsFullyVerified)
	assert.True(t, st.NeedsVerification, "phone on file and unverified gates access")
}

func TestStatus_EmailOnlyUserDoesNotNeedPhone(t *testing.T) {
	users := &mockUserStore{}
	users.On("GetByIdentifier", mock.Anything, "a@b.com").Return(&domain.User{
		Username: "ana", Email: "a@b.com",
		EmailVerified: true, PhoneVerified: false,
	}, nil)

	rec := NewReconciler(ReconcilerDeps{Users: users, Mailer: &mockMailer{}})
	st, err := rec.Status(context.Background(), "a@b.com")

	require.NoError(t, err)
	assert.False(t, st.NeedsVerification)
}

func TestWelcomeSubjectMentionsVerification(t *testing.T) {
	users := &mockUserStore{}
	users.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		Username: "ana", Email: "a@b.com", EmailVerified: true, PhoneVerified: true,
	}, nil)
	sender := &mockMailer{}
	var subject string
	sender.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { subject = args.String(1) }).Return(nil)

	rec := NewReconciler(ReconcilerDeps{Users: users, Mailer: sender})
	require.NoError(t, rec.OnChannelVerified(context.Background(), "a@b.com", domain.ChannelEmail))
	assert.True(t, strings.Contains(strings.ToLower(subject), "verified"))
}
