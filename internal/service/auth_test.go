package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridehq/stride/internal/model"
)

type authFixture struct {
	auth     *AuthService
	users    *fakeUserRepo
	profiles *fakeProfileRepo
	tokens   *fakeTokenRepo
	subs     *fakeSubscriptionRepo
}

func newAuthFixture() *authFixture {
	cfg := testConfig()
	cfg.JWTSecret = "test-secret-not-for-production"
	cfg.JWTExpiry = time.Hour
	cfg.TokenMagicLinkExpiry = 10 * time.Minute
	cfg.TokenPasswordResetExpiry = time.Hour

	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()
	tokens := newFakeTokenRepo()
	subs := newFakeSubscriptionRepo()

	subSvc := NewSubscriptionService(cfg, subs, stubProvider{})
	auth := NewAuthService(cfg, users, profiles, tokens, subSvc, NewEmailService(cfg))

	return &authFixture{auth: auth, users: users, profiles: profiles, tokens: tokens, subs: subs}
}

func TestSignupProvisionsProfileAndFreeSubscription(t *testing.T) {
	f := newAuthFixture()

	user, err := f.auth.Signup(context.Background(), "New@Example.com", "a-long-enough-phrase")
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", user.Email, "email normalized")
	assert.Equal(t, model.RoleMember, user.Role)
	assert.True(t, user.HasPassword())

	profile, err := f.profiles.ByUserID(user.ID)
	require.NoError(t, err)
	assert.False(t, profile.IsOnboarded())

	sub, err := f.subs.ByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionPlanFree, sub.PlanID)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	f := newAuthFixture()

	_, err := f.auth.Signup(context.Background(), "dup@example.com", "a-long-enough-phrase")
	require.NoError(t, err)

	_, err = f.auth.Signup(context.Background(), "dup@example.com", "another-long-phrase")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture()

	user, err := f.auth.Signup(context.Background(), "login@example.com", "a-long-enough-phrase")
	require.NoError(t, err)

	got, err := f.auth.Login("login@example.com", "a-long-enough-phrase")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.auth.Login("login@example.com", "wrong-password-here")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login("nobody@example.com", "a-long-enough-phrase")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMagicLinkIsSingleUse(t *testing.T) {
	f := newAuthFixture()

	require.NoError(t, f.auth.RequestMagicLink(context.Background(), "magic@example.com"))

	user, err := f.users.ByEmail("magic@example.com")
	require.NoError(t, err, "unknown address gets an account on the spot")

	value := f.tokens.lastTokenFor(user.ID, model.TokenTypeMagicLink)
	require.NotEmpty(t, value)

	got, err := f.auth.VerifyMagicLink(value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotNil(t, got.EmailVerifiedAt, "used link proves mailbox ownership")

	_, err = f.auth.VerifyMagicLink(value)
	assert.ErrorIs(t, err, ErrInvalidToken, "consumed link cannot log in twice")
}

func TestPasswordReset(t *testing.T) {
	f := newAuthFixture()

	_, err := f.auth.Signup(context.Background(), "reset@example.com", "original-passphrase")
	require.NoError(t, err)

	require.NoError(t, f.auth.RequestPasswordReset(context.Background(), "reset@example.com"))

	user, err := f.users.ByEmail("reset@example.com")
	require.NoError(t, err)
	value := f.tokens.lastTokenFor(user.ID, model.TokenTypePasswordReset)
	require.NotEmpty(t, value)

	got, err := f.auth.ResetPassword(value, "brand-new-passphrase")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.auth.Login("reset@example.com", "brand-new-passphrase")
	assert.NoError(t, err)
	_, err = f.auth.Login("reset@example.com", "original-passphrase")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.ResetPassword(value, "yet-another-passphrase")
	assert.ErrorIs(t, err, ErrInvalidToken, "reset link is single use")
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	f := newAuthFixture()
	assert.NoError(t, f.auth.RequestPasswordReset(context.Background(), "ghost@example.com"))
	_, err := f.users.ByEmail("ghost@example.com")
	assert.Error(t, err, "no account created for a reset request")
}

func TestJWTRoundTrip(t *testing.T) {
	f := newAuthFixture()

	token, err := f.auth.IssueJWT("user-123")
	require.NoError(t, err)

	userID, err := f.auth.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)

	_, err = f.auth.VerifyJWT(token + "tampered")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
