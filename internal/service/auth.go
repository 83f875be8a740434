package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/stridehq/stride/internal/config"
	"github.com/stridehq/stride/internal/model"
	"github.com/stridehq/stride/internal/repository"
	"github.com/stridehq/stride/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrOAuthNoEmail       = errors.New("oauth provider returned no verified email")
)

const AuthCookieName = "auth_token"

type AuthService struct {
	cfg      *config.Config
	users    repository.UserRepository
	profiles repository.ProfileRepository
	tokens   repository.TokenRepository
	subs     *SubscriptionService
	email    *EmailService

	googleOAuth *oauth2.Config
	githubOAuth *oauth2.Config
}

func NewAuthService(
	cfg *config.Config,
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	tokens repository.TokenRepository,
	subs *SubscriptionService,
	email *EmailService,
) *AuthService {
	return &AuthService{
		cfg:      cfg,
		users:    users,
		profiles: profiles,
		tokens:   tokens,
		subs:     subs,
		email:    email,
		googleOAuth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		githubOAuth: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/github/callback",
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
	}
}

// Signup registers a user with a password and provisions their profile
// and free subscription.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	hashStr := string(hash)
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: &hashStr,
		Role:         model.RoleMember,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	if err := s.provision(user); err != nil {
		return nil, err
	}

	if err := s.email.SendWelcome(ctx, user.Email, ""); err != nil {
		slog.Warn("welcome email failed", "user_id", user.ID, "error", err)
	}

	slog.Info("user signed up", "user_id", user.ID)
	return user, nil
}

// provision creates the profile and free subscription every account
// needs. Idempotent on the subscription side.
func (s *AuthService) provision(user *model.User) error {
	now := time.Now().UTC()
	profile := &model.Profile{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		Timezone:       "UTC",
		OnboardingStep: model.OnboardingStepWelcome,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.profiles.Create(profile); err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}
	if _, err := s.subs.Subscription(user.ID); err != nil {
		return fmt.Errorf("creating subscription: %w", err)
	}
	return nil
}

func (s *AuthService) Login(email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn a comparison so missing users and wrong passwords
			// take the same time.
			_ = bcrypt.CompareHashAndPassword(
				[]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"),
				[]byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasPassword() {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// RequestMagicLink emails a one-time sign-in link. Unknown addresses
// get an account created on the spot, so magic links double as
// passwordless signup. Always returns nil for unknown-vs-known
// indistinguishability at the API surface.
func (s *AuthService) RequestMagicLink(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}

	user, err := s.users.ByEmail(email)
	if errors.Is(err, repository.ErrUserNotFound) {
		user = &model.User{
			ID:        uuid.NewString(),
			Email:     email,
			Role:      model.RoleMember,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.users.Create(user); err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		if err := s.provision(user); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	// Invalidate older links before issuing a new one.
	if err := s.tokens.DeleteByUserAndType(user.ID, model.TokenTypeMagicLink); err != nil {
		return err
	}

	value, err := randomToken()
	if err != nil {
		return err
	}
	token := &model.Token{
		UserID:    user.ID,
		Type:      model.TokenTypeMagicLink,
		Token:     value,
		ExpiresAt: time.Now().UTC().Add(s.cfg.TokenMagicLinkExpiry),
	}
	if err := s.tokens.Create(token); err != nil {
		return fmt.Errorf("creating magic link token: %w", err)
	}

	return s.email.SendMagicLink(ctx, user.Email, value)
}

// RequestPasswordReset emails a one-time reset link. Unknown addresses
// return nil without sending anything, so the endpoint does not leak
// which emails have accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}

	user, err := s.users.ByEmail(email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	if err := s.tokens.DeleteByUserAndType(user.ID, model.TokenTypePasswordReset); err != nil {
		return err
	}

	value, err := randomToken()
	if err != nil {
		return err
	}
	token := &model.Token{
		UserID:    user.ID,
		Type:      model.TokenTypePasswordReset,
		Token:     value,
		ExpiresAt: time.Now().UTC().Add(s.cfg.TokenPasswordResetExpiry),
	}
	if err := s.tokens.Create(token); err != nil {
		return fmt.Errorf("creating password reset token: %w", err)
	}

	return s.email.SendPasswordReset(ctx, user.Email, value)
}

// ResetPassword consumes a reset token and sets the new password.
func (s *AuthService) ResetPassword(tokenValue, newPassword string) (*model.User, error) {
	token, err := s.tokens.ConsumeToken(tokenValue)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if token.Type != model.TokenTypePasswordReset || !token.IsValid() {
		return nil, ErrInvalidToken
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	user, err := s.users.ByID(token.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	hashStr := string(hash)
	user.PasswordHash = &hashStr

	if err := s.users.Update(user); err != nil {
		return nil, err
	}

	slog.Info("password reset", "user_id", user.ID)
	return user, nil
}

// VerifyMagicLink consumes a one-time link token. Consumption is
// atomic in the repository, so a link can never log in twice.
func (s *AuthService) VerifyMagicLink(tokenValue string) (*model.User, error) {
	token, err := s.tokens.ConsumeToken(tokenValue)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if token.Type != model.TokenTypeMagicLink || !token.IsValid() {
		return nil, ErrInvalidToken
	}

	user, err := s.users.ByID(token.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// A used magic link proves mailbox ownership.
	if user.EmailVerifiedAt == nil {
		now := time.Now().UTC()
		user.EmailVerifiedAt = &now
		if err := s.users.Update(user); err != nil {
			slog.Warn("marking email verified failed", "user_id", user.ID, "error", err)
		}
	}

	return user, nil
}

// OAuthURL returns the provider's consent page URL. state must be
// echoed back on the callback.
func (s *AuthService) OAuthURL(provider, state string) (string, error) {
	cfg, err := s.oauthConfig(provider)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// OAuthAuthenticate exchanges the callback code, resolves the
// provider's primary email and returns the matching user, creating one
// on first sign-in.
func (s *AuthService) OAuthAuthenticate(ctx context.Context, provider, code string) (*model.User, error) {
	cfg, err := s.oauthConfig(provider)
	if err != nil {
		return nil, err
	}

	oauthToken, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging oauth code: %w", err)
	}

	var email string
	switch provider {
	case "google":
		email, err = s.googleEmail(ctx, cfg, oauthToken)
	case "github":
		email, err = s.githubEmail(ctx, cfg, oauthToken)
	}
	if err != nil {
		return nil, err
	}
	if email == "" {
		return nil, ErrOAuthNoEmail
	}
	email = strings.ToLower(email)

	user, err := s.users.ByEmail(email)
	if errors.Is(err, repository.ErrUserNotFound) {
		now := time.Now().UTC()
		user = &model.User{
			ID:              uuid.NewString(),
			Email:           email,
			EmailVerifiedAt: &now,
			Role:            model.RoleMember,
			CreatedAt:       now,
		}
		if err := s.users.Create(user); err != nil {
			return nil, fmt.Errorf("creating user: %w", err)
		}
		if err := s.provision(user); err != nil {
			return nil, err
		}
		if err := s.email.SendWelcome(ctx, user.Email, ""); err != nil {
			slog.Warn("welcome email failed", "user_id", user.ID, "error", err)
		}
		slog.Info("user signed up via oauth", "user_id", user.ID, "provider", provider)
	} else if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *AuthService) oauthConfig(provider string) (*oauth2.Config, error) {
	switch provider {
	case "google":
		if s.cfg.GoogleClientID == "" {
			return nil, fmt.Errorf("google oauth is not configured")
		}
		return s.googleOAuth, nil
	case "github":
		if s.cfg.GitHubClientID == "" {
			return nil, fmt.Errorf("github oauth is not configured")
		}
		return s.githubOAuth, nil
	default:
		return nil, fmt.Errorf("unknown oauth provider %q", provider)
	}
}

func (s *AuthService) googleEmail(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (string, error) {
	resp, err := cfg.Client(ctx, token).Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return "", fmt.Errorf("fetching google userinfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var info struct {
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decoding google userinfo: %w", err)
	}
	if !info.VerifiedEmail {
		return "", ErrOAuthNoEmail
	}
	return info.Email, nil
}

func (s *AuthService) githubEmail(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (string, error) {
	resp, err := cfg.Client(ctx, token).Get("https://api.github.com/user/emails")
	if err != nil {
		return "", fmt.Errorf("fetching github emails: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", fmt.Errorf("decoding github emails: %w", err)
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", ErrOAuthNoEmail
}

// IssueJWT creates the session token stored in the auth cookie.
func (s *AuthService) IssueJWT(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// VerifyJWT validates a session token and returns the user ID.
func (s *AuthService) VerifyJWT(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// SetAuthCookie writes the session cookie. Secure is tied to the
// environment so local HTTP development keeps working.
func (s *AuthService) SetAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.JWTExpiry.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
