package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/core/domain"
	portssvc "github.com/echopind/echopind_backend/internal/core/ports/services"
	"github.com/echopind/echopind_backend/internal/platform/config"
	"github.com/echopind/echopind_backend/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

const googleProvider = "google"

// IDTokenValidator verifies a Google ID token for the given audience.
type IDTokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// googleOAuthHandlerService implements the GoogleOAuthHandlerSvcFacade.
type googleOAuthHandlerService struct {
	cfg          *config.Config
	oauth2Config *oauth2.Config
	validate     IDTokenValidator
}

// GoogleOAuthOption configures a googleOAuthHandlerService.
type GoogleOAuthOption func(*googleOAuthHandlerService)

// WithIDTokenValidator replaces idtoken.Validate.
func WithIDTokenValidator(v IDTokenValidator) GoogleOAuthOption {
	return func(s *googleOAuthHandlerService) {
		s.validate = v
	}
}

// NewGoogleOAuthHandlerService creates a new instance of googleOAuthHandlerService.
func NewGoogleOAuthHandlerService(cfg *config.Config, opts ...GoogleOAuthOption) portssvc.GoogleOAuthHandlerSvcFacade {
	s := &googleOAuthHandlerService{
		cfg: cfg,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		validate: idtoken.Validate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *googleOAuthHandlerService) IsConfigured() bool {
	return s.cfg.GoogleOAuthEnabled()
}

// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
func (s *googleOAuthHandlerService) GenerateStateString(ctx context.Context) (string, error) {
	state, err := utils.GenerateSecureRandomString(16)
	if err != nil {
		return "", fmt.Errorf("failed to generate state string for OAuth: %w", err)
	}
	return state, nil
}

// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
func (s *googleOAuthHandlerService) GetGoogleLoginURL(ctx context.Context, state string) string {
	return s.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
func (s *googleOAuthHandlerService) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	if !s.IsConfigured() {
		return nil, fmt.Errorf("%w: google sign-in is not configured", apperrors.ErrServiceUnavailable)
	}
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			// Google rejected the code itself (expired, reused, wrong redirect)
			return nil, fmt.Errorf("%w: oauth code rejected: %v", apperrors.ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("failed to exchange oauth code for token: %w", err)
	}
	return token, nil
}

// ValidateGoogleIDToken validates an ID token received from Google and returns the asserted profile.
func (s *googleOAuthHandlerService) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*domain.OAuthProfile, error) {
	if s.cfg.GoogleClientID == "" {
		return nil, fmt.Errorf("%w: google client ID is not configured", apperrors.ErrServiceUnavailable)
	}
	payload, err := s.validate(ctx, idTokenString, s.cfg.GoogleClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: google ID token validation failed: %v", apperrors.ErrUnauthorized, err)
	}
	return profileFromPayload(payload), nil
}

func profileFromPayload(p *idtoken.Payload) *domain.OAuthProfile {
	claim := func(key string) string {
		v, _ := p.Claims[key].(string)
		return v
	}
	verified, _ := p.Claims["email_verified"].(bool)
	return &domain.OAuthProfile{
		Provider:       googleProvider,
		ProviderUserID: p.Subject,
		Email:          claim("email"),
		EmailVerified:  verified,
		FullName:       claim("name"),
		PictureURL:     claim("picture"),
	}
}
