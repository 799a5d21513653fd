package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	config "github.com/maheshrc27/coolify-admin/configs"
	"github.com/maheshrc27/coolify-admin/internal/models"
	"github.com/maheshrc27/coolify-admin/internal/repository"
	"github.com/maheshrc27/coolify-admin/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	GoogleEnabled() bool
	GoogleAuthURL(state string) string
	GoogleCallback(ctx context.Context, code string) (*models.User, error)
}

type authService struct {
	cfg    config.Config
	u      repository.UserRepository
	oauth2 *oauth2.Config
}

func NewAuthService(cfg config.Config, u repository.UserRepository) AuthService {
	return &authService{
		cfg: cfg,
		u:   u,
		oauth2: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURI,
			Scopes:       []string{googleoauth.UserinfoEmailScope, googleoauth.UserinfoProfileScope},
			Endpoint:     google.Endpoint,
		},
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, isExist, err := s.u.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !isExist || !utils.CheckPassword(user.PasswordHash, password) {
		slog.Info("login rejected", "email", email)
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *authService) GoogleEnabled() bool {
	return s.oauth2.ClientID != "" && s.oauth2.ClientSecret != "" && s.oauth2.RedirectURL != ""
}

func (s *authService) GoogleAuthURL(state string) string {
	return s.oauth2.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// GoogleCallback completes the Google sign-in. Only operators whose email
// already exists in users may sign in; the Google account id is recorded on
// first use.
func (s *authService) GoogleCallback(ctx context.Context, code string) (*models.User, error) {
	if !s.GoogleEnabled() {
		return nil, ErrGoogleDisabled
	}

	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	token, err := s.oauth2.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	svc, err := googleoauth.NewService(ctx, option.WithHTTPClient(s.oauth2.Client(ctx, token)))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error fetching user info: %w", err)
	}

	return s.googleUser(ctx, info)
}

// googleUser maps a Google profile to an existing operator. Only verified
// addresses are trusted.
func (s *authService) googleUser(ctx context.Context, info *googleoauth.Userinfo) (*models.User, error) {
	if info.VerifiedEmail == nil || !*info.VerifiedEmail {
		slog.Info("google sign-in with unverified email", "email", info.Email)
		return nil, ErrInvalidCredentials
	}

	user, isExist, err := s.u.GetByEmail(ctx, strings.ToLower(info.Email))
	if err != nil {
		return nil, err
	}

	if !isExist {
		slog.Info("google sign-in for unknown email", "email", info.Email)
		return nil, ErrInvalidCredentials
	}

	if user.GoogleID == "" {
		if err := s.u.SetGoogleID(ctx, user.ID, info.Id); err != nil {
			return nil, err
		}
		user.GoogleID = info.Id
	}

	return user, nil
}
