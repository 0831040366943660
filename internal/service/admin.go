package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/poefarm/tracker-server-go/internal/config"
	apperrors "github.com/poefarm/tracker-server-go/internal/errors"
	"github.com/poefarm/tracker-server-go/internal/model"
	"github.com/poefarm/tracker-server-go/internal/repository"
	"github.com/poefarm/tracker-server-go/internal/util"
)

type AdminService struct {
	sessionRepo   repository.AdminSessionRepository
	settings      *SettingsService
	passwordHash  string
	sessionSecret string
	now           Clock
}

func NewAdminService(
	sessionRepo repository.AdminSessionRepository,
	settings *SettingsService,
	passwordHash, sessionSecret string,
	now Clock,
) *AdminService {
	return &AdminService{
		sessionRepo:   sessionRepo,
		settings:      settings,
		passwordHash:  passwordHash,
		sessionSecret: sessionSecret,
		now:           now,
	}
}

// Login checks the admin password, issues a session token, and stamps the
// login time on the user's settings. Wrong passwords get the same error as
// any other auth failure.
func (s *AdminService) Login(ctx context.Context, userID, password string) (string, error) {
	if !util.CheckPasswordHash(password, s.passwordHash) {
		return "", apperrors.Unauthorized("Invalid password")
	}

	token, err := util.GenerateToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	tokenHash := util.HmacSHA256(s.sessionSecret, token)
	_, err = s.sessionRepo.Create(ctx, model.CreateAdminSessionParams{
		TokenHash: tokenHash,
		UserID:    userID,
		ExpiresAt: s.now().Add(config.AdminSessionMaxAge),
	})
	if err != nil {
		return "", fmt.Errorf("create admin session: %w", err)
	}

	if _, err := s.settings.RecordAdminLogin(ctx, userID); err != nil {
		return "", fmt.Errorf("record admin login: %w", err)
	}

	log.Info().Str("userId", userID).Msg("admin login")
	return token, nil
}

func (s *AdminService) Logout(ctx context.Context, token string) error {
	tokenHash := util.HmacSHA256(s.sessionSecret, token)
	return s.sessionRepo.DeleteByTokenHash(ctx, tokenHash)
}

// ValidateSession resolves a cookie token to its stored session. Returns
// (nil, nil) when the token is unknown or expired.
func (s *AdminService) ValidateSession(ctx context.Context, token string) (*model.AdminSession, error) {
	tokenHash := util.HmacSHA256(s.sessionSecret, token)
	return s.sessionRepo.FindByTokenHash(ctx, tokenHash)
}
