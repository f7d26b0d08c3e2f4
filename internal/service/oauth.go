package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xandwr/doctown-website/internal/adapter/backend"
	"github.com/xandwr/doctown-website/internal/adapter/cache"
	"github.com/xandwr/doctown-website/internal/adapter/github"
	"github.com/xandwr/doctown-website/internal/config"
	"github.com/xandwr/doctown-website/internal/domain"
)

// LoginStart holds what the login route needs: the provider redirect
// target and the anti-forgery state to pin in a cookie.
type LoginStart struct {
	AuthorizeURL string
	State        string
}

// LoginResult is the outcome of a completed callback exchange.
type LoginResult struct {
	SessionToken string
	User         *domain.GitHubUser
}

// OAuthService drives the GitHub login handshake.
type OAuthService interface {
	// Begin generates a state token, registers it with the replay
	// guard, and builds the GitHub authorization URL.
	Begin(ctx context.Context) (*LoginStart, error)

	// ConsumeState marks a state token used. Returns ErrStateReplayed
	// when the token was already consumed.
	ConsumeState(ctx context.Context, state string) error

	// Complete runs the post-validation callback sequence: code
	// exchange, profile fetch, user upsert, session token selection.
	Complete(ctx context.Context, code string) (*LoginResult, error)
}

type oauthService struct {
	github  github.Client
	backend *backend.Client
	guard   *cache.StateGuard
	cfg     config.Config
	logger  *zap.Logger
}

// NewOAuthService wires the OAuth service implementation.
func NewOAuthService(gh github.Client, be *backend.Client, guard *cache.StateGuard, cfg config.Config, logger *zap.Logger) OAuthService {
	return &oauthService{github: gh, backend: be, guard: guard, cfg: cfg, logger: logger}
}

func (s *oauthService) Begin(ctx context.Context) (*LoginStart, error) {
	state, err := secureRandomString(32)
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	authorizeURL, err := s.github.AuthorizeURL(state)
	if err != nil {
		return nil, fmt.Errorf("build authorize url: %w", err)
	}
	if err := s.guard.Issue(ctx, state, s.cfg.StateCookieMaxAge); err != nil {
		return nil, fmt.Errorf("register state: %w", err)
	}
	return &LoginStart{AuthorizeURL: authorizeURL, State: state}, nil
}

func (s *oauthService) ConsumeState(ctx context.Context, state string) error {
	ok, err := s.guard.Consume(ctx, state)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrStateReplayed
	}
	return nil
}

func (s *oauthService) Complete(ctx context.Context, code string) (*LoginResult, error) {
	token, err := s.github.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	profile, err := s.github.FetchUser(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	// The upsert is best effort: a backend outage must not lock users
	// out of login. The resulting session has no stored user record,
	// which the WARN below makes visible to operators.
	sessionToken := ""
	upserted, err := s.backend.UpsertUser(ctx, backend.UpsertUserInput{
		GitHubID:    profile.ID,
		Username:    profile.Login,
		AvatarURL:   profile.AvatarURL,
		AccessToken: token.AccessToken,
	})
	if err != nil {
		s.log().Warn("user upsert failed, continuing login",
			zap.String("username", profile.Login),
			zap.Bool("session_without_user", true),
			zap.Error(err))
	} else {
		sessionToken = strings.TrimSpace(upserted.SessionToken)
	}
	if sessionToken == "" {
		sessionToken = uuid.NewString()
	}

	return &LoginResult{SessionToken: sessionToken, User: profile}, nil
}

func (s *oauthService) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}

func secureRandomString(size int) (string, error) {
	if size <= 0 {
		size = 32
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
