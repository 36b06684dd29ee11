package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"crosspost/internal/common"
	"crosspost/internal/config"
	"crosspost/internal/dbmysql"
	"crosspost/internal/platform"
)

type AccountService interface {
	ListAccounts(ctx context.Context, userID uint64) ([]dbmysql.ConnectedAccount, error)
	// BeginConnect builds the OAuth authorization URL for a platform. The
	// returned state carries the user id for the callback.
	BeginConnect(ctx context.Context, userID uint64, platformID string) (string, error)
	// CompleteConnect handles the OAuth callback: code -> token -> profile,
	// then stores the connected account.
	CompleteConnect(ctx context.Context, userID uint64, platformID, code string) (*dbmysql.ConnectedAccount, error)
	Disconnect(ctx context.Context, userID uint64, platformID string) error
}

type accountService struct {
	cfg   *config.Config
	repo  AccountRepository
	oauth OAuthClient
	reg   *platform.Registry
}

func NewAccountService(cfg *config.Config, repo AccountRepository, oauth OAuthClient, reg *platform.Registry) AccountService {
	return &accountService{cfg: cfg, repo: repo, oauth: oauth, reg: reg}
}

func (s *accountService) ListAccounts(ctx context.Context, userID uint64) ([]dbmysql.ConnectedAccount, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *accountService) BeginConnect(ctx context.Context, userID uint64, platformID string) (string, error) {
	if err := s.reg.Validate([]string{platformID}); err != nil {
		return "", err
	}

	existing, err := s.repo.FindByUserAndPlatform(ctx, userID, platformID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", fmt.Errorf("%w: %s", common.ErrAlreadyConnected, platformID)
	}

	state := fmt.Sprintf("%d:%s", userID, uuid.NewString())
	redirectURI := s.redirectURI(platformID)

	authURL := platform.ConnectURL(s.cfg, platformID, redirectURI, state)
	if authURL == "" {
		return "", fmt.Errorf("%s is not configured, add oauth credentials", platformID)
	}
	return authURL, nil
}

func (s *accountService) CompleteConnect(ctx context.Context, userID uint64, platformID, code string) (*dbmysql.ConnectedAccount, error) {
	if err := s.reg.Validate([]string{platformID}); err != nil {
		return nil, err
	}

	token, err := s.oauth.ExchangeCode(ctx, platformID, code, s.redirectURI(platformID))
	if err != nil {
		return nil, err
	}

	profile, err := s.oauth.FetchProfile(ctx, platformID, token.AccessToken)
	if err != nil {
		return nil, err
	}

	oc, _ := platform.OAuthConfigFor(platformID)

	account := &dbmysql.ConnectedAccount{
		UserID:         userID,
		PlatformID:     platformID,
		PlatformName:   oc.Name,
		Username:       profile.Username,
		DisplayName:    profile.DisplayName,
		AccessToken:    token.AccessToken,
		PlatformUserID: profile.PlatformUserID,
		IsActive:       true,
	}
	if profile.Avatar != "" {
		account.Avatar = &profile.Avatar
	}
	if profile.PageID != "" {
		account.PageID = &profile.PageID
	}
	if token.RefreshToken != "" {
		account.RefreshToken = &token.RefreshToken
	}
	if token.ExpiresIn > 0 {
		expiry := time.Now().UTC().Add(time.Duration(token.ExpiresIn) * time.Second)
		account.TokenExpiresAt = &expiry
	}

	// one account per (user, platform): replace a stale row in place
	existing, err := s.repo.FindByUserAndPlatform(ctx, userID, platformID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		account.AccountID = existing.AccountID
		account.ConnectedAt = existing.ConnectedAt
		if err := s.repo.UpdateAccount(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to update account: %w", err)
		}
		return account, nil
	}

	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to store account: %w", err)
	}
	return account, nil
}

func (s *accountService) Disconnect(ctx context.Context, userID uint64, platformID string) error {
	account, err := s.repo.FindByUserAndPlatform(ctx, userID, platformID)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("%w: %s not connected", common.ErrNotFound, platformID)
	}
	return s.repo.DeleteAccount(ctx, account.AccountID)
}

func (s *accountService) redirectURI(platformID string) string {
	return fmt.Sprintf("%s/accounts/callback/%s", strings.TrimRight(s.cfg.Server.FrontendURL, "/"), platformID)
}

// ParseState splits the "userID:nonce" OAuth state parameter.
func ParseState(state string) (uint64, error) {
	parts := strings.SplitN(state, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid state parameter")
	}
	var userID uint64
	if _, err := fmt.Sscanf(parts[0], "%d", &userID); err != nil {
		return 0, fmt.Errorf("invalid state parameter")
	}
	return userID, nil
}
