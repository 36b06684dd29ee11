package account

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosspost/internal/common"
	"crosspost/internal/config"
	"crosspost/internal/dbmysql"
	"crosspost/internal/platform"
)

type memAccountRepo struct {
	nextID   uint64
	accounts map[uint64]*dbmysql.ConnectedAccount
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[uint64]*dbmysql.ConnectedAccount)}
}

func (m *memAccountRepo) ListByUser(ctx context.Context, userID uint64) ([]dbmysql.ConnectedAccount, error) {
	var out []dbmysql.ConnectedAccount
	for _, a := range m.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAccountRepo) FindByUserAndPlatform(ctx context.Context, userID uint64, platformID string) (*dbmysql.ConnectedAccount, error) {
	for _, a := range m.accounts {
		if a.UserID == userID && a.PlatformID == platformID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memAccountRepo) FindActive(ctx context.Context, userID uint64, platformID string) (*dbmysql.ConnectedAccount, error) {
	a, _ := m.FindByUserAndPlatform(ctx, userID, platformID)
	if a == nil || !a.IsActive {
		return nil, nil
	}
	return a, nil
}

func (m *memAccountRepo) CreateAccount(ctx context.Context, account *dbmysql.ConnectedAccount) error {
	m.nextID++
	account.AccountID = m.nextID
	cp := *account
	m.accounts[account.AccountID] = &cp
	return nil
}

func (m *memAccountRepo) UpdateAccount(ctx context.Context, account *dbmysql.ConnectedAccount) error {
	cp := *account
	m.accounts[account.AccountID] = &cp
	return nil
}

func (m *memAccountRepo) DeleteAccount(ctx context.Context, accountID uint64) error {
	delete(m.accounts, accountID)
	return nil
}

type stubOAuthClient struct {
	token   TokenResponse
	profile ProfileInfo
}

func (s *stubOAuthClient) ExchangeCode(ctx context.Context, platformID, code, redirectURI string) (*TokenResponse, error) {
	tok := s.token
	return &tok, nil
}

func (s *stubOAuthClient) FetchProfile(ctx context.Context, platformID, accessToken string) (*ProfileInfo, error) {
	p := s.profile
	return &p, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{FrontendURL: "http://localhost:5173"},
		Platforms: config.PlatformsConfig{
			TwitterClientID:     "tw-client",
			TwitterClientSecret: "tw-secret",
		},
	}
}

func testRegistry() *platform.Registry {
	return platform.NewRegistryWith(
		platform.NewTwitterAdapter(nil),
		platform.NewFacebookAdapter(nil),
	)
}

func TestBeginConnect(t *testing.T) {
	repo := newMemAccountRepo()
	svc := NewAccountService(testConfig(), repo, &stubOAuthClient{}, testRegistry())
	ctx := context.Background()

	t.Run("builds the authorization url", func(t *testing.T) {
		authURL, err := svc.BeginConnect(ctx, 7, platform.Twitter)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(authURL, "https://twitter.com/i/oauth2/authorize?"), authURL)
		assert.Contains(t, authURL, "client_id=tw-client")
		assert.Contains(t, authURL, "state=7%3A")
	})

	t.Run("unknown platform", func(t *testing.T) {
		_, err := svc.BeginConnect(ctx, 7, "myspace")
		require.ErrorIs(t, err, common.ErrUnknownPlatform)
	})

	t.Run("missing app credentials", func(t *testing.T) {
		_, err := svc.BeginConnect(ctx, 7, platform.Facebook)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	})

	t.Run("already connected", func(t *testing.T) {
		require.NoError(t, repo.CreateAccount(ctx, &dbmysql.ConnectedAccount{
			UserID: 7, PlatformID: platform.Twitter, IsActive: true,
		}))

		_, err := svc.BeginConnect(ctx, 7, platform.Twitter)
		require.ErrorIs(t, err, common.ErrAlreadyConnected)
	})
}

func TestCompleteConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a new account", func(t *testing.T) {
		repo := newMemAccountRepo()
		oauth := &stubOAuthClient{
			token:   TokenResponse{AccessToken: "at-1", RefreshToken: "rt-1", ExpiresIn: 3600},
			profile: ProfileInfo{PlatformUserID: "tw-9", Username: "alice", DisplayName: "Alice"},
		}
		svc := NewAccountService(testConfig(), repo, oauth, testRegistry())

		acct, err := svc.CompleteConnect(ctx, 7, platform.Twitter, "code-1")
		require.NoError(t, err)
		assert.Equal(t, "tw-9", acct.PlatformUserID)
		assert.Equal(t, "at-1", acct.AccessToken)
		require.NotNil(t, acct.RefreshToken)
		assert.Equal(t, "rt-1", *acct.RefreshToken)
		require.NotNil(t, acct.TokenExpiresAt)
		assert.WithinDuration(t, time.Now().Add(time.Hour), *acct.TokenExpiresAt, time.Minute)
		assert.True(t, acct.IsActive)

		stored, err := repo.FindActive(ctx, 7, platform.Twitter)
		require.NoError(t, err)
		require.NotNil(t, stored)
	})

	t.Run("reconnect replaces the stale row", func(t *testing.T) {
		repo := newMemAccountRepo()
		require.NoError(t, repo.CreateAccount(ctx, &dbmysql.ConnectedAccount{
			UserID: 7, PlatformID: platform.Twitter, AccessToken: "old", IsActive: false,
		}))
		oauth := &stubOAuthClient{
			token:   TokenResponse{AccessToken: "fresh"},
			profile: ProfileInfo{PlatformUserID: "tw-9", Username: "alice"},
		}
		svc := NewAccountService(testConfig(), repo, oauth, testRegistry())

		acct, err := svc.CompleteConnect(ctx, 7, platform.Twitter, "code-2")
		require.NoError(t, err)
		assert.Equal(t, uint64(1), acct.AccountID, "must reuse the existing row")
		assert.Equal(t, "fresh", acct.AccessToken)

		accounts, err := repo.ListByUser(ctx, 7)
		require.NoError(t, err)
		assert.Len(t, accounts, 1)
	})
}

func TestDisconnect(t *testing.T) {
	ctx := context.Background()
	repo := newMemAccountRepo()
	require.NoError(t, repo.CreateAccount(ctx, &dbmysql.ConnectedAccount{
		UserID: 7, PlatformID: platform.Twitter, IsActive: true,
	}))
	svc := NewAccountService(testConfig(), repo, &stubOAuthClient{}, testRegistry())

	require.NoError(t, svc.Disconnect(ctx, 7, platform.Twitter))

	accounts, err := repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	err = svc.Disconnect(ctx, 7, platform.Twitter)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestParseState(t *testing.T) {
	userID, err := ParseState("7:abc-def")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), userID)

	_, err = ParseState("garbage")
	require.Error(t, err)

	_, err = ParseState("x:nonce")
	require.Error(t, err)
}
