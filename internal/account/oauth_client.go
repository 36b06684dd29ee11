package account

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"crosspost/internal/config"
	"crosspost/internal/platform"
)

// TokenResponse is the token-endpoint reply shared by all platforms.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ProfileInfo is the subset of the platform profile stored on the account.
type ProfileInfo struct {
	PlatformUserID string
	Username       string
	DisplayName    string
	Avatar         string
	PageID         string
}

// OAuthClient exchanges authorization codes and fetches platform profiles.
// It is an interface so the service tests can fake the network.
type OAuthClient interface {
	ExchangeCode(ctx context.Context, platformID, code, redirectURI string) (*TokenResponse, error)
	FetchProfile(ctx context.Context, platformID, accessToken string) (*ProfileInfo, error)
}

type oauthClient struct {
	cfg    *config.Config
	client *http.Client
}

func NewOAuthClient(cfg *config.Config, client *http.Client) OAuthClient {
	return &oauthClient{cfg: cfg, client: client}
}

func (c *oauthClient) ExchangeCode(ctx context.Context, platformID, code, redirectURI string) (*TokenResponse, error) {
	oc, ok := platform.OAuthConfigFor(platformID)
	if !ok {
		return nil, fmt.Errorf("no oauth config for %s", platformID)
	}

	clientID, clientSecret := platform.ClientCredentials(c.cfg, platformID)
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%s is not configured", platformID)
	}

	form := url.Values{}
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, oc.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange rejected: %s", string(body))
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("token response unreadable: %w", err)
	}
	return &token, nil
}

func (c *oauthClient) FetchProfile(ctx context.Context, platformID, accessToken string) (*ProfileInfo, error) {
	oc, ok := platform.OAuthConfigFor(platformID)
	if !ok {
		return nil, fmt.Errorf("no oauth config for %s", platformID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, oc.UserInfo, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile fetch failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile fetch rejected: %s", string(body))
	}

	return parseProfile(platformID, body)
}

// parseProfile pulls the fields we keep out of each platform's own profile
// shape.
func parseProfile(platformID string, body []byte) (*ProfileInfo, error) {
	switch platformID {
	case platform.Twitter:
		var resp struct {
			Data struct {
				ID              string `json:"id"`
				Username        string `json:"username"`
				Name            string `json:"name"`
				ProfileImageURL string `json:"profile_image_url"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}
		return &ProfileInfo{
			PlatformUserID: resp.Data.ID,
			Username:       resp.Data.Username,
			DisplayName:    resp.Data.Name,
			Avatar:         resp.Data.ProfileImageURL,
		}, nil

	case platform.Facebook:
		var resp struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Accounts struct {
				Data []struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				} `json:"data"`
			} `json:"accounts"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}
		info := &ProfileInfo{
			PlatformUserID: resp.ID,
			Username:       resp.Name,
			DisplayName:    resp.Name,
		}
		if len(resp.Accounts.Data) > 0 {
			info.PageID = resp.Accounts.Data[0].ID
		}
		return info, nil

	case platform.Instagram:
		var resp struct {
			Data []struct {
				InstagramBusinessAccount struct {
					ID string `json:"id"`
				} `json:"instagram_business_account"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}
		info := &ProfileInfo{}
		for _, page := range resp.Data {
			if page.InstagramBusinessAccount.ID != "" {
				info.PlatformUserID = page.InstagramBusinessAccount.ID
				info.PageID = page.InstagramBusinessAccount.ID
				break
			}
		}
		if info.PlatformUserID == "" {
			return nil, fmt.Errorf("no instagram business account linked")
		}
		return info, nil

	case platform.LinkedIn:
		var resp struct {
			Sub     string `json:"sub"`
			Name    string `json:"name"`
			Picture string `json:"picture"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}
		return &ProfileInfo{
			PlatformUserID: resp.Sub,
			Username:       resp.Name,
			DisplayName:    resp.Name,
			Avatar:         resp.Picture,
		}, nil

	case platform.YouTube:
		var resp struct {
			Items []struct {
				ID      string `json:"id"`
				Snippet struct {
					Title      string `json:"title"`
					Thumbnails struct {
						Default struct {
							URL string `json:"url"`
						} `json:"default"`
					} `json:"thumbnails"`
				} `json:"snippet"`
			} `json:"items"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}
		if len(resp.Items) == 0 {
			return nil, fmt.Errorf("no youtube channel found")
		}
		ch := resp.Items[0]
		return &ProfileInfo{
			PlatformUserID: ch.ID,
			Username:       ch.Snippet.Title,
			DisplayName:    ch.Snippet.Title,
			Avatar:         ch.Snippet.Thumbnails.Default.URL,
		}, nil
	}

	return nil, fmt.Errorf("no profile parser for %s", platformID)
}
