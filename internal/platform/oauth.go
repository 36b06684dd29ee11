package platform

import (
	"net/url"
	"strings"

	"crosspost/internal/config"
)

// OAuthConfig describes how accounts for one platform get connected.
type OAuthConfig struct {
	Name     string
	Color    string
	AuthURL  string
	TokenURL string
	Scopes   []string
	UserInfo string
}

// oauthConfigs is keyed by platform id. Instagram rides on the Facebook
// Graph app; YouTube on Google OAuth.
var oauthConfigs = map[string]OAuthConfig{
	Twitter: {
		Name:     "Twitter",
		Color:    "#1da1f2",
		AuthURL:  "https://twitter.com/i/oauth2/authorize",
		TokenURL: "https://api.twitter.com/2/oauth2/token",
		Scopes:   []string{"tweet.read", "tweet.write", "users.read", "offline.access"},
		UserInfo: "https://api.twitter.com/2/users/me?user.fields=profile_image_url,username",
	},
	Facebook: {
		Name:     "Facebook",
		Color:    "#1877f2",
		AuthURL:  "https://www.facebook.com/v18.0/dialog/oauth",
		TokenURL: "https://graph.facebook.com/v18.0/oauth/access_token",
		Scopes:   []string{"pages_read_engagement", "pages_show_list", "public_profile", "pages_manage_posts"},
		UserInfo: "https://graph.facebook.com/me?fields=id,name,accounts{name,access_token,id}",
	},
	Instagram: {
		Name:     "Instagram",
		Color:    "#e4405f",
		AuthURL:  "https://www.facebook.com/v18.0/dialog/oauth",
		TokenURL: "https://graph.facebook.com/v18.0/oauth/access_token",
		Scopes:   []string{"instagram_basic", "instagram_content_publish", "pages_show_list", "pages_read_engagement"},
		UserInfo: "https://graph.facebook.com/me/accounts?fields=instagram_business_account",
	},
	LinkedIn: {
		Name:     "LinkedIn",
		Color:    "#0a66c2",
		AuthURL:  "https://www.linkedin.com/oauth/v2/authorization",
		TokenURL: "https://www.linkedin.com/oauth/v2/accessToken",
		Scopes:   []string{"w_member_social", "r_liteprofile"},
		UserInfo: "https://api.linkedin.com/v2/userinfo",
	},
	YouTube: {
		Name:     "YouTube",
		Color:    "#ff0000",
		AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL: "https://oauth2.googleapis.com/token",
		Scopes:   []string{"https://www.googleapis.com/auth/youtube.upload"},
		UserInfo: "https://www.googleapis.com/youtube/v3/channels?part=snippet&mine=true",
	},
}

func OAuthConfigFor(platformID string) (OAuthConfig, bool) {
	c, ok := oauthConfigs[platformID]
	return c, ok
}

// ClientCredentials returns the OAuth app id/secret for a platform.
// Instagram deliberately shares the Facebook app credentials.
func ClientCredentials(cfg *config.Config, platformID string) (string, string) {
	switch platformID {
	case Twitter:
		return cfg.Platforms.TwitterClientID, cfg.Platforms.TwitterClientSecret
	case Facebook, Instagram:
		return cfg.Platforms.FacebookClientID, cfg.Platforms.FacebookClientSecret
	case LinkedIn:
		return cfg.Platforms.LinkedInClientID, cfg.Platforms.LinkedInClientSecret
	case YouTube:
		return cfg.Platforms.YouTubeClientID, cfg.Platforms.YouTubeClientSecret
	}
	return "", ""
}

// ConnectURL builds the authorization URL the user is redirected to.
func ConnectURL(cfg *config.Config, platformID, redirectURI, state string) string {
	oc, ok := oauthConfigs[platformID]
	if !ok {
		return ""
	}
	clientID, _ := ClientCredentials(cfg, platformID)
	if clientID == "" {
		return ""
	}

	params := url.Values{}
	params.Set("client_id", clientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", strings.Join(oc.Scopes, " "))
	params.Set("state", state)

	return oc.AuthURL + "?" + params.Encode()
}
