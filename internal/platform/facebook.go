package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"crosspost/internal/dbmysql"
)

const graphBase = "https://graph.facebook.com/v18.0"

// FacebookAdapter posts to a page feed. Publishing needs a postable target
// (the page id from the account, falling back to the platform user id).
type FacebookAdapter struct {
	client *http.Client
}

func NewFacebookAdapter(client *http.Client) *FacebookAdapter {
	return &FacebookAdapter{client: client}
}

func (a *FacebookAdapter) ID() string { return Facebook }

func (a *FacebookAdapter) Publish(ctx context.Context, account *dbmysql.ConnectedAccount, caption string, mediaURLs []string) Outcome {
	pageID := account.PostTarget()
	if pageID == "" {
		return Failure("no postable target")
	}

	form := url.Values{}
	form.Set("access_token", account.AccessToken)
	form.Set("message", caption)

	status, body, err := postForm(ctx, a.client, fmt.Sprintf("%s/%s/feed", graphBase, pageID), form)
	if err != nil {
		return Failure(fmt.Sprintf("facebook request failed: %v", err))
	}
	if status != http.StatusOK {
		return Failure(string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Failure(fmt.Sprintf("facebook response unreadable: %v", err))
	}

	return Published(resp.ID, "https://facebook.com/"+resp.ID)
}
