package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"crosspost/internal/dbmysql"
)

const twitterPostURL = "https://api.twitter.com/2/tweets"

// TwitterAdapter publishes text tweets via the v2 API. Media is ignored;
// tweet attachments need the separate upload API which is not wired here.
type TwitterAdapter struct {
	client *http.Client
}

func NewTwitterAdapter(client *http.Client) *TwitterAdapter {
	return &TwitterAdapter{client: client}
}

func (a *TwitterAdapter) ID() string { return Twitter }

func (a *TwitterAdapter) Publish(ctx context.Context, account *dbmysql.ConnectedAccount, caption string, mediaURLs []string) Outcome {
	headers := map[string]string{"Authorization": "Bearer " + account.AccessToken}
	payload := map[string]string{"text": caption}

	status, body, err := postJSON(ctx, a.client, twitterPostURL, headers, payload)
	if err != nil {
		return Failure(fmt.Sprintf("twitter request failed: %v", err))
	}
	if status != http.StatusCreated {
		return Failure(string(body))
	}

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Failure(fmt.Sprintf("twitter response unreadable: %v", err))
	}

	return Published(resp.Data.ID, "https://twitter.com/i/status/"+resp.Data.ID)
}
