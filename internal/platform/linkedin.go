package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"crosspost/internal/dbmysql"
)

const linkedinPostURL = "https://api.linkedin.com/v2/ugcPosts"

// LinkedInAdapter publishes UGC share posts for the authenticated member.
type LinkedInAdapter struct {
	client *http.Client
}

func NewLinkedInAdapter(client *http.Client) *LinkedInAdapter {
	return &LinkedInAdapter{client: client}
}

func (a *LinkedInAdapter) ID() string { return LinkedIn }

func (a *LinkedInAdapter) Publish(ctx context.Context, account *dbmysql.ConnectedAccount, caption string, mediaURLs []string) Outcome {
	headers := map[string]string{
		"Authorization":             "Bearer " + account.AccessToken,
		"X-Restli-Protocol-Version": "2.0.0",
	}

	payload := map[string]interface{}{
		"author":         "urn:li:person:" + account.PlatformUserID,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary":    map[string]string{"text": caption},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	status, body, err := postJSON(ctx, a.client, linkedinPostURL, headers, payload)
	if err != nil {
		return Failure(fmt.Sprintf("linkedin request failed: %v", err))
	}
	if status != http.StatusCreated {
		return Failure(string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Failure(fmt.Sprintf("linkedin response unreadable: %v", err))
	}

	postID := strings.TrimPrefix(resp.ID, "urn:li:share:")
	return Published(postID, "https://linkedin.com/feed/update/urn:li:share:"+postID)
}
