package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"crosspost/internal/dbmysql"
)

const youtubeUploadURL = "https://www.googleapis.com/upload/youtube/v3/videos?part=snippet,status&uploadType=resumable"

// YouTubeAdapter starts a resumable video upload. A post without media
// cannot become a video, so the media list is required; only the first
// media item is used.
type YouTubeAdapter struct {
	client *http.Client
}

func NewYouTubeAdapter(client *http.Client) *YouTubeAdapter {
	return &YouTubeAdapter{client: client}
}

func (a *YouTubeAdapter) ID() string { return YouTube }

func (a *YouTubeAdapter) Publish(ctx context.Context, account *dbmysql.ConnectedAccount, caption string, mediaURLs []string) Outcome {
	if len(mediaURLs) == 0 {
		return Failure("media required")
	}

	headers := map[string]string{"Authorization": "Bearer " + account.AccessToken}
	payload := map[string]interface{}{
		"snippet": map[string]string{
			"title":       truncateTitle(caption),
			"description": caption,
		},
		"status": map[string]string{"privacyStatus": "public"},
	}

	status, body, err := postJSON(ctx, a.client, youtubeUploadURL, headers, payload)
	if err != nil {
		return Failure(fmt.Sprintf("youtube request failed: %v", err))
	}
	if status != http.StatusOK {
		return Failure(string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Failure(fmt.Sprintf("youtube response unreadable: %v", err))
	}

	return Published(resp.ID, "https://www.youtube.com/watch?v="+resp.ID)
}

func truncateTitle(caption string) string {
	// YouTube titles cap at 100 characters, not bytes.
	runes := []rune(caption)
	if len(runes) <= 100 {
		return caption
	}
	return string(runes[:97]) + "..."
}
