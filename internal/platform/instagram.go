package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"crosspost/internal/dbmysql"
)

const maxCarouselItems = 10

// InstagramAdapter publishes through the Graph API. Every post needs media.
// Publishing is two-phase: create media container(s), then publish. A
// partial carousel is never published; any container failure fails the
// whole operation.
type InstagramAdapter struct {
	client *http.Client
}

func NewInstagramAdapter(client *http.Client) *InstagramAdapter {
	return &InstagramAdapter{client: client}
}

func (a *InstagramAdapter) ID() string { return Instagram }

func (a *InstagramAdapter) Publish(ctx context.Context, account *dbmysql.ConnectedAccount, caption string, mediaURLs []string) Outcome {
	igUserID := account.PostTarget()
	if igUserID == "" {
		return Failure("no postable target")
	}
	if len(mediaURLs) == 0 {
		return Failure("media required")
	}

	if len(mediaURLs) == 1 {
		creationID, out := a.createContainer(ctx, igUserID, account.AccessToken, url.Values{
			"image_url": {mediaURLs[0]},
			"caption":   {caption},
		})
		if !out.Success {
			return out
		}
		return a.publishContainer(ctx, igUserID, account.AccessToken, creationID)
	}

	// Carousel: one container per item, then a carousel container.
	items := mediaURLs
	if len(items) > maxCarouselItems {
		items = items[:maxCarouselItems]
	}

	childIDs := make([]string, 0, len(items))
	for _, mediaURL := range items {
		id, out := a.createContainer(ctx, igUserID, account.AccessToken, url.Values{
			"image_url":        {mediaURL},
			"is_carousel_item": {"true"},
		})
		if !out.Success {
			return Failure("carousel item failed: " + out.Reason)
		}
		childIDs = append(childIDs, id)
	}

	creationID, out := a.createContainer(ctx, igUserID, account.AccessToken, url.Values{
		"media_type": {"CAROUSEL"},
		"caption":    {caption},
		"children":   {strings.Join(childIDs, ",")},
	})
	if !out.Success {
		return Failure("carousel container failed: " + out.Reason)
	}

	return a.publishContainer(ctx, igUserID, account.AccessToken, creationID)
}

// createContainer returns the creation id on success; the Outcome carries
// the failure otherwise.
func (a *InstagramAdapter) createContainer(ctx context.Context, igUserID, token string, form url.Values) (string, Outcome) {
	form.Set("access_token", token)

	status, body, err := postForm(ctx, a.client, fmt.Sprintf("%s/%s/media", graphBase, igUserID), form)
	if err != nil {
		return "", Failure(fmt.Sprintf("instagram request failed: %v", err))
	}
	if status != http.StatusOK {
		return "", Failure(string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", Failure(fmt.Sprintf("instagram response unreadable: %v", err))
	}
	return resp.ID, Outcome{Success: true}
}

func (a *InstagramAdapter) publishContainer(ctx context.Context, igUserID, token, creationID string) Outcome {
	form := url.Values{}
	form.Set("access_token", token)
	form.Set("creation_id", creationID)

	status, body, err := postForm(ctx, a.client, fmt.Sprintf("%s/%s/media_publish", graphBase, igUserID), form)
	if err != nil {
		return Failure(fmt.Sprintf("instagram publish failed: %v", err))
	}
	if status != http.StatusOK {
		return Failure(string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Failure(fmt.Sprintf("instagram response unreadable: %v", err))
	}

	return Published(resp.ID, fmt.Sprintf("https://www.instagram.com/p/%s/", resp.ID))
}
