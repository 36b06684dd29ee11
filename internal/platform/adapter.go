package platform

import (
	"context"

	"crosspost/internal/dbmysql"
)

// Platform identifiers. The set is closed; the registry rejects anything
// else before a publish is dispatched.
const (
	Twitter   = "twitter"
	Facebook  = "facebook"
	Instagram = "instagram"
	LinkedIn  = "linkedin"
	YouTube   = "youtube"
)

// Outcome is the result of one publish attempt against a platform API.
// Ordinary remote failure (non-2xx, rejected content, missing media) is a
// Failure outcome, never a Go error; adapters reserve errors for
// programming or configuration faults.
type Outcome struct {
	Success    bool
	ExternalID string
	URL        string
	Reason     string
}

func Failure(reason string) Outcome {
	return Outcome{Reason: reason}
}

func Published(externalID, url string) Outcome {
	return Outcome{Success: true, ExternalID: externalID, URL: url}
}

// Adapter normalizes one platform's publish API behind a uniform capability.
// mediaURLs preserves the order the user attached media in.
type Adapter interface {
	ID() string
	Publish(ctx context.Context, account *dbmysql.ConnectedAccount, caption string, mediaURLs []string) Outcome
}
