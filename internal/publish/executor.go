package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"crosspost/internal/common"
	"crosspost/internal/dbmysql"
	"crosspost/internal/platform"
)

// progressCheckpoints are the paced per-target progress values written while
// a publish is in flight. They are engine-level pacing for observers; the
// platform APIs expose no real sub-progress. The terminal adapter call
// happens after the last checkpoint.
var progressCheckpoints = []int{30, 50, 70, 90}

// executor drives one (post, platform) record through its state machine:
// pending -> in_progress -> published|failed. It owns the record exclusively
// for the duration of the run and always leaves it in a terminal state.
type executor struct {
	record   *dbmysql.PublishResult
	caption  string
	media    []string
	results  ResultRepository
	accounts AccountResolver
	registry *platform.Registry

	stepDelay time.Duration
	log       zerolog.Logger
}

func (e *executor) run(ctx context.Context) {
	rec := e.record

	account, err := e.accounts.FindActive(ctx, rec.UserID, rec.PlatformID)
	if err != nil {
		e.fail(ctx, fmt.Sprintf("account lookup failed: %v", err))
		return
	}
	if account == nil {
		// configuration error: terminal before any remote call, and the
		// record never enters in_progress
		e.fail(ctx, fmt.Sprintf("no active %s account", rec.PlatformID))
		return
	}

	adapter, ok := e.registry.Lookup(rec.PlatformID)
	if !ok {
		e.fail(ctx, fmt.Sprintf("platform %s not configured", rec.PlatformID))
		return
	}

	rec.Status = common.PublishInProgress
	rec.Progress = 10
	e.save(ctx)

	for _, p := range progressCheckpoints {
		if e.stepDelay > 0 {
			time.Sleep(e.stepDelay)
		}
		rec.Progress = p
		e.save(ctx)
	}

	outcome := e.callAdapter(ctx, adapter, account)

	if outcome.Success {
		now := time.Now().UTC()
		rec.Status = common.PublishPublished
		rec.Progress = 100
		rec.PublishedAt = &now
		rec.PostURL = &outcome.URL
		rec.ExternalID = &outcome.ExternalID
		rec.Error = nil
		e.save(ctx)
		e.log.Info().Uint64("post", rec.PostID).Str("platform", rec.PlatformID).Str("url", outcome.URL).Msg("published")
		return
	}

	// remote rejection: surface the platform's message verbatim, keep the
	// last progress value
	rec.Status = common.PublishFailed
	reason := outcome.Reason
	rec.Error = &reason
	e.save(ctx)
	e.log.Warn().Uint64("post", rec.PostID).Str("platform", rec.PlatformID).Str("reason", reason).Msg("publish failed")
}

// callAdapter isolates the remote call; a panic inside an adapter is mapped
// to an ordinary Failure so a broken adapter can never take sibling targets
// down with it.
func (e *executor) callAdapter(ctx context.Context, adapter platform.Adapter, account *dbmysql.ConnectedAccount) (outcome platform.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Uint64("post", e.record.PostID).Str("platform", e.record.PlatformID).
				Interface("panic", r).Msg("adapter panicked")
			outcome = platform.Failure("unexpected error during publish")
		}
	}()

	return adapter.Publish(ctx, account, e.caption, e.media)
}

func (e *executor) fail(ctx context.Context, reason string) {
	e.record.Status = common.PublishFailed
	e.record.Error = &reason
	e.save(ctx)
	e.log.Warn().Uint64("post", e.record.PostID).Str("platform", e.record.PlatformID).Str("reason", reason).Msg("publish failed")
}

func (e *executor) save(ctx context.Context) {
	if err := e.results.Save(ctx, e.record); err != nil {
		e.log.Error().Err(err).Uint64("post", e.record.PostID).Str("platform", e.record.PlatformID).Msg("result save failed")
	}
}
