package publish

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"crosspost/internal/cache"
	"crosspost/internal/common"
	"crosspost/internal/config"
	"crosspost/internal/dbmysql"
	"crosspost/internal/platform"
)

const resultsCacheTTL = 2 * time.Second

// Orchestrator fans one post out to N platform targets, runs them
// concurrently, and folds the terminal results back into one post-level
// status. Each target is owned by exactly one goroutine; there is no shared
// mutable state between targets and therefore no cross-target locking.
type Orchestrator struct {
	registry *platform.Registry
	results  ResultRepository
	accounts AccountResolver
	posts    PostStatusStore
	cache    *cache.Cache
	log      zerolog.Logger

	stepDelay time.Duration
	inflight  sync.WaitGroup
}

func NewOrchestrator(
	cfg *config.Config,
	registry *platform.Registry,
	results ResultRepository,
	accounts AccountResolver,
	posts PostStatusStore,
	c *cache.Cache,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		registry:  registry,
		results:   results,
		accounts:  accounts,
		posts:     posts,
		cache:     c,
		log:       log.With().Str("component", "publish").Logger(),
		stepDelay: cfg.Publish.StepDelay,
	}
}

// Dispatch creates (or reuses) one publish record per requested platform,
// persists them all as pending, then starts the executions in the
// background and returns the initial records immediately. Duplicate
// platform ids collapse to one record; a record that is already pending or
// in_progress is returned as-is without starting a second execution.
// Ownership of the post is the caller's check.
func (o *Orchestrator) Dispatch(ctx context.Context, post *dbmysql.Post, platformIDs []string) ([]*dbmysql.PublishResult, error) {
	ids := dedupe(platformIDs)
	if len(ids) == 0 {
		return nil, errors.New("no platforms requested")
	}
	if err := o.registry.Validate(ids); err != nil {
		return nil, err
	}

	records := make([]*dbmysql.PublishResult, 0, len(ids))
	toRun := make([]*dbmysql.PublishResult, 0, len(ids))

	for _, id := range ids {
		existing, err := o.results.Find(ctx, post.PostID, id)
		if err != nil {
			return nil, fmt.Errorf("record lookup failed: %w", err)
		}

		if existing != nil {
			if !existing.Status.Terminal() {
				// already queued or running; its goroutine owns the record
				records = append(records, existing)
				continue
			}
			resetRecord(existing)
			if err := o.results.Save(ctx, existing); err != nil {
				return nil, fmt.Errorf("record reset failed: %w", err)
			}
			records = append(records, existing)
			toRun = append(toRun, existing)
			continue
		}

		rec := &dbmysql.PublishResult{
			PostID:     post.PostID,
			UserID:     post.UserID,
			PlatformID: id,
			Status:     common.PublishPending,
		}
		if err := o.results.Create(ctx, rec); err != nil {
			return nil, fmt.Errorf("record create failed: %w", err)
		}
		records = append(records, rec)
		toRun = append(toRun, rec)
	}

	// snapshot before the executions start mutating the records
	snapshot := copyRecords(records)

	if len(toRun) > 0 {
		if err := o.posts.UpdateStatus(ctx, post.PostID, common.PostPublishing); err != nil {
			return nil, fmt.Errorf("post status update failed: %w", err)
		}
		o.cache.Delete(ctx, resultsKey(post.PostID))
		o.start(post, toRun)
	}

	return snapshot, nil
}

// Retry re-admits a single previously-failed (post, platform) pair. Sibling
// records are untouched. A record that has not reached a terminal state yet
// is rejected with ErrConflict instead of racing the running execution.
func (o *Orchestrator) Retry(ctx context.Context, post *dbmysql.Post, platformID string) (*dbmysql.PublishResult, error) {
	if err := o.registry.Validate([]string{platformID}); err != nil {
		return nil, err
	}

	rec, err := o.results.Find(ctx, post.PostID, platformID)
	if err != nil {
		return nil, fmt.Errorf("record lookup failed: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: no publish record for %s", common.ErrNotFound, platformID)
	}
	if !rec.Status.Terminal() {
		return nil, fmt.Errorf("%w: publish for %s still running", common.ErrConflict, platformID)
	}

	resetRecord(rec)
	if err := o.results.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("record reset failed: %w", err)
	}
	if err := o.posts.UpdateStatus(ctx, post.PostID, common.PostPublishing); err != nil {
		return nil, fmt.Errorf("post status update failed: %w", err)
	}
	o.cache.Delete(ctx, resultsKey(post.PostID))

	snapshot := *rec
	o.start(post, []*dbmysql.PublishResult{rec})

	return &snapshot, nil
}

// Results returns all publish records of a post, served from a short-lived
// cache. Ownership of the post is the caller's check.
func (o *Orchestrator) Results(ctx context.Context, postID uint64) ([]*dbmysql.PublishResult, error) {
	var cached []*dbmysql.PublishResult
	if o.cache.GetJSON(ctx, resultsKey(postID), &cached) {
		return cached, nil
	}

	results, err := o.results.FindMany(ctx, postID)
	if err != nil {
		return nil, err
	}

	o.cache.SetJSON(ctx, resultsKey(postID), results, resultsCacheTTL)
	return results, nil
}

// Wait blocks until all in-flight batches have finished. Used by tests and
// by graceful shutdown; a process exit before Wait returns strands affected
// records in in_progress (documented limitation, no auto-recovery).
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// start launches one goroutine per record plus a joiner that recomputes the
// post aggregate once every launched target is terminal. The executions run
// on a background context: once an adapter call is issued it runs to its
// own completion, there is no mid-flight cancellation.
func (o *Orchestrator) start(post *dbmysql.Post, recs []*dbmysql.PublishResult) {
	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()
		ctx := context.Background()

		var wg sync.WaitGroup
		for _, rec := range recs {
			ex := &executor{
				record:    rec,
				caption:   post.Caption,
				media:     post.MediaFiles,
				results:   o.results,
				accounts:  o.accounts,
				registry:  o.registry,
				stepDelay: o.stepDelay,
				log:       o.log,
			}
			wg.Add(1)
			go func(ex *executor) {
				defer wg.Done()
				ex.run(ctx)
			}(ex)
		}
		wg.Wait()
		o.finalize(ctx, post.PostID)
	}()
}

// finalize recomputes the post-level status from scratch from all records of
// the post. It only applies once every record is terminal; if another batch
// is still running, that batch's own finalize will run later.
func (o *Orchestrator) finalize(ctx context.Context, postID uint64) {
	results, err := o.results.FindMany(ctx, postID)
	if err != nil {
		o.log.Error().Err(err).Uint64("post", postID).Msg("aggregate recompute failed")
		return
	}
	if len(results) == 0 {
		return
	}

	published, failed := 0, 0
	for _, r := range results {
		switch r.Status {
		case common.PublishPublished:
			published++
		case common.PublishFailed:
			failed++
		default:
			return // a sibling batch is still in flight
		}
	}

	// Partial success shares the completed value with nothing else at post
	// level; the per-record statuses keep the real picture.
	var status common.PostStatus
	switch {
	case failed == 0:
		status = common.PostPublished
	case published == 0:
		status = common.PostFailed
	default:
		status = common.PostCompleted
	}

	if err := o.posts.UpdateStatus(ctx, postID, status); err != nil {
		o.log.Error().Err(err).Uint64("post", postID).Msg("aggregate save failed")
		return
	}
	o.cache.Delete(ctx, resultsKey(postID))
	o.log.Info().Uint64("post", postID).Str("status", string(status)).
		Int("published", published).Int("failed", failed).Msg("publish finished")
}

func resetRecord(rec *dbmysql.PublishResult) {
	rec.Status = common.PublishPending
	rec.Progress = 0
	rec.Error = nil
	rec.PostURL = nil
	rec.ExternalID = nil
	rec.PublishedAt = nil
}

func copyRecords(recs []*dbmysql.PublishResult) []*dbmysql.PublishResult {
	out := make([]*dbmysql.PublishResult, len(recs))
	for i, rec := range recs {
		cp := *rec
		out[i] = &cp
	}
	return out
}

func resultsKey(postID uint64) string {
	return fmt.Sprintf("publish:results:%d", postID)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
