// Package scheduler publishes scheduled posts when their time arrives.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"crosspost/internal/dbmysql"
	"crosspost/internal/post"
	"crosspost/internal/publish"
)

// scheduled posts from one sweep are dispatched with bounded parallelism
const maxConcurrentDispatches = 4

type Scheduler struct {
	cron     *cron.Cron
	repo     post.PostRepository
	orch     *publish.Orchestrator
	log      zerolog.Logger
	cronSpec string
}

func New(spec string, repo post.PostRepository, orch *publish.Orchestrator, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		repo:     repo,
		orch:     orch,
		log:      log.With().Str("component", "scheduler").Logger(),
		cronSpec: spec,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cronSpec, func() {
		if err := s.Sweep(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("scheduled sweep failed")
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Str("spec", s.cronSpec).Msg("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep finds posts whose scheduled time has passed and dispatches each to
// its selected platforms.
func (s *Scheduler) Sweep(ctx context.Context) error {
	due, err := s.repo.ListDueScheduled(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}
	s.log.Info().Int("count", len(due)).Msg("dispatching due posts")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDispatches)
	for i := range due {
		p := due[i]
		g.Go(func() error {
			return s.dispatchOne(gctx, &p)
		})
	}
	return g.Wait()
}

func (s *Scheduler) dispatchOne(ctx context.Context, p *dbmysql.Post) error {
	if _, err := s.orch.Dispatch(ctx, p, p.Platforms); err != nil {
		s.log.Error().Err(err).Uint64("post_id", p.PostID).Msg("dispatch failed")
		return err
	}
	s.log.Info().Uint64("post_id", p.PostID).Strs("platforms", p.Platforms).Msg("post dispatched")
	return nil
}
