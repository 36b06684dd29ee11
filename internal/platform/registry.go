package platform

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"golang.org/x/time/rate"

	"crosspost/internal/common"
	"crosspost/internal/config"
	"crosspost/internal/dbmysql"
)

// Registry maps the closed set of platform ids to their adapters. Adapters
// are bound at construction; there is no dynamic discovery.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry wires one adapter per supported platform. Every outbound call
// goes through a per-platform rate limiter.
func NewRegistry(cfg *config.Config) *Registry {
	client := &http.Client{Timeout: cfg.Publish.HTTPTimeout}

	r := &Registry{adapters: make(map[string]Adapter)}
	for _, a := range []Adapter{
		NewTwitterAdapter(client),
		NewFacebookAdapter(client),
		NewInstagramAdapter(client),
		NewLinkedInAdapter(client),
		NewYouTubeAdapter(client),
	} {
		r.adapters[a.ID()] = &limitedAdapter{
			Adapter: a,
			limiter: rate.NewLimiter(rate.Limit(cfg.Publish.RatePerSecond), 1),
		}
	}
	return r
}

// NewRegistryWith builds a registry from explicit adapters; used by tests.
func NewRegistryWith(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}
	for _, a := range adapters {
		r.adapters[a.ID()] = a
	}
	return r
}

func (r *Registry) Lookup(platformID string) (Adapter, bool) {
	a, ok := r.adapters[platformID]
	return a, ok
}

// Validate rejects unknown platform ids before any execution starts.
func (r *Registry) Validate(platformIDs []string) error {
	for _, id := range platformIDs {
		if _, ok := r.adapters[id]; !ok {
			return fmt.Errorf("%w: %s", common.ErrUnknownPlatform, id)
		}
	}
	return nil
}

func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type limitedAdapter struct {
	Adapter
	limiter *rate.Limiter
}

func (l *limitedAdapter) Publish(ctx context.Context, account *dbmysql.ConnectedAccount, caption string, mediaURLs []string) Outcome {
	if err := l.limiter.Wait(ctx); err != nil {
		return Failure(fmt.Sprintf("rate limit wait aborted: %v", err))
	}
	return l.Adapter.Publish(ctx, account, caption, mediaURLs)
}
