// Package digest runs the weekly recommendation email for every user who
// opted into weekly updates.
package digest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"lbs-connect/internal/matches"
	"lbs-connect/internal/profiles"
	"lbs-connect/internal/shared/telemetry"
)

const DefaultConcurrency = 2

type Recipients interface {
	ListWeeklyRecipients(ctx context.Context) ([]profiles.Profile, error)
}

type Generator interface {
	GenerateAndNotify(ctx context.Context, userID string, n matches.Notifier) (int, error)
	ExpireStale(ctx context.Context) (int64, error)
}

type Runner struct {
	Profiles    Recipients
	Matches     Generator
	Notifier    matches.Notifier
	Concurrency int
}

// Report summarises one run.
type Report struct {
	Users    int   `json:"users"`
	Notified int   `json:"notified"`
	Matches  int   `json:"matches"`
	Failed   int   `json:"failed"`
	Expired  int64 `json:"expired"`
}

// Run expires stale matches, then generates and emails recommendations for
// each recipient. A failure for one user is logged and counted; only a
// failure to list recipients aborts the run.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	var rep Report

	expired, err := r.Matches.ExpireStale(ctx)
	if err != nil {
		telemetry.Warn("digest.expire.failed", map[string]any{"err": err})
	}
	rep.Expired = expired

	users, err := r.Profiles.ListWeeklyRecipients(ctx)
	if err != nil {
		return rep, fmt.Errorf("list recipients: %w", err)
	}
	rep.Users = len(users)

	limit := r.Concurrency
	if limit < 1 {
		limit = DefaultConcurrency
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, u := range users {
		g.Go(func() error {
			n, err := r.Matches.GenerateAndNotify(gctx, u.UserID, r.Notifier)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rep.Failed++
				telemetry.Error("digest.user.failed", map[string]any{"user_id": u.UserID, "err": err})
				return nil
			}
			rep.Matches += n
			if n > 0 {
				rep.Notified++
			}
			return nil
		})
	}
	_ = g.Wait()

	telemetry.Info("digest.complete", map[string]any{
		"users":       rep.Users,
		"notified":    rep.Notified,
		"matches":     rep.Matches,
		"failed":      rep.Failed,
		"expired":     rep.Expired,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return rep, ctx.Err()
}
