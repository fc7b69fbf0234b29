package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/ivanbelmonte/fincalia-backend/internal/drafts"
	"github.com/ivanbelmonte/fincalia-backend/pkg/logger"
)

const defaultStaleDraftRetention = 2 * time.Hour

type staleSessionSource interface {
	Stale(maxAge time.Duration) []*drafts.Session
}

type sessionDiscarder interface {
	Discard(ctx context.Context, session *drafts.Session) (*drafts.DiscardResult, error)
}

// StaleDraftDiscardJobParams configure the stale draft discard job.
type StaleDraftDiscardJobParams struct {
	Logger    *logger.Logger
	Sessions  staleSessionSource
	Discarder sessionDiscarder
	Retention time.Duration
}

// NewStaleDraftDiscardJob builds the job that discards draft sessions whose
// operator walked away. Discarding unwinds the session's eager additions, so
// abandoned uploads do not pile up in the store.
func NewStaleDraftDiscardJob(params StaleDraftDiscardJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session source required")
	}
	if params.Discarder == nil {
		return nil, fmt.Errorf("session discarder required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultStaleDraftRetention
	}
	return &staleDraftDiscardJob{
		logg:      params.Logger,
		sessions:  params.Sessions,
		discarder: params.Discarder,
		retention: retention,
	}, nil
}

type staleDraftDiscardJob struct {
	logg      *logger.Logger
	sessions  staleSessionSource
	discarder sessionDiscarder
	retention time.Duration
}

func (j *staleDraftDiscardJob) Name() string { return "stale-draft-discard" }

func (j *staleDraftDiscardJob) Run(ctx context.Context) error {
	stale := j.sessions.Stale(j.retention)
	if len(stale) == 0 {
		return nil
	}

	var (
		discarded int
		cleanups  int
		errs      error
	)
	for _, session := range stale {
		result, err := j.discarder.Discard(ctx, session)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("discard session %s: %w", session.ID, err))
			continue
		}
		discarded++
		cleanups += len(result.Outcomes)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"retention":  j.retention.String(),
		"candidates": len(stale),
		"discarded":  discarded,
		"cleanups":   cleanups,
	})
	j.logg.Info(logCtx, "stale draft discard complete")
	return errs
}
