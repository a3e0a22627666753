package storage

import (
	"context"
	"errors"
	"time"

	"neurowire/internal/model"
)

var ErrNotInitialized = errors.New("store is not initialized")

// TimestampLayout keeps a fixed fraction width so created_at_utc values sort
// chronologically as strings.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Store persists runs, their generation snapshots and survivor history.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	// ListRuns returns runs newest first. A limit <= 0 returns all of them.
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
	SaveGeneration(ctx context.Context, generation model.GenerationRecord) error
	GetGeneration(ctx context.Context, runID string, number int) (model.GenerationRecord, bool, error)
	LatestGeneration(ctx context.Context, runID string) (model.GenerationRecord, bool, error)
	// ListGenerations returns the snapshot numbers of a run in ascending order.
	ListGenerations(ctx context.Context, runID string) ([]int, error)
	SaveSurvivorHistory(ctx context.Context, runID string, history []model.SurvivorPoint) error
	GetSurvivorHistory(ctx context.Context, runID string) ([]model.SurvivorPoint, bool, error)
}
