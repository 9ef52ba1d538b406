package service

import (
	"context"
	"encoding/json"
	"time"

	"registry-web/internal/models"

	"github.com/redis/go-redis/v9"
)

const progressKeyPrefix = "import:progress:"

// ProgressStore keeps live import status in Redis so pollers can watch a job
// without touching the database. Entries expire after the configured TTL.
type ProgressStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProgressStore(rdb *redis.Client, ttl time.Duration) *ProgressStore {
	return &ProgressStore{rdb: rdb, ttl: ttl}
}

func (s *ProgressStore) Set(ctx context.Context, progress *models.ImportProgress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, progressKeyPrefix+progress.JobID, data, s.ttl).Err()
}

// Get returns the stored progress for a job. An expired or never-seen job
// comes back with status unknown rather than an error.
func (s *ProgressStore) Get(ctx context.Context, jobID string) (*models.ImportProgress, error) {
	data, err := s.rdb.Get(ctx, progressKeyPrefix+jobID).Bytes()
	if err == redis.Nil {
		return &models.ImportProgress{JobID: jobID, Status: models.ProgressUnknown}, nil
	}
	if err != nil {
		return nil, err
	}

	var progress models.ImportProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}
