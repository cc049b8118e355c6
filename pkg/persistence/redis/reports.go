// Package redis provides a TTL-bound cache for recently finished run reports.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flowprobe/flowprobe/pkg/models"
	"github.com/flowprobe/flowprobe/pkg/persistence"
)

// DefaultTTL is how long a cached report stays readable.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "flowprobe:report:"

// ReportStore implements persistence.ReportCache on Redis.
type ReportStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewReportStore connects to Redis using a redis:// URL. A zero ttl falls
// back to DefaultTTL.
func NewReportStore(ctx context.Context, logger *slog.Logger, redisURL string, ttl time.Duration) (*ReportStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = client.Ping(pingCtx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", opts.Addr, "ttl", ttl)

	return &ReportStore{client: client, ttl: ttl, logger: logger}, nil
}

// Put stores a report under its ID with the configured TTL.
func (s *ReportStore) Put(ctx context.Context, report *models.RunReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report %s: %w", report.ID, err)
	}

	err = s.client.Set(ctx, keyPrefix+report.ID, data, s.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to cache report %s: %w", report.ID, err)
	}

	return nil
}

// Get returns a cached report, or persistence.ErrRunReportNotFound once it
// expired or was never written.
func (s *ReportStore) Get(ctx context.Context, id string) (*models.RunReport, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, persistence.ErrRunReportNotFound
		}

		return nil, fmt.Errorf("failed to read cached report %s: %w", id, err)
	}

	var report models.RunReport

	err = json.Unmarshal(data, &report)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached report %s: %w", id, err)
	}

	return &report, nil
}

// Close releases the Redis connection.
func (s *ReportStore) Close() error {
	return s.client.Close()
}
