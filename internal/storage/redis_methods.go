package storage

import (
	"campusdesk/backend/internal/config"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// AcquireReaperLock takes the run-level lock in Redis. A reaper run
// that fails to get the lock should skip entirely; the conditional
// status update remains the real at-most-once guard per complaint.
func (s *Service) AcquireReaperLock(ttl time.Duration) (bool, error) {
	return s.Redis.SetNX(s.Ctx, config.ReaperLockKey, "1", ttl).Result()
}

// ReleaseReaperLock frees the run-level lock.
func (s *Service) ReleaseReaperLock() error {
	return s.Redis.Del(s.Ctx, config.ReaperLockKey).Err()
}

// CacheDuplicateReport stores the serialized duplicate-group report so
// the admin dashboard does not recompute it on every refresh.
func (s *Service) CacheDuplicateReport(payload []byte, ttl time.Duration) error {
	return s.Redis.Set(s.Ctx, config.DuplicateReportCacheKey, payload, ttl).Err()
}

// CachedDuplicateReport returns the cached report, or (nil, nil) when
// the cache is cold.
func (s *Service) CachedDuplicateReport() ([]byte, error) {
	payload, err := s.Redis.Get(s.Ctx, config.DuplicateReportCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}
