package youtube

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultDailyQuota = 10000

// QuotaTracker counts API units spent since the last Pacific-midnight reset.
type QuotaTracker struct {
	mu        sync.Mutex
	used      int
	limit     int
	margin    int
	resetTime time.Time
	now       func() time.Time
	logger    *zap.Logger
}

func NewQuotaTracker(limit int, logger *zap.Logger) *QuotaTracker {
	if limit <= 0 {
		limit = defaultDailyQuota
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &QuotaTracker{
		limit:  limit,
		margin: limit / 20,
		now:    time.Now,
		logger: logger,
	}
	q.resetTime = nextQuotaReset(q.now())
	return q
}

func nextQuotaReset(now time.Time) time.Time {
	pt, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		pt = time.FixedZone("PST", -8*60*60)
	}
	local := now.In(pt)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, pt)
}

// must be called with lock held
func (q *QuotaTracker) rollover() {
	if q.now().Before(q.resetTime) {
		return
	}
	q.used = 0
	q.resetTime = nextQuotaReset(q.now())
	q.logger.Info("YouTube API quota auto-reset", zap.Time("nextReset", q.resetTime))
}

// Check returns a QuotaExceededError when spending cost would cross the limit.
func (q *QuotaTracker) Check(cost int) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollover()
	if q.used+cost > q.limit-q.margin {
		return &QuotaExceededError{
			Used:      q.used,
			Limit:     q.limit,
			Requested: cost,
			ResetTime: q.resetTime,
		}
	}
	return nil
}

func (q *QuotaTracker) Consume(cost int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollover()
	q.used += cost
	remaining := q.limit - q.used

	q.logger.Debug("YouTube API quota consumed",
		zap.Int("cost", cost),
		zap.Int("used", q.used),
		zap.Int("remaining", remaining))

	if remaining < q.margin {
		q.logger.Warn("YouTube API quota running low",
			zap.Int("remaining", remaining),
			zap.Time("resetTime", q.resetTime))
	}
}

func (q *QuotaTracker) Status() (used int, remaining int, resetTime time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.rollover()
	return q.used, q.limit - q.used, q.resetTime
}

func (q *QuotaTracker) ResetTime() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.resetTime
}

func (q *QuotaTracker) exceeded(requested int) *QuotaExceededError {
	q.mu.Lock()
	defer q.mu.Unlock()
	return &QuotaExceededError{
		Used:      q.used,
		Limit:     q.limit,
		Requested: requested,
		ResetTime: q.resetTime,
	}
}

type QuotaExceededError struct {
	Used      int
	Limit     int
	Requested int
	ResetTime time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("YouTube API quota exceeded: used %d/%d (requested %d more), resets at %s",
		e.Used, e.Limit, e.Requested, e.ResetTime.Format(time.RFC3339))
}
