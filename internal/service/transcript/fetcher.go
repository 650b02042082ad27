package transcript

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/service/cache"
)

type FetcherConfig struct {
	MaxAttempts int
	Delay       time.Duration
	Language    string
	Window      time.Duration
}

func (c FetcherConfig) withDefaults() FetcherConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = constants.TranscriptRetry.MaxAttempts
	}
	if c.Delay < 0 {
		c.Delay = constants.TranscriptRetry.Delay
	}
	if c.Language == "" {
		c.Language = constants.TranscriptRetry.Language
	}
	if c.Window <= 0 {
		c.Window = constants.TranscriptRetry.Window
	}
	return c
}

// Fetcher retrieves the opening window of a video's Korean captions with a
// fixed-delay retry loop. It never returns an error: exhaustion is reported
// through the TranscriptResult status.
type Fetcher struct {
	source TrackSource
	cache  cache.Store
	cfg    FetcherConfig
	sleep  func(ctx context.Context, d time.Duration) error
	logger *zap.Logger
}

func NewFetcher(source TrackSource, store cache.Store, cfg FetcherConfig, logger *zap.Logger) *Fetcher {
	if store == nil {
		store = cache.NopStore{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		source: source,
		cache:  store,
		cfg:    cfg.withDefaults(),
		sleep:  sleepContext,
		logger: logger,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *Fetcher) Fetch(ctx context.Context, videoID string) domain.TranscriptResult {
	cacheKey := "transcript:" + videoID
	var cached string
	if found, err := f.cache.Get(ctx, cacheKey, &cached); err == nil && found && cached != "" {
		return domain.TranscriptOf(cached)
	}

	var lastErr error
	for attempt := 1; attempt <= f.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			f.logger.Debug("Retrying transcript fetch",
				zap.String("video_id", videoID),
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", f.cfg.MaxAttempts))
			if err := f.sleep(ctx, f.cfg.Delay); err != nil {
				lastErr = err
				break
			}
		}

		text, err := f.attempt(ctx, videoID)
		if err == nil {
			if err := f.cache.Set(ctx, cacheKey, text, constants.CacheTTL.Transcript); err != nil {
				f.logger.Warn("Failed to cache transcript", zap.String("video_id", videoID), zap.Error(err))
			}
			return domain.TranscriptOf(text)
		}

		lastErr = err
		f.logger.Debug("Transcript attempt failed",
			zap.String("video_id", videoID),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	f.logger.Warn("Transcript unavailable after retries",
		zap.String("video_id", videoID),
		zap.Int("attempts", f.cfg.MaxAttempts),
		zap.Error(lastErr))

	if errors.Is(lastErr, errNoTracks) || errors.Is(lastErr, errNoLanguageTrack) {
		return domain.TranscriptUnavailableResult(lastErr.Error())
	}
	reason := "unknown"
	if lastErr != nil {
		reason = lastErr.Error()
	}
	return domain.TranscriptFailedResult(reason)
}

func (f *Fetcher) attempt(ctx context.Context, videoID string) (string, error) {
	tracks, err := f.source.ListTracks(ctx, videoID)
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", errNoTracks
	}

	track, ok := SelectTrack(tracks, f.cfg.Language)
	if !ok {
		return "", errNoLanguageTrack
	}

	cues, err := f.source.FetchCues(ctx, track)
	if err != nil {
		return "", err
	}

	text := Accumulate(cues, f.cfg.Window)
	if text == "" {
		return "", errEmptyTranscript
	}
	return text, nil
}
