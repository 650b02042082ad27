package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/progress"
)

type FormatClassifier interface {
	Classify(ctx context.Context, videoID string) domain.VideoFormat
}

type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) domain.TranscriptResult
}

type CommentSource interface {
	Top(ctx context.Context, videoID string, limit int) []domain.CommentRecord
}

type EnricherConfig struct {
	Workers      int
	CommentLimit int
}

// Enricher attaches format, transcript and top comments to each record.
// None of the three steps can fail the batch; each degrades to a typed value.
type Enricher struct {
	formats      FormatClassifier
	transcripts  TranscriptFetcher
	comments     CommentSource
	workers      int
	commentLimit int
	reporter     progress.Reporter
	logger       *zap.Logger
}

func NewEnricher(formats FormatClassifier, transcripts TranscriptFetcher, comments CommentSource, cfg EnricherConfig, reporter progress.Reporter, logger *zap.Logger) *Enricher {
	if cfg.Workers <= 0 {
		cfg.Workers = constants.PipelineDefaults.Workers
	}
	if cfg.CommentLimit <= 0 {
		cfg.CommentLimit = constants.PipelineDefaults.CommentLimit
	}
	if reporter == nil {
		reporter = progress.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		formats:      formats,
		transcripts:  transcripts,
		comments:     comments,
		workers:      cfg.Workers,
		commentLimit: cfg.CommentLimit,
		reporter:     reporter,
		logger:       logger,
	}
}

// Enrich returns enriched copies of records in their original order.
func (e *Enricher) Enrich(ctx context.Context, runID string, records []domain.VideoRecord) []domain.VideoRecord {
	if len(records) == 0 {
		return []domain.VideoRecord{}
	}

	p := pool.New().WithMaxGoroutines(e.workers)

	// 각 goroutine은 자기 인덱스 슬롯에만 쓰므로 잠금 없음
	results := make([]domain.VideoRecord, len(records))
	var done atomic.Int64

	for idx, record := range records {
		p.Go(func() {
			enriched := e.enrichOne(ctx, record)
			results[idx] = enriched

			e.reporter.Report(ctx, progress.Event{
				RunID:   runID,
				Stage:   progress.StageEnrich,
				Index:   int(done.Add(1)),
				Total:   len(records),
				VideoID: record.ID,
				Message: string(enriched.Transcript.Status),
			})
		})
	}

	p.Wait()

	e.logger.Info("Videos enriched",
		zap.String("run_id", runID),
		zap.Int("videos", len(results)),
		zap.Int("workers", e.workers))

	return results
}

func (e *Enricher) enrichOne(ctx context.Context, record domain.VideoRecord) domain.VideoRecord {
	if ctx.Err() != nil {
		record.Format = domain.FormatUnknown
		record.Transcript = domain.TranscriptFailedResult(ctx.Err().Error())
		record.TopComments = []domain.CommentRecord{domain.PlaceholderComment()}
		return record
	}

	record.Format = e.formats.Classify(ctx, record.ID)
	if record.Format == domain.FormatUnknown {
		e.logger.Warn("Format probe failed, storing as long-form", zap.String("video_id", record.ID))
	}
	record.Transcript = e.transcripts.Fetch(ctx, record.ID)
	record.TopComments = e.comments.Top(ctx, record.ID, e.commentLimit)
	if len(record.TopComments) == 0 {
		record.TopComments = []domain.CommentRecord{domain.PlaceholderComment()}
	}
	return record
}
