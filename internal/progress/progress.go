package progress

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Stage string

const (
	StageResolve Stage = "resolve"
	StageList    Stage = "list"
	StageSearch  Stage = "search"
	StageEnrich  Stage = "enrich"
	StagePersist Stage = "persist"
	StageDone    Stage = "done"
)

func (s Stage) String() string {
	return string(s)
}

// Event is one pipeline progress notification. Index is 1-based within Total.
type Event struct {
	RunID   string    `json:"run_id"`
	Stage   Stage     `json:"stage"`
	Index   int       `json:"index,omitempty"`
	Total   int       `json:"total,omitempty"`
	VideoID string    `json:"video_id,omitempty"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// Reporter receives progress events. Implementations must be safe for
// concurrent use and must not block the pipeline on delivery failures.
type Reporter interface {
	Report(ctx context.Context, event Event)
}

type Nop struct{}

func (Nop) Report(context.Context, Event) {}

// LogReporter writes events to the application logger.
type LogReporter struct {
	logger *zap.Logger
}

func NewLogReporter(logger *zap.Logger) *LogReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(_ context.Context, event Event) {
	fields := []zap.Field{
		zap.String("run_id", event.RunID),
		zap.String("stage", event.Stage.String()),
	}
	if event.Total > 0 {
		fields = append(fields, zap.Int("index", event.Index), zap.Int("total", event.Total))
	}
	if event.VideoID != "" {
		fields = append(fields, zap.String("video_id", event.VideoID))
	}
	if event.Message != "" {
		fields = append(fields, zap.String("message", event.Message))
	}

	if event.Stage == StageEnrich {
		r.logger.Debug("Pipeline progress", fields...)
		return
	}
	r.logger.Info("Pipeline progress", fields...)
}

// Multi fans an event out to several reporters in order.
type Multi []Reporter

func (m Multi) Report(ctx context.Context, event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	for _, r := range m {
		if r != nil {
			r.Report(ctx, event)
		}
	}
}

var (
	_ Reporter = Nop{}
	_ Reporter = (*LogReporter)(nil)
	_ Reporter = Multi(nil)
)
