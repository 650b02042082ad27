package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/progress"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/service/youtube"
)

// Run is the in-memory result of one channel ingest or keyword search.
type Run struct {
	SearchID   string
	Source     domain.ContentSource
	Keyword    string
	ChannelURL string
	Channel    domain.ChannelSummary
	Videos     []domain.VideoRecord
	StartedAt  time.Time
}

// Rows converts the run into one persisted row per video.
func (r *Run) Rows() []domain.StoredVideo {
	rows := make([]domain.StoredVideo, 0, len(r.Videos))
	for _, v := range r.Videos {
		channelURL := r.ChannelURL
		channelName := r.Channel.Title
		if r.Source == domain.SourceKeyword || channelURL == "" {
			channelURL = (&domain.ChannelSummary{ID: v.ChannelID}).URL()
			channelName = v.ChannelTitle
		}

		slots := domain.CommentSlots(v.TopComments, 3)
		rows = append(rows, domain.StoredVideo{
			SearchID:    r.SearchID,
			Keyword:     r.Keyword,
			ChannelURL:  channelURL,
			Channel:     channelName,
			Subscribers: v.Subscribers,
			VideoID:     v.ID,
			Title:       v.Title,
			Thumbnail:   v.Thumbnail,
			Views:       v.Views,
			Likes:       v.Likes,
			Comments:    v.Comments,
			Ratio:       v.Ratio,
			IsShorts:    v.IsShort(),
			Transcript:  v.Transcript.DisplayText(),
			PublishedAt: v.PublishedAt,
			Comment1:    slots[0],
			Comment2:    slots[1],
			Comment3:    slots[2],
		})
	}
	return rows
}

// VideoStore persists the rows of a run into a table.
type VideoStore interface {
	SaveVideos(ctx context.Context, table string, rows []domain.StoredVideo) error
}

type Pipeline struct {
	resolver *youtube.ChannelResolver
	lister   *youtube.VideoLister
	searcher *youtube.KeywordSearcher
	enricher *Enricher
	store    VideoStore
	reporter progress.Reporter
	now      func() time.Time
	logger   *zap.Logger
}

type Deps struct {
	Resolver *youtube.ChannelResolver
	Lister   *youtube.VideoLister
	Searcher *youtube.KeywordSearcher
	Enricher *Enricher
	Store    VideoStore
	Reporter progress.Reporter
}

func New(deps Deps, logger *zap.Logger) *Pipeline {
	if deps.Reporter == nil {
		deps.Reporter = progress.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		resolver: deps.Resolver,
		lister:   deps.Lister,
		searcher: deps.Searcher,
		enricher: deps.Enricher,
		store:    deps.Store,
		reporter: deps.Reporter,
		now:      time.Now,
		logger:   logger,
	}
}

func (p *Pipeline) newRun(source domain.ContentSource) *Run {
	now := p.now()
	return &Run{
		SearchID:  domain.NewSearchID(now),
		Source:    source,
		StartedAt: now,
	}
}

// IngestChannel resolves the channel URL, lists every video and enriches it.
// Resolution and listing failures abort the run.
func (p *Pipeline) IngestChannel(ctx context.Context, channelURL string) (*Run, error) {
	run := p.newRun(domain.SourceChannel)
	run.ChannelURL = channelURL

	p.reporter.Report(ctx, progress.Event{RunID: run.SearchID, Stage: progress.StageResolve, Message: channelURL})

	channelID, err := p.resolver.Resolve(ctx, channelURL)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve channel: %w", err)
	}

	summary, err := p.resolver.Summary(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel summary: %w", err)
	}
	run.Channel = summary
	run.Keyword = summary.Title

	p.reporter.Report(ctx, progress.Event{RunID: run.SearchID, Stage: progress.StageList, Message: summary.Title})

	videos, err := p.lister.List(ctx, channelID)
	if err != nil {
		return nil, err
	}

	for i := range videos {
		videos[i].ChannelTitle = summary.Title
		videos[i].Subscribers = summary.Subscribers
		videos[i].Ratio = domain.SubscriberRatio(videos[i].Views, summary.Subscribers)
	}

	run.Videos = p.enricher.Enrich(ctx, run.SearchID, videos)

	p.logger.Info("Channel ingested",
		zap.String("search_id", run.SearchID),
		zap.String("channel_id", channelID),
		zap.String("channel", summary.Title),
		zap.Int64("subscribers", summary.Subscribers),
		zap.Int("videos", len(run.Videos)))

	p.reporter.Report(ctx, progress.Event{RunID: run.SearchID, Stage: progress.StageDone, Total: len(run.Videos)})
	return run, nil
}

// SearchKeyword runs a keyword search and enriches the surviving videos.
func (p *Pipeline) SearchKeyword(ctx context.Context, query string, maxResults int) (*Run, error) {
	run := p.newRun(domain.SourceKeyword)
	run.Keyword = query

	p.reporter.Report(ctx, progress.Event{RunID: run.SearchID, Stage: progress.StageSearch, Message: query})

	videos, err := p.searcher.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	run.Videos = p.enricher.Enrich(ctx, run.SearchID, videos)

	p.logger.Info("Keyword search ingested",
		zap.String("search_id", run.SearchID),
		zap.String("keyword", query),
		zap.Int("videos", len(run.Videos)))

	p.reporter.Report(ctx, progress.Event{RunID: run.SearchID, Stage: progress.StageDone, Total: len(run.Videos)})
	return run, nil
}

// Persist writes one row per video of the run into table.
func (p *Pipeline) Persist(ctx context.Context, run *Run, table string) error {
	if p.store == nil {
		return fmt.Errorf("no video store configured")
	}
	if run == nil || len(run.Videos) == 0 {
		return nil
	}

	p.reporter.Report(ctx, progress.Event{RunID: run.SearchID, Stage: progress.StagePersist, Total: len(run.Videos)})

	if err := p.store.SaveVideos(ctx, table, run.Rows()); err != nil {
		return fmt.Errorf("failed to persist run %s: %w", run.SearchID, err)
	}

	p.logger.Info("Run persisted",
		zap.String("search_id", run.SearchID),
		zap.String("table", table),
		zap.Int("rows", len(run.Videos)))
	return nil
}
