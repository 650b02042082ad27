package youtube

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/util"
)

// KeywordSearcher finds videos for a free-text query and scores them
// against their channel's subscriber count.
type KeywordSearcher struct {
	client    MetadataClient
	viewFloor int64
	logger    *zap.Logger
}

func NewKeywordSearcher(client MetadataClient, viewFloor uint64, logger *zap.Logger) *KeywordSearcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeywordSearcher{
		client:    client,
		viewFloor: int64(viewFloor),
		logger:    logger,
	}
}

// Search runs one search call, one batched video statistics call and one
// batched channel statistics call, then drops videos under the view floor.
// maxResults is clamped to the API page size.
func (s *KeywordSearcher) Search(ctx context.Context, query string, maxResults int) ([]domain.VideoRecord, error) {
	limit := int64(maxResults)
	if limit <= 0 || limit > constants.PipelineDefaults.PageSize {
		limit = constants.PipelineDefaults.PageSize
	}

	resp, err := s.client.SearchVideos(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search %q failed: %w", query, err)
	}

	items := videoResults(resp.Items)
	if len(items) == 0 {
		return []domain.VideoRecord{}, nil
	}

	stats, err := s.client.Videos(ctx, resultIDs(items))
	if err != nil {
		return nil, fmt.Errorf("keyword search %q statistics failed: %w", query, err)
	}
	records := mergeStatistics(items, stats.Items)

	channelIDs := make([]string, 0, len(records))
	for _, r := range records {
		channelIDs = append(channelIDs, r.ChannelID)
	}
	channelIDs = util.UniqueStrings(channelIDs)

	subscribers := make(map[string]int64, len(channelIDs))
	if len(channelIDs) > 0 {
		channels, err := s.client.Channels(ctx, []string{"statistics"}, channelIDs)
		if err != nil {
			return nil, fmt.Errorf("keyword search %q channel statistics failed: %w", query, err)
		}
		for _, ch := range channels.Items {
			if ch != nil && ch.Statistics != nil {
				subscribers[ch.Id] = int64(ch.Statistics.SubscriberCount)
			}
		}
	}

	kept := make([]domain.VideoRecord, 0, len(records))
	for _, r := range records {
		if r.Views < s.viewFloor {
			continue
		}
		r.Subscribers = subscribers[r.ChannelID]
		r.Ratio = domain.SubscriberRatio(r.Views, r.Subscribers)
		kept = append(kept, r)
	}

	s.logger.Info("Keyword search completed",
		zap.String("query", query),
		zap.Int("hits", len(records)),
		zap.Int("kept", len(kept)),
		zap.Int("channels", len(channelIDs)))

	return kept, nil
}
