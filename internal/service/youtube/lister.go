package youtube

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/youtube/v3"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/util"
)

// VideoLister enumerates every public video of a channel, newest first.
type VideoLister struct {
	client   MetadataClient
	pageSize int64
	logger   *zap.Logger
}

func NewVideoLister(client MetadataClient, logger *zap.Logger) *VideoLister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VideoLister{
		client:   client,
		pageSize: constants.PipelineDefaults.PageSize,
		logger:   logger,
	}
}

// List pages through the channel's search results. Any page failure aborts the listing.
func (l *VideoLister) List(ctx context.Context, channelID string) ([]domain.VideoRecord, error) {
	var (
		records   []domain.VideoRecord
		pageToken string
		seen      = make(map[string]struct{})
	)

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := l.client.SearchChannelVideos(ctx, channelID, pageToken, l.pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list videos for channel %s (page %d): %w", channelID, page, err)
		}

		items := videoResults(resp.Items)
		if len(items) == 0 {
			break
		}

		stats, err := l.client.Videos(ctx, resultIDs(items))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch statistics for channel %s (page %d): %w", channelID, page, err)
		}

		records = append(records, mergeStatistics(items, stats.Items)...)

		l.logger.Debug("Channel video page fetched",
			zap.String("channel_id", channelID),
			zap.Int("page", page),
			zap.Int("videos", len(items)),
			zap.Int("total", len(records)))

		next := resp.NextPageToken
		if next == "" {
			break
		}
		if _, dup := seen[next]; dup {
			l.logger.Warn("Pagination token repeated, stopping",
				zap.String("channel_id", channelID), zap.Int("page", page))
			break
		}
		seen[next] = struct{}{}
		pageToken = next
	}

	l.logger.Info("Channel videos listed",
		zap.String("channel_id", channelID),
		zap.Int("videos", len(records)))

	return records, nil
}

// videoResults keeps search results that carry a video id.
func videoResults(items []*youtube.SearchResult) []*youtube.SearchResult {
	out := make([]*youtube.SearchResult, 0, len(items))
	for _, item := range items {
		if item != nil && item.Id != nil && item.Id.VideoId != "" {
			out = append(out, item)
		}
	}
	return out
}

func resultIDs(items []*youtube.SearchResult) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.Id.VideoId
	}
	return ids
}

// mergeStatistics zips search results with their statistics. The two lists
// are order-aligned for the same id list; a mismatched position falls back
// to an id lookup, and a missing entry leaves the counts at zero.
func mergeStatistics(items []*youtube.SearchResult, stats []*youtube.Video) []domain.VideoRecord {
	byID := make(map[string]*youtube.Video, len(stats))
	for _, v := range stats {
		if v != nil {
			byID[v.Id] = v
		}
	}

	records := make([]domain.VideoRecord, 0, len(items))
	for i, item := range items {
		var video *youtube.Video
		if i < len(stats) && stats[i] != nil && stats[i].Id == item.Id.VideoId {
			video = stats[i]
		} else {
			video = byID[item.Id.VideoId]
		}
		records = append(records, newVideoRecord(item, video))
	}
	return records
}

func newVideoRecord(item *youtube.SearchResult, video *youtube.Video) domain.VideoRecord {
	record := domain.VideoRecord{ID: item.Id.VideoId}
	if s := item.Snippet; s != nil {
		record.Title = s.Title
		record.Description = s.Description
		record.ChannelID = s.ChannelId
		record.ChannelTitle = s.ChannelTitle
		record.Thumbnail = highThumbnail(s.Thumbnails)
		record.PublishedAt = util.ParseRFC3339(s.PublishedAt)
	}
	if video != nil && video.Statistics != nil {
		record.Views = int64(video.Statistics.ViewCount)
		record.Likes = int64(video.Statistics.LikeCount)
		record.Comments = int64(video.Statistics.CommentCount)
	}
	return record
}

func candidateChannelID(snippet *youtube.SearchResultSnippet, id *youtube.ResourceId) string {
	if snippet != nil && snippet.ChannelId != "" {
		return snippet.ChannelId
	}
	if id != nil {
		return id.ChannelId
	}
	return ""
}
