package youtube

import (
	"context"

	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/util"
)

// CommentFetcher reads the most relevant top-level comments of a video.
type CommentFetcher struct {
	client MetadataClient
	logger *zap.Logger
}

func NewCommentFetcher(client MetadataClient, logger *zap.Logger) *CommentFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentFetcher{client: client, logger: logger}
}

// Top returns up to limit comments ordered by relevance. The result is never
// empty: failures and comment-less videos yield the placeholder record.
func (f *CommentFetcher) Top(ctx context.Context, videoID string, limit int) []domain.CommentRecord {
	if limit <= 0 {
		limit = constants.PipelineDefaults.CommentLimit
	}

	resp, err := f.client.CommentThreads(ctx, videoID, int64(limit))
	if err != nil {
		f.logger.Debug("Comments unavailable",
			zap.String("video_id", videoID), zap.Error(err))
		return []domain.CommentRecord{domain.PlaceholderComment()}
	}

	comments := make([]domain.CommentRecord, 0, limit)
	for _, thread := range resp.Items {
		if len(comments) == limit {
			break
		}
		if thread == nil || thread.Snippet == nil || thread.Snippet.TopLevelComment == nil {
			continue
		}
		s := thread.Snippet.TopLevelComment.Snippet
		if s == nil {
			continue
		}
		comments = append(comments, domain.CommentRecord{
			Author:      s.AuthorDisplayName,
			Text:        s.TextDisplay,
			Likes:       s.LikeCount,
			PublishedAt: util.ParseRFC3339(s.PublishedAt),
		})
	}

	if len(comments) == 0 {
		return []domain.CommentRecord{domain.PlaceholderComment()}
	}
	return comments
}
