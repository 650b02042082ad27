package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/util"
	apperrors "github.com/JiwonBiocom/Youtube-channel-analyser/pkg/errors"
)

// MetadataClient is the subset of the YouTube Data API the analyser calls.
type MetadataClient interface {
	ChannelsByUsername(ctx context.Context, username string) (*youtube.ChannelListResponse, error)
	Channels(ctx context.Context, parts []string, ids []string) (*youtube.ChannelListResponse, error)
	SearchChannels(ctx context.Context, query string, maxResults int64) (*youtube.SearchListResponse, error)
	SearchChannelVideos(ctx context.Context, channelID, pageToken string, maxResults int64) (*youtube.SearchListResponse, error)
	SearchVideos(ctx context.Context, query string, maxResults int64) (*youtube.SearchListResponse, error)
	Videos(ctx context.Context, ids []string) (*youtube.VideoListResponse, error)
	CommentThreads(ctx context.Context, videoID string, maxResults int64) (*youtube.CommentThreadListResponse, error)
}

const (
	searchQuotaCost = 100 // search.list cost
	listQuotaCost   = 1   // channels/videos/commentThreads.list cost
	maxIDsPerCall   = 50
)

type ClientOptions struct {
	APIKey     string
	HTTPClient *http.Client // OAuth client; takes precedence over APIKey
	Endpoint   string
	DailyQuota int
}

// APIClient implements MetadataClient on top of youtube/v3 with daily quota accounting.
type APIClient struct {
	service *youtube.Service
	quota   *QuotaTracker
	logger  *zap.Logger
}

func NewAPIClient(ctx context.Context, opts ClientOptions, logger *zap.Logger) (*APIClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var clientOpts []option.ClientOption
	switch {
	case opts.HTTPClient != nil:
		clientOpts = append(clientOpts, option.WithHTTPClient(opts.HTTPClient))
	case opts.APIKey != "":
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	default:
		return nil, fmt.Errorf("YouTube API key or OAuth client is required")
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	quota := NewQuotaTracker(opts.DailyQuota, logger)
	logger.Info("YouTube Data API client initialized",
		zap.Bool("oauth", opts.HTTPClient != nil),
		zap.Time("quotaReset", quota.ResetTime()))

	return &APIClient{
		service: service,
		quota:   quota,
		logger:  logger,
	}, nil
}

func (c *APIClient) Quota() *QuotaTracker {
	return c.quota
}

func (c *APIClient) ChannelsByUsername(ctx context.Context, username string) (*youtube.ChannelListResponse, error) {
	if err := c.quota.Check(listQuotaCost); err != nil {
		return nil, err
	}
	resp, err := c.service.Channels.List([]string{"id"}).
		ForUsername(username).
		Context(ctx).
		Do()
	if err != nil {
		return nil, c.translate("channels.list", err)
	}
	c.quota.Consume(listQuotaCost)
	return resp, nil
}

func (c *APIClient) Channels(ctx context.Context, parts []string, ids []string) (*youtube.ChannelListResponse, error) {
	if err := c.quota.Check(listQuotaCost); err != nil {
		return nil, err
	}
	resp, err := c.service.Channels.List(parts).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, c.translate("channels.list", err)
	}
	c.quota.Consume(listQuotaCost)
	return resp, nil
}

func (c *APIClient) SearchChannels(ctx context.Context, query string, maxResults int64) (*youtube.SearchListResponse, error) {
	if err := c.quota.Check(searchQuotaCost); err != nil {
		return nil, err
	}
	resp, err := c.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("channel").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, c.translate("search.list", err)
	}
	c.quota.Consume(searchQuotaCost)
	return resp, nil
}

func (c *APIClient) SearchChannelVideos(ctx context.Context, channelID, pageToken string, maxResults int64) (*youtube.SearchListResponse, error) {
	if err := c.quota.Check(searchQuotaCost); err != nil {
		return nil, err
	}
	call := c.service.Search.List([]string{"snippet"}).
		ChannelId(channelID).
		MaxResults(maxResults).
		Type("video").
		Order("date")
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, c.translate("search.list", err)
	}
	c.quota.Consume(searchQuotaCost)
	return resp, nil
}

func (c *APIClient) SearchVideos(ctx context.Context, query string, maxResults int64) (*youtube.SearchListResponse, error) {
	if err := c.quota.Check(searchQuotaCost); err != nil {
		return nil, err
	}
	resp, err := c.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, c.translate("search.list", err)
	}
	c.quota.Consume(searchQuotaCost)
	return resp, nil
}

// Videos fetches statistics in batches of at most 50 ids per call.
func (c *APIClient) Videos(ctx context.Context, ids []string) (*youtube.VideoListResponse, error) {
	merged := &youtube.VideoListResponse{}
	for _, batch := range util.Chunk(ids, maxIDsPerCall) {
		if err := c.quota.Check(listQuotaCost); err != nil {
			return nil, err
		}
		resp, err := c.service.Videos.List([]string{"statistics"}).
			Id(batch...).
			Context(ctx).
			Do()
		if err != nil {
			return nil, c.translate("videos.list", err)
		}
		c.quota.Consume(listQuotaCost)
		merged.Items = append(merged.Items, resp.Items...)
	}
	return merged, nil
}

func (c *APIClient) CommentThreads(ctx context.Context, videoID string, maxResults int64) (*youtube.CommentThreadListResponse, error) {
	if err := c.quota.Check(listQuotaCost); err != nil {
		return nil, err
	}
	resp, err := c.service.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		Order("relevance").
		TextFormat("plainText").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, c.translate("commentThreads.list", err)
	}
	c.quota.Consume(listQuotaCost)
	return resp, nil
}

// translate maps quota-related 403s to QuotaExceededError and wraps everything else.
func (c *APIClient) translate(operation string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusForbidden && isQuotaReason(apiErr) {
		c.logger.Warn("YouTube API quota rejected request",
			zap.String("operation", operation),
			zap.String("message", apiErr.Message))
		return c.quota.exceeded(0)
	}
	if errors.As(err, &apiErr) {
		wrapped := apperrors.NewAPIError(fmt.Sprintf("YouTube API %s failed", operation), apiErr.Code,
			map[string]any{"operation": operation})
		wrapped.WithCause(err)
		return wrapped
	}
	return fmt.Errorf("YouTube API %s: %w", operation, err)
}

func isQuotaReason(apiErr *googleapi.Error) bool {
	if len(apiErr.Errors) == 0 {
		return true
	}
	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}

// highThumbnail returns the "high" rendition, falling back to smaller ones.
func highThumbnail(thumbnails *youtube.ThumbnailDetails) string {
	if thumbnails == nil {
		return ""
	}
	for _, t := range []*youtube.Thumbnail{thumbnails.High, thumbnails.Medium, thumbnails.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}

var _ MetadataClient = (*APIClient)(nil)
