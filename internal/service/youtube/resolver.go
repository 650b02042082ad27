package youtube

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/service/cache"
	"github.com/JiwonBiocom/Youtube-channel-analyser/pkg/errors"
)

const (
	channelPathMarker = "/channel/"
	handleMarker      = "@"

	handleSearchResults = 5
)

// ChannelResolver turns channel URLs into channel ids and channel summaries.
type ChannelResolver struct {
	client MetadataClient
	cache  cache.Store
	logger *zap.Logger
}

func NewChannelResolver(client MetadataClient, store cache.Store, logger *zap.Logger) *ChannelResolver {
	if store == nil {
		store = cache.NopStore{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChannelResolver{
		client: client,
		cache:  store,
		logger: logger,
	}
}

// ChannelIDFromURL extracts the id from a /channel/<id> URL without any network call.
func ChannelIDFromURL(rawURL string) (string, bool) {
	idx := strings.Index(rawURL, channelPathMarker)
	if idx < 0 {
		return "", false
	}
	id := pathSegment(rawURL[idx+len(channelPathMarker):])
	return id, id != ""
}

// HandleFromURL extracts the handle (without "@") from a /@handle URL.
func HandleFromURL(rawURL string) (string, bool) {
	idx := strings.Index(rawURL, handleMarker)
	if idx < 0 {
		return "", false
	}
	handle := pathSegment(rawURL[idx+len(handleMarker):])
	return handle, handle != ""
}

// pathSegment returns the first path segment, percent-decoded. Korean handles
// copied from the address bar arrive escaped; an invalid escape keeps the raw text.
func pathSegment(s string) string {
	if cut := strings.IndexAny(s, "/?#"); cut >= 0 {
		s = s[:cut]
	}
	if unescaped, err := url.PathUnescape(s); err == nil {
		s = unescaped
	}
	return strings.TrimSpace(s)
}

// Resolve returns the channel id for a canonical or handle-style channel URL.
func (r *ChannelResolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	if id, ok := ChannelIDFromURL(rawURL); ok {
		return id, nil
	}

	handle, ok := HandleFromURL(rawURL)
	if !ok {
		return "", errors.NewChannelNotFoundError(rawURL, "", nil)
	}

	cacheKey := "channel:handle:" + strings.ToLower(handle)
	var cachedID string
	if found, _ := r.cache.Get(ctx, cacheKey, &cachedID); found && cachedID != "" {
		return cachedID, nil
	}

	id, err := r.resolveHandle(ctx, rawURL, handle)
	if err != nil {
		return "", err
	}

	if err := r.cache.Set(ctx, cacheKey, id, constants.CacheTTL.ChannelID); err != nil {
		r.logger.Warn("Failed to cache channel id", zap.String("handle", handle), zap.Error(err))
	}
	return id, nil
}

func (r *ChannelResolver) resolveHandle(ctx context.Context, rawURL, handle string) (string, error) {
	resp, err := r.client.ChannelsByUsername(ctx, handle)
	if err == nil && resp != nil && len(resp.Items) > 0 && resp.Items[0].Id != "" {
		return resp.Items[0].Id, nil
	}
	if err != nil {
		r.logger.Debug("forUsername lookup failed, falling back to search",
			zap.String("handle", handle), zap.Error(err))
	}

	search, err := r.client.SearchChannels(ctx, handle, handleSearchResults)
	if err != nil {
		return "", errors.NewChannelNotFoundError(rawURL, handle, err)
	}

	want := handleMarker + strings.ToLower(handle)
	for _, item := range search.Items {
		candidate := candidateChannelID(item.Snippet, item.Id)
		if candidate == "" {
			continue
		}

		profile, err := r.client.Channels(ctx, []string{"snippet"}, []string{candidate})
		if err != nil {
			r.logger.Debug("Candidate profile lookup failed",
				zap.String("channel_id", candidate), zap.Error(err))
			continue
		}
		if len(profile.Items) == 0 || profile.Items[0].Snippet == nil {
			continue
		}
		if strings.ToLower(profile.Items[0].Snippet.CustomUrl) == want {
			r.logger.Debug("Handle resolved via search",
				zap.String("handle", handle), zap.String("channel_id", candidate))
			return candidate, nil
		}
	}

	return "", errors.NewChannelNotFoundError(rawURL, handle, nil)
}

// Summary fetches title, subscriber count and high thumbnail for a channel id.
func (r *ChannelResolver) Summary(ctx context.Context, channelID string) (domain.ChannelSummary, error) {
	cacheKey := "channel:summary:" + channelID
	var cached domain.ChannelSummary
	if found, _ := r.cache.Get(ctx, cacheKey, &cached); found && cached.ID != "" {
		return cached, nil
	}

	resp, err := r.client.Channels(ctx, []string{"statistics", "snippet"}, []string{channelID})
	if err != nil {
		return domain.ChannelSummary{}, fmt.Errorf("failed to fetch channel %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 {
		return domain.ChannelSummary{}, errors.NewChannelNotFoundError(channelPathMarker+channelID, "", nil)
	}

	item := resp.Items[0]
	summary := domain.ChannelSummary{ID: item.Id}
	if summary.ID == "" {
		summary.ID = channelID
	}
	if item.Snippet != nil {
		summary.Title = item.Snippet.Title
		summary.Thumbnail = highThumbnail(item.Snippet.Thumbnails)
	}
	if item.Statistics != nil {
		summary.Subscribers = int64(item.Statistics.SubscriberCount)
	}

	if err := r.cache.Set(ctx, cacheKey, summary, constants.CacheTTL.ChannelSummary); err != nil {
		r.logger.Warn("Failed to cache channel summary", zap.String("channel_id", channelID), zap.Error(err))
	}
	return summary, nil
}
