// Package youtubetest provides an in-memory YouTube Data API fake for tests.
package youtubetest

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"google.golang.org/api/youtube/v3"
)

// FakeClient serves channels, videos and comments from maps and counts calls
// per method. Setting an entry in Errs makes that method fail.
type FakeClient struct {
	mu sync.Mutex

	ChannelsByID  map[string]*youtube.Channel
	Usernames     map[string]string   // forUsername -> channel id
	ChannelSearch map[string][]string // query -> candidate channel ids
	ChannelVideos map[string][]string // channel id -> video ids, newest first
	KeywordHits   map[string][]string // query -> video ids
	VideosByID    map[string]*Video
	Threads       map[string][]*youtube.CommentThread

	// SearchChannelVideosFunc overrides the paginated channel listing when set.
	SearchChannelVideosFunc func(channelID, pageToken string, maxResults int64) (*youtube.SearchListResponse, error)

	Errs  map[string]error
	Calls map[string]int
}

// Video is one fake video with its search snippet and statistics.
type Video struct {
	ID        string
	ChannelID string
	Title     string
	Views     uint64
	Likes     uint64
	Comments  uint64
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		ChannelsByID:  make(map[string]*youtube.Channel),
		Usernames:     make(map[string]string),
		ChannelSearch: make(map[string][]string),
		ChannelVideos: make(map[string][]string),
		KeywordHits:   make(map[string][]string),
		VideosByID:    make(map[string]*Video),
		Threads:       make(map[string][]*youtube.CommentThread),
		Errs:          make(map[string]error),
		Calls:         make(map[string]int),
	}
}

// AddChannel registers a channel with the given custom URL (e.g. "@handle").
func (f *FakeClient) AddChannel(id, title, customURL string, subscribers uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ChannelsByID[id] = &youtube.Channel{
		Id: id,
		Snippet: &youtube.ChannelSnippet{
			Title:     title,
			CustomUrl: customURL,
			Thumbnails: &youtube.ThumbnailDetails{
				High: &youtube.Thumbnail{Url: "https://yt3.example/" + id + "/high.jpg"},
			},
		},
		Statistics: &youtube.ChannelStatistics{SubscriberCount: subscribers},
	}
}

// AddVideo registers a video and appends it to its channel's listing.
func (f *FakeClient) AddVideo(v Video) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v.Title == "" {
		v.Title = "video " + v.ID
	}
	video := v
	f.VideosByID[v.ID] = &video
	f.ChannelVideos[v.ChannelID] = append(f.ChannelVideos[v.ChannelID], v.ID)
}

// AddComments attaches plain-text top-level comments to a video.
func (f *FakeClient) AddComments(videoID string, texts ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, text := range texts {
		f.Threads[videoID] = append(f.Threads[videoID], &youtube.CommentThread{
			Snippet: &youtube.CommentThreadSnippet{
				TopLevelComment: &youtube.Comment{
					Snippet: &youtube.CommentSnippet{
						AuthorDisplayName: fmt.Sprintf("user%d", i+1),
						TextDisplay:       text,
						LikeCount:         int64(len(texts) - i),
						PublishedAt:       "2024-05-01T10:00:00Z",
					},
				},
			},
		})
	}
}

// CallCount returns how many times method was invoked.
func (f *FakeClient) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[method]
}

// TotalCalls returns the number of calls across all methods.
func (f *FakeClient) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.Calls {
		total += n
	}
	return total
}

func (f *FakeClient) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[method]++
	return f.Errs[method]
}

func (f *FakeClient) ChannelsByUsername(_ context.Context, username string) (*youtube.ChannelListResponse, error) {
	if err := f.record("ChannelsByUsername"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	resp := &youtube.ChannelListResponse{}
	if id, ok := f.Usernames[username]; ok {
		resp.Items = append(resp.Items, &youtube.Channel{Id: id})
	}
	return resp, nil
}

func (f *FakeClient) Channels(_ context.Context, _ []string, ids []string) (*youtube.ChannelListResponse, error) {
	if err := f.record("Channels"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	resp := &youtube.ChannelListResponse{}
	for _, id := range ids {
		if ch, ok := f.ChannelsByID[id]; ok {
			resp.Items = append(resp.Items, ch)
		}
	}
	return resp, nil
}

func (f *FakeClient) SearchChannels(_ context.Context, query string, maxResults int64) (*youtube.SearchListResponse, error) {
	if err := f.record("SearchChannels"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	resp := &youtube.SearchListResponse{}
	for i, id := range f.ChannelSearch[query] {
		if int64(i) >= maxResults {
			break
		}
		resp.Items = append(resp.Items, &youtube.SearchResult{
			Id:      &youtube.ResourceId{Kind: "youtube#channel", ChannelId: id},
			Snippet: &youtube.SearchResultSnippet{ChannelId: id},
		})
	}
	return resp, nil
}

// SearchChannelVideos pages through ChannelVideos using the offset as page token.
func (f *FakeClient) SearchChannelVideos(_ context.Context, channelID, pageToken string, maxResults int64) (*youtube.SearchListResponse, error) {
	if err := f.record("SearchChannelVideos"); err != nil {
		return nil, err
	}
	if f.SearchChannelVideosFunc != nil {
		return f.SearchChannelVideosFunc(channelID, pageToken, maxResults)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	ids := f.ChannelVideos[channelID]
	start := 0
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil {
			return nil, fmt.Errorf("bad page token %q", pageToken)
		}
		start = n
	}
	end := start + int(maxResults)
	if end > len(ids) {
		end = len(ids)
	}

	resp := &youtube.SearchListResponse{}
	if start < end {
		for _, id := range ids[start:end] {
			resp.Items = append(resp.Items, f.searchResult(id))
		}
	}
	if end < len(ids) {
		resp.NextPageToken = strconv.Itoa(end)
	}
	return resp, nil
}

func (f *FakeClient) SearchVideos(_ context.Context, query string, maxResults int64) (*youtube.SearchListResponse, error) {
	if err := f.record("SearchVideos"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	resp := &youtube.SearchListResponse{}
	for i, id := range f.KeywordHits[query] {
		if int64(i) >= maxResults {
			break
		}
		resp.Items = append(resp.Items, f.searchResult(id))
	}
	return resp, nil
}

func (f *FakeClient) Videos(_ context.Context, ids []string) (*youtube.VideoListResponse, error) {
	if err := f.record("Videos"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	resp := &youtube.VideoListResponse{}
	for _, id := range ids {
		v, ok := f.VideosByID[id]
		if !ok {
			continue
		}
		resp.Items = append(resp.Items, &youtube.Video{
			Id: id,
			Statistics: &youtube.VideoStatistics{
				ViewCount:    v.Views,
				LikeCount:    v.Likes,
				CommentCount: v.Comments,
			},
		})
	}
	return resp, nil
}

func (f *FakeClient) CommentThreads(_ context.Context, videoID string, maxResults int64) (*youtube.CommentThreadListResponse, error) {
	if err := f.record("CommentThreads"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	resp := &youtube.CommentThreadListResponse{}
	for i, thread := range f.Threads[videoID] {
		if int64(i) >= maxResults {
			break
		}
		resp.Items = append(resp.Items, thread)
	}
	return resp, nil
}

// must be called with lock held
func (f *FakeClient) searchResult(id string) *youtube.SearchResult {
	result := &youtube.SearchResult{
		Id:      &youtube.ResourceId{Kind: "youtube#video", VideoId: id},
		Snippet: &youtube.SearchResultSnippet{PublishedAt: "2024-05-01T09:00:00Z"},
	}
	if v, ok := f.VideosByID[id]; ok {
		result.Snippet.Title = v.Title
		result.Snippet.ChannelId = v.ChannelID
		result.Snippet.ChannelTitle = "channel " + v.ChannelID
		result.Snippet.Thumbnails = &youtube.ThumbnailDetails{
			High: &youtube.Thumbnail{Url: "https://i.ytimg.example/vi/" + id + "/hqdefault.jpg"},
		}
	}
	return result
}
