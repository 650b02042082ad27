package domain

import "time"

// AnalysisConfig selects which slice of a run is analysed and where the result goes.
type AnalysisConfig struct {
	IsShorts bool
	Model    string
	Table    string
}

// ContentLabel is the Korean label used in prompts and messages.
func (c AnalysisConfig) ContentLabel() string {
	if c.IsShorts {
		return "쇼츠(Shorts)"
	}
	return "롱폼(Longform)"
}

type ContentSource string

const (
	SourceKeyword ContentSource = "keyword"
	SourceChannel ContentSource = "channel"
	SourcePDF     ContentSource = "pdf"
)

func (s ContentSource) IsValid() bool {
	return s == SourceKeyword || s == SourceChannel || s == SourcePDF
}

// Platform is where generated content will be published.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformThreads   Platform = "threads"
)

// IsValid accepts the empty value, which means YouTube.
func (p Platform) IsValid() bool {
	switch p {
	case "", PlatformYouTube, PlatformInstagram, PlatformThreads:
		return true
	}
	return false
}

// StoredVideo is a persisted video row as read back for analysis and ranking.
type StoredVideo struct {
	SearchID    string    `json:"search_unique_id"`
	Keyword     string    `json:"keyword"`
	ChannelURL  string    `json:"channel_url"`
	Channel     string    `json:"channel_name"`
	Subscribers int64     `json:"channel_subscribers"`
	VideoID     string    `json:"video_id"`
	Title       string    `json:"video_title"`
	Thumbnail   string    `json:"video_thumbnail"`
	Views       int64     `json:"video_view_count"`
	Likes       int64     `json:"video_like_count"`
	Comments    int64     `json:"video_comment_count"`
	Ratio       float64   `json:"video_view_subscriber_ratio"`
	IsShorts    bool      `json:"is_shorts"`
	Transcript  string    `json:"transcript"`
	PublishedAt time.Time `json:"published_at"`
	Comment1    string    `json:"comment_1"`
	Comment2    string    `json:"comment_2"`
	Comment3    string    `json:"comment_3"`
}

// ThumbnailAnalysis is one analysed thumbnail of a run.
type ThumbnailAnalysis struct {
	SearchID   string
	Keyword    string
	ChannelURL string
	Channel    string
	VideoID    string
	Title      string
	Thumbnail  string
	IsShorts   bool
	Analysis   string
}

type FeedbackPlatform string

const (
	FeedbackYouTube   FeedbackPlatform = "yt"
	FeedbackInstagram FeedbackPlatform = "ig"
	FeedbackThreads   FeedbackPlatform = "th"
)

func (p FeedbackPlatform) IsValid() bool {
	switch p {
	case FeedbackYouTube, FeedbackInstagram, FeedbackThreads:
		return true
	}
	return false
}

// Feedback is an operator rating of generated content. Instagram rows reuse
// the fields as caption (Title), pics (Thumbnail) and hashtags (Script);
// Threads rows as post (Title), pics (Thumbnail) and tags (Script).
type Feedback struct {
	Platform  FeedbackPlatform
	SearchID  string
	Title     string
	Thumbnail string
	Script    string
	Score     int
	Comment   string
}
