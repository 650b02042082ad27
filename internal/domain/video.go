package domain

import (
	"fmt"
	"time"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/util"
)

// VideoFormat is the short-form/long-form classification of a video.
type VideoFormat string

const (
	FormatShort   VideoFormat = "short"
	FormatLong    VideoFormat = "long"
	FormatUnknown VideoFormat = "unknown" // probe failed; persisted as long-form
)

func (f VideoFormat) String() string {
	return string(f)
}

func (f VideoFormat) IsValid() bool {
	switch f {
	case FormatShort, FormatLong, FormatUnknown:
		return true
	default:
		return false
	}
}

// IsShort collapses the classification to the stored boolean flag.
func (f VideoFormat) IsShort() bool {
	return f == FormatShort
}

type VideoRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ChannelID    string    `json:"channel_id"`
	ChannelTitle string    `json:"channel_title"`
	Thumbnail    string    `json:"thumbnail"`
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
	Comments     int64     `json:"comments"`
	Subscribers  int64     `json:"subscribers"`
	Ratio        float64   `json:"view_subscriber_ratio"`
	PublishedAt  time.Time `json:"published_at"`

	Format      VideoFormat      `json:"format,omitempty"`
	Transcript  TranscriptResult `json:"transcript"`
	TopComments []CommentRecord  `json:"top_comments,omitempty"`
}

func (v *VideoRecord) URL() string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", v.ID)
}

func (v *VideoRecord) IsShort() bool {
	if v == nil {
		return false
	}
	return v.Format.IsShort()
}

// Enriched reports whether the per-video enrichment step has run.
func (v *VideoRecord) Enriched() bool {
	if v == nil {
		return false
	}
	return v.Format != "" && v.Transcript.Status != "" && len(v.TopComments) > 0
}

// SubscriberRatio returns views / subscribers * 100 rounded to two decimals,
// or 0 when the subscriber count is not positive.
func SubscriberRatio(views, subscribers int64) float64 {
	if subscribers <= 0 {
		return 0
	}
	ratio := float64(views) / float64(subscribers) * 100
	return util.RoundTo(ratio, 2)
}
