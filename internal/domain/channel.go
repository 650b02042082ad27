package domain

import "fmt"

// ChannelSummary is the header shown for a resolved channel.
type ChannelSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Subscribers int64  `json:"subscribers"`
	Thumbnail   string `json:"thumbnail"`
}

func (c *ChannelSummary) URL() string {
	if c == nil || c.ID == "" {
		return ""
	}
	return fmt.Sprintf("https://www.youtube.com/channel/%s", c.ID)
}
