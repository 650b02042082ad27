package domain

import "time"

const (
	// NoCommentsText stands in when the comments endpoint fails or is disabled.
	NoCommentsText = "댓글 없음"
	// EmptyCommentSlot fills unused comment columns when persisting.
	EmptyCommentSlot = "내용 없음"
)

type CommentRecord struct {
	Author      string    `json:"author"`
	Text        string    `json:"text"`
	Likes       int64     `json:"likes"`
	PublishedAt time.Time `json:"published_at"`
	Placeholder bool      `json:"placeholder,omitempty"`
}

// PlaceholderComment returns the record used when no comments can be read.
func PlaceholderComment() CommentRecord {
	return CommentRecord{
		Text:        NoCommentsText,
		Placeholder: true,
	}
}

// CommentSlots flattens comments into n text columns padded with EmptyCommentSlot.
func CommentSlots(comments []CommentRecord, n int) []string {
	slots := make([]string, n)
	for i := range slots {
		if i < len(comments) {
			slots[i] = comments[i].Text
		} else {
			slots[i] = EmptyCommentSlot
		}
	}
	return slots
}
