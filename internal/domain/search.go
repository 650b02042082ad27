package domain

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// NewSearchID returns a sortable identifier for one ingest run.
func NewSearchID(now time.Time) string {
	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return now.Format("20060102150405")
	}
	return now.Format("20060102150405") + "-" + hex.EncodeToString(suffix)
}

type BlogPost struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PDFDocument is the text layer of a reference PDF.
type PDFDocument struct {
	Name      string `json:"name"`
	Pages     int    `json:"pages"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated"`
}
