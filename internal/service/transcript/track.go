package transcript

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	errNoTracks        = errors.New("no caption tracks")
	errNoLanguageTrack = errors.New("no caption track in requested language")
	errEmptyTranscript = errors.New("caption track is empty")
)

// Track is one caption track listed for a video.
type Track struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

func (t Track) IsGenerated() bool {
	return t.Kind == "asr"
}

// Cue is a single timed caption line.
type Cue struct {
	Text     string
	Start    time.Duration
	Duration time.Duration
}

// TrackSource lists caption tracks and downloads their cues.
type TrackSource interface {
	ListTracks(ctx context.Context, videoID string) ([]Track, error)
	FetchCues(ctx context.Context, track Track) ([]Cue, error)
}

// SelectTrack picks a track for lang: manual first, then auto-generated,
// then the first track whose code merely starts with lang (e.g. "ko-KR").
func SelectTrack(tracks []Track, lang string) (Track, bool) {
	for _, t := range tracks {
		if t.LanguageCode == lang && !t.IsGenerated() {
			return t, true
		}
	}
	for _, t := range tracks {
		if t.LanguageCode == lang && t.IsGenerated() {
			return t, true
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, lang) {
			return t, true
		}
	}
	return Track{}, false
}

// Accumulate joins cue text until the summed cue durations pass window.
// The check runs before each cue, so the cue that crosses the window is
// kept whole and nothing after it is.
func Accumulate(cues []Cue, window time.Duration) string {
	var (
		elapsed time.Duration
		parts   = make([]string, 0, len(cues))
	)
	for _, cue := range cues {
		if elapsed > window {
			break
		}
		if text := strings.TrimSpace(cue.Text); text != "" {
			parts = append(parts, text)
		}
		elapsed += cue.Duration
	}
	return strings.Join(parts, " ")
}
