package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
)

const (
	playerResponseMarker = "ytInitialPlayerResponse = "

	androidClientVersion = "20.10.38"
	androidUserAgent     = "com.google.android.youtube/" + androidClientVersion + " (Linux; U; Android 11) gzip"

	watchPageLimit = 6 * 1024 * 1024
	timedTextLimit = 1024 * 1024
)

// YouTubeSource reads caption tracks from the watch page player response and
// falls back to the ANDROID innertube /player endpoint.
type YouTubeSource struct {
	httpClient   *http.Client
	watchURL     string
	innertubeURL string
	logger       *zap.Logger
}

type SourceOptions struct {
	HTTPClient   *http.Client
	WatchURL     string // prefix the video id is appended to
	InnertubeURL string // base of /player
}

func NewYouTubeSource(opts SourceOptions, logger *zap.Logger) *YouTubeSource {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: constants.APIConfig.CaptionTimeout}
	}
	if opts.WatchURL == "" {
		opts.WatchURL = constants.APIConfig.WatchBaseURL
	}
	if opts.InnertubeURL == "" {
		opts.InnertubeURL = constants.APIConfig.InnertubeBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YouTubeSource{
		httpClient:   opts.HTTPClient,
		watchURL:     opts.WatchURL,
		innertubeURL: strings.TrimSuffix(opts.InnertubeURL, "/"),
		logger:       logger,
	}
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []Track `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

func (p playerResponse) tracks() ([]Track, error) {
	if p.Captions == nil {
		if p.PlayabilityStatus != nil && p.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("%w: %s", errNoTracks, p.PlayabilityStatus.Reason)
		}
		return nil, errNoTracks
	}
	tracks := p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, errNoTracks
	}
	return tracks, nil
}

// ListTracks tries the watch page first. A video that plainly has no
// captions there is not retried against innertube.
func (s *YouTubeSource) ListTracks(ctx context.Context, videoID string) ([]Track, error) {
	tracks, err := s.tracksFromWatchPage(ctx, videoID)
	if err == nil || errors.Is(err, errNoTracks) {
		return tracks, err
	}

	s.logger.Debug("Watch page scrape failed, trying innertube player",
		zap.String("video_id", videoID), zap.Error(err))

	return s.tracksFromPlayer(ctx, videoID)
}

func (s *YouTubeSource) tracksFromWatchPage(ctx context.Context, videoID string) ([]Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.watchURL+url.QueryEscape(videoID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", constants.APIConfig.UserAgent)
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, watchPageLimit))
	if err != nil {
		return nil, fmt.Errorf("read watch page: %w", err)
	}

	idx := bytes.Index(body, []byte(playerResponseMarker))
	if idx < 0 {
		return nil, errors.New("player response not found in watch page")
	}
	raw := extractJSONObject(body[idx+len(playerResponseMarker):])
	if raw == nil {
		return nil, errors.New("player response is not a JSON object")
	}

	var player playerResponse
	if err := json.Unmarshal(raw, &player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	return player.tracks()
}

type innertubeRequest struct {
	VideoID        string           `json:"videoId"`
	Context        innertubeContext `json:"context"`
	RacyCheckOk    bool             `json:"racyCheckOk"`
	ContentCheckOk bool             `json:"contentCheckOk"`
}

type innertubeContext struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

func (s *YouTubeSource) tracksFromPlayer(ctx context.Context, videoID string) ([]Track, error) {
	payload, err := json.Marshal(innertubeRequest{
		VideoID: videoID,
		Context: innertubeContext{Client: innertubeClient{
			ClientName:        "ANDROID",
			ClientVersion:     androidClientVersion,
			AndroidSdkVersion: 30,
			Hl:                "ko",
			Gl:                "KR",
		}},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.innertubeURL+"/player?prettyPrint=false", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", androidUserAgent)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", androidClientVersion)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("innertube player: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("innertube player: HTTP %d", resp.StatusCode)
	}

	var player playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return nil, fmt.Errorf("decode innertube player: %w", err)
	}
	return player.tracks()
}

// timedText covers both the legacy <transcript><text start dur> layout and
// the srv3 <timedtext><body><p t d> layout (milliseconds).
type timedText struct {
	Texts []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Text  string  `xml:",chardata"`
	} `xml:"text"`
	Body struct {
		Paragraphs []struct {
			T    int64  `xml:"t,attr"`
			D    int64  `xml:"d,attr"`
			Text string `xml:",chardata"`
			Segs []struct {
				Text string `xml:",chardata"`
			} `xml:"s"`
		} `xml:"p"`
	} `xml:"body"`
}

func (s *YouTubeSource) FetchCues(ctx context.Context, track Track) ([]Cue, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", constants.APIConfig.UserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch timedtext: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, timedTextLimit))
	if err != nil {
		return nil, err
	}
	return parseTimedText(body)
}

func parseTimedText(body []byte) ([]Cue, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyTranscript
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	cues := make([]Cue, 0, len(tt.Texts)+len(tt.Body.Paragraphs))
	for _, line := range tt.Texts {
		cues = append(cues, Cue{
			Text:     cleanCueText(line.Text),
			Start:    seconds(line.Start),
			Duration: seconds(line.Dur),
		})
	}
	for _, p := range tt.Body.Paragraphs {
		text := p.Text
		if len(p.Segs) > 0 {
			var sb strings.Builder
			for _, seg := range p.Segs {
				sb.WriteString(seg.Text)
			}
			text = sb.String()
		}
		cues = append(cues, Cue{
			Text:     cleanCueText(text),
			Start:    time.Duration(p.T) * time.Millisecond,
			Duration: time.Duration(p.D) * time.Millisecond,
		})
	}
	return cues, nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// 자막 XML 은 &amp;#39; 처럼 이중 이스케이프된 경우가 있다
func cleanCueText(s string) string {
	s = html.UnescapeString(html.UnescapeString(s))
	return strings.Join(strings.Fields(s), " ")
}

// extractJSONObject returns the leading balanced {...} of b.
func extractJSONObject(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inString := false
	escaped := false
	for i, c := range b {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
