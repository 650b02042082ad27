package shorts

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
)

// Classifier tells short-form videos apart by probing the /shorts/<id> URL.
// YouTube answers 200 for shorts and redirects to /watch for everything else.
type Classifier struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

func NewClassifier(httpClient *http.Client, baseURL string, logger *zap.Logger) *Classifier {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.APIConfig.ProbeTimeout}
	}
	if baseURL == "" {
		baseURL = constants.APIConfig.ShortsBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// redirect 를 따라가면 /watch 페이지가 200 을 주므로 첫 응답만 본다
	probe := *httpClient
	probe.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Classifier{
		httpClient: &probe,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Classify returns FormatShort on 200, FormatLong on any other status and
// FormatUnknown when the probe itself fails.
func (c *Classifier) Classify(ctx context.Context, videoID string) domain.VideoFormat {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+videoID, nil)
	if err != nil {
		c.logger.Warn("Shorts probe request build failed", zap.String("video_id", videoID), zap.Error(err))
		return domain.FormatUnknown
	}
	req.Header.Set("User-Agent", constants.APIConfig.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Shorts probe failed", zap.String("video_id", videoID), zap.Error(err))
		return domain.FormatUnknown
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return domain.FormatShort
	}
	return domain.FormatLong
}

// IsShort collapses Classify to the stored boolean. Unknown counts as long-form.
func (c *Classifier) IsShort(ctx context.Context, videoID string) bool {
	return c.Classify(ctx, videoID).IsShort()
}
