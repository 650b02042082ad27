package blog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/util"
)

const untitled = "제목을 찾을 수 없습니다."

// 스마트에디터 버전별 제목 위치가 달라서 순서대로 시도
var titleSelectors = []string{
	"div.se-module-text h3.se-title-text",
	"div.se-title-text",
	"h3.se-title",
	"h3.title",
	"div.title h3",
	"title",
}

var contentSelectors = []string{
	"div.se-main-container div.se-text p",
	"div.se-main-container div.se-module-text",
	"div.post-view",
	"div.post_content",
	"div#content div.story",
}

var paragraphSelectors = []string{"p", "div.paragraph"}

// Extractor pulls the title and body text out of a blog post page.
type Extractor struct {
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

func NewExtractor(httpClient *http.Client, logger *zap.Logger) *Extractor {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.APIConfig.BlogTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		httpClient: httpClient,
		userAgent:  constants.APIConfig.UserAgent,
		logger:     logger,
	}
}

// Extract fetches rawURL and returns its post. Naver blogs wrap the post in
// iframe#mainFrame, which is followed once.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (domain.BlogPost, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || pageURL.Host == "" {
		return domain.BlogPost{}, fmt.Errorf("invalid blog url %q", rawURL)
	}

	doc, err := e.fetch(ctx, pageURL.String())
	if err != nil {
		return domain.BlogPost{}, err
	}

	if src, ok := doc.Find("iframe#mainFrame").First().Attr("src"); ok && src != "" {
		frameURL, parseErr := pageURL.Parse(src)
		if parseErr != nil {
			return domain.BlogPost{}, fmt.Errorf("invalid frame src %q: %w", src, parseErr)
		}
		e.logger.Debug("Following blog main frame", zap.String("frame_url", frameURL.String()))

		doc, err = e.fetch(ctx, frameURL.String())
		if err != nil {
			return domain.BlogPost{}, err
		}
	}

	post := domain.BlogPost{
		URL:     rawURL,
		Title:   extractTitle(doc),
		Content: extractContent(doc),
	}

	e.logger.Info("Blog post extracted",
		zap.String("url", rawURL),
		zap.String("title", post.Title),
		zap.Int("content_length", len([]rune(post.Content))))

	return post, nil
}

func (e *Extractor) fetch(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

func extractTitle(doc *goquery.Document) string {
	for _, sel := range titleSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		return strings.TrimSpace(node.Text())
	}
	return untitled
}

func extractContent(doc *goquery.Document) string {
	var parts []string

	for _, sel := range contentSelectors {
		nodes := doc.Find(sel)
		if nodes.Length() == 0 {
			continue
		}
		nodes.Each(func(_ int, s *goquery.Selection) {
			parts = append(parts, strings.TrimSpace(s.Text()))
		})
		break
	}

	if strings.TrimSpace(strings.Join(parts, "")) == "" {
		parts = parts[:0]
		for _, sel := range paragraphSelectors {
			nodes := doc.Find(sel)
			if nodes.Length() == 0 {
				continue
			}
			nodes.Each(func(_ int, s *goquery.Selection) {
				if text := strings.TrimSpace(s.Text()); text != "" {
					parts = append(parts, text)
				}
			})
			break
		}
	}

	return util.CollapseWhitespace(strings.Join(parts, "\n"))
}
