package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/util"
	apperrors "github.com/JiwonBiocom/Youtube-channel-analyser/pkg/errors"
	"go.uber.org/zap"
)

type fakeProvider struct {
	name string
	text string
	err  error

	mu       sync.Mutex
	requests []Request
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Generate(_ context.Context, req Request) (ProviderResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.err != nil {
		return ProviderResult{}, p.err
	}
	return ProviderResult{Text: p.text, Model: req.Model}, nil
}

func (p *fakeProvider) Ping(context.Context) bool { return p.err == nil }

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

type recordingAnalysisStore struct {
	table    string
	searchID string
	isShorts bool
	text     string
}

func (s *recordingAnalysisStore) SaveAnalysis(_ context.Context, table, searchID string, isShorts bool, analysis string) error {
	s.table, s.searchID, s.isShorts, s.text = table, searchID, isShorts, analysis
	return nil
}

func newManager(t *testing.T, primary, fallback *fakeProvider) *ModelManager {
	t.Helper()
	cfg := ModelManagerConfig{EnableFallback: true}
	if primary != nil {
		cfg.Primary = primary
	}
	if fallback != nil {
		cfg.Fallback = fallback
	}
	mm, err := NewModelManager(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to build manager: %v", err)
	}
	return mm
}

func TestModelManagerPrimarySuccess(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", text: "  분석 결과  "}
	fallback := &fakeProvider{name: "Gemini", text: "unused"}
	mm := newManager(t, primary, fallback)

	text, meta, err := mm.GenerateText(context.Background(), Request{Prompt: "p", Model: "gpt-4o-2024-08-06"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "분석 결과" {
		t.Fatalf("expected trimmed text, got %q", text)
	}
	if meta.Provider != "OpenAI" || meta.UsedFallback {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if fallback.calls() != 0 {
		t.Fatalf("fallback should not be called")
	}
}

func TestModelManagerFallsBack(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", err: errors.New("500 Internal Server Error")}
	fallback := &fakeProvider{name: "Gemini", text: "fallback text"}
	mm := newManager(t, primary, fallback)

	text, meta, err := mm.GenerateText(context.Background(), Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "fallback text" || !meta.UsedFallback || meta.Provider != "Gemini" {
		t.Fatalf("unexpected result: %q %+v", text, meta)
	}
	if mm.CircuitStatus().FailureCount != 0 {
		t.Fatalf("successful fallback should not count as failure")
	}
}

func TestModelManagerEmptyPrimaryResponseFallsBack(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", text: "   "}
	fallback := &fakeProvider{name: "Gemini", text: "ok"}
	mm := newManager(t, primary, fallback)

	text, _, err := mm.GenerateText(context.Background(), Request{Prompt: "p"})
	if err != nil || text != "ok" {
		t.Fatalf("expected fallback answer, got %q %v", text, err)
	}
}

func TestModelManagerCircuitOpensOnServiceFailures(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", err: errors.New("503 Service Unavailable")}
	fallback := &fakeProvider{name: "Gemini", err: errors.New(`Error 503, Message: overloaded, Status: UNAVAILABLE`)}
	mm := newManager(t, primary, fallback)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mm.withClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		_, _, err := mm.GenerateText(context.Background(), Request{Prompt: "p"})
		var svcErr *apperrors.ServiceError
		if !errors.As(err, &svcErr) {
			t.Fatalf("attempt %d: expected ServiceError, got %v", i+1, err)
		}
		if svcErr.Service != "Gemini" {
			t.Fatalf("expected failing service Gemini, got %q", svcErr.Service)
		}
	}
	if mm.CircuitStatus().State != util.CircuitStateOpen {
		t.Fatalf("expected open circuit, got %s", mm.CircuitStatus().State)
	}

	_, _, err := mm.GenerateText(context.Background(), Request{Prompt: "p"})
	if err == nil || !strings.Contains(err.Error(), "장애") {
		t.Fatalf("expected circuit open error, got %v", err)
	}
	if primary.calls() != 3 {
		t.Fatalf("open circuit must not reach the provider, got %d calls", primary.calls())
	}
}

func TestModelManagerClientErrorsDoNotTripCircuit(t *testing.T) {
	primary := &fakeProvider{name: "OpenAI", err: errors.New("400 Bad Request: invalid model")}
	mm := newManager(t, primary, nil)

	for i := 0; i < 5; i++ {
		if _, _, err := mm.GenerateText(context.Background(), Request{Prompt: "p"}); err == nil {
			t.Fatalf("expected error")
		}
	}
	if mm.CircuitStatus().State != util.CircuitStateClosed {
		t.Fatalf("client errors should keep the circuit closed")
	}
	if primary.calls() != 5 {
		t.Fatalf("expected 5 calls, got %d", primary.calls())
	}
}

func TestNewModelManagerPromotesFallback(t *testing.T) {
	gemini := &fakeProvider{name: "Gemini", text: "ok"}
	mm, err := NewModelManager(ModelManagerConfig{Fallback: gemini, EnableFallback: true}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, meta, err := mm.GenerateText(context.Background(), Request{Prompt: "p"})
	if err != nil || meta.Provider != "Gemini" || meta.UsedFallback {
		t.Fatalf("unexpected result: %+v %v", meta, err)
	}

	if _, err := NewModelManager(ModelManagerConfig{}, nil); err == nil {
		t.Fatalf("expected error without providers")
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		msg       string
		service   bool
		rateLimit bool
	}{
		{"429 Too Many Requests", true, true},
		{"Rate limit reached for gpt-4o", true, true},
		{`{"error":{"code":429,"message":"Resource has been exhausted"}}`, true, true},
		{"503 Service Unavailable", true, false},
		{`{"error":{"code":500}}`, true, false},
		{"context deadline exceeded", true, false},
		{"400 Bad Request", false, false},
		{"invalid api key", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := errors.New(tt.msg)
			if got := isServiceFailure(err); got != tt.service {
				t.Fatalf("isServiceFailure(%q) = %v", tt.msg, got)
			}
			if got := isRateLimitError(err); got != tt.rateLimit {
				t.Fatalf("isRateLimitError(%q) = %v", tt.msg, got)
			}
		})
	}
}

func storedRows() []domain.StoredVideo {
	return []domain.StoredVideo{
		{Channel: "Bio Lab", Title: "s1", Views: 1000, Likes: 10, Comments: 1, Ratio: 10, IsShorts: true},
		{Channel: "Bio Lab", Title: "l1", Views: 5000, Likes: 50, Comments: 9, Ratio: 50},
		{Channel: "Bio Lab", Title: "l2", Views: 3000, Likes: 30, Comments: 3, Ratio: 30},
		{Channel: "Bio Lab", Title: "l3", Views: 9000, Likes: 20, Comments: 2, Ratio: 90},
		{Channel: "Bio Lab", Title: "l4", Views: 1000, Likes: 40, Comments: 6, Ratio: 10},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(storedRows()[1:])
	if s.Count != 4 || s.AvgViews != 4500 || s.AvgLikes != 35 || s.AvgComments != 5 || s.AvgRatio != 45 {
		t.Fatalf("unexpected means: %+v", s)
	}
	if s.MaxViews != 9000 || s.MaxLikes != 50 || s.MaxComments != 9 {
		t.Fatalf("unexpected maxes: %+v", s)
	}
	if empty := Summarize(nil); empty.Count != 0 || empty.AvgViews != 0 {
		t.Fatalf("unexpected empty summary: %+v", empty)
	}
}

func TestAnalyzeLongform(t *testing.T) {
	llm := &fakeProvider{name: "OpenAI", text: "롱폼 분석"}
	mm := newManager(t, llm, nil)
	store := &recordingAnalysisStore{}
	analyzer := NewAnalyzer(mm, nil, store, zap.NewNop())

	cfg := domain.AnalysisConfig{IsShorts: false, Model: "gpt-4o-2024-08-06", Table: "video_analysis"}
	result, err := analyzer.Analyze(context.Background(), cfg, "run-1", storedRows())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Summary.Count != 4 || result.Text != "롱폼 분석" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.TopVideos) != 3 || result.TopVideos[0].Title != "l3" || result.TopVideos[1].Title != "l1" || result.TopVideos[2].Title != "l2" {
		t.Fatalf("unexpected top videos: %+v", result.TopVideos)
	}

	req := llm.requests[0]
	if req.Temperature != 0.3 || req.MaxTokens != 1000 || req.Model != cfg.Model {
		t.Fatalf("unexpected request params: %+v", req)
	}
	if !strings.Contains(req.Prompt, "롱폼(Longform) 영상 4개") || !strings.Contains(req.Prompt, `1. "l3"`) {
		t.Fatalf("unexpected prompt:\n%s", req.Prompt)
	}
	if req.System == "" {
		t.Fatalf("expected system prompt")
	}

	if store.table != "video_analysis" || store.searchID != "run-1" || store.isShorts || store.text != "롱폼 분석" {
		t.Fatalf("analysis not stored: %+v", store)
	}
}

func TestAnalyzeNoMatchingVideos(t *testing.T) {
	llm := &fakeProvider{name: "OpenAI", text: "unused"}
	analyzer := NewAnalyzer(newManager(t, llm, nil), nil, nil, nil)

	rows := storedRows()[1:]
	_, err := analyzer.Analyze(context.Background(), domain.AnalysisConfig{IsShorts: true}, "run-1", rows)
	if !errors.Is(err, ErrNoVideos) {
		t.Fatalf("expected ErrNoVideos, got %v", err)
	}
	if err.Error() != "분석할 쇼츠(Shorts) 영상이 없습니다." {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if llm.calls() != 0 {
		t.Fatalf("LLM must not be called without videos")
	}
}

func TestAnalyzeSkipsStoreWithoutTable(t *testing.T) {
	llm := &fakeProvider{name: "OpenAI", text: "쇼츠 분석"}
	store := &recordingAnalysisStore{}
	analyzer := NewAnalyzer(newManager(t, llm, nil), nil, store, nil)

	if _, err := analyzer.Analyze(context.Background(), domain.AnalysisConfig{IsShorts: true}, "run-2", storedRows()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.text != "" {
		t.Fatalf("store should not be written without a table")
	}
}

func TestGenerateChannelContent(t *testing.T) {
	llm := &fakeProvider{name: "OpenAI", text: "[제목]\n..."}
	gen := NewGenerator(newManager(t, llm, nil), nil, zap.NewNop())

	out, err := gen.Generate(context.Background(), GenerateRequest{
		Source:    domain.SourceChannel,
		Keyword:   "효소",
		Reference: ReferenceFromVideos(storedRows()[:2]),
		Model:     "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Fatalf("expected generated text")
	}

	req := llm.requests[0]
	if req.MaxTokens != 1500 || req.Temperature != 0.3 || req.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected params: %+v", req)
	}
	if !strings.Contains(req.System, "효소 주제의") {
		t.Fatalf("channel generation should scope the persona: %s", req.System)
	}
	if !strings.Contains(req.Prompt, "1. 제목: s1") || !strings.Contains(req.Prompt, "채널 영상 정보") {
		t.Fatalf("reference missing from prompt:\n%s", req.Prompt)
	}
}

func TestGenerateValidation(t *testing.T) {
	gen := NewGenerator(newManager(t, &fakeProvider{name: "OpenAI", text: "x"}, nil), nil, nil)

	if _, err := gen.Generate(context.Background(), GenerateRequest{Source: "tiktok", Keyword: "효소"}); err == nil {
		t.Fatalf("expected error for unknown source")
	}
	if _, err := gen.Generate(context.Background(), GenerateRequest{Source: domain.SourceKeyword, Keyword: " "}); err == nil {
		t.Fatalf("expected error for empty keyword")
	}
	if _, err := gen.Generate(context.Background(), GenerateRequest{Source: domain.SourceKeyword, Platform: "tiktok", Keyword: "효소"}); err == nil {
		t.Fatalf("expected error for unknown platform")
	}
}

func TestGeneratePicksTemplateByPlatform(t *testing.T) {
	cases := []struct {
		source   domain.ContentSource
		platform domain.Platform
		system   string
		marker   string
	}{
		{domain.SourceKeyword, "", "유튜브 동영상 컨텐츠", "참고할 동영상 정보:"},
		{domain.SourcePDF, domain.PlatformYouTube, "pdf 내용에 기반하여 유튜브", "PDF 내용:"},
		{domain.SourcePDF, domain.PlatformInstagram, "pdf 내용에 기반하여 인스타그램", "[해시 태그]"},
		{domain.SourceKeyword, domain.PlatformThreads, "스레드 콘텐츠", "참고할 동영상 정보:"},
		{domain.SourcePDF, domain.PlatformThreads, "pdf 내용에 기반하여 스레드", "[태그]"},
	}
	for _, tc := range cases {
		llm := &fakeProvider{name: "OpenAI", text: "ok"}
		gen := NewGenerator(newManager(t, llm, nil), nil, nil)

		_, err := gen.Generate(context.Background(), GenerateRequest{
			Source:    tc.source,
			Platform:  tc.platform,
			Keyword:   "효소",
			Reference: "참고",
		})
		if err != nil {
			t.Fatalf("%s/%s: unexpected error: %v", tc.source, tc.platform, err)
		}
		req := llm.requests[0]
		if !strings.Contains(req.System, tc.system) {
			t.Fatalf("%s/%s: unexpected persona: %s", tc.source, tc.platform, req.System)
		}
		if !strings.Contains(req.Prompt, tc.marker) {
			t.Fatalf("%s/%s: prompt missing %q:\n%s", tc.source, tc.platform, tc.marker, req.Prompt)
		}
	}
}

func TestGeneratePDFReferenceIsCapped(t *testing.T) {
	llm := &fakeProvider{name: "OpenAI", text: "ok"}
	gen := NewGenerator(newManager(t, llm, nil), nil, nil)

	_, err := gen.Generate(context.Background(), GenerateRequest{
		Source:    domain.SourcePDF,
		Platform:  domain.PlatformInstagram,
		Keyword:   "효소",
		Reference: strings.Repeat("가", 5000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prompt := llm.requests[0].Prompt
	if !strings.Contains(prompt, strings.Repeat("가", 3000)+"...") || strings.Contains(prompt, strings.Repeat("가", 3001)) {
		t.Fatalf("pdf reference should be cut at 3000 runes")
	}
}

func TestSummarizeBlogTruncatesInput(t *testing.T) {
	llm := &fakeProvider{name: "OpenAI", text: "요약"}
	gen := NewGenerator(newManager(t, llm, nil), nil, nil)

	post := domain.BlogPost{Title: "제목", Content: strings.Repeat("가", 20000)}
	if _, err := gen.SummarizeBlog(context.Background(), post, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := llm.requests[0]
	if n := len([]rune(req.Prompt)); n != 15003 {
		t.Fatalf("expected truncated prompt of 15003 runes, got %d", n)
	}
	if req.MaxTokens != 500 {
		t.Fatalf("unexpected max tokens: %d", req.MaxTokens)
	}
}

type recordingThumbnailStore struct {
	table string
	items []domain.ThumbnailAnalysis
}

func (s *recordingThumbnailStore) SaveThumbnailAnalysis(_ context.Context, table string, items []domain.ThumbnailAnalysis) error {
	s.table = table
	s.items = append(s.items, items...)
	return nil
}

func TestAnalyzeThumbnails(t *testing.T) {
	llm := &fakeProvider{name: "OpenAI", text: "썸네일 분석"}
	analyzer := NewAnalyzer(newManager(t, llm, nil), nil, nil, nil)
	store := &recordingThumbnailStore{}

	rows := storedRows()
	for i := range rows {
		rows[i].VideoID = rows[i].Title
		rows[i].Thumbnail = "https://i.ytimg.com/vi/" + rows[i].Title + "/hqdefault.jpg"
	}
	rows[3].Thumbnail = ""

	cfg := domain.AnalysisConfig{Table: "thumbnail_analysis"}
	items, err := analyzer.AnalyzeThumbnails(context.Background(), cfg, "run-3", rows, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 || items[0].VideoID != "l1" || items[1].VideoID != "l2" || items[2].VideoID != "l4" {
		t.Fatalf("unexpected thumbnail items: %+v", items)
	}
	if llm.requests[0].ImageURL != rows[1].Thumbnail {
		t.Fatalf("thumbnail not attached: %+v", llm.requests[0])
	}
	if store.table != "thumbnail_analysis" || len(store.items) != 3 || store.items[0].SearchID != "run-3" {
		t.Fatalf("unexpected stored items: %+v", store)
	}
}
