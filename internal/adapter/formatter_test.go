package adapter

import (
	"strings"
	"testing"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
)

func TestFormatVideosTruncatesTitles(t *testing.T) {
	f := NewReportFormatter(5)
	out := f.FormatVideos([]domain.StoredVideo{
		{VideoID: "v1", Channel: "biolab", Title: "아주 긴 영상 제목입니다", Views: 1200, Ratio: 1.5, IsShorts: true},
	})

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines: %q", len(lines), out)
	}
	if !strings.Contains(lines[1], "shorts") || !strings.Contains(lines[1], "1.50") {
		t.Fatalf("unexpected row: %q", lines[1])
	}
	if strings.Contains(lines[1], "제목입니다") {
		t.Fatalf("title was not truncated: %q", lines[1])
	}
}

func TestFormatVideosEmpty(t *testing.T) {
	if got := NewReportFormatter(0).FormatVideos(nil); !strings.Contains(got, "없습니다") {
		t.Fatalf("unexpected empty output: %q", got)
	}
}

func TestFormatRunSummary(t *testing.T) {
	out := NewReportFormatter(0).FormatRunSummary(RunSummary{
		SearchID:       "20250301120000-ab12cd",
		Source:         domain.SourceKeyword,
		Keyword:        "효소",
		Videos:         5,
		Shorts:         2,
		QuotaUsed:      103,
		QuotaRemaining: 9897,
	})

	for _, want := range []string{"20250301120000-ab12cd", "keyword: 효소", "쇼츠 2 / 롱폼 3", "--no-save"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestFormatAnalysisMarksFallback(t *testing.T) {
	out, err := NewReportFormatter(0).FormatAnalysis(AnalysisReport{
		ContentLabel: "롱폼(Longform)",
		Provider:     "gemini",
		Model:        "gemini-2.5-flash",
		UsedFallback: true,
		Text:         "첫 줄\n둘째 줄",
	})
	if err != nil {
		t.Fatalf("FormatAnalysis failed: %v", err)
	}
	if !strings.Contains(out, "(fallback)") {
		t.Fatalf("fallback marker missing:\n%s", out)
	}
	if !strings.Contains(out, "  첫 줄\n  둘째 줄") {
		t.Fatalf("body not indented:\n%s", out)
	}
}

func TestFormatThumbnailsNumbersItems(t *testing.T) {
	out, err := NewReportFormatter(0).FormatThumbnails([]domain.ThumbnailAnalysis{
		{Title: "A", Thumbnail: "https://i.ytimg.com/a.jpg", Analysis: "좋음"},
		{Title: "B", Thumbnail: "https://i.ytimg.com/b.jpg", Analysis: "보통"},
	})
	if err != nil {
		t.Fatalf("FormatThumbnails failed: %v", err)
	}
	if !strings.Contains(out, "1. A") || !strings.Contains(out, "2. B") {
		t.Fatalf("items not numbered:\n%s", out)
	}
}

func TestFormatBlogPostWithoutSummary(t *testing.T) {
	out, err := NewReportFormatter(0).FormatBlogPost(domain.BlogPost{
		URL:     "https://blog.example.com/1",
		Title:   "효소 이야기",
		Content: "본문",
	}, "")
	if err != nil {
		t.Fatalf("FormatBlogPost failed: %v", err)
	}
	if strings.Contains(out, "요약") {
		t.Fatalf("summary section should be omitted:\n%s", out)
	}
	if !strings.HasPrefix(out, "📝 효소 이야기") {
		t.Fatalf("unexpected header:\n%s", out)
	}
}
