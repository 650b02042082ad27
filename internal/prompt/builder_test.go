package prompt

import (
	"strings"
	"testing"
)

func TestRenderVideoAnalysis(t *testing.T) {
	pb := NewPromptBuilder()
	out, err := pb.Render(TemplateVideoAnalysis, VideoAnalysisData{
		ChannelName:  "Bio Lab",
		ContentLabel: "쇼츠(Shorts)",
		Count:        2,
		AvgViews:     1500,
		AvgLikes:     12.5,
		AvgComments:  3,
		AvgRatio:     33.333333,
		TopVideos: []TopVideo{
			{Rank: 1, Title: "효소 이야기", Views: 2000, Likes: 20, Comments: 5, Ratio: 40},
			{Rank: 2, Title: "유산균", Views: 1000, Likes: 5, Comments: 1, Ratio: 26.6667},
		},
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	for _, want := range []string{
		`YouTube 채널 "Bio Lab"의 쇼츠(Shorts) 영상 2개`,
		"평균 조회수: 1500.0회",
		"평균 좋아요: 12.5개",
		"평균 조회수/구독자 비율: 33.3333",
		"상위 2개 영상",
		`1. "효소 이야기"`,
		"5. 쇼츠(Shorts) 영상의 성공 요인과 개선점 제안",
		"400-500단어",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered prompt missing %q:\n%s", want, out)
		}
	}
}

func TestRenderContentTemplates(t *testing.T) {
	pb := NewPromptBuilder()
	for _, name := range []TemplateName{TemplateContentKeyword, TemplateContentChannel} {
		out, err := pb.Render(name, ContentData{Keyword: "효소", Reference: "참고 영상 A"})
		if err != nil {
			t.Fatalf("%s: render failed: %v", name, err)
		}
		if !strings.Contains(out, "효소") || !strings.Contains(out, "참고 영상 A") || !strings.Contains(out, "[스크립트]") {
			t.Fatalf("%s: unexpected output:\n%s", name, out)
		}
	}
}

func TestRenderPlatformTemplates(t *testing.T) {
	pb := NewPromptBuilder()
	cases := []struct {
		name    TemplateName
		data    ContentData
		markers []string
	}{
		{TemplateContentPDF, ContentData{Keyword: "효소", Reference: "PDF 본문"},
			[]string{"PDF 내용:\nPDF 본문", "pdf 파일 내용에 관한", "[스크립트]"}},
		{TemplateContentInstagram, ContentData{Keyword: "효소", Reference: "PDF 본문", ReferenceLabel: "PDF 내용", FromPDF: true},
			[]string{"PDF 내용:\nPDF 본문", "pdf 파일 내용에 관한 인스타그램", "[사진]\n\n[게시글]\n\n[해시 태그]"}},
		{TemplateContentThreads, ContentData{Keyword: "효소", Reference: "1. 제목: A", ReferenceLabel: "참고할 동영상 정보"},
			[]string{"참고할 동영상 정보:\n1. 제목: A", "'효소'를 주제로 하고 Threads", "[게시글]\n\n[사진]\n\n[태그]"}},
	}
	for _, tc := range cases {
		out, err := pb.Render(tc.name, tc.data)
		if err != nil {
			t.Fatalf("%s: render failed: %v", tc.name, err)
		}
		for _, want := range tc.markers {
			if !strings.Contains(out, want) {
				t.Fatalf("%s: missing %q:\n%s", tc.name, want, out)
			}
		}
	}
}

func TestSocialSystemPrompt(t *testing.T) {
	if got := SocialSystemPrompt("스레드", true); !strings.Contains(got, "pdf 내용에 기반하여 스레드") {
		t.Fatalf("unexpected pdf persona: %s", got)
	}
	if got := SocialSystemPrompt("인스타그램", false); strings.Contains(got, "pdf") {
		t.Fatalf("persona should not mention pdf: %s", got)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	if _, err := NewPromptBuilder().Render("missing.tmpl", nil); err == nil {
		t.Fatalf("expected error for unknown template")
	}
}

func TestContentSystemPrompt(t *testing.T) {
	if got := ContentSystemPrompt("효소"); !strings.Contains(got, "효소 주제의") {
		t.Fatalf("unexpected system prompt: %s", got)
	}
	if got := ContentSystemPrompt(""); strings.Contains(got, "주제의") {
		t.Fatalf("unexpected system prompt: %s", got)
	}
}
