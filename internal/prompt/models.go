package prompt

import "fmt"

type TopVideo struct {
	Rank     int
	Title    string
	Views    int64
	Likes    int64
	Comments int64
	Ratio    float64
}

type VideoAnalysisData struct {
	ChannelName  string
	ContentLabel string
	Count        int
	AvgViews     float64
	AvgLikes     float64
	AvgComments  float64
	AvgRatio     float64
	TopVideos    []TopVideo
}

// ContentData feeds the content templates. ReferenceLabel heads the
// reference block in the Instagram and Threads prompts.
type ContentData struct {
	Keyword        string
	Reference      string
	ReferenceLabel string
	FromPDF        bool
}

const AnalysisSystemPrompt = "당신은 유튜브 채널과 영상 데이터를 분석하는 전문가입니다. 데이터를 깊이 있게 분석하고 통찰력 있는 인사이트를 제공해주세요."

const BlogSummarySystemPrompt = "다음 블로그 포스트를 명확하고 간결하게 요약해주세요. 핵심 내용과 주요 포인트를 포함시켜야 합니다."

// ContentSystemPrompt builds the copywriter persona, scoped to keyword when given.
func ContentSystemPrompt(keyword string) string {
	if keyword == "" {
		return "당신은 카피라이팅 법칙을 따라 유튜브 동영상 컨텐츠를 만드는 전문가입니다."
	}
	return fmt.Sprintf("당신은 카피라이팅 법칙을 따라 %s 주제의 유튜브 동영상 컨텐츠를 만드는 전문가입니다.", keyword)
}

const PDFContentSystemPrompt = "당신은 카피라이팅 법칙을 따라 pdf 내용에 기반하여 유튜브 동영상 컨텐츠를 만드는 전문가입니다."

// SocialSystemPrompt builds the persona for a social post. platformName is
// the Korean display name, e.g. "인스타그램".
func SocialSystemPrompt(platformName string, fromPDF bool) string {
	if fromPDF {
		return fmt.Sprintf("당신은 카피라이팅 법칙을 따라 pdf 내용에 기반하여 %s 콘텐츠를 만드는 전문가입니다.", platformName)
	}
	return fmt.Sprintf("당신은 카피라이팅 법칙을 따라 %s 콘텐츠를 만드는 전문가입니다.", platformName)
}

type ThumbnailData struct {
	ContentLabel string
	Title        string
	Views        int64
	Ratio        float64
}

const ThumbnailSystemPrompt = "당신은 유튜브 썸네일의 클릭 유도 요소를 분석하는 전문가입니다."
