package constants

import "time"

var CacheTTL = struct {
	Transcript     time.Duration
	ChannelSummary time.Duration
	ChannelID      time.Duration
}{
	Transcript:     7 * 24 * time.Hour, // 7일 - 자막은 업로드 후 거의 바뀌지 않음
	ChannelSummary: 30 * time.Minute,   // 30분 - 구독자 수
	ChannelID:      24 * time.Hour,     // 1일 - 핸들 → 채널 ID
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var WebSocketConfig = struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	HandshakeTimeout     time.Duration
	WriteTimeout         time.Duration
}{
	MaxReconnectAttempts: 5,
	ReconnectDelay:       5 * time.Second,
	HandshakeTimeout:     10 * time.Second,
	WriteTimeout:         5 * time.Second,
}

// TranscriptRetry holds the per-video caption retry policy.
var TranscriptRetry = struct {
	MaxAttempts int
	Delay       time.Duration
	Window      time.Duration
	Language    string
}{
	MaxAttempts: 3,                       // 최대 시도 횟수
	Delay:       1500 * time.Millisecond, // 고정 대기 시간
	Window:      180 * time.Second,       // 앞 3분 자막만 사용
	Language:    "ko",
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	RateLimitTimeout time.Duration
}{
	FailureThreshold: 3,                // 3회 연속 실패 시 Circuit OPEN
	ResetTimeout:     30 * time.Second, // 기본 재시도 대기 시간 (30초)
	RateLimitTimeout: 10 * time.Minute, // 429 Rate Limit 전용 타임아웃
}

var PipelineDefaults = struct {
	Workers      int
	CommentLimit int
	ViewFloor    uint64
	PageSize     int64
}{
	Workers:      4,    // 영상별 보강 동시 작업 수
	CommentLimit: 3,    // 관련성 상위 댓글 수
	ViewFloor:    1000, // 키워드 검색 최소 조회수
	PageSize:     50,   // search.list 최대 페이지 크기
}

var APIConfig = struct {
	ShortsBaseURL    string
	WatchBaseURL     string
	InnertubeBaseURL string
	ProbeTimeout     time.Duration
	CaptionTimeout   time.Duration
	BlogTimeout      time.Duration
	UserAgent        string
}{
	ShortsBaseURL:    "https://www.youtube.com/shorts/",
	WatchBaseURL:     "https://www.youtube.com/watch?v=",
	InnertubeBaseURL: "https://www.youtube.com/youtubei/v1",
	ProbeTimeout:     10 * time.Second,
	CaptionTimeout:   15 * time.Second,
	BlogTimeout:      15 * time.Second,
	UserAgent:        "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

var LLMConfig = struct {
	AnalysisModel       string
	AnalysisTemperature float64
	AnalysisMaxTokens   int
	GenerateTemperature float64
	GenerateMaxTokens   int
	SummaryMaxTokens    int
	GeminiModel         string
}{
	AnalysisModel:       "gpt-4o-2024-08-06",
	AnalysisTemperature: 0.3,
	AnalysisMaxTokens:   1000,
	GenerateTemperature: 0.3,
	GenerateMaxTokens:   1500,
	SummaryMaxTokens:    500,
	GeminiModel:         "gemini-2.5-flash",
}

var StringLimits = struct {
	LogPreview       int
	TitleDisplay     int
	ReferenceLength  int
	BlogSummaryInput int
	PDFReference     int
}{
	LogPreview:       200,
	TitleDisplay:     40, // 표 출력용 제목 길이
	ReferenceLength:  6000,
	BlogSummaryInput: 15000, // 요약 요청 입력 상한
	PDFReference:     3000,
}
