package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/prompt"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/util"
)

// GenerateRequest describes one generation. An empty Platform means YouTube.
type GenerateRequest struct {
	Source    domain.ContentSource
	Platform  domain.Platform
	Keyword   string
	Reference string
	Model     string
}

// Generator writes titles, thumbnail ideas and an opening script for a new video.
type Generator struct {
	llm     TextGenerator
	prompts *prompt.PromptBuilder
	logger  *zap.Logger
}

func NewGenerator(llm TextGenerator, prompts *prompt.PromptBuilder, logger *zap.Logger) *Generator {
	if prompts == nil {
		prompts = prompt.DefaultPromptBuilder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{llm: llm, prompts: prompts, logger: logger}
}

func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if !req.Source.IsValid() {
		return "", fmt.Errorf("unknown content source %q", req.Source)
	}
	if !req.Platform.IsValid() {
		return "", fmt.Errorf("unknown platform %q", req.Platform)
	}
	if strings.TrimSpace(req.Keyword) == "" {
		return "", fmt.Errorf("keyword is required")
	}

	name, system, data := contentPrompt(req)
	rendered, err := g.prompts.Render(name, data)
	if err != nil {
		return "", err
	}

	text, meta, err := g.llm.GenerateText(ctx, Request{
		System:      system,
		Prompt:      rendered,
		Model:       req.Model,
		Temperature: constants.LLMConfig.GenerateTemperature,
		MaxTokens:   constants.LLMConfig.GenerateMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	fields := []zap.Field{
		zap.String("source", string(req.Source)),
		zap.String("platform", string(req.Platform)),
		zap.String("keyword", req.Keyword),
		zap.Int("length", len(text)),
	}
	if meta != nil {
		fields = append(fields, zap.String("provider", meta.Provider), zap.Bool("used_fallback", meta.UsedFallback))
	}
	g.logger.Info("Content generated", fields...)

	return text, nil
}

// contentPrompt picks the template by platform, then by source for YouTube.
func contentPrompt(req GenerateRequest) (prompt.TemplateName, string, prompt.ContentData) {
	fromPDF := req.Source == domain.SourcePDF
	limit := constants.StringLimits.ReferenceLength
	if fromPDF {
		limit = constants.StringLimits.PDFReference
	}
	data := prompt.ContentData{
		Keyword:        req.Keyword,
		Reference:      util.TruncateString(req.Reference, limit),
		ReferenceLabel: referenceLabel(req.Source),
		FromPDF:        fromPDF,
	}

	switch req.Platform {
	case domain.PlatformInstagram:
		return prompt.TemplateContentInstagram, prompt.SocialSystemPrompt("인스타그램", fromPDF), data
	case domain.PlatformThreads:
		return prompt.TemplateContentThreads, prompt.SocialSystemPrompt("스레드", fromPDF), data
	}

	switch req.Source {
	case domain.SourceChannel:
		return prompt.TemplateContentChannel, prompt.ContentSystemPrompt(req.Keyword), data
	case domain.SourcePDF:
		return prompt.TemplateContentPDF, prompt.PDFContentSystemPrompt, data
	default:
		return prompt.TemplateContentKeyword, prompt.ContentSystemPrompt(""), data
	}
}

func referenceLabel(source domain.ContentSource) string {
	switch source {
	case domain.SourcePDF:
		return "PDF 내용"
	case domain.SourceChannel:
		return "채널 영상 정보"
	default:
		return "참고할 동영상 정보"
	}
}

// SummarizeBlog condenses an extracted blog post for use as generation reference.
func (g *Generator) SummarizeBlog(ctx context.Context, post domain.BlogPost, model string) (string, error) {
	body := strings.TrimSpace(post.Title + "\n\n" + post.Content)
	if body == "" {
		return "", fmt.Errorf("empty blog post")
	}

	text, _, err := g.llm.GenerateText(ctx, Request{
		System:      prompt.BlogSummarySystemPrompt,
		Prompt:      util.TruncateString(body, constants.StringLimits.BlogSummaryInput),
		Model:       model,
		Temperature: constants.LLMConfig.GenerateTemperature,
		MaxTokens:   constants.LLMConfig.SummaryMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("블로그 내용 요약 중 오류가 발생했습니다: %w", err)
	}
	return text, nil
}

// ReferenceFromVideos renders stored rows as the reference block of a prompt.
func ReferenceFromVideos(rows []domain.StoredVideo) string {
	var b strings.Builder
	for i, r := range rows {
		fmt.Fprintf(&b, "%d. 제목: %s\n   조회수: %d, 조회수/구독자 비율: %.2f\n", i+1, r.Title, r.Views, r.Ratio)
		if r.Transcript != "" && r.Transcript != domain.UnavailableTranscriptText {
			fmt.Fprintf(&b, "   스크립트: %s\n", util.TruncateString(r.Transcript, constants.StringLimits.LogPreview))
		}
	}
	return b.String()
}
