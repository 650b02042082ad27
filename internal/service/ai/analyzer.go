package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/prompt"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/util"
)

// ErrNoVideos is returned when no stored video matches the requested format.
var ErrNoVideos = errors.New("no videos to analyse")

type noVideosError struct {
	label string
}

func (e *noVideosError) Error() string {
	return fmt.Sprintf("분석할 %s 영상이 없습니다.", e.label)
}

func (e *noVideosError) Is(target error) bool {
	return target == ErrNoVideos
}

// VideoSummary is the aggregate over the analysed slice of a run.
type VideoSummary struct {
	Count       int
	AvgViews    float64
	AvgLikes    float64
	AvgComments float64
	AvgRatio    float64
	MaxViews    int64
	MaxLikes    int64
	MaxComments int64
}

type Analysis struct {
	SearchID  string
	IsShorts  bool
	Summary   VideoSummary
	TopVideos []domain.StoredVideo
	Text      string
	Metadata  *GenerateMetadata
}

// AnalysisStore persists analysis text for a run.
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, table, searchID string, isShorts bool, analysis string) error
}

type Analyzer struct {
	llm     TextGenerator
	prompts *prompt.PromptBuilder
	store   AnalysisStore
	logger  *zap.Logger
}

func NewAnalyzer(llm TextGenerator, prompts *prompt.PromptBuilder, store AnalysisStore, logger *zap.Logger) *Analyzer {
	if prompts == nil {
		prompts = prompt.DefaultPromptBuilder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{llm: llm, prompts: prompts, store: store, logger: logger}
}

// Summarize computes count, means and maxes over rows.
func Summarize(rows []domain.StoredVideo) VideoSummary {
	s := VideoSummary{Count: len(rows)}
	if len(rows) == 0 {
		return s
	}

	var views, likes, comments int64
	var ratio float64
	for _, r := range rows {
		views += r.Views
		likes += r.Likes
		comments += r.Comments
		ratio += r.Ratio
		if r.Views > s.MaxViews {
			s.MaxViews = r.Views
		}
		if r.Likes > s.MaxLikes {
			s.MaxLikes = r.Likes
		}
		if r.Comments > s.MaxComments {
			s.MaxComments = r.Comments
		}
	}

	n := float64(len(rows))
	s.AvgViews = float64(views) / n
	s.AvgLikes = float64(likes) / n
	s.AvgComments = float64(comments) / n
	s.AvgRatio = ratio / n
	return s
}

// TopByViews returns the n most viewed rows, keeping input order among ties.
func TopByViews(rows []domain.StoredVideo, n int) []domain.StoredVideo {
	sorted := make([]domain.StoredVideo, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Views > sorted[j].Views
	})
	return sorted[:util.Min(n, len(sorted))]
}

// Analyze filters rows to the configured format, summarises them and asks the
// LLM for a written analysis. The result is stored when cfg.Table is set.
func (a *Analyzer) Analyze(ctx context.Context, cfg domain.AnalysisConfig, searchID string, rows []domain.StoredVideo) (Analysis, error) {
	filtered := make([]domain.StoredVideo, 0, len(rows))
	for _, r := range rows {
		if r.IsShorts == cfg.IsShorts {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return Analysis{}, &noVideosError{label: cfg.ContentLabel()}
	}

	result := Analysis{
		SearchID:  searchID,
		IsShorts:  cfg.IsShorts,
		Summary:   Summarize(filtered),
		TopVideos: TopByViews(filtered, 3),
	}

	data := prompt.VideoAnalysisData{
		ChannelName:  filtered[0].Channel,
		ContentLabel: cfg.ContentLabel(),
		Count:        result.Summary.Count,
		AvgViews:     result.Summary.AvgViews,
		AvgLikes:     result.Summary.AvgLikes,
		AvgComments:  result.Summary.AvgComments,
		AvgRatio:     result.Summary.AvgRatio,
	}
	if data.ChannelName == "" {
		data.ChannelName = filtered[0].Keyword
	}
	for i, v := range result.TopVideos {
		data.TopVideos = append(data.TopVideos, prompt.TopVideo{
			Rank:     i + 1,
			Title:    v.Title,
			Views:    v.Views,
			Likes:    v.Likes,
			Comments: v.Comments,
			Ratio:    v.Ratio,
		})
	}

	rendered, err := a.prompts.Render(prompt.TemplateVideoAnalysis, data)
	if err != nil {
		return Analysis{}, err
	}

	text, meta, err := a.llm.GenerateText(ctx, Request{
		System:      prompt.AnalysisSystemPrompt,
		Prompt:      rendered,
		Model:       cfg.Model,
		Temperature: constants.LLMConfig.AnalysisTemperature,
		MaxTokens:   constants.LLMConfig.AnalysisMaxTokens,
	})
	if err != nil {
		return Analysis{}, fmt.Errorf("데이터 분석 중 오류가 발생했습니다: %w", err)
	}
	if meta == nil {
		meta = &GenerateMetadata{}
	}
	result.Text = text
	result.Metadata = meta

	a.logger.Info("Videos analysed",
		zap.String("search_id", searchID),
		zap.Bool("is_shorts", cfg.IsShorts),
		zap.Int("videos", result.Summary.Count),
		zap.String("provider", meta.Provider),
		zap.Bool("used_fallback", meta.UsedFallback))

	if cfg.Table != "" && a.store != nil {
		if err := a.store.SaveAnalysis(ctx, cfg.Table, searchID, cfg.IsShorts, text); err != nil {
			return result, err
		}
	}

	return result, nil
}
