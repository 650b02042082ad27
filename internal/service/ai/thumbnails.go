package ai

import (
	"context"

	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/prompt"
)

const thumbnailTopN = 3

// ThumbnailStore persists per-thumbnail analyses.
type ThumbnailStore interface {
	SaveThumbnailAnalysis(ctx context.Context, table string, items []domain.ThumbnailAnalysis) error
}

// AnalyzeThumbnails asks the LLM to review the thumbnails of the most viewed
// videos of the configured format. Videos whose call fails are skipped.
func (a *Analyzer) AnalyzeThumbnails(ctx context.Context, cfg domain.AnalysisConfig, searchID string, rows []domain.StoredVideo, store ThumbnailStore) ([]domain.ThumbnailAnalysis, error) {
	filtered := make([]domain.StoredVideo, 0, len(rows))
	for _, r := range rows {
		if r.IsShorts == cfg.IsShorts && r.Thumbnail != "" {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return nil, &noVideosError{label: cfg.ContentLabel()}
	}

	var items []domain.ThumbnailAnalysis
	for _, v := range TopByViews(filtered, thumbnailTopN) {
		rendered, err := a.prompts.Render(prompt.TemplateThumbnail, prompt.ThumbnailData{
			ContentLabel: cfg.ContentLabel(),
			Title:        v.Title,
			Views:        v.Views,
			Ratio:        v.Ratio,
		})
		if err != nil {
			return nil, err
		}

		text, _, err := a.llm.GenerateText(ctx, Request{
			System:      prompt.ThumbnailSystemPrompt,
			Prompt:      rendered,
			ImageURL:    v.Thumbnail,
			Model:       cfg.Model,
			Temperature: constants.LLMConfig.AnalysisTemperature,
			MaxTokens:   constants.LLMConfig.SummaryMaxTokens,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			a.logger.Warn("Thumbnail analysis failed",
				zap.String("video_id", v.VideoID),
				zap.Error(err))
			continue
		}

		items = append(items, domain.ThumbnailAnalysis{
			SearchID:   searchID,
			Keyword:    v.Keyword,
			ChannelURL: v.ChannelURL,
			Channel:    v.Channel,
			VideoID:    v.VideoID,
			Title:      v.Title,
			Thumbnail:  v.Thumbnail,
			IsShorts:   v.IsShorts,
			Analysis:   text,
		})
	}

	if cfg.Table != "" && store != nil && len(items) > 0 {
		if err := store.SaveThumbnailAnalysis(ctx, cfg.Table, items); err != nil {
			return items, err
		}
	}
	return items, nil
}
