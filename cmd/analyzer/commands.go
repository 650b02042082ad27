package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/adapter"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/app"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/domain"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/service/ai"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/service/pipeline"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/service/youtube"
)

var formatter = adapter.NewReportFormatter(constants.StringLimits.TitleDisplay)

var channelCmd = &cobra.Command{
	Use:   "channel [channel URL]",
	Short: "Ingest every video of a channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			run, err := c.Pipeline.IngestChannel(ctx, args[0])
			if err != nil {
				return err
			}
			return finishRun(ctx, cmd, c, run, cfg.Storage.ChannelTable)
		})
	},
}

var keywordCmd = &cobra.Command{
	Use:   "keyword [query]",
	Short: "Search videos by keyword and ingest those above the view floor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxResults, _ := cmd.Flags().GetInt("max")
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			run, err := c.Pipeline.SearchKeyword(ctx, args[0], maxResults)
			if err != nil {
				return err
			}
			return finishRun(ctx, cmd, c, run, cfg.Storage.KeywordTable)
		})
	},
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the best view/subscriber ratio video of every stored run",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := sourceTable(cmd)
		if err != nil {
			return err
		}
		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			rows, err := c.Repository.TopVideosBySearch(ctx, table)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTopVideos(rows))
			return nil
		})
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyse a stored run with the LLM",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := sourceTable(cmd)
		if err != nil {
			return err
		}
		searchID, _ := cmd.Flags().GetString("search-id")
		formats, err := formatSelection(cmd)
		if err != nil {
			return err
		}
		model, _ := cmd.Flags().GetString("model")
		thumbnails, _ := cmd.Flags().GetBool("thumbnails")

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if c.Analyzer == nil {
				return cfg.ValidateAI()
			}
			rows, err := c.Repository.LoadVideos(ctx, table, searchID)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return fmt.Errorf("no stored videos for search id %s in %s", searchID, table)
			}
			return analyzeRows(ctx, cmd.OutOrStdout(), c, searchID, rows, formats, model, thumbnails)
		})
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Draft titles, thumbnails and an opening script for a new video",
	RunE: func(cmd *cobra.Command, args []string) error {
		source, _ := cmd.Flags().GetString("source")
		keyword, _ := cmd.Flags().GetString("keyword")
		searchID, _ := cmd.Flags().GetString("search-id")
		blogURLs, _ := cmd.Flags().GetStringSlice("blog")
		pdfPath, _ := cmd.Flags().GetString("pdf")
		platform, _ := cmd.Flags().GetString("platform")
		model, _ := cmd.Flags().GetString("model")

		table, err := sourceTable(cmd)
		if err != nil {
			return err
		}
		if pdfPath != "" {
			source = string(domain.SourcePDF)
		}

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if c.Generator == nil {
				return cfg.ValidateAI()
			}

			var reference strings.Builder
			if pdfPath != "" {
				doc, err := c.PDF.ExtractFile(ctx, pdfPath)
				if err != nil {
					return err
				}
				reference.WriteString(doc.Text)
			}
			if searchID != "" {
				rows, err := c.Repository.LoadVideos(ctx, table, searchID)
				if err != nil {
					return err
				}
				reference.WriteString(ai.ReferenceFromVideos(ai.TopByViews(rows, 5)))
			}

			for _, u := range blogURLs {
				post, err := c.Blog.Extract(ctx, u)
				if err != nil {
					logger.Warn("Skipping blog reference", zap.String("url", u), zap.Error(err))
					continue
				}
				summary, err := c.Generator.SummarizeBlog(ctx, post, model)
				if err != nil {
					logger.Warn("Blog summary failed", zap.String("url", u), zap.Error(err))
					continue
				}
				fmt.Fprintf(&reference, "\n블로그 참고 (%s):\n%s\n", post.Title, summary)
			}

			text, err := c.Generator.Generate(ctx, ai.GenerateRequest{
				Source:    domain.ContentSource(source),
				Platform:  domain.Platform(platform),
				Keyword:   keyword,
				Reference: reference.String(),
				Model:     model,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		})
	},
}

var blogCmd = &cobra.Command{
	Use:   "blog [post URL]",
	Short: "Extract the title and body of a blog post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summarize, _ := cmd.Flags().GetBool("summarize")
		model, _ := cmd.Flags().GetString("model")

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			post, err := c.Blog.Extract(ctx, args[0])
			if err != nil {
				// 추출 실패도 화면에는 게시물 형태로 보여줌
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatError(
					fmt.Sprintf("콘텐츠를 추출하는 도중 오류가 발생했습니다: %v", err)))
				return err
			}

			var summary string
			if summarize {
				if c.Generator == nil {
					return cfg.ValidateAI()
				}
				if summary, err = c.Generator.SummarizeBlog(ctx, post, model); err != nil {
					return err
				}
			}

			out, err := formatter.FormatBlogPost(post, summary)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		})
	},
}

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record an operator rating of generated content",
	RunE: func(cmd *cobra.Command, args []string) error {
		platform, _ := cmd.Flags().GetString("platform")
		fb := domain.Feedback{Platform: domain.FeedbackPlatform(platform)}
		fb.SearchID, _ = cmd.Flags().GetString("search-id")
		fb.Title, _ = cmd.Flags().GetString("title")
		fb.Thumbnail, _ = cmd.Flags().GetString("thumbnail")
		fb.Script, _ = cmd.Flags().GetString("script")
		fb.Score, _ = cmd.Flags().GetInt("score")
		fb.Comment, _ = cmd.Flags().GetString("comment")

		return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
			if err := c.Repository.SaveFeedback(ctx, fb); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatFeedbackSaved(fb))
			return nil
		})
	},
}

var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Run the OAuth consent flow and store the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		flow, err := youtube.NewOAuthFlow(cfg.YouTube.OAuthCredentialsFile, cfg.YouTube.OAuthTokenFile, logger)
		if err != nil {
			return err
		}
		return flow.Authorize(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func finishRun(ctx context.Context, cmd *cobra.Command, c *app.Container, run *pipeline.Run, table string) error {
	noSave, _ := cmd.Flags().GetBool("no-save")
	analyze, _ := cmd.Flags().GetBool("analyze")
	model, _ := cmd.Flags().GetString("model")

	rows := run.Rows()
	if !noSave {
		if err := c.Pipeline.Persist(ctx, run, table); err != nil {
			return err
		}
	}

	summary := adapter.RunSummary{
		SearchID: run.SearchID,
		Source:   run.Source,
		Keyword:  run.Keyword,
		Videos:   len(rows),
		Saved:    !noSave,
	}
	for _, r := range rows {
		if r.IsShorts {
			summary.Shorts++
		}
	}
	summary.QuotaUsed, summary.QuotaRemaining, _ = c.YouTube.Quota().Status()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, formatter.FormatVideos(rows))
	fmt.Fprintln(out)
	fmt.Fprintln(out, formatter.FormatRunSummary(summary))

	if !analyze {
		return nil
	}
	if c.Analyzer == nil {
		return cfg.ValidateAI()
	}
	return analyzeRows(ctx, cmd.OutOrStdout(), c, run.SearchID, rows, []bool{true, false}, model, false)
}

func analyzeRows(ctx context.Context, out io.Writer, c *app.Container, searchID string, rows []domain.StoredVideo, formats []bool, model string, thumbnails bool) error {
	for _, isShorts := range formats {
		analysisCfg := domain.AnalysisConfig{IsShorts: isShorts, Model: model, Table: cfg.Storage.AnalysisTable}

		result, err := c.Analyzer.Analyze(ctx, analysisCfg, searchID, rows)
		switch {
		case stderrors.Is(err, ai.ErrNoVideos):
			fmt.Fprintf(out, "\n%s\n", formatter.FormatError(err.Error()))
			continue
		case err != nil:
			return err
		}

		report, err := formatter.FormatAnalysis(adapter.AnalysisReport{
			ContentLabel: analysisCfg.ContentLabel(),
			Provider:     result.Metadata.Provider,
			Model:        result.Metadata.Model,
			UsedFallback: result.Metadata.UsedFallback,
			Text:         result.Text,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s\n", report)

		if !thumbnails {
			continue
		}
		thumbCfg := analysisCfg
		thumbCfg.Table = cfg.Storage.ThumbnailTable
		items, err := c.Analyzer.AnalyzeThumbnails(ctx, thumbCfg, searchID, rows, c.Repository)
		if err != nil && !stderrors.Is(err, ai.ErrNoVideos) {
			return err
		}
		rendered, err := formatter.FormatThumbnails(items)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s\n", rendered)
	}
	return nil
}

func sourceTable(cmd *cobra.Command) (string, error) {
	source, _ := cmd.Flags().GetString("source")
	switch domain.ContentSource(source) {
	case domain.SourceChannel:
		return cfg.Storage.ChannelTable, nil
	case domain.SourceKeyword:
		return cfg.Storage.KeywordTable, nil
	default:
		return "", fmt.Errorf("--source must be %q or %q", domain.SourceChannel, domain.SourceKeyword)
	}
}

func formatSelection(cmd *cobra.Command) ([]bool, error) {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "short":
		return []bool{true}, nil
	case "long":
		return []bool{false}, nil
	case "all", "":
		return []bool{true, false}, nil
	default:
		return nil, fmt.Errorf("--format must be short, long or all")
	}
}

func init() {
	for _, cmd := range []*cobra.Command{channelCmd, keywordCmd} {
		cmd.Flags().Bool("no-save", false, "Do not persist the run")
		cmd.Flags().Bool("analyze", false, "Analyse shorts and longform after ingesting")
		cmd.Flags().String("model", "", "LLM model for --analyze")
	}
	keywordCmd.Flags().Int("max", int(constants.PipelineDefaults.PageSize), "Maximum search results (1-50)")

	for _, cmd := range []*cobra.Command{topCmd, analyzeCmd, generateCmd} {
		cmd.Flags().String("source", string(domain.SourceKeyword), "Run source: channel or keyword")
	}

	analyzeCmd.Flags().String("search-id", "", "Search id of the stored run")
	analyzeCmd.Flags().String("format", "all", "Which videos to analyse: short, long or all")
	analyzeCmd.Flags().String("model", "", "LLM model")
	analyzeCmd.Flags().Bool("thumbnails", false, "Also analyse the top thumbnails")
	_ = analyzeCmd.MarkFlagRequired("search-id")

	generateCmd.Flags().String("keyword", "", "Topic of the new video")
	generateCmd.Flags().String("search-id", "", "Stored run to use as reference")
	generateCmd.Flags().StringSlice("blog", nil, "Blog post URLs to summarise as reference")
	generateCmd.Flags().String("pdf", "", "PDF file to use as reference")
	generateCmd.Flags().String("platform", string(domain.PlatformYouTube), "Target platform: youtube, instagram or threads")
	generateCmd.Flags().String("model", "", "LLM model")
	_ = generateCmd.MarkFlagRequired("keyword")
	generateCmd.MarkFlagsMutuallyExclusive("pdf", "search-id")
	generateCmd.MarkFlagsMutuallyExclusive("pdf", "blog")

	blogCmd.Flags().Bool("summarize", false, "Summarise the post with the LLM")
	blogCmd.Flags().String("model", "", "LLM model")

	feedbackCmd.Flags().String("platform", string(domain.FeedbackYouTube), "yt, ig or th")
	feedbackCmd.Flags().String("search-id", "", "Search id the content was generated from")
	feedbackCmd.Flags().String("title", "", "Generated title (caption for ig, post for th)")
	feedbackCmd.Flags().String("thumbnail", "", "Generated thumbnail text (pics for ig and th)")
	feedbackCmd.Flags().String("script", "", "Generated script (hashtags for ig, tags for th)")
	feedbackCmd.Flags().Int("score", 0, "Rating from 1 to 5")
	feedbackCmd.Flags().String("comment", "", "Free-form feedback")

	rootCmd.AddCommand(channelCmd, keywordCmd, topCmd, analyzeCmd, generateCmd, blogCmd, feedbackCmd, authorizeCmd)
}
