package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/config"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/progress"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/prompt"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/service/ai"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/service/blog"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/service/cache"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/service/database"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/service/pdf"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/service/pipeline"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/service/shorts"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/service/transcript"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/service/youtube"
)

const buildTimeout = 30 * time.Second

// Container bundles the assembled services used by the CLI commands.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	YouTube    *youtube.APIClient
	Pipeline   *pipeline.Pipeline
	Repository *database.VideoRepository
	Blog       *blog.Extractor
	PDF        *pdf.Extractor

	// nil when neither OPENAI_API_KEY nor GEMINI_API_KEY is set
	Models    *ai.ModelManager
	Analyzer  *ai.Analyzer
	Generator *ai.Generator

	closers []func()
}

// Close releases every resource opened by Build in reverse order.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles all infrastructure services. Resources opened before a
// failure are released before returning.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// 초기화 단계에만 타임아웃 적용 (OAuth client, websocket 은 ctx 그대로 사용)
	initCtx, cancel := context.WithTimeout(ctx, buildTimeout)
	defer cancel()

	// Cache
	var store cache.Store = cache.NopStore{}
	if cfg.Redis.Enabled {
		cacheSvc, cacheErr := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", cacheErr)
		}
		closers = append(closers, func() {
			_ = cacheSvc.Close()
		})
		store = cacheSvc
	} else {
		logger.Info("Redis disabled, caching skipped")
	}

	// Database
	postgresSvc, err := database.NewPostgresService(initCtx, database.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}
	closers = append(closers, func() {
		_ = postgresSvc.Close()
	})
	repository := database.NewVideoRepository(postgresSvc, logger)

	// YouTube
	clientOpts := youtube.ClientOptions{
		APIKey:     cfg.YouTube.APIKey,
		DailyQuota: cfg.YouTube.DailyQuota,
	}
	if cfg.YouTube.UseOAuth {
		flow, flowErr := youtube.NewOAuthFlow(cfg.YouTube.OAuthCredentialsFile, cfg.YouTube.OAuthTokenFile, logger)
		if flowErr != nil {
			return nil, fmt.Errorf("failed to load OAuth credentials: %w", flowErr)
		}
		httpClient, flowErr := flow.HTTPClient(ctx)
		if flowErr != nil {
			return nil, flowErr
		}
		clientOpts.HTTPClient = httpClient
	}
	ytClient, err := youtube.NewAPIClient(initCtx, clientOpts, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}

	// Progress
	reporters := progress.Multi{progress.NewLogReporter(logger)}
	if cfg.Progress.WSURL != "" {
		ws := progress.NewWebSocketReporter(cfg.Progress.WSURL, logger)
		if wsErr := ws.Connect(ctx); wsErr != nil {
			// 대시보드가 없어도 파이프라인은 진행
			logger.Warn("Progress WebSocket unavailable, continuing with log output only", zap.Error(wsErr))
		}
		closers = append(closers, func() {
			_ = ws.Close()
		})
		reporters = append(reporters, ws)
	}

	// Enrichment
	classifier := shorts.NewClassifier(&http.Client{Timeout: constants.APIConfig.ProbeTimeout}, constants.APIConfig.ShortsBaseURL, logger)
	fetcher := transcript.NewFetcher(
		transcript.NewYouTubeSource(transcript.SourceOptions{}, logger),
		store,
		transcript.FetcherConfig{
			MaxAttempts: cfg.Pipeline.TranscriptRetries,
			Delay:       cfg.Pipeline.TranscriptDelay,
			Language:    cfg.Pipeline.TranscriptLanguage,
		},
		logger,
	)
	enricher := pipeline.NewEnricher(
		classifier,
		fetcher,
		youtube.NewCommentFetcher(ytClient, logger),
		pipeline.EnricherConfig{
			Workers:      cfg.Pipeline.Workers,
			CommentLimit: cfg.Pipeline.CommentLimit,
		},
		reporters,
		logger,
	)

	p := pipeline.New(pipeline.Deps{
		Resolver: youtube.NewChannelResolver(ytClient, store, logger),
		Lister:   youtube.NewVideoLister(ytClient, logger),
		Searcher: youtube.NewKeywordSearcher(ytClient, uint64(cfg.Pipeline.ViewFloor), logger),
		Enricher: enricher,
		Store:    repository,
		Reporter: reporters,
	}, logger)

	container = &Container{
		Config:     cfg,
		Logger:     logger,
		YouTube:    ytClient,
		Pipeline:   p,
		Repository: repository,
		Blog:       blog.NewExtractor(nil, logger),
		PDF:        pdf.NewExtractor(logger),
	}

	// AI stack
	if cfg.ValidateAI() == nil {
		models, aiErr := buildModelManager(initCtx, cfg, logger)
		if aiErr != nil {
			return nil, aiErr
		}
		prompts := prompt.DefaultPromptBuilder()
		container.Models = models
		container.Analyzer = ai.NewAnalyzer(models, prompts, repository, logger)
		container.Generator = ai.NewGenerator(models, prompts, logger)
	} else {
		logger.Info("No LLM API key configured, analysis commands disabled")
	}

	container.closers = closers
	return container, nil
}

func buildModelManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ai.ModelManager, error) {
	managerCfg := ai.ModelManagerConfig{EnableFallback: cfg.OpenAI.EnableFallback}

	if openaiProvider := ai.NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger); openaiProvider != nil {
		managerCfg.Primary = openaiProvider
	}

	geminiProvider, err := ai.NewGeminiProvider(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
	if err != nil {
		return nil, err
	}
	if geminiProvider != nil {
		managerCfg.Fallback = geminiProvider
	}

	models, err := ai.NewModelManager(managerCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}
	return models, nil
}
