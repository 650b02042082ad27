package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
)

type Config struct {
	YouTube  YouTubeConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Pipeline PipelineConfig
	Storage  StorageConfig
	Progress ProgressConfig
	Logging  LoggingConfig
}

type YouTubeConfig struct {
	APIKey               string
	UseOAuth             bool
	OAuthCredentialsFile string
	OAuthTokenFile       string
	DailyQuota           int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type PipelineConfig struct {
	Workers            int
	TranscriptRetries  int
	TranscriptDelay    time.Duration
	TranscriptLanguage string
	CommentLimit       int
	ViewFloor          int64 // 음수는 Validate에서 거부
}

type StorageConfig struct {
	ChannelTable   string
	KeywordTable   string
	AnalysisTable  string
	ThumbnailTable string
}

type ProgressConfig struct {
	WSURL string
}

type LoggingConfig struct {
	Level string
	File  string
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		YouTube: YouTubeConfig{
			APIKey:               getEnv("YOUTUBE_API_KEY", ""),
			UseOAuth:             getEnvBool("YOUTUBE_USE_OAUTH", false),
			OAuthCredentialsFile: getEnv("YOUTUBE_OAUTH_CREDENTIALS", "credentials.json"),
			OAuthTokenFile:       getEnv("YOUTUBE_OAUTH_TOKEN", "token.json"),
			DailyQuota:           getEnvInt("YOUTUBE_DAILY_QUOTA", 10000),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "youtube_analyser"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", constants.LLMConfig.AnalysisModel),
			EnableFallback: getEnvBool("LLM_ENABLE_FALLBACK", true),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", constants.LLMConfig.GeminiModel),
		},
		Pipeline: PipelineConfig{
			Workers:            getEnvInt("PIPELINE_WORKERS", constants.PipelineDefaults.Workers),
			TranscriptRetries:  getEnvInt("TRANSCRIPT_MAX_RETRIES", constants.TranscriptRetry.MaxAttempts),
			TranscriptDelay:    getEnvDuration("TRANSCRIPT_RETRY_DELAY", constants.TranscriptRetry.Delay),
			TranscriptLanguage: getEnv("TRANSCRIPT_LANGUAGE", constants.TranscriptRetry.Language),
			CommentLimit:       getEnvInt("COMMENT_LIMIT", constants.PipelineDefaults.CommentLimit),
			ViewFloor:          int64(getEnvInt("KEYWORD_VIEW_FLOOR", int(constants.PipelineDefaults.ViewFloor))),
		},
		Storage: StorageConfig{
			ChannelTable:   getEnv("TABLE_CHANNEL_VIDEOS", "channel_videos"),
			KeywordTable:   getEnv("TABLE_KEYWORD_VIDEOS", "keyword_videos"),
			AnalysisTable:  getEnv("TABLE_VIDEO_ANALYSIS", "video_analysis"),
			ThumbnailTable: getEnv("TABLE_THUMBNAIL_ANALYSIS", "thumbnail_analysis"),
		},
		Progress: ProgressConfig{
			WSURL: getEnv("PROGRESS_WS_URL", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.YouTube.APIKey == "" && !c.YouTube.UseOAuth {
		return fmt.Errorf("YOUTUBE_API_KEY is required (or set YOUTUBE_USE_OAUTH=true)")
	}
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("PIPELINE_WORKERS must be positive")
	}
	if c.Pipeline.TranscriptRetries <= 0 {
		return fmt.Errorf("TRANSCRIPT_MAX_RETRIES must be positive")
	}
	if c.Pipeline.CommentLimit <= 0 {
		return fmt.Errorf("COMMENT_LIMIT must be positive")
	}
	if c.Pipeline.ViewFloor < 0 {
		return fmt.Errorf("KEYWORD_VIEW_FLOOR must not be negative: %d", c.Pipeline.ViewFloor)
	}
	for name, table := range map[string]string{
		"TABLE_CHANNEL_VIDEOS":     c.Storage.ChannelTable,
		"TABLE_KEYWORD_VIDEOS":     c.Storage.KeywordTable,
		"TABLE_VIDEO_ANALYSIS":     c.Storage.AnalysisTable,
		"TABLE_THUMBNAIL_ANALYSIS": c.Storage.ThumbnailTable,
	} {
		if !tableNamePattern.MatchString(table) {
			return fmt.Errorf("%s is not a valid table name: %q", name, table)
		}
	}
	return nil
}

// ValidateAI checks the settings needed by the analysis and generation commands.
func (c *Config) ValidateAI() error {
	if c.OpenAI.APIKey == "" && c.Gemini.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY or GEMINI_API_KEY is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("1.5s") or plain seconds ("1.5").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}
