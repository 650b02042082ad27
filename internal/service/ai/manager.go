package ai

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/constants"
	"github.com/JiwonBiocom/Youtube-channel-analyser/internal/util"
	apperrors "github.com/JiwonBiocom/Youtube-channel-analyser/pkg/errors"
)

// GenerateMetadata reports which backend answered a request.
type GenerateMetadata struct {
	Provider     string
	Model        string
	UsedFallback bool
}

// TextGenerator is the surface the analyzer and generator depend on.
type TextGenerator interface {
	GenerateText(ctx context.Context, req Request) (string, *GenerateMetadata, error)
}

// ModelManager routes requests to the primary provider, falls back to the
// secondary one, and trips a circuit breaker on repeated service failures.
type ModelManager struct {
	primary        TextProvider
	fallback       TextProvider
	enableFallback bool
	circuitBreaker *util.CircuitBreaker
	logger         *zap.Logger
}

type ModelManagerConfig struct {
	Primary        TextProvider
	Fallback       TextProvider
	EnableFallback bool
}

func NewModelManager(cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	if cfg.Primary == nil && cfg.Fallback == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// 기본 provider 가 없으면 fallback 을 기본으로 승격
	if cfg.Primary == nil {
		cfg.Primary, cfg.Fallback = cfg.Fallback, nil
	}

	mm := &ModelManager{
		primary:        cfg.Primary,
		fallback:       cfg.Fallback,
		enableFallback: cfg.EnableFallback && cfg.Fallback != nil,
		circuitBreaker: util.NewCircuitBreaker(
			"llm",
			constants.CircuitBreakerConfig.FailureThreshold,
			constants.CircuitBreakerConfig.ResetTimeout,
			logger,
		),
		logger: logger,
	}

	if mm.enableFallback {
		logger.Info("LLM fallback enabled",
			zap.String("primary", mm.primary.Name()),
			zap.String("fallback", mm.fallback.Name()))
	} else {
		logger.Info("LLM fallback disabled", zap.String("primary", mm.primary.Name()))
	}

	return mm, nil
}

func (mm *ModelManager) GenerateText(ctx context.Context, req Request) (string, *GenerateMetadata, error) {
	if !mm.circuitBreaker.CanExecute() {
		status := mm.circuitBreaker.GetStatus()
		nextRetry := "알 수 없음"
		if status.NextRetryTime != nil {
			nextRetry = util.FormatKST(*status.NextRetryTime, "15:04")
		}

		mm.logger.Error("LLM service unavailable (Circuit OPEN)",
			zap.String("state", status.State.String()),
			zap.Int("failure_count", status.FailureCount),
			zap.String("next_retry", nextRetry),
		)

		return "", nil, fmt.Errorf("외부 AI 서비스 장애 감지: %s 이후 다시 시도해주세요", nextRetry)
	}

	result, primaryErr := mm.primary.Generate(ctx, req)
	if primaryErr == nil && strings.TrimSpace(result.Text) != "" {
		mm.circuitBreaker.RecordSuccess()
		return strings.TrimSpace(result.Text), &GenerateMetadata{
			Provider: mm.primary.Name(),
			Model:    result.Model,
		}, nil
	}
	if primaryErr == nil {
		primaryErr = fmt.Errorf("%s API returned empty response", mm.primary.Name())
	}

	if !mm.enableFallback {
		mm.recordFailure(primaryErr)
		return "", nil, primaryErr
	}

	mm.logger.Warn("Primary LLM failed, trying fallback",
		zap.String("primary", mm.primary.Name()),
		zap.String("fallback", mm.fallback.Name()),
		zap.Error(primaryErr))

	result, fallbackErr := mm.fallback.Generate(ctx, req)
	if fallbackErr == nil && strings.TrimSpace(result.Text) != "" {
		mm.circuitBreaker.RecordSuccess()
		return strings.TrimSpace(result.Text), &GenerateMetadata{
			Provider:     mm.fallback.Name(),
			Model:        result.Model,
			UsedFallback: true,
		}, nil
	}
	if fallbackErr == nil {
		fallbackErr = fmt.Errorf("%s API returned empty response", mm.fallback.Name())
	}

	mm.recordFailure(primaryErr, fallbackErr)
	return "", nil, apperrors.NewServiceError("AI 서비스에 일시적인 문제가 발생했습니다. 잠시 후 다시 시도해주세요",
		mm.fallback.Name(), "generate", fallbackErr)
}

func (mm *ModelManager) recordFailure(errs ...error) {
	serviceFailure := false
	rateLimited := false
	for _, err := range errs {
		if isServiceFailure(err) {
			serviceFailure = true
		}
		if isRateLimitError(err) {
			rateLimited = true
		}
	}
	if !serviceFailure {
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if rateLimited {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}
	mm.circuitBreaker.RecordFailure(timeout)
}

// Ping reports whether the primary provider answers.
func (mm *ModelManager) Ping(ctx context.Context) bool {
	return mm.primary.Ping(ctx)
}

func (mm *ModelManager) CircuitStatus() util.CircuitBreakerStatus {
	return mm.circuitBreaker.GetStatus()
}

func (mm *ModelManager) withClock(now func() time.Time) {
	mm.circuitBreaker.WithClock(now)
}

var (
	httpStatusPattern  = regexp.MustCompile(`\b(5\d{2})\b`)
	geminiCodePattern  = regexp.MustCompile(`"code":\s*(\d{3})`)
	leadingCodePattern = regexp.MustCompile(`^(\d{3})\s`)
)

func isServiceFailure(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	if strings.Contains(msg, "timeout") || strings.Contains(msg, "ETIMEDOUT") || strings.Contains(msg, "deadline exceeded") {
		return true
	}
	if isRateLimitError(err) {
		return true
	}
	if httpStatusPattern.MatchString(msg) {
		return true
	}

	for _, pattern := range []*regexp.Regexp{geminiCodePattern, leadingCodePattern} {
		if matches := pattern.FindStringSubmatch(msg); len(matches) > 1 {
			if code, convErr := strconv.Atoi(matches[1]); convErr == nil {
				return code >= 500 && code < 600
			}
		}
	}

	return false
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	if strings.Contains(msg, "429") || strings.Contains(msg, "Rate limit") || strings.Contains(msg, "quota") {
		return true
	}

	for _, pattern := range []*regexp.Regexp{geminiCodePattern, leadingCodePattern} {
		if matches := pattern.FindStringSubmatch(msg); len(matches) > 1 {
			if code, convErr := strconv.Atoi(matches[1]); convErr == nil {
				return code == 429
			}
		}
	}

	return false
}
