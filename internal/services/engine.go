package services

import (
	"context"
	"errors"
	"time"

	"github.com/rahul4469/verifact/internal/models"
	"go.uber.org/zap"
)

// DefaultAnalyzeRetries is the rate-limit budget for an analysis.
const DefaultAnalyzeRetries = 3

// EngineConfig holds the retry budgets of the two entry points.
type EngineConfig struct {
	AnalyzeMaxRetries  int
	TrendingMaxRetries int
	BackoffStep        time.Duration
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		AnalyzeMaxRetries:  DefaultAnalyzeRetries,
		TrendingMaxRetries: DefaultTrendingRetries,
		BackoffStep:        DefaultBackoffStep,
	}
}

// Engine is the analysis orchestrator. It holds no mutable state, so
// AnalyzeContent and FetchTrendingFacts may run concurrently.
type Engine struct {
	executor       *Executor
	normalizer     *Normalizer
	trending       *TrendingFetcher
	analyzeRetries int
	configured     bool
	logger         *zap.Logger
}

// NewEngine builds the orchestrator. A nil client yields an unconfigured
// engine: every analysis fails with a configuration error and trending serves
// the seed set, without any network call.
func NewEngine(client ReasoningClient, cfg EngineConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	executor := NewExecutor(client, cfg.BackoffStep, logger.Named("executor"))
	return &Engine{
		executor:       executor,
		normalizer:     NewNormalizer(),
		trending:       NewTrendingFetcher(executor, cfg.TrendingMaxRetries, logger.Named("trending")),
		analyzeRetries: cfg.AnalyzeMaxRetries,
		configured:     client != nil,
		logger:         logger,
	}
}

// Configured reports whether a reasoning service credential was supplied.
func (e *Engine) Configured() bool {
	return e.configured
}

// AnalyzeContent runs validation, the remote call, extraction and
// normalization. It returns either a complete result or an
// *models.AnalysisError, never both.
func (e *Engine) AnalyzeContent(ctx context.Context, kind models.DetectionKind, input string, image *models.Image) (*models.AnalysisResult, error) {
	if !e.configured {
		return nil, &models.AnalysisError{
			Kind:    models.KindConfigurationFailure,
			Message: models.MsgConfiguration,
			Err:     models.ErrCredentialMissing,
		}
	}

	req := models.AnalysisRequest{Kind: kind, RawInput: input, Image: image}
	if err := req.Validate(); err != nil {
		return nil, &models.AnalysisError{Kind: models.KindValidationFailure, Message: err.Error(), Err: err}
	}

	reply, err := e.executor.Execute(ctx, analysisPayload(req), e.analyzeRetries, true)
	if err != nil {
		e.logger.Error("engine final failure", zap.String("kind", string(kind)), zap.Error(err))
		return nil, remoteFailure(err)
	}

	extracted, err := ExtractJSON(reply.Text)
	if err != nil {
		e.logger.Error("unreadable engine report",
			zap.String("kind", string(kind)),
			zap.String("raw", reply.Text))
		return nil, &models.AnalysisError{
			Kind:    models.KindDataIntegrityFailure,
			Message: models.MsgDataIntegrity,
			Err:     err,
		}
	}

	result := e.normalizer.Normalize(req, extracted, reply.Sources)
	e.logger.Info("analysis completed",
		zap.String("id", result.ID),
		zap.String("kind", string(kind)),
		zap.String("verdict", string(result.Verdict)),
		zap.Int("truth_score", result.TruthScore),
		zap.Int("sources", len(result.Sources)))
	return result, nil
}

// FetchTrendingFacts never fails; see TrendingFetcher.
func (e *Engine) FetchTrendingFacts(ctx context.Context) []models.TrendingFact {
	return e.trending.Fetch(ctx)
}

func analysisPayload(req models.AnalysisRequest) Payload {
	if req.Kind == models.KindImage {
		return Payload{
			SystemInstruction: analysisSystemInstruction,
			Text:              forensicScanPrompt,
			Image:             req.Image,
		}
	}
	return Payload{
		SystemInstruction: analysisSystemInstruction,
		Text:              verifyPrefix + req.RawInput,
	}
}

func remoteFailure(err error) *models.AnalysisError {
	var remote *models.RemoteError
	if !errors.As(err, &remote) {
		remote = asRemoteError(err)
	}
	switch remote.Class {
	case models.ClassRateLimited:
		return &models.AnalysisError{Kind: models.KindRateLimitFailure, Message: models.MsgRateLimited, Err: err}
	case models.ClassUnauthorized:
		return &models.AnalysisError{Kind: models.KindUpstreamFailure, Message: models.MsgUnauthorized, Err: err}
	default:
		return &models.AnalysisError{Kind: models.KindUpstreamFailure, Message: models.MsgUpstream, Err: err}
	}
}

// NewEngineWithGemini assembles an engine backed by Gemini. An empty API key
// yields an unconfigured engine rather than an error.
func NewEngineWithGemini(ctx context.Context, gcfg GeminiConfig, cfg EngineConfig, logger *zap.Logger) (*Engine, error) {
	if gcfg.APIKey == "" {
		return NewEngine(nil, cfg, logger), nil
	}
	client, err := NewGeminiClient(ctx, gcfg)
	if err != nil {
		return nil, err
	}
	return NewEngine(client, cfg, logger), nil
}
