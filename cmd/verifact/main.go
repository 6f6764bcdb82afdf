// verifact runs the truth engine from the command line.
//
// Usage:
//
//	verifact analyze text "The moon landing was staged."
//	verifact analyze url https://example.com/story
//	verifact analyze image ./photo.jpg
//	verifact trending --json
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rahul4469/verifact/internal/config"
	"github.com/rahul4469/verifact/internal/models"
	"github.com/rahul4469/verifact/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// analyzer is the subset of *services.Engine the commands use.
type analyzer interface {
	AnalyzeContent(ctx context.Context, kind models.DetectionKind, input string, image *models.Image) (*models.AnalysisResult, error)
	FetchTrendingFacts(ctx context.Context) []models.TrendingFact
}

var (
	// Global flags
	verbose    bool
	jsonOutput bool
	timeout    time.Duration

	logger *zap.Logger
	engine analyzer
)

var rootCmd = &cobra.Command{
	Use:   "verifact",
	Short: "VeriFact truth engine CLI",
	Long: `verifact investigates text, URLs and images for misinformation using
the Gemini reasoning service with search grounding, and lists recently
debunked claims.

Configuration is read from the environment or a .env file (GEMINI_API_KEY,
GEMINI_MODEL, ANALYZE_MAX_RETRIES, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if engine != nil {
			return nil
		}

		cfg, err := config.LoadClient()
		if err != nil {
			return err
		}

		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		e, err := services.NewEngineWithGemini(cmd.Context(),
			services.GeminiConfig{
				APIKey:  cfg.APIs.GeminiAPIKey,
				Model:   cfg.APIs.GeminiModel,
				BaseURL: cfg.APIs.GeminiBaseURL,
				Timeout: cfg.Limits.UpstreamTimeout,
			},
			services.EngineConfig{
				AnalyzeMaxRetries:  cfg.Limits.AnalyzeMaxRetries,
				TrendingMaxRetries: cfg.Limits.TrendingMaxRetries,
				BackoffStep:        cfg.Limits.RetryBackoffStep,
			},
			logger,
		)
		if err != nil {
			return err
		}
		engine = e
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 3*time.Minute, "Overall deadline for the command")

	analyzeCmd.AddCommand(analyzeTextCmd, analyzeURLCmd, analyzeImageCmd)
	rootCmd.AddCommand(analyzeCmd, trendingCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
