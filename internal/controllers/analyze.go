package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	localcontext "github.com/rahul4469/verifact/context"
	"github.com/rahul4469/verifact/internal/models"
	"go.uber.org/zap"
)

// DefaultMaxBodyBytes bounds analyze request bodies; base64 images dominate.
const DefaultMaxBodyBytes = 15 << 20

// Analyzer is the orchestrator surface the HTTP layer depends on.
type Analyzer interface {
	AnalyzeContent(ctx context.Context, kind models.DetectionKind, input string, image *models.Image) (*models.AnalysisResult, error)
	FetchTrendingFacts(ctx context.Context) []models.TrendingFact
}

// AnalyzeController serves the analysis and trending endpoints.
type AnalyzeController struct {
	engine       Analyzer
	history      HistoryStore
	maxBodyBytes int64
}

// NewAnalyzeController creates a new AnalyzeController. history may be nil,
// in which case results are not recorded.
func NewAnalyzeController(engine Analyzer, history HistoryStore) *AnalyzeController {
	return &AnalyzeController{
		engine:       engine,
		history:      history,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// AnalyzeRequest is the POST /api/analyze body.
type AnalyzeRequest struct {
	Type      string `json:"type"`
	Input     string `json:"input"`
	ImageData string `json:"imageData,omitempty"`
}

// PostAnalyze runs one analysis and records the result when a history store
// is configured.
func (c *AnalyzeController) PostAnalyze(w http.ResponseWriter, r *http.Request) {
	logger := localcontext.Logger(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, c.maxBodyBytes)
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "The submitted content is too large.")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	kind, err := models.ParseDetectionKind(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// A missing image is left to the engine so that configuration problems
	// are reported first.
	var image *models.Image
	if kind == models.KindImage && strings.TrimSpace(req.ImageData) != "" {
		image, err = models.ParseImageDataURL(req.ImageData)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	result, err := c.engine.AnalyzeContent(r.Context(), kind, req.Input, image)
	if err != nil {
		if ae, ok := models.AsAnalysisError(err); ok {
			writeError(w, statusForKind(ae.Kind), ae.Message)
			return
		}
		logger.Error("unexpected analysis failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, models.MsgUpstream)
		return
	}

	if c.history != nil {
		if err := c.history.Save(r.Context(), result); err != nil {
			logger.Warn("failed to record analysis", zap.String("id", result.ID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// GetTrending returns the trending list. It never fails.
func (c *AnalyzeController) GetTrending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.engine.FetchTrendingFacts(r.Context()))
}
