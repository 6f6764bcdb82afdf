package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	localcontext "github.com/rahul4469/verifact/context"
	"github.com/rahul4469/verifact/internal/models"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// HistoryStore is the analysis ledger. models.HistoryService implements it.
type HistoryStore interface {
	Save(ctx context.Context, result *models.AnalysisResult) error
	ByID(ctx context.Context, id string) (*models.AnalysisResult, error)
	Recent(ctx context.Context, limit int) ([]*models.AnalysisResult, error)
	CountByVerdict(ctx context.Context) (map[models.Verdict]int, error)
	Delete(ctx context.Context, id string) error
}

// HistoryController serves the ledger endpoints. Every endpoint answers 503
// when no store is configured.
type HistoryController struct {
	store HistoryStore
}

func NewHistoryController(store HistoryStore) *HistoryController {
	return &HistoryController{store: store}
}

func (c *HistoryController) available(w http.ResponseWriter) bool {
	if c.store == nil {
		writeError(w, http.StatusServiceUnavailable, models.ErrHistoryDisabled.Error())
		return false
	}
	return true
}

// GetHistory lists recorded analyses, newest first.
func (c *HistoryController) GetHistory(w http.ResponseWriter, r *http.Request) {
	if !c.available(w) {
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = n
	}

	results, err := c.store.Recent(r.Context(), limit)
	if err != nil {
		c.internalError(w, r, "failed to list analyses", err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// GetAnalysis returns one recorded analysis.
func (c *HistoryController) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	if !c.available(w) {
		return
	}

	result, err := c.store.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrAnalysisNotFound) {
			writeError(w, http.StatusNotFound, "Analysis not found")
			return
		}
		c.internalError(w, r, "failed to load analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DeleteAnalysis removes one recorded analysis.
func (c *HistoryController) DeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	if !c.available(w) {
		return
	}

	err := c.store.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrAnalysisNotFound) {
			writeError(w, http.StatusNotFound, "Analysis not found")
			return
		}
		c.internalError(w, r, "failed to delete analysis", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HistoryStats holds the ledger summary.
type HistoryStats struct {
	Total     int                    `json:"total"`
	ByVerdict map[models.Verdict]int `json:"byVerdict"`
}

// GetStats summarizes the ledger by verdict.
func (c *HistoryController) GetStats(w http.ResponseWriter, r *http.Request) {
	if !c.available(w) {
		return
	}

	counts, err := c.store.CountByVerdict(r.Context())
	if err != nil {
		c.internalError(w, r, "failed to count analyses", err)
		return
	}

	stats := HistoryStats{ByVerdict: counts}
	for _, n := range counts {
		stats.Total += n
	}
	writeJSON(w, http.StatusOK, stats)
}

func (c *HistoryController) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	localcontext.Logger(r.Context()).Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Failed to access analysis history")
}
