package services

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rahul4469/verifact/internal/models"
)

// Defaults applied field by field when the upstream value is missing or of
// the wrong kind.
const (
	DefaultTruthScore        = 50
	DefaultSummary           = "Analysis completed with baseline inconclusive markers."
	DefaultVerdict           = models.VerdictSuspicious
	DefaultSourceCredibility = 70
	DefaultSentiment         = "Neutral observation."
	DefaultRedFlag           = "Limited digital evidence footprint."

	ImageDisplayLabel = "Visual Media Forensic Scan"
	displayInputLimit = 60
)

// Normalizer turns an extracted payload of unknown shape into a complete
// AnalysisResult. It never fails.
type Normalizer struct {
	newID func() string
	now   func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		newID: newResultID,
		now:   time.Now,
	}
}

func newResultID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// Normalize builds the result. extracted may be nil or any JSON value; only
// an object contributes fields. refs become the sources verbatim.
func (n *Normalizer) Normalize(req models.AnalysisRequest, extracted any, refs []models.Source) *models.AnalysisResult {
	data, _ := extracted.(map[string]any)
	breakdown, _ := data["breakdown"].(map[string]any)

	sources := make([]models.Source, len(refs))
	copy(sources, refs)

	return &models.AnalysisResult{
		ID:           n.newID(),
		Timestamp:    n.now(),
		Kind:         req.Kind,
		DisplayInput: DisplayInput(req),
		TruthScore:   scoreField(data, "truthScore", DefaultTruthScore),
		Summary:      stringField(data, "summary", DefaultSummary),
		Verdict:      verdictField(data),
		Breakdown: models.Breakdown{
			SourceCredibility:   scoreField(breakdown, "sourceCredibility", DefaultSourceCredibility),
			SentimentAnalysis:   stringField(breakdown, "sentimentAnalysis", DefaultSentiment),
			CrossReferenceCount: len(sources),
			RedFlags:            redFlagsField(breakdown),
		},
		Sources: sources,
	}
}

// DisplayInput is the cosmetic echo of the request: a fixed label for images,
// otherwise the input cut to 60 runes with "..." appended when longer.
func DisplayInput(req models.AnalysisRequest) string {
	if req.Kind == models.KindImage {
		return ImageDisplayLabel
	}
	runes := []rune(req.RawInput)
	if len(runes) <= displayInputLimit {
		return req.RawInput
	}
	return string(runes[:displayInputLimit]) + "..."
}

// scoreField reads a number and clamps it into [0,100].
func scoreField(obj map[string]any, key string, def int) int {
	v, ok := obj[key].(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return int(math.Round(math.Min(100, math.Max(0, v))))
}

func stringField(obj map[string]any, key, def string) string {
	v, ok := obj[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func verdictField(obj map[string]any) models.Verdict {
	v, ok := obj["verdict"].(string)
	if !ok {
		return DefaultVerdict
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "verified":
		return models.VerdictVerified
	case "suspicious":
		return models.VerdictSuspicious
	case "misinformation":
		return models.VerdictMisinformation
	}
	return DefaultVerdict
}

// redFlagsField keeps the non-empty string entries in order.
func redFlagsField(obj map[string]any) []string {
	list, _ := obj["redFlags"].([]any)
	flags := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			flags = append(flags, s)
		}
	}
	if len(flags) == 0 {
		return []string{DefaultRedFlag}
	}
	return flags
}
