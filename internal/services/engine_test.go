package services

import (
	"context"
	"strings"
	"testing"

	"github.com/rahul4469/verifact/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const goodReport = "```json\n" + `{
  "summary": "The quote was never said.",
  "truthScore": 8,
  "verdict": "Misinformation",
  "breakdown": {
    "sourceCredibility": 15,
    "sentimentAnalysis": "Inflammatory.",
    "redFlags": ["fabricated quote"]
  }
}` + "\n```"

func newTestEngine(client ReasoningClient) *Engine {
	cfg := DefaultEngineConfig()
	cfg.BackoffStep = 0
	return NewEngine(client, cfg, nil)
}

func requireAnalysisError(t *testing.T, err error, kind models.ErrorKind) *models.AnalysisError {
	t.Helper()
	ae, ok := models.AsAnalysisError(err)
	require.True(t, ok, "expected *models.AnalysisError, got %T", err)
	assert.Equal(t, kind, ae.Kind)
	return ae
}

func TestEngine_Unconfigured(t *testing.T) {
	engine := newTestEngine(nil)
	assert.False(t, engine.Configured())

	result, err := engine.AnalyzeContent(context.Background(), models.KindText, "", nil)
	assert.Nil(t, result)
	ae := requireAnalysisError(t, err, models.KindConfigurationFailure)
	assert.Equal(t, models.MsgConfiguration, ae.Message)
	assert.ErrorIs(t, err, models.ErrCredentialMissing)

	assert.Equal(t, models.SeedTrendingFacts(), engine.FetchTrendingFacts(context.Background()))
}

func TestEngine_ValidationMakesNoCalls(t *testing.T) {
	tests := []struct {
		name  string
		kind  models.DetectionKind
		input string
		image *models.Image
		msg   string
	}{
		{"blank text", models.KindText, "   ", nil, "Please enter text for investigation."},
		{"relative url", models.KindURL, "example.com/story", nil, "Please enter a valid investigation URL."},
		{"missing image", models.KindImage, "", nil, "Please upload a file for forensic scanning."},
		{"empty image", models.KindImage, "", &models.Image{MIMEType: "image/png"}, "Please upload a file for forensic scanning."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newScriptedClient(replyText(goodReport))

			_, err := newTestEngine(client).AnalyzeContent(context.Background(), tt.kind, tt.input, tt.image)

			ae := requireAnalysisError(t, err, models.KindValidationFailure)
			assert.Equal(t, tt.msg, ae.Message)
			assert.Equal(t, 0, client.callCount())
		})
	}
}

func TestEngine_AnalyzeText(t *testing.T) {
	sources := []models.Source{{Title: "Desk", URI: "https://desk.example"}}
	client := newScriptedClient(replyText(goodReport, sources...))

	result, err := newTestEngine(client).AnalyzeContent(context.Background(), models.KindText, "The mayor said the bridge is closing forever.", nil)
	require.NoError(t, err)

	assert.Equal(t, "VERIFY: The mayor said the bridge is closing forever.", client.payloads[0].Text)
	assert.Equal(t, analysisSystemInstruction, client.payloads[0].SystemInstruction)
	assert.Equal(t, []bool{true}, client.enhanced)

	assert.NotEmpty(t, result.ID)
	assert.False(t, result.Timestamp.IsZero())
	assert.Equal(t, models.KindText, result.Kind)
	assert.Equal(t, 8, result.TruthScore)
	assert.Equal(t, models.VerdictMisinformation, result.Verdict)
	assert.Equal(t, sources, result.Sources)
	assert.Equal(t, 1, result.Breakdown.CrossReferenceCount)
}

func TestEngine_AnalyzeImageWithoutGrounding(t *testing.T) {
	client := newScriptedClient(replyText(`{"summary":"No manipulation found.","truthScore":91,"verdict":"Verified"}`))
	image := &models.Image{MIMEType: "image/png", Data: []byte("\x89PNG\r\n\x1a\n")}

	result, err := newTestEngine(client).AnalyzeContent(context.Background(), models.KindImage, "", image)
	require.NoError(t, err)

	assert.Equal(t, forensicScanPrompt, client.payloads[0].Text)
	assert.Same(t, image, client.payloads[0].Image)

	assert.Equal(t, ImageDisplayLabel, result.DisplayInput)
	assert.Equal(t, []models.Source{}, result.Sources)
	assert.Equal(t, 0, result.Breakdown.CrossReferenceCount)
}

func TestEngine_RateLimitExhausted(t *testing.T) {
	client := newScriptedClient(rateLimited())

	_, err := newTestEngine(client).AnalyzeContent(context.Background(), models.KindURL, "https://example.com/a", nil)

	ae := requireAnalysisError(t, err, models.KindRateLimitFailure)
	assert.Equal(t, models.MsgRateLimited, ae.Message)
	assert.Equal(t, DefaultAnalyzeRetries+1, client.callCount())
}

func TestEngine_Unauthorized(t *testing.T) {
	client := newScriptedClient(failWith(models.ClassUnauthorized))

	_, err := newTestEngine(client).AnalyzeContent(context.Background(), models.KindText, "claim", nil)

	ae := requireAnalysisError(t, err, models.KindUpstreamFailure)
	assert.Equal(t, models.MsgUnauthorized, ae.Message)
	assert.Equal(t, 1, client.callCount())
}

func TestEngine_DataIntegrity(t *testing.T) {
	const raw = "Sorry, I cannot help with that secret request."
	client := newScriptedClient(replyText(raw))

	core, logs := observer.New(zap.ErrorLevel)
	cfg := DefaultEngineConfig()
	cfg.BackoffStep = 0
	engine := NewEngine(client, cfg, zap.New(core))

	_, err := engine.AnalyzeContent(context.Background(), models.KindText, "claim", nil)

	ae := requireAnalysisError(t, err, models.KindDataIntegrityFailure)
	assert.Equal(t, models.MsgDataIntegrity, ae.Message)
	assert.False(t, strings.Contains(ae.Error(), "secret"))

	// raw text goes to the diagnostic log only
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, raw, logs.All()[0].ContextMap()["raw"])
}

func TestEngine_GarbageFieldsStayInRange(t *testing.T) {
	client := newScriptedClient(replyText(`{"truthScore":"very high","verdict":42,"breakdown":{"sourceCredibility":-3,"redFlags":"none"}}`))

	result, err := newTestEngine(client).AnalyzeContent(context.Background(), models.KindText, "claim", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultTruthScore, result.TruthScore)
	assert.Equal(t, DefaultVerdict, result.Verdict)
	assert.Equal(t, 0, result.Breakdown.SourceCredibility)
	assert.Equal(t, []string{DefaultRedFlag}, result.Breakdown.RedFlags)
}

func TestEngine_ConcurrentCalls(t *testing.T) {
	engine := newTestEngine(newScriptedClient(replyText(goodReport)))

	done := make(chan string, 8)
	for range 8 {
		go func() {
			result, err := engine.AnalyzeContent(context.Background(), models.KindText, "claim", nil)
			if err != nil {
				done <- ""
				return
			}
			done <- result.ID
		}()
	}

	seen := make(map[string]bool)
	for range 8 {
		id := <-done
		require.NotEmpty(t, id)
		seen[id] = true
	}
	assert.Len(t, seen, 8)
}

func TestNewEngineWithGemini_EmptyKey(t *testing.T) {
	engine, err := NewEngineWithGemini(context.Background(), GeminiConfig{}, DefaultEngineConfig(), nil)
	require.NoError(t, err)
	assert.False(t, engine.Configured())
}
