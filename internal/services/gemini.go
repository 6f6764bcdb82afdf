package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rahul4469/verifact/internal/models"
	"google.golang.org/genai"
)

// Grounding references with missing fields get these placeholders.
const (
	DefaultSourceTitle = "Verification Node"
	DefaultSourceURI   = "#"
)

// Payload is one logical request to the reasoning service.
type Payload struct {
	SystemInstruction string
	Text              string
	Image             *models.Image
}

// Validate requires a non-empty text or image body.
func (p Payload) Validate() error {
	if strings.TrimSpace(p.Text) == "" && (p.Image == nil || len(p.Image.Data) == 0) {
		return &models.RemoteError{Class: models.ClassFatal, Err: errors.New("payload has no content")}
	}
	return nil
}

// Reply is a successful call: response text plus grounding references in the
// order the service reported them.
type Reply struct {
	Text    string
	Sources []models.Source
}

// ReasoningClient issues exactly one call to the reasoning service. Errors
// should be *models.RemoteError; anything else is classified by the caller.
type ReasoningClient interface {
	Generate(ctx context.Context, payload Payload, enhanced bool) (*Reply, error)
}

// GeminiConfig configures the Gemini client.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// HTTPClient is optional; tests point it at httptest servers.
	HTTPClient *http.Client
}

// GeminiClient calls Gemini's generateContent through the genai SDK.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, models.ErrCredentialMissing
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-3-flash-preview"
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   model,
		timeout: cfg.Timeout,
	}, nil
}

// Generate issues one generateContent call. With enhanced set, the Google
// Search grounding tool is attached.
func (c *GeminiClient) Generate(ctx context.Context, payload Payload, enhanced bool) (*Reply, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	config := &genai.GenerateContentConfig{}
	if payload.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(payload.SystemInstruction, genai.RoleUser)
	}
	if enhanced {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, buildContents(payload), config)
	if err != nil {
		return nil, &models.RemoteError{Class: ClassifyError(err), Err: err}
	}

	return &Reply{
		Text:    resp.Text(),
		Sources: groundingSources(resp),
	}, nil
}

func buildContents(payload Payload) []*genai.Content {
	var parts []*genai.Part
	if payload.Image != nil && len(payload.Image.Data) > 0 {
		parts = append(parts, genai.NewPartFromBytes(payload.Image.Data, payload.Image.MIMEType))
	}
	if payload.Text != "" {
		parts = append(parts, genai.NewPartFromText(payload.Text))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// groundingSources keeps web chunks from the first candidate, in order.
func groundingSources(resp *genai.GenerateContentResponse) []models.Source {
	sources := []models.Source{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return sources
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return sources
	}
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		source := models.Source{Title: chunk.Web.Title, URI: chunk.Web.URI}
		if source.Title == "" {
			source.Title = DefaultSourceTitle
		}
		if source.URI == "" {
			source.URI = DefaultSourceURI
		}
		sources = append(sources, source)
	}
	return sources
}

// ClassifyError maps a failed call onto the executor's error classes.
func ClassifyError(err error) models.ErrorClass {
	if err == nil {
		return models.ClassFatal
	}

	var remote *models.RemoteError
	if errors.As(err, &remote) {
		return remote.Class
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.ClassTransient
	}

	if code, status, ok := apiErrorCode(err); ok {
		switch {
		case code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED":
			return models.ClassRateLimited
		case code == http.StatusUnauthorized || code == http.StatusForbidden ||
			status == "UNAUTHENTICATED" || status == "PERMISSION_DENIED":
			return models.ClassUnauthorized
		case code == http.StatusRequestTimeout || code >= 500:
			return models.ClassTransient
		default:
			return models.ClassFatal
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "quota") {
		return models.ClassRateLimited
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return models.ClassTransient
	}

	return models.ClassFatal
}

func apiErrorCode(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Status, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Status, true
	}
	return 0, "", false
}

// asRemoteError guarantees a classified error.
func asRemoteError(err error) *models.RemoteError {
	var remote *models.RemoteError
	if errors.As(err, &remote) {
		return remote
	}
	return &models.RemoteError{Class: ClassifyError(err), Err: err}
}
