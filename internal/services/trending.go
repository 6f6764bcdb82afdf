package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rahul4469/verifact/internal/models"
	"go.uber.org/zap"
)

// DefaultTrendingRetries is the small budget used for the trending feed.
const DefaultTrendingRetries = 2

var (
	errNotAList      = errors.New("trending payload is not a list")
	errEmptyTrending = errors.New("trending payload is empty")
)

// TrendingFetcher fetches recently debunked claims. Any failure yields the
// static seed set; live and static entries are never mixed.
type TrendingFetcher struct {
	executor *Executor
	retries  int
	logger   *zap.Logger
}

func NewTrendingFetcher(executor *Executor, retries int, logger *zap.Logger) *TrendingFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrendingFetcher{
		executor: executor,
		retries:  retries,
		logger:   logger,
	}
}

// Fetch returns at most MaxTrendingFacts entries and never fails.
func (f *TrendingFetcher) Fetch(ctx context.Context) []models.TrendingFact {
	facts, err := f.fetchLive(ctx)
	if err != nil {
		f.logger.Warn("trending feed unavailable, serving seed set", zap.Error(err))
		return models.SeedTrendingFacts()
	}
	return facts
}

func (f *TrendingFetcher) fetchLive(ctx context.Context) ([]models.TrendingFact, error) {
	payload := Payload{
		SystemInstruction: trendingSystemInstruction,
		Text:              trendingPrompt,
	}

	reply, err := f.executor.Execute(ctx, payload, f.retries, true)
	if err != nil {
		return nil, err
	}

	extracted, err := ExtractJSON(reply.Text)
	if err != nil {
		return nil, err
	}

	return decodeTrending(extracted)
}

// decodeTrending converts the extracted list into facts, truncated to
// MaxTrendingFacts. One malformed entry rejects the whole list.
func decodeTrending(extracted any) ([]models.TrendingFact, error) {
	list, ok := extracted.([]any)
	if !ok {
		return nil, errNotAList
	}
	if len(list) == 0 {
		return nil, errEmptyTrending
	}
	if len(list) > models.MaxTrendingFacts {
		list = list[:models.MaxTrendingFacts]
	}

	facts := make([]models.TrendingFact, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("trending entry %d is not an object", i)
		}
		fact := models.TrendingFact{
			ID:          idField(obj["id"], i),
			Title:       strings.TrimSpace(stringOf(obj["title"])),
			Claim:       strings.TrimSpace(stringOf(obj["claim"])),
			Verdict:     trendingVerdict(stringOf(obj["verdict"])),
			SourceName:  stringOf(obj["sourceName"]),
			SourceURL:   stringOf(obj["sourceUrl"]),
			PublishedAt: stringOf(obj["publishedAt"]),
		}
		if fact.Title == "" && fact.Claim == "" {
			return nil, fmt.Errorf("trending entry %d has neither title nor claim", i)
		}
		if fact.Title == "" {
			fact.Title = fact.Claim
		}
		if fact.Claim == "" {
			fact.Claim = fact.Title
		}
		facts = append(facts, fact)
	}
	return facts, nil
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func idField(v any, index int) string {
	switch id := v.(type) {
	case string:
		if strings.TrimSpace(id) != "" {
			return id
		}
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return "t" + strconv.Itoa(index+1)
}

// trendingVerdict maps free-form ratings onto the four known verdicts;
// unknown ratings read as Misleading.
func trendingVerdict(s string) models.TrendingVerdict {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fake", "false":
		return models.TrendingFake
	case "true", "verified":
		return models.TrendingTrue
	case "debunked":
		return models.TrendingDebunked
	}
	return models.TrendingMisleading
}
