package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rahul4469/verifact/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trendingJSON(n int) string {
	entries := make([]string, n)
	for i := range entries {
		entries[i] = fmt.Sprintf(`{"id":"t%d","title":"Claim %d","claim":"Someone said %d","verdict":"Fake","sourceName":"Desk","sourceUrl":"https://desk.example/%d"}`, i, i, i, i)
	}
	return "[" + strings.Join(entries, ",") + "]"
}

func newTestFetcher(client ReasoningClient) *TrendingFetcher {
	return NewTrendingFetcher(newTestExecutor(client), DefaultTrendingRetries, nil)
}

func TestTrendingFetcher_Live(t *testing.T) {
	client := newScriptedClient(replyText("```json\n" + trendingJSON(3) + "\n```"))

	facts := newTestFetcher(client).Fetch(context.Background())

	require.Len(t, facts, 3)
	assert.Equal(t, models.TrendingFact{
		ID:         "t0",
		Title:      "Claim 0",
		Claim:      "Someone said 0",
		Verdict:    models.TrendingFake,
		SourceName: "Desk",
		SourceURL:  "https://desk.example/0",
	}, facts[0])
	assert.Equal(t, []bool{true}, client.enhanced)
	assert.Equal(t, trendingPrompt, client.payloads[0].Text)
}

func TestTrendingFetcher_TruncatesToSix(t *testing.T) {
	client := newScriptedClient(replyText(trendingJSON(8)))

	facts := newTestFetcher(client).Fetch(context.Background())

	require.Len(t, facts, models.MaxTrendingFacts)
	assert.Equal(t, "t5", facts[5].ID)
}

func TestTrendingFetcher_FallsBackToSeed(t *testing.T) {
	tests := []struct {
		name string
		step step
	}{
		{"rate limited", rateLimited()},
		{"fatal", failWith(models.ClassFatal)},
		{"unreadable", replyText("no trending claims today")},
		{"object instead of list", replyText(`{"id":"x","title":"y"}`)},
		{"empty list", replyText("[]")},
		{"malformed entry", replyText(`[{"id":"a","title":"ok","claim":"ok"},"oops"]`)},
		{"entry without text", replyText(`[{"id":"a","verdict":"Fake"}]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := newTestFetcher(newScriptedClient(tt.step)).Fetch(context.Background())
			assert.Equal(t, models.SeedTrendingFacts(), facts)
			assert.Len(t, facts, 3)
		})
	}
}

func TestTrendingFetcher_RateLimitBudget(t *testing.T) {
	client := newScriptedClient(rateLimited())

	newTestFetcher(client).Fetch(context.Background())

	assert.Equal(t, []bool{true, true, false}, client.enhanced)
}

func TestTrendingFetcher_SeedIsNotShared(t *testing.T) {
	fetcher := newTestFetcher(newScriptedClient(failWith(models.ClassFatal)))

	first := fetcher.Fetch(context.Background())
	first[0].Title = "tampered"

	second := fetcher.Fetch(context.Background())
	assert.Equal(t, "Deepfake Election Official Audio", second[0].Title)
}

func TestDecodeTrending_FillsGaps(t *testing.T) {
	facts, err := decodeTrending([]any{
		map[string]any{"id": float64(7), "title": "Only a title", "verdict": "verified"},
		map[string]any{"claim": "Only a claim", "verdict": "satire"},
	})
	require.NoError(t, err)

	assert.Equal(t, "7", facts[0].ID)
	assert.Equal(t, "Only a title", facts[0].Claim)
	assert.Equal(t, models.TrendingTrue, facts[0].Verdict)

	assert.Equal(t, "t2", facts[1].ID)
	assert.Equal(t, "Only a claim", facts[1].Title)
	assert.Equal(t, models.TrendingMisleading, facts[1].Verdict)
}

func TestTrendingVerdict(t *testing.T) {
	assert.Equal(t, models.TrendingFake, trendingVerdict("FALSE"))
	assert.Equal(t, models.TrendingDebunked, trendingVerdict(" Debunked "))
	assert.Equal(t, models.TrendingMisleading, trendingVerdict(""))
}
