package models

// TrendingVerdict is the rating attached to a trending claim.
type TrendingVerdict string

const (
	TrendingFake       TrendingVerdict = "Fake"
	TrendingMisleading TrendingVerdict = "Misleading"
	TrendingTrue       TrendingVerdict = "True"
	TrendingDebunked   TrendingVerdict = "Debunked"
)

// TrendingFact is a recently fact-checked claim. Produced only by the
// trending fetcher, never mutated afterwards.
type TrendingFact struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Claim       string          `json:"claim"`
	Verdict     TrendingVerdict `json:"verdict"`
	SourceName  string          `json:"sourceName,omitempty"`
	SourceURL   string          `json:"sourceUrl,omitempty"`
	PublishedAt string          `json:"publishedAt,omitempty"`
}

// MaxTrendingFacts bounds the trending list.
const MaxTrendingFacts = 6

var seedTrending = [...]TrendingFact{
	{
		ID:         "m1",
		Title:      "Deepfake Election Official Audio",
		Claim:      "Viral audio clip claiming an election official is discarding ballots.",
		Verdict:    TrendingFake,
		SourceName: "VeriFact Archive",
		SourceURL:  "https://reuters.com",
	},
	{
		ID:         "m2",
		Title:      "Miracle Health Supplement Scams",
		Claim:      `Social media posts claiming new "Blue Tonic" reverses aging instantly.`,
		Verdict:    TrendingMisleading,
		SourceName: "Health Watch",
		SourceURL:  "https://apnews.com",
	},
	{
		ID:         "m3",
		Title:      "Mars Colonization Timeline 2026",
		Claim:      "Claim that human landing is confirmed for early 2026.",
		Verdict:    TrendingDebunked,
		SourceName: "Science Fact",
		SourceURL:  "https://snopes.com",
	},
}

// SeedTrendingFacts returns a fresh copy of the static fallback set.
func SeedTrendingFacts() []TrendingFact {
	out := make([]TrendingFact, len(seedTrending))
	copy(out, seedTrending[:])
	return out
}
