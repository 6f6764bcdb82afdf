package services

const analysisSystemInstruction = `You are the VeriFact Truth Engine.
Investigate for misinformation/manipulation.
OUTPUT ONLY JSON:
{
  "summary": "1-2 sentence forensic summary",
  "truthScore": 0-100,
  "verdict": "Verified" | "Suspicious" | "Misinformation",
  "breakdown": {
    "sourceCredibility": 0-100,
    "sentimentAnalysis": "Clinical note",
    "redFlags": ["specific flag 1", "specific flag 2"]
  }
}`

const (
	verifyPrefix       = "VERIFY: "
	forensicScanPrompt = "Forensic Scan: Detect AI markers or context manipulation."
)

const trendingSystemInstruction = "Output ONLY raw JSON. No conversational text."

const trendingPrompt = `List 6 viral news claims debunked in the last 48 hours. ` +
	`Return JSON: [{ id, title, claim, verdict, sourceName, sourceUrl, publishedAt }] ` +
	`where verdict is one of "Fake", "Misleading", "True", "Debunked".`
