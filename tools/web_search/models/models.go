package models

// Result is a single raw search hit. Ephemeral: produced by a search
// provider, consumed only by the source summarizer.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}
