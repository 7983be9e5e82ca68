package models

// SearchResult is a single ranked passage returned to callers. It is never persisted.
type SearchResult struct {
	Content        string  `json:"content"`
	SourceDocument string  `json:"sourceDocument"`
	RelevanceScore float64 `json:"relevanceScore"`
	DocumentType   string  `json:"documentType"`
	Citation       string  `json:"citation"`
}

// Statistics aggregates passage counts over the loaded corpus.
type Statistics struct {
	TotalDocuments int            `json:"totalDocuments"`
	Categories     map[string]int `json:"categories"`
}

// KeywordHit is a passage matched by a keyword lookup.
type KeywordHit struct {
	Passage *CorpusPassage `json:"passage"`
	Score   float64        `json:"score"`
}
