package main

// ListingItem is one candidate item discovered by a ListingResolver.
// RawTitle and RawDate are empty for sitemap-discovered items.
type ListingItem struct {
	URL      string
	RawTitle string
	RawDate  string
}

// ItemStatus represents the terminal state of one item in a run
type ItemStatus string

const (
	StatusRecorded ItemStatus = "recorded"
	StatusSkipped  ItemStatus = "skipped"
	StatusFailed   ItemStatus = "failed"
)

// ItemResult tracks the outcome of processing one discovered item
type ItemResult struct {
	URL          string
	Status       ItemStatus
	ArtifactPath string
	Err          error
}

// RunSummary aggregates the per-item outcomes of one ingestion pass
type RunSummary struct {
	Source   string
	Recorded int
	Skipped  int
	Failed   int
}

// Total returns the number of items the run looked at.
func (s RunSummary) Total() int {
	return s.Recorded + s.Skipped + s.Failed
}

// Extraction is the canonical output of the item extractor: everything
// needed to render and record one item.
type Extraction struct {
	Title    string
	Date     string // canonical YYYY-MM-DD
	URL      string
	Body     string
	EmbedURL string // embedded document link, empty if none
	Filename string // derived artifact base name, e.g. 2023-05-01_Budget-Announcement.pdf
}
