// Package search augments user queries with freshly retrieved snippets from
// external search and financial data sources.
package search

// Snippet is a short externally sourced text fragment with provenance.
type Snippet struct {
	Title   string
	Snippet string
	URL     string
	Source  string
}

// Result is the aggregated outcome of one asset lookup.
type Result struct {
	AssetName    string
	GeneralInfo  []Snippet
	RecentNews   []Snippet
	TotalResults int
}

const (
	maxGeneralInfo = 5
	maxRecentNews  = 3
)
