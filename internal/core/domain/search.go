package domain

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMaxResults is the result cap applied when a query does not set one.
const DefaultMaxResults = 10

// IndexableDocument is one unit of the vector index. Its text is a
// deterministic function of the journal entry it was derived from, so
// re-submitting an unchanged entry is a no-op for the index.
type IndexableDocument struct {
	// UID is the journal entry identifier the document is keyed by.
	UID string `json:"uid"`

	// Document is the serialised entry text that gets embedded. Volatile
	// fields (the UID itself) are excluded so content equality means
	// "nothing really changed".
	Document string `json:"document"`

	// Metadata carries filterable key-value pairs (category, name). The
	// category value may hold several comma-separated tags; a filter matches
	// when its value equals any one of them.
	Metadata map[string]string `json:"metadata"`

	// Timestamp is the entry date at start of day, used for date-range
	// filters. Documents without a timestamp fail any date filter.
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// QueryParams select and rank documents in the vector index.
type QueryParams struct {
	// Query is the free-text query. When empty the index returns all
	// documents matching the filters with a zero score (pure-filter
	// browsing).
	Query string `json:"query,omitempty"`

	// StartDate is the inclusive lower bound on document timestamps.
	StartDate *time.Time `json:"start_date,omitempty"`

	// EndDate is the inclusive upper bound on document timestamps.
	EndDate *time.Time `json:"end_date,omitempty"`

	// Metadata filters documents by equality on every key-value pair.
	Metadata map[string]string `json:"metadata,omitempty"`

	// NumResults caps the ranked result list (default DefaultMaxResults).
	NumResults int `json:"num_results,omitempty"`
}

// QueryResult is a ranked index hit. Score is the Euclidean distance between
// the query and document embeddings; lower means more similar. Filter-only
// queries report a sentinel zero score.
type QueryResult struct {
	Document IndexableDocument `json:"document"`
	Score    float64           `json:"score"`
}

// indexableEntry is the serialised shape of an entry in the index.
// Field order is fixed so the output is deterministic.
type indexableEntry struct {
	Summary     string   `yaml:"summary"`
	Categories  []string `yaml:"categories"`
	Date        string   `yaml:"date"`
	Description string   `yaml:"description,omitempty"`
}

// NewIndexableDocument converts a journal entry into its indexable form.
// The serialised text excludes the UID so identical content always compares
// equal regardless of how the entry was produced.
func NewIndexableDocument(entry JournalEntry) (IndexableDocument, error) {
	text, err := yaml.Marshal(indexableEntry{
		Summary:     entry.Summary,
		Categories:  entry.Categories,
		Date:        entry.Date,
		Description: entry.Description,
	})
	if err != nil {
		return IndexableDocument{}, fmt.Errorf("serialise entry %s: %w", entry.UID, err)
	}

	doc := IndexableDocument{
		UID:      entry.UID,
		Document: string(text),
		Metadata: map[string]string{
			"name": entry.Summary,
		},
	}
	if len(entry.Categories) > 0 {
		// All category tags are kept so folded entries stay findable under
		// their original notebook name.
		doc.Metadata["category"] = strings.Join(entry.Categories, ",")
	}
	if ts, ok := ParseEntryDate(entry.Date); ok {
		doc.Timestamp = &ts
	}
	return doc, nil
}

// ParseEntryDate parses an entry date, accepting either a bare ISO date or a
// datetime, and truncates it to start of day in UTC.
func ParseEntryDate(date string) (time.Time, bool) {
	layouts := []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.999999",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, date); err == nil {
			return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
