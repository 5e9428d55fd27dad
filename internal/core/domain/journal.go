package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// RapidLogEntry is a single bullet-journal rapid-log line extracted from a
// scanned page. The Type discriminates tasks, events and notes; Status tracks
// task completion markers.
type RapidLogEntry struct {
	// Type is the rapid-log symbol class (e.g., "task", "event", "note").
	Type string `yaml:"type" json:"type"`

	// Content is the transcribed text of the line.
	Content string `yaml:"content" json:"content"`

	// Status is the completion marker, if any (e.g., "done", "migrated").
	Status string `yaml:"status,omitempty" json:"status,omitempty"`

	// Label is an optional free-form tag.
	Label string `yaml:"label,omitempty" json:"label,omitempty"`

	// Critical marks the line as flagged important.
	Critical bool `yaml:"critical,omitempty" json:"critical,omitempty"`

	// Date is an ISO date the line explicitly refers to, if it differs from
	// the page date.
	Date string `yaml:"date,omitempty" json:"date,omitempty"`

	// Entries holds nested sub-entries under this line.
	Entries []string `yaml:"entries,omitempty" json:"entries,omitempty"`
}

// JournalPage is one scanned notebook page after vision-model extraction.
// Pages are immutable once produced and serialise to YAML for storage.
type JournalPage struct {
	// Filename is the media item name the page was extracted from.
	Filename string `yaml:"filename" json:"filename"`

	// CreatedAt is the page creation timestamp derived from the filename.
	CreatedAt string `yaml:"created_at" json:"created_at"`

	// Label is the page type as read from the page itself (e.g., "daily").
	Label string `yaml:"label,omitempty" json:"label,omitempty"`

	// Date is the ISO date written on the page, if any.
	Date string `yaml:"date,omitempty" json:"date,omitempty"`

	// Content is free-form page text that is not a rapid-log line.
	Content string `yaml:"content,omitempty" json:"content,omitempty"`

	// Records are the extracted rapid-log lines.
	Records []RapidLogEntry `yaml:"records,omitempty" json:"records,omitempty"`
}

// NotebookPrefix returns the notebook name encoded in the page filename,
// the segment before the first "-" (e.g., "Daily" for "Daily-01-P...").
func (p *JournalPage) NotebookPrefix() string {
	name := p.Filename
	if idx := strings.IndexByte(name, '-'); idx >= 0 {
		return name[:idx]
	}
	return name
}

// DefaultDate returns the date that undated rapid-log lines belong to:
// the page-level date when present, otherwise the creation timestamp.
func (p *JournalPage) DefaultDate() string {
	if p.Date != "" {
		return p.Date
	}
	return p.CreatedAt
}

// DatedContent groups the page content by date. Each rapid-log line lands in
// the bucket of its own date, falling back to the page default date. A page
// without records contributes its free-form content to the default date.
func (p *JournalPage) DatedContent() map[string][]string {
	if len(p.Records) == 0 {
		return map[string][]string{p.DefaultDate(): {p.Content}}
	}
	dated := make(map[string][]string)
	for _, record := range p.Records {
		date := record.Date
		if date == "" {
			date = p.DefaultDate()
		}
		dated[date] = append(dated[date], fmt.Sprintf("- %s", record.Content))
	}
	return dated
}

// MarshalYAMLBytes serialises the page to its native storage format.
func (p *JournalPage) MarshalYAMLBytes() ([]byte, error) {
	return yaml.Marshal(p)
}

// JournalPageFromYAML decodes a page from its native storage format.
// A page without a filename or creation timestamp is invalid.
func JournalPageFromYAML(data []byte) (JournalPage, error) {
	var page JournalPage
	if err := yaml.Unmarshal(data, &page); err != nil {
		return JournalPage{}, fmt.Errorf("%w: decode journal page: %w", ErrInvalidInput, err)
	}
	if page.Filename == "" {
		return JournalPage{}, fmt.Errorf("%w: journal page missing filename", ErrInvalidInput)
	}
	if page.CreatedAt == "" {
		return JournalPage{}, fmt.Errorf("%w: journal page missing created_at", ErrInvalidInput)
	}
	return page, nil
}

// JournalEntry is one calendar-style entry aggregated from the pages of a
// single notebook that share a date. Entries are re-derived on every
// aggregation pass; they are never incrementally mutated.
type JournalEntry struct {
	// UID is a stable identifier derived from notebook name and date, not
	// from content. Reprocessing the same pages yields the same UID, which
	// lets the vector index detect unchanged entries.
	UID string `yaml:"uid" json:"uid"`

	// Notebook is the calendar the entry belongs to.
	Notebook string `yaml:"notebook" json:"notebook"`

	// Categories holds the notebook name, plus the original notebook prefix
	// when pages were folded into a default notebook.
	Categories []string `yaml:"categories" json:"categories"`

	// Summary is the human-readable title ("<notebook> <date>").
	Summary string `yaml:"summary" json:"summary"`

	// Date is the entry date, either "2006-01-02" or an ISO datetime.
	Date string `yaml:"date" json:"date"`

	// Description is the merged rapid-log content for the date.
	Description string `yaml:"description" json:"description"`
}

// EntryUID returns the stable identifier for a notebook entry on a date.
// The hash covers identity only, never content.
func EntryUID(notebook, date string) string {
	sum := sha256.Sum256([]byte(notebook + "/" + date))
	return hex.EncodeToString(sum[:])
}
