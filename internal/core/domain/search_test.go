package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIndexableDocumentIsDeterministic(t *testing.T) {
	entry := JournalEntry{
		UID:         EntryUID("Daily", "2022-10-30"),
		Notebook:    "Daily",
		Categories:  []string{"Daily"},
		Summary:     "Daily 2022-10-30",
		Date:        "2022-10-30",
		Description: "- water the plants",
	}

	first, err := NewIndexableDocument(entry)
	require.NoError(t, err)
	second, err := NewIndexableDocument(entry)
	require.NoError(t, err)

	assert.Equal(t, first.Document, second.Document)
	assert.Equal(t, entry.UID, first.UID)
	assert.Equal(t, "Daily 2022-10-30", first.Metadata["name"])
	assert.Equal(t, "Daily", first.Metadata["category"])

	require.NotNil(t, first.Timestamp)
	assert.Equal(t, time.Date(2022, 10, 30, 0, 0, 0, 0, time.UTC), *first.Timestamp)
}

func TestNewIndexableDocumentExcludesUIDFromText(t *testing.T) {
	entry := JournalEntry{
		UID:        "one-uid",
		Categories: []string{"Daily"},
		Summary:    "Daily 2022-10-30",
		Date:       "2022-10-30",
	}
	first, err := NewIndexableDocument(entry)
	require.NoError(t, err)

	entry.UID = "another-uid"
	second, err := NewIndexableDocument(entry)
	require.NoError(t, err)

	// Same content, different UID: the embedded text must not differ.
	assert.Equal(t, first.Document, second.Document)
}

func TestNewIndexableDocumentFoldedEntryFiltersByOriginalNotebook(t *testing.T) {
	entry := JournalEntry{
		UID:        "uid",
		Notebook:   "Journal",
		Categories: []string{"Journal", "Weekly"},
		Summary:    "Weekly 2022-10-30",
		Date:       "2022-10-30",
	}
	doc, err := NewIndexableDocument(entry)
	require.NoError(t, err)
	// Both tags survive so a category filter on either name matches.
	assert.Equal(t, "Journal,Weekly", doc.Metadata["category"])
}

func TestNewIndexableDocumentUndatedEntryHasNoTimestamp(t *testing.T) {
	doc, err := NewIndexableDocument(JournalEntry{
		UID:     "uid",
		Summary: "Notes sometime",
		Date:    "not a date",
	})
	require.NoError(t, err)
	assert.Nil(t, doc.Timestamp)
}

func TestParseEntryDate(t *testing.T) {
	want := time.Date(2022, 10, 30, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{
		"2022-10-30",
		"2022-10-30T21:07:59",
		"2022-10-30T21:07:59.068713",
		"2022-10-30T21:07:59Z",
	} {
		ts, ok := ParseEntryDate(input)
		require.True(t, ok, "input %q", input)
		assert.Equal(t, want, ts, "input %q", input)
	}

	_, ok := ParseEntryDate("30/10/2022")
	assert.False(t, ok)
}
