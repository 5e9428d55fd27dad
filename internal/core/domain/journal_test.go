package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotebookPrefix(t *testing.T) {
	page := JournalPage{Filename: "Daily-01-P20221030210759068713clbdtpKcEWTi.png"}
	assert.Equal(t, "Daily", page.NotebookPrefix())

	page.Filename = "Scratchpad.png"
	assert.Equal(t, "Scratchpad.png", page.NotebookPrefix())
}

func TestDefaultDatePrefersPageDate(t *testing.T) {
	page := JournalPage{CreatedAt: "2022-10-30T21:07:59", Date: "2022-10-29"}
	assert.Equal(t, "2022-10-29", page.DefaultDate())

	page.Date = ""
	assert.Equal(t, "2022-10-30T21:07:59", page.DefaultDate())
}

func TestDatedContentBucketsRecordsByDate(t *testing.T) {
	page := JournalPage{
		CreatedAt: "2022-10-30T21:07:59",
		Date:      "2022-10-30",
		Records: []RapidLogEntry{
			{Type: "task", Content: "water the plants"},
			{Type: "note", Content: "quiet sunday"},
			{Type: "event", Content: "dentist", Date: "2022-11-02"},
		},
	}

	dated := page.DatedContent()
	require.Len(t, dated, 2)
	assert.Equal(t, []string{"- water the plants", "- quiet sunday"}, dated["2022-10-30"])
	assert.Equal(t, []string{"- dentist"}, dated["2022-11-02"])
}

func TestDatedContentWithoutRecordsUsesPageContent(t *testing.T) {
	page := JournalPage{
		CreatedAt: "2022-10-30T21:07:59",
		Content:   "a page of prose",
	}

	dated := page.DatedContent()
	require.Len(t, dated, 1)
	assert.Equal(t, []string{"a page of prose"}, dated["2022-10-30T21:07:59"])
}

func TestJournalPageYAMLRoundTrip(t *testing.T) {
	page := JournalPage{
		Filename:  "Daily-01.png",
		CreatedAt: "2022-10-30T21:07:59",
		Date:      "2022-10-30",
		Records: []RapidLogEntry{
			{Type: "task", Status: "complete", Content: "water the plants", Critical: true},
		},
	}

	data, err := page.MarshalYAMLBytes()
	require.NoError(t, err)

	decoded, err := JournalPageFromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, page, decoded)
}

func TestJournalPageFromYAMLRequiresIdentity(t *testing.T) {
	_, err := JournalPageFromYAML([]byte("created_at: 2022-10-30T21:07:59\n"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = JournalPageFromYAML([]byte("filename: Daily-01.png\n"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = JournalPageFromYAML([]byte("{not yaml"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEntryUIDIsStableAndDistinct(t *testing.T) {
	uid := EntryUID("Daily", "2022-10-30")
	assert.Equal(t, uid, EntryUID("Daily", "2022-10-30"))
	assert.Len(t, uid, 64)

	assert.NotEqual(t, uid, EntryUID("Daily", "2022-10-31"))
	assert.NotEqual(t, uid, EntryUID("Weekly", "2022-10-30"))
}
