package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/logger"
)

// Aggregate converts extracted journal pages into dated calendar entries
// grouped by notebook. The whole aggregate is rebuilt from the page set on
// every pass; nothing is incrementally mutated.
//
// Pages group by their filename prefix. A prefix not in allowedNotebooks
// folds into defaultNotebook but keeps its own name as a secondary category
// so filtering by the original notebook still works. Within a notebook,
// pages merge date by date: every page contributes its lines to the bucket
// of their date.
func Aggregate(
	pages []domain.JournalPage,
	allowedNotebooks []string,
	defaultNotebook string,
) map[string][]domain.JournalEntry {
	allowed := make(map[string]bool, len(allowedNotebooks))
	for _, name := range allowedNotebooks {
		allowed[name] = true
	}

	byPrefix := make(map[string][]domain.JournalPage)
	for _, page := range pages {
		prefix := page.NotebookPrefix()
		byPrefix[prefix] = append(byPrefix[prefix], page)
	}
	prefixes := make([]string, 0, len(byPrefix))
	for prefix := range byPrefix {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	logger.Debug("Aggregating %d pages across notebooks %v", len(pages), prefixes)

	notebooks := make(map[string][]domain.JournalEntry)
	for _, prefix := range prefixes {
		notebookPages := byPrefix[prefix]
		sort.Slice(notebookPages, func(i, j int) bool {
			return notebookPages[i].Filename < notebookPages[j].Filename
		})

		// Merge page content date by date, in page order.
		dated := make(map[string][]string)
		var dates []string
		for _, page := range notebookPages {
			for date, lines := range page.DatedContent() {
				if _, seen := dated[date]; !seen {
					dates = append(dates, date)
				}
				dated[date] = append(dated[date], lines...)
			}
		}
		sort.Strings(dates)

		key := prefix
		categories := []string{prefix}
		if !allowed[prefix] {
			key = defaultNotebook
			categories = []string{defaultNotebook, prefix}
		}

		for _, date := range dates {
			notebooks[key] = append(notebooks[key], domain.JournalEntry{
				UID:         domain.EntryUID(prefix, date),
				Notebook:    key,
				Categories:  categories,
				Summary:     fmt.Sprintf("%s %s", prefix, date),
				Date:        date,
				Description: strings.Join(dated[date], "\n"),
			})
		}
	}

	// Folding can interleave entries from several prefixes; keep each
	// notebook ordered by date for deterministic output.
	for key := range notebooks {
		entries := notebooks[key]
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Date != entries[j].Date {
				return entries[i].Date < entries[j].Date
			}
			return entries[i].Summary < entries[j].Summary
		})
		notebooks[key] = entries
	}
	return notebooks
}
