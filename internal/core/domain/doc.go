// Package domain defines the core business entities for the journal
// assistant.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - JournalPage: One transcribed notebook page
//   - JournalEntry: One dated, aggregated entry within a notebook
//   - MediaNode / LeafItem: The browsable media tree and its content items
//   - IndexableDocument: A journal entry in its searchable form
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
package domain
