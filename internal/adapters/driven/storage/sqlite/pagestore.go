// Package sqlite provides a SQLite-backed page store. Pages are kept in
// their native YAML form in a single table keyed by filename, which is all
// the aggregation pass needs.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
)

// Ensure PageStore implements the interface.
var _ driven.PageStore = (*PageStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS journal_pages (
	filename   TEXT PRIMARY KEY,
	notebook   TEXT NOT NULL,
	created_at TEXT NOT NULL,
	content    BLOB NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_journal_pages_notebook ON journal_pages(notebook);
`

// PageStore persists extracted journal pages in SQLite.
type PageStore struct {
	db   *sql.DB
	path string
}

// NewPageStore opens (or creates) the page database under dataDir.
func NewPageStore(dataDir string) (*PageStore, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "journal.db")

	// WAL mode keeps readers unblocked while a scan is writing pages.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &PageStore{db: db, path: dbPath}, nil
}

// Path returns the database file path.
func (s *PageStore) Path() string {
	return s.path
}

// Save stores or replaces a page.
func (s *PageStore) Save(ctx context.Context, page domain.JournalPage) error {
	content, err := page.MarshalYAMLBytes()
	if err != nil {
		return fmt.Errorf("serialise page %s: %w", page.Filename, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journal_pages (filename, notebook, created_at, content)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			notebook = excluded.notebook,
			created_at = excluded.created_at,
			content = excluded.content,
			updated_at = CURRENT_TIMESTAMP
	`, page.Filename, page.NotebookPrefix(), page.CreatedAt, content)
	if err != nil {
		return fmt.Errorf("saving page %s: %w", page.Filename, err)
	}
	return nil
}

// Get retrieves a page by filename.
func (s *PageStore) Get(ctx context.Context, filename string) (domain.JournalPage, error) {
	var content []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT content FROM journal_pages WHERE filename = ?", filename,
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.JournalPage{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.JournalPage{}, fmt.Errorf("loading page %s: %w", filename, err)
	}
	return domain.JournalPageFromYAML(content)
}

// List returns all pages ordered by filename.
func (s *PageStore) List(ctx context.Context) ([]domain.JournalPage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT content FROM journal_pages ORDER BY filename")
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	defer rows.Close()

	var pages []domain.JournalPage
	for rows.Next() {
		var content []byte
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scanning page row: %w", err)
		}
		page, err := domain.JournalPageFromYAML(content)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// Close closes the database connection.
func (s *PageStore) Close() error {
	return s.db.Close()
}
