package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// sharedPrompts are included in every extraction bundle, in this order.
var sharedPrompts = []string{
	driven.PromptDefault,
	driven.PromptRapidLogLegend,
	driven.PromptProfile,
}

// prefixPrompt maps a notebook prefix to its page-type specific prompt.
var prefixPrompt = map[string]string{
	"Daily":   driven.PromptDaily,
	"Weekly":  driven.PromptWeekly,
	"Monthly": driven.PromptMonthly,
}

// PromptStore loads vision-model prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor. This makes testing easier and avoids unexpected I/O.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptDefault: `You are reading a photographed page from a handwritten bullet journal.
Transcribe its content faithfully into a JSON object with these fields:

- filename: the page filename you were given
- created_at: the creation timestamp you were given
- date: the date written on the page, as YYYY-MM-DD if present
- label: the page heading, if any
- records: a list of entries, each an object with:
  - critical: true when the entry is starred or otherwise marked important
  - type: one of "task", "event", "note"
  - status: for tasks, one of "new", "complete", "migrated", "scheduled", "cancelled"
  - content: the entry text
  - date: the entry's own date, only when it differs from the page date

Preserve the author's wording. Do not invent entries that are not on the page.
Use null for anything that cannot be read.`,

	driven.PromptRapidLogLegend: `The journal uses rapid logging notation:

- A dot "." marks a task
- An "x" over the dot marks a completed task
- A ">" marks a task migrated to another page
- A "<" marks a task scheduled in the future log
- A struck-through entry is cancelled
- An open circle "o" marks an event
- A dash "-" marks a note
- An asterisk "*" in the margin marks the entry as critical`,

	driven.PromptProfile: `The author is an adult keeping a personal bullet journal covering work,
family and hobbies. Names of people and projects recur across pages; keep
their spelling consistent with what is written.`,

	driven.PromptDaily: `This is a daily log page. The heading is usually a single date. Entries
below it belong to that date unless a new date heading appears partway
down the page, in which case following entries belong to the new date.`,

	driven.PromptWeekly: `This is a weekly log page. The heading names a week (for example a date
range). The page is divided into one section per weekday; record each
section's entries under its own date.`,

	driven.PromptMonthly: `This is a monthly log page. The left column lists the days of the month
with brief entries; the right side may hold a task list for the month.
Record day entries under their dates and month-level tasks under the
month heading's date.`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.journal-assistant/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, DefaultConfigDirName, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt text for the given name.
// On first call, initialises the prompt directory and creates default files.
// Returns cached value if available, otherwise loads from file.
// Falls back to embedded default if file doesn't exist.
func (s *PromptStore) Load(name string) (string, error) {
	// Ensure directory and defaults exist (lazy init)
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		// Fall back to embedded defaults if init failed
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	// Check cache first (read lock)
	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// Load from file (no lock held during I/O)
	prompt, err := s.loadFromFile(name)
	if err != nil {
		// Fall back to embedded default
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	// Cache the result (write lock)
	// Use double-check pattern to avoid overwriting concurrent loads
	s.mu.Lock()
	if _, ok := s.cache[name]; !ok {
		s.cache[name] = prompt
	} else {
		// Another goroutine loaded it first, use their value
		prompt = s.cache[name]
	}
	s.mu.Unlock()

	return prompt, nil
}

// BundleFor composes the extraction prompt for a notebook prefix: the
// shared prompts, plus the page-type prompt when the prefix has one.
func (s *PromptStore) BundleFor(notebookPrefix string) (string, error) {
	names := make([]string, 0, len(sharedPrompts)+1)
	names = append(names, sharedPrompts...)
	if specific, ok := prefixPrompt[notebookPrefix]; ok {
		names = append(names, specific)
	}

	parts := make([]string, 0, len(names))
	for _, name := range names {
		prompt, err := s.Load(name)
		if err != nil {
			return "", err
		}
		parts = append(parts, prompt)
	}
	return strings.Join(parts, "\n\n"), nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
// Called once via sync.Once on first Load().
func (s *PromptStore) initialise() {
	// Create directory
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	// Create default prompt files (only if they don't exist)
	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	// Create README
	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Journal Assistant Prompts

This directory contains customisable prompts used when transcribing
journal pages with the vision model.

## Files

- ` + "`default.txt`" + ` - Core transcription instructions and output schema
- ` + "`rapid_log_legend.txt`" + ` - The rapid logging notation legend
- ` + "`profile.txt`" + ` - Background about the journal's author
- ` + "`daily.txt`" + ` / ` + "`weekly.txt`" + ` / ` + "`monthly.txt`" + ` - Page-type specific layout hints

## Customisation

Edit any file to customise transcription behaviour. Changes take effect
on the next scan. Edit profile.txt in particular: recurring names and
projects help the model read handwriting consistently.
`
	return os.WriteFile(path, []byte(content), 0600)
}
