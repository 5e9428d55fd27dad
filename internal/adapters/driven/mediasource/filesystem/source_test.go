package filesystem

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
)

func newTestSource(t *testing.T) (*Source, string) {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "notebook"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Daily-01.png"), []byte("page one"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notebook", "Daily-02.png"), []byte("page two"), 0o600))

	source, err := New(dir)
	require.NoError(t, err)
	return source, dir
}

func TestNewRejectsMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestNewRejectsFileRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := New(path)
	assert.Error(t, err)
}

func TestBrowseListsSortedVisibleEntries(t *testing.T) {
	source, _ := newTestSource(t)

	node, err := source.Browse(context.Background(), source.RootIdentifier())
	require.NoError(t, err)
	assert.True(t, node.CanExpand)
	require.Len(t, node.Children, 2)

	// Dotfiles are skipped; entries come back in name order.
	assert.Equal(t, "Daily-01.png", node.Children[0].Title)
	assert.False(t, node.Children[0].CanExpand)
	assert.Equal(t, "notebook", node.Children[1].Title)
	assert.True(t, node.Children[1].CanExpand)
	assert.Equal(t, URIPrefix+"notebook", node.Children[1].Identifier)
}

func TestBrowseDescendsIntoSubdirectories(t *testing.T) {
	source, _ := newTestSource(t)

	node, err := source.Browse(context.Background(), URIPrefix+"notebook")
	require.NoError(t, err)
	require.Len(t, node.Children, 1)
	assert.Equal(t, URIPrefix+"notebook/Daily-02.png", node.Children[0].Identifier)
}

func TestResolveReturnsFileURL(t *testing.T) {
	source, dir := newTestSource(t)

	raw, err := source.Resolve(context.Background(), URIPrefix+"Daily-01.png")
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "file", parsed.Scheme)

	data, err := os.ReadFile(parsed.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("page one"), data)
	assert.Contains(t, parsed.Path, filepath.ToSlash(dir))
}

func TestResolveRejectsDirectories(t *testing.T) {
	source, _ := newTestSource(t)

	_, err := source.Resolve(context.Background(), URIPrefix+"notebook")
	assert.Error(t, err)
}

func TestIdentifiersCannotEscapeRoot(t *testing.T) {
	source, _ := newTestSource(t)
	ctx := context.Background()

	_, err := source.Browse(ctx, URIPrefix+"../outside")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = source.Resolve(ctx, "media-source://other_source/Daily-01.png")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWatchDebouncesEventBursts(t *testing.T) {
	source, dir := newTestSource(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := source.Watch(ctx)
	require.NoError(t, err)

	// A burst of writes produces a single trigger.
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, "Daily-01.png"), []byte("edit"), 0o600))
	}

	select {
	case <-events:
	case <-time.After(watchDebounce + 5*time.Second):
		t.Fatal("watcher never fired")
	}

	select {
	case <-events:
		t.Fatal("burst produced more than one trigger")
	case <-time.After(200 * time.Millisecond):
	}
}
