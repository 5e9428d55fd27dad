package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
)

// pageFixtureName carries a capture timestamp of 2022-10-30 21:07:59.068713.
const pageFixtureName = "Daily-01-P20221030210759068713clbdtpKcEWTi.png"

// --- Mock implementations for extractor testing ---

// extractMockVision implements driven.VisionService with a canned response.
type extractMockVision struct {
	response string
	err      error

	prompt   string
	mimeType string
	calls    int
}

func (m *extractMockVision) Generate(_ context.Context, prompt string, _ []byte, mimeType string) (string, error) {
	m.calls++
	m.prompt = prompt
	m.mimeType = mimeType
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *extractMockVision) ModelName() string { return "mock-vision" }
func (m *extractMockVision) Close() error      { return nil }

// extractMockPrompts implements driven.PromptStore.
type extractMockPrompts struct {
	bundledFor []string
}

func (m *extractMockPrompts) Load(name string) (string, error) {
	return "prompt:" + name, nil
}

func (m *extractMockPrompts) BundleFor(prefix string) (string, error) {
	m.bundledFor = append(m.bundledFor, prefix)
	return "bundle for " + prefix, nil
}

const fencedResponse = "```json\n" + `{
  "filename": "Daily-01-P20221030210759068713clbdtpKcEWTi.png",
  "created_at": "2022-10-30T21:07:59.068713",
  "date": "2022-10-30",
  "label": null,
  "records": [
    {"type": "task", "status": "complete", "content": "water the plants"},
    {"type": "note", "content": "quiet sunday"}
  ]
}` + "\n```"

func TestExtractParsesFencedModelResponse(t *testing.T) {
	vision := &extractMockVision{response: fencedResponse}
	prompts := &extractMockPrompts{}
	extractor := NewExtractor(vision, prompts)

	page, err := extractor.Extract(context.Background(), pageFixtureName, []byte("png bytes"))
	require.NoError(t, err)

	assert.Equal(t, pageFixtureName, page.Filename)
	assert.Equal(t, "2022-10-30T21:07:59.068713", page.CreatedAt)
	assert.Equal(t, "2022-10-30", page.Date)
	assert.Empty(t, page.Label)
	require.Len(t, page.Records, 2)
	assert.Equal(t, "water the plants", page.Records[0].Content)
	assert.Equal(t, "complete", page.Records[0].Status)

	assert.Equal(t, []string{"Daily"}, prompts.bundledFor)
	assert.Contains(t, vision.prompt, "bundle for Daily")
	assert.Contains(t, vision.prompt, "Created At: 2022-10-30T21:07:59.068713")
	assert.Equal(t, "image/png", vision.mimeType)
}

func TestExtractAcceptsBareJSON(t *testing.T) {
	vision := &extractMockVision{
		response: `{"filename": "x.png", "created_at": "2022-10-30T21:07:59"}`,
	}
	extractor := NewExtractor(vision, &extractMockPrompts{})

	page, err := extractor.Extract(context.Background(), pageFixtureName, nil)
	require.NoError(t, err)
	assert.Equal(t, "x.png", page.Filename)
}

func TestExtractRejectsNameWithoutTimestamp(t *testing.T) {
	vision := &extractMockVision{response: fencedResponse}
	extractor := NewExtractor(vision, &extractMockPrompts{})

	_, err := extractor.Extract(context.Background(), "no-timestamp-here.png", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, vision.calls)
}

func TestExtractRejectsNonJSONResponse(t *testing.T) {
	vision := &extractMockVision{response: "I could not read the page, sorry."}
	extractor := NewExtractor(vision, &extractMockPrompts{})

	_, err := extractor.Extract(context.Background(), pageFixtureName, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtractPropagatesModelFailure(t *testing.T) {
	modelErr := errors.New("model timed out")
	vision := &extractMockVision{err: modelErr}
	extractor := NewExtractor(vision, &extractMockPrompts{})

	_, err := extractor.Extract(context.Background(), pageFixtureName, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, modelErr)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTimestampFromName(t *testing.T) {
	ts, err := timestampFromName("Daily-01-P20221030210759068713clbdtpKcEWTi")
	require.NoError(t, err)
	assert.Equal(t, "2022-10-30T21:07:59.068713", ts.Format("2006-01-02T15:04:05.000000"))

	_, err = timestampFromName("Daily-01")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseModelResponseDropsNullFields(t *testing.T) {
	page, err := parseModelResponse(`{"filename": "x.png", "created_at": "2022-10-30", "date": null, "label": "null"}`)
	require.NoError(t, err)
	assert.Empty(t, page.Date)
	assert.Empty(t, page.Label)
}

func TestMimeTypeFor(t *testing.T) {
	assert.Equal(t, "image/jpeg", mimeTypeFor("page.JPG"))
	assert.Equal(t, "image/webp", mimeTypeFor("page.webp"))
	assert.Equal(t, "image/png", mimeTypeFor("page.png"))
	assert.Equal(t, "image/png", mimeTypeFor("page"))
}
