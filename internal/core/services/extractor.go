package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
	"github.com/custodia-labs/journal-assistant/internal/logger"
)

// timestampRe matches the page capture timestamp encoded in filenames like
// "Daily-01-P20221030210759068713clbdtpKcEWTi.png": a "P" followed by
// exactly 20 digits (14 for the second, 6 for the microsecond).
var timestampRe = regexp.MustCompile(`-\d+-P(\d{20})`)

// jsonFenceRe strips an optional markdown code fence around the model
// response.
var jsonFenceRe = regexp.MustCompile("(?s)```json\n(.*?)\n```")

// filePromptTemplate is the trailing context appended to every extraction
// prompt. The model is asked for bare JSON because the answer is parsed
// programmatically.
const filePromptTemplate = `Please answer in json with no other formatting since the answer will be parsed programmatically.

Filename: %s
Created At: %s
Content:
`

// Extractor turns raw page images into structured journal pages using a
// multimodal vision model.
type Extractor struct {
	vision  driven.VisionService
	prompts driven.PromptStore
}

// NewExtractor creates a page extractor.
func NewExtractor(vision driven.VisionService, prompts driven.PromptStore) *Extractor {
	return &Extractor{vision: vision, prompts: prompts}
}

// Extract processes one journal page image. The item name must encode a
// parseable creation timestamp and the model response must decode into a
// valid page; both failures wrap domain.ErrInvalidInput and are permanent
// for the item. Model transport failures are returned as-is and should be
// treated as retryable.
func (e *Extractor) Extract(ctx context.Context, name string, image []byte) (domain.JournalPage, error) {
	logger.Debug("Extracting content from page %s", name)

	stem := pageStem(name)
	createdAt, err := timestampFromName(stem)
	if err != nil {
		return domain.JournalPage{}, err
	}

	prefix := notebookPrefix(stem)
	bundle, err := e.prompts.BundleFor(prefix)
	if err != nil {
		return domain.JournalPage{}, fmt.Errorf("load prompts for %s: %w", prefix, err)
	}

	prompt := bundle + "\n\n" + fmt.Sprintf(filePromptTemplate,
		stem+".png", createdAt.Format("2006-01-02T15:04:05.000000"))

	response, err := e.vision.Generate(ctx, prompt, image, mimeTypeFor(name))
	if err != nil {
		return domain.JournalPage{}, fmt.Errorf("vision model: %w", err)
	}

	page, err := parseModelResponse(response)
	if err != nil {
		return domain.JournalPage{}, err
	}
	return page, nil
}

// timestampFromName extracts the capture timestamp encoded in the filename.
// A name without the timestamp pattern is a validation failure, not a
// fallback to the current time: a wrongly named file should be fixed at the
// source, not indexed under an arbitrary date.
func timestampFromName(stem string) (time.Time, error) {
	match := timestampRe.FindStringSubmatch(stem)
	if match == nil {
		return time.Time{}, fmt.Errorf("%w: no timestamp in page name %q", domain.ErrInvalidInput, stem)
	}
	digits := match[1]

	seconds, err := time.Parse("20060102150405", digits[:14])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp in page name %q: %w", domain.ErrInvalidInput, stem, err)
	}
	micros, err := strconv.Atoi(digits[14:])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp in page name %q: %w", domain.ErrInvalidInput, stem, err)
	}
	return seconds.Add(time.Duration(micros) * time.Microsecond), nil
}

// parseModelResponse decodes the model's textual answer into a journal page:
// strip an optional fenced code block, parse as JSON, drop null fields,
// re-serialise as YAML (the page's native format) and decode. A response
// missing required fields is a parsing failure, not a silent partial page.
func parseModelResponse(response string) (domain.JournalPage, error) {
	text := response
	if match := jsonFenceRe.FindStringSubmatch(response); match != nil {
		text = match[1]
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return domain.JournalPage{}, fmt.Errorf("%w: model response is not json: %w", domain.ErrInvalidInput, err)
	}
	for key, value := range fields {
		if value == nil || value == "null" {
			delete(fields, key)
		}
	}

	native, err := yaml.Marshal(fields)
	if err != nil {
		return domain.JournalPage{}, fmt.Errorf("re-serialise model response: %w", err)
	}
	return domain.JournalPageFromYAML(native)
}

// pageStem strips any directory and extension from a media item name.
func pageStem(name string) string {
	base := path.Base(name)
	return strings.TrimSuffix(base, path.Ext(base))
}

// notebookPrefix is the notebook name segment before the first "-".
func notebookPrefix(stem string) string {
	if idx := strings.IndexByte(stem, '-'); idx >= 0 {
		return stem[:idx]
	}
	return stem
}

// mimeTypeFor guesses the image MIME type from the item name.
func mimeTypeFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
