package domain

import "time"

// MediaNode is one node of a browsable media tree, produced fresh on every
// scan by browsing the external media source. Nodes are never persisted.
type MediaNode struct {
	// Identifier is the opaque hierarchical path of the node.
	Identifier string

	// Title is the human-readable name.
	Title string

	// CanExpand reports whether the node is a folder that can be browsed
	// further. Nodes that cannot expand are downloadable leaf items.
	CanExpand bool

	// Children are the direct children, populated by Browse.
	Children []MediaNode
}

// LeafItem is a downloaded leaf media item together with its content
// fingerprint.
type LeafItem struct {
	// Identifier is the media node identifier the content came from.
	Identifier string

	// Content is the raw downloaded bytes.
	Content []byte

	// ContentHash is the hex-encoded SHA-256 digest of Content, used as a
	// cheap change-detection fingerprint across scans.
	ContentHash string
}

// ProcessOutcome is the result of handling one changed media item.
// It is an explicit value rather than an error type because it is the
// load-bearing retry contract of the change processor.
type ProcessOutcome int

const (
	// OutcomeProcessed indicates the item was handled successfully. Its
	// content hash is recorded so it is skipped until the content changes.
	OutcomeProcessed ProcessOutcome = iota

	// OutcomeSkippedInvalid indicates the item is permanently malformed
	// (bad filename, unparseable model response). The hash is recorded
	// anyway so the item is not retried forever.
	OutcomeSkippedInvalid

	// OutcomeRetry indicates a transient failure (network, rate limit,
	// model outage). The stored hash is left stale so the item is picked
	// up again on the next scan.
	OutcomeRetry
)

// String returns the outcome name for logging.
func (o ProcessOutcome) String() string {
	switch o {
	case OutcomeProcessed:
		return "processed"
	case OutcomeSkippedInvalid:
		return "skipped-invalid"
	case OutcomeRetry:
		return "retry"
	default:
		return "unknown"
	}
}

// ScanStats are the counters for a single scan pass over the media tree.
// They reset at scan start and persist alongside the content hashes so
// restarts preserve the last scan's telemetry.
type ScanStats struct {
	// ScanID uniquely identifies the scan run.
	ScanID string `json:"scan_id"`

	// ScannedFolders is the number of folders browsed.
	ScannedFolders int `json:"scanned_folders"`

	// ScannedFiles is the number of leaf items downloaded and hashed.
	ScannedFiles int `json:"scanned_files"`

	// ProcessedFiles is the number of changed items handled (including
	// permanently invalid items that were skipped and will not retry).
	ProcessedFiles int `json:"processed_files"`

	// SkippedItems is the number of items whose content was unchanged.
	SkippedItems int `json:"skipped_items"`

	// Errors counts browse, resolve, download and retryable handler
	// failures. Errored items are retried on the next scan.
	Errors int `json:"errors"`

	// LastScanStart is when the scan began.
	LastScanStart time.Time `json:"last_scan_start"`

	// LastScanEnd is when the scan finished.
	LastScanEnd time.Time `json:"last_scan_end"`
}
