package driven

// Well-known prompt names. Each maps to one prompt file that users can edit.
const (
	PromptDefault        = "default"
	PromptRapidLogLegend = "rapid_log_legend"
	PromptProfile        = "profile"
	PromptDaily          = "daily"
	PromptWeekly         = "weekly"
	PromptMonthly        = "monthly"
)

// PromptStore provides the vision-model prompt bundles used during page
// extraction. Implementations may load prompts from user-editable files with
// embedded defaults as fallback.
type PromptStore interface {
	// Load returns the prompt text for the given name.
	Load(name string) (string, error)

	// BundleFor returns the composed prompt for a notebook prefix:
	// Daily/Weekly/Monthly pages get the shared prompts plus their
	// specific one, everything else gets the shared prompts only.
	BundleFor(notebookPrefix string) (string, error)
}
