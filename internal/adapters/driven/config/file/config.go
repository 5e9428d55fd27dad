package file

import (
	"encoding"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultConfigDirName  = ".journal-assistant"
	DefaultConfigFileName = "config.toml"

	DefaultNotebook     = "Journal"
	DefaultScanInterval = 6 * time.Hour
	DefaultAIProvider   = "gemini"
)

// Config is the typed application configuration.
type Config struct {
	// Media configures where handwritten pages come from.
	Media MediaConfig `toml:"media"`

	// Journal configures notebook handling.
	Journal JournalConfig `toml:"journal"`

	// AI configures the vision and embedding providers.
	AI AIConfig `toml:"ai"`

	// DataDir is where the page database, scan state and index snapshot
	// live. Defaults to the config directory.
	DataDir string `toml:"data_dir"`

	// PromptsDir holds user prompt overrides. Defaults to
	// <config dir>/prompts.
	PromptsDir string `toml:"prompts_dir"`
}

// Duration is a time.Duration that reads and writes as a TOML string in
// time.ParseDuration syntax, e.g. "30m" or "6h".
type Duration struct {
	time.Duration
}

var _ encoding.TextUnmarshaler = (*Duration)(nil)
var _ encoding.TextMarshaler = Duration{}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// MediaConfig configures the media source.
type MediaConfig struct {
	// Root is the directory holding exported notebook pages (required).
	Root string `toml:"root"`

	// ScanInterval is how often the background scan runs (default: 6h).
	ScanInterval Duration `toml:"scan_interval"`
}

// JournalConfig configures notebook aggregation.
type JournalConfig struct {
	// Notebooks is the allow-list of notebook prefixes. Pages from any
	// other prefix are folded into the default notebook.
	Notebooks []string `toml:"notebooks"`

	// DefaultNotebook receives folded pages (default: Journal).
	DefaultNotebook string `toml:"default_notebook"`
}

// AIConfig configures the model providers.
type AIConfig struct {
	// Provider selects the stack: "gemini" or "ollama" (default: gemini).
	// Ollama only provides embeddings; vision stays on Gemini.
	Provider string `toml:"provider"`

	// APIKey is the Gemini API key. The GEMINI_API_KEY environment
	// variable takes precedence.
	APIKey string `toml:"api_key"`

	// VisionModel overrides the default vision model.
	VisionModel string `toml:"vision_model"`

	// EmbedModel overrides the default embedding model.
	EmbedModel string `toml:"embed_model"`

	// OllamaURL is the Ollama base URL when provider is "ollama".
	OllamaURL string `toml:"ollama_url"`
}

// DefaultPath returns the default config file path, ~/.journal-assistant/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDirName, DefaultConfigFileName), nil
}

// Load reads the config file at path, applies defaults and validates it.
// A missing file yields a config with defaults only, so first-run commands
// that don't touch the media source still work.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyDefaults(filepath.Dir(path))
	return cfg, nil
}

// applyDefaults fills in unset fields.
func (c *Config) applyDefaults(configDir string) {
	if c.Journal.DefaultNotebook == "" {
		c.Journal.DefaultNotebook = DefaultNotebook
	}
	if c.Media.ScanInterval.Duration == 0 {
		c.Media.ScanInterval = Duration{DefaultScanInterval}
	}
	if c.AI.Provider == "" {
		c.AI.Provider = DefaultAIProvider
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.AI.APIKey = key
	}
	if c.DataDir == "" {
		c.DataDir = configDir
	}
	if c.PromptsDir == "" {
		c.PromptsDir = filepath.Join(configDir, "prompts")
	}
}

// Validate checks the fields a scan needs. Commands that only read the
// index call Load without Validate.
func (c *Config) Validate() error {
	if c.Media.Root == "" {
		return fmt.Errorf("media.root is not configured")
	}
	info, err := os.Stat(c.Media.Root)
	if err != nil {
		return fmt.Errorf("media.root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("media.root %s is not a directory", c.Media.Root)
	}

	switch c.AI.Provider {
	case "gemini", "ollama":
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	if c.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is not configured (or set GEMINI_API_KEY)")
	}
	return nil
}

// Save writes the config back to path with restricted permissions.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("serialising config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
