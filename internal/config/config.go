package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	TempDir   string `toml:"temp_dir"`
	LogDir    string `toml:"log_dir"`
}

// Summarizer contains connection settings for the summarization API.
type Summarizer struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Language       string `toml:"language"`
	Style          string `toml:"style"`
	MaxTokens      int    `toml:"max_tokens"`
}

// Whisper contains settings for the local transcription engine.
type Whisper struct {
	Binary   string `toml:"binary"`
	Model    string `toml:"model"`
	Language string `toml:"language"`
}

// YtDlp contains settings for the remote video fetcher.
type YtDlp struct {
	Binary            string   `toml:"binary"`
	Cookies           string   `toml:"cookies"`
	SubtitleLanguages []string `toml:"subtitle_languages"`
}

// Podcast contains settings for podcast directory lookup and feed fetching.
type Podcast struct {
	LookupURL      string `toml:"lookup_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// GitHub contains configuration for report publishing.
type GitHub struct {
	Enabled   bool   `toml:"enabled"`
	Token     string `toml:"token"`
	Repo      string `toml:"repo"`
	Branch    string `toml:"branch"`
	RemoteDir string `toml:"remote_dir"`
}

// Audio contains settings for downloaded audio handling.
type Audio struct {
	Format string `toml:"format"`
	Keep   bool   `toml:"keep"`
}

// Captions contains settings for caption text handling.
type Captions struct {
	// HanRatio is the fraction of letters that must fall in the Han range
	// for caption text to be classified as Chinese.
	HanRatio        float64 `toml:"han_ratio"`
	DefaultLanguage string  `toml:"default_language"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for scribe.
//
// Configuration sections by subsystem:
//   - Paths: output, temp, and log directories
//   - Summarizer: OpenRouter-compatible chat completion settings
//   - Whisper: local transcription binary and model
//   - YtDlp: remote video metadata/caption/audio fetcher
//   - Podcast: iTunes lookup endpoint and feed timeouts
//   - GitHub: report publishing target
//   - Audio: downloaded audio format and retention
//   - Captions: caption language detection thresholds
//   - Logging: log format and level
type Config struct {
	Paths      `toml:"paths"`
	Summarizer Summarizer `toml:"summarizer"`
	Whisper    Whisper    `toml:"whisper"`
	YtDlp      YtDlp      `toml:"ytdlp"`
	Podcast    Podcast    `toml:"podcast"`
	GitHub     GitHub     `toml:"github"`
	Audio      Audio      `toml:"audio"`
	Captions   Captions   `toml:"captions"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/scribe/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("scribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// TranscriptDir returns the directory holding transcript artifacts.
func (c *Config) TranscriptDir() string {
	return filepath.Join(c.OutputDir, "transcripts")
}

// SummaryDir returns the directory holding summary artifacts.
func (c *Config) SummaryDir() string {
	return filepath.Join(c.OutputDir, "summaries")
}

// ReportDir returns the directory holding timestamped report artifacts.
func (c *Config) ReportDir() string {
	return filepath.Join(c.OutputDir, "reports")
}

// EnsureDirectories creates the directories scribe writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.OutputDir,
		c.TempDir,
		c.LogDir,
		c.TranscriptDir(),
		c.SummaryDir(),
		c.ReportDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
