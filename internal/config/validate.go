package config

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSummarizer(); err != nil {
		return err
	}
	if err := c.validateGitHub(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validatePodcast(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSummarizer() error {
	if c.Summarizer.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/scribe/config.toml"
		}
		return fmt.Errorf("summarizer.api_key is required. Edit %s (create with 'scribe config init')", defaultPath)
	}
	if c.Summarizer.Style != "brief" && c.Summarizer.Style != "detailed" {
		return fmt.Errorf("summarizer.style must be \"brief\" or \"detailed\", got %q", c.Summarizer.Style)
	}
	if _, err := language.Parse(c.Summarizer.Language); err != nil {
		return fmt.Errorf("summarizer.language: unrecognized language tag %q: %w", c.Summarizer.Language, err)
	}
	return nil
}

func (c *Config) validateGitHub() error {
	if !c.GitHub.Enabled {
		return nil
	}
	if c.GitHub.Token == "" {
		return errors.New("github.token must be set when github.enabled is true")
	}
	if c.GitHub.Repo == "" {
		return errors.New("github.repo must be set when github.enabled is true (format: owner/repo)")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if c.Captions.HanRatio <= 0 || c.Captions.HanRatio > 1 {
		return errors.New("captions.han_ratio must be between 0 and 1")
	}
	if _, err := language.Parse(c.Captions.DefaultLanguage); err != nil {
		return fmt.Errorf("captions.default_language: unrecognized language tag %q: %w", c.Captions.DefaultLanguage, err)
	}
	return nil
}

func (c *Config) validatePodcast() error {
	if c.Podcast.RequestTimeout <= 0 {
		return errors.New("podcast.request_timeout must be positive (seconds)")
	}
	return nil
}
