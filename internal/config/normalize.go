package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeYtDlp(); err != nil {
		return err
	}
	c.normalizeSummarizer()
	c.normalizeWhisper()
	c.normalizePodcast()
	c.normalizeGitHub()
	c.normalizeAudio()
	c.normalizeCaptions()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.OutputDir, err = expandPath(c.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.TempDir, err = expandPath(c.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if c.LogDir, err = expandPath(c.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSummarizer() {
	c.Summarizer.APIKey = strings.TrimSpace(c.Summarizer.APIKey)
	c.Summarizer.BaseURL = strings.TrimSpace(c.Summarizer.BaseURL)
	if c.Summarizer.BaseURL == "" {
		c.Summarizer.BaseURL = defaultSummarizerBaseURL
	}
	c.Summarizer.Model = strings.TrimSpace(c.Summarizer.Model)
	if c.Summarizer.Model == "" {
		c.Summarizer.Model = defaultSummarizerModel
	}
	c.Summarizer.Language = strings.ToLower(strings.TrimSpace(c.Summarizer.Language))
	if c.Summarizer.Language == "" {
		c.Summarizer.Language = defaultSummaryLanguage
	}
	c.Summarizer.Style = strings.ToLower(strings.TrimSpace(c.Summarizer.Style))
	if c.Summarizer.Style == "" {
		c.Summarizer.Style = defaultSummaryStyle
	}
	if c.Summarizer.TimeoutSeconds <= 0 {
		c.Summarizer.TimeoutSeconds = defaultSummarizerTimeout
	}
	if c.Summarizer.MaxTokens <= 0 {
		c.Summarizer.MaxTokens = defaultSummaryMaxTokens
	}
}

func (c *Config) normalizeWhisper() {
	c.Whisper.Binary = strings.TrimSpace(c.Whisper.Binary)
	if c.Whisper.Binary == "" {
		c.Whisper.Binary = defaultWhisperBinary
	}
	c.Whisper.Model = strings.TrimSpace(c.Whisper.Model)
	if c.Whisper.Model == "" {
		c.Whisper.Model = defaultWhisperModel
	}
	c.Whisper.Language = strings.ToLower(strings.TrimSpace(c.Whisper.Language))
	if c.Whisper.Language == "auto" {
		c.Whisper.Language = ""
	}
}

func (c *Config) normalizeYtDlp() error {
	c.YtDlp.Binary = strings.TrimSpace(c.YtDlp.Binary)
	if c.YtDlp.Binary == "" {
		c.YtDlp.Binary = defaultYtDlpBinary
	}
	if c.YtDlp.Cookies != "" {
		expanded, err := expandPath(c.YtDlp.Cookies)
		if err != nil {
			return fmt.Errorf("ytdlp.cookies: %w", err)
		}
		c.YtDlp.Cookies = expanded
	}
	if len(c.YtDlp.SubtitleLanguages) == 0 {
		c.YtDlp.SubtitleLanguages = []string{"zh", "en"}
	}
	return nil
}

func (c *Config) normalizePodcast() {
	c.Podcast.LookupURL = strings.TrimSpace(c.Podcast.LookupURL)
	if c.Podcast.LookupURL == "" {
		c.Podcast.LookupURL = defaultPodcastLookupURL
	}
	if c.Podcast.RequestTimeout <= 0 {
		c.Podcast.RequestTimeout = defaultPodcastTimeout
	}
}

func (c *Config) normalizeGitHub() {
	c.GitHub.Token = strings.TrimSpace(c.GitHub.Token)
	c.GitHub.Repo = strings.TrimSpace(c.GitHub.Repo)
	c.GitHub.Branch = strings.TrimSpace(c.GitHub.Branch)
	if c.GitHub.Branch == "" {
		c.GitHub.Branch = defaultGitHubBranch
	}
	c.GitHub.RemoteDir = strings.Trim(strings.TrimSpace(c.GitHub.RemoteDir), "/")
	if c.GitHub.RemoteDir == "" {
		c.GitHub.RemoteDir = defaultGitHubRemoteDir
	}
}

func (c *Config) normalizeAudio() {
	c.Audio.Format = strings.ToLower(strings.TrimSpace(c.Audio.Format))
	if c.Audio.Format == "" {
		c.Audio.Format = defaultAudioFormat
	}
}

func (c *Config) normalizeCaptions() {
	if c.Captions.HanRatio <= 0 {
		c.Captions.HanRatio = defaultHanRatio
	}
	c.Captions.DefaultLanguage = strings.ToLower(strings.TrimSpace(c.Captions.DefaultLanguage))
	if c.Captions.DefaultLanguage == "" {
		c.Captions.DefaultLanguage = c.Summarizer.Language
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
