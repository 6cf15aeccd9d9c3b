package config

const (
	defaultOutputDir         = "~/.local/share/scribe/output"
	defaultTempDir           = "~/.local/share/scribe/temp"
	defaultLogDir            = "~/.local/share/scribe/logs"
	defaultSummarizerBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultSummarizerModel   = "deepseek/deepseek-r1"
	defaultSummarizerReferer = "https://github.com/scribe"
	defaultSummarizerTitle   = "Scribe Summarizer"
	defaultSummarizerTimeout = 60
	defaultSummaryLanguage   = "en"
	defaultSummaryStyle      = "detailed"
	defaultSummaryMaxTokens  = 2000
	defaultWhisperBinary     = "whisper"
	defaultWhisperModel      = "base"
	defaultYtDlpBinary       = "yt-dlp"
	defaultPodcastLookupURL  = "https://itunes.apple.com/lookup"
	defaultPodcastTimeout    = 30
	defaultGitHubBranch      = "main"
	defaultGitHubRemoteDir   = "reports"
	defaultAudioFormat       = "mp3"
	defaultHanRatio          = 0.3
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			TempDir:   defaultTempDir,
			LogDir:    defaultLogDir,
		},
		Summarizer: Summarizer{
			BaseURL:        defaultSummarizerBaseURL,
			Model:          defaultSummarizerModel,
			Referer:        defaultSummarizerReferer,
			Title:          defaultSummarizerTitle,
			TimeoutSeconds: defaultSummarizerTimeout,
			Language:       defaultSummaryLanguage,
			Style:          defaultSummaryStyle,
			MaxTokens:      defaultSummaryMaxTokens,
		},
		Whisper: Whisper{
			Binary: defaultWhisperBinary,
			Model:  defaultWhisperModel,
		},
		YtDlp: YtDlp{
			Binary:            defaultYtDlpBinary,
			SubtitleLanguages: []string{"zh", "en"},
		},
		Podcast: Podcast{
			LookupURL:      defaultPodcastLookupURL,
			RequestTimeout: defaultPodcastTimeout,
		},
		GitHub: GitHub{
			Branch:    defaultGitHubBranch,
			RemoteDir: defaultGitHubRemoteDir,
		},
		Audio: Audio{
			Format: defaultAudioFormat,
		},
		Captions: Captions{
			HanRatio:        defaultHanRatio,
			DefaultLanguage: defaultSummaryLanguage,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}
