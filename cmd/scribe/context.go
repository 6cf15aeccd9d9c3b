package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"scribe/internal/config"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/pipeline"
	"scribe/internal/services/github"
	"scribe/internal/services/itunes"
	"scribe/internal/services/summarize"
	"scribe/internal/services/whisper"
	"scribe/internal/services/ytdlp"
)

type commandContext struct {
	configFlag    string
	cookiesFlag   string
	keepAudioFlag bool
	styleFlag     string
	publishFlag   bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withStore opens the run ledger for the duration of fn.
func (c *commandContext) withStore(fn func(context.Context, *ledger.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := ledger.Open(cfg)
	if err != nil {
		if errors.Is(err, ledger.ErrLocked) {
			return fmt.Errorf("run ledger is in use by another scribe process: %w", err)
		}
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()
	return fn(context.Background(), store)
}

// withPipeline wires the full processing pipeline and hands it to fn. The
// ledger lock and log file are released when fn returns.
func (c *commandContext) withPipeline(ctx context.Context, fn func(context.Context, *pipeline.Pipeline) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	logger = logger.With(logging.String(logging.FieldSession, uuid.NewString()))

	store, err := ledger.Open(cfg)
	if err != nil {
		if errors.Is(err, ledger.ErrLocked) {
			return fmt.Errorf("run ledger is in use by another scribe process: %w", err)
		}
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()

	failures := ledger.NewFailureLog(cfg.LogDir, logger)

	cookies := strings.TrimSpace(c.cookiesFlag)
	if cookies == "" {
		cookies = cfg.YtDlp.Cookies
	}
	videos := ytdlp.NewService(ytdlp.Config{
		Binary:            cfg.YtDlp.Binary,
		Cookies:           cookies,
		AudioFormat:       cfg.Audio.Format,
		SubtitleLanguages: cfg.YtDlp.SubtitleLanguages,
	})
	podcasts := itunes.NewService(cfg.Podcast.LookupURL, time.Duration(cfg.Podcast.RequestTimeout)*time.Second)
	transcriber := whisper.NewService(whisper.Config{
		Binary:   cfg.Whisper.Binary,
		Model:    cfg.Whisper.Model,
		Language: cfg.Whisper.Language,
	})
	summarizer := summarize.NewClient(summarize.Config{
		APIKey:         cfg.Summarizer.APIKey,
		BaseURL:        cfg.Summarizer.BaseURL,
		Model:          cfg.Summarizer.Model,
		Referer:        cfg.Summarizer.Referer,
		Title:          cfg.Summarizer.Title,
		TimeoutSeconds: cfg.Summarizer.TimeoutSeconds,
		MaxTokens:      cfg.Summarizer.MaxTokens,
	})
	publisher := github.NewPublisher(publisherConfig(cfg))

	opts := pipeline.Options{
		Style:     strings.TrimSpace(c.styleFlag),
		KeepAudio: c.keepAudioFlag || cfg.Audio.Keep,
		Publish:   c.publishFlag || cfg.GitHub.Enabled,
	}

	pipe := pipeline.New(cfg, store, failures, logger, pipeline.Deps{
		Videos:      videos,
		Podcasts:    podcasts,
		Transcriber: transcriber,
		Summarizer:  summarizer,
		Publisher:   publisher,
	}, opts)

	return fn(ctx, pipe)
}

// publisherConfig leaves the publisher unconfigured (and therefore disabled)
// unless github publishing is switched on.
func publisherConfig(cfg *config.Config) github.Config {
	if !cfg.GitHub.Enabled {
		return github.Config{}
	}
	return github.Config{
		Token:     cfg.GitHub.Token,
		Repo:      cfg.GitHub.Repo,
		Branch:    cfg.GitHub.Branch,
		RemoteDir: cfg.GitHub.RemoteDir,
	}
}
