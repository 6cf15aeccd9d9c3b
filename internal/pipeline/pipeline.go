package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scribe/internal/captions"
	"scribe/internal/classify"
	"scribe/internal/config"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/media"
	"scribe/internal/services"
	"scribe/internal/services/itunes"
	"scribe/internal/textutil"
)

// Deps bundles the collaborating services the pipeline drives.
type Deps struct {
	Videos      VideoFetcher
	Podcasts    PodcastFetcher
	Transcriber Transcriber
	Summarizer  Summarizer
	Publisher   Publisher
}

// Options carries the per-invocation processing switches.
type Options struct {
	Style     string
	KeepAudio bool
	Publish   bool
}

// ProcessingResult describes the artifacts produced for one run.
type ProcessingResult struct {
	RunID          int64
	Identifier     string
	Title          string
	TranscriptPath string
	SummaryPath    string
	ReportPath     string
	PublishURL     string
}

// Pipeline processes media sources into transcripts, summaries, and reports
// while tracking every attempt in the run ledger.
type Pipeline struct {
	cfg      *config.Config
	store    *ledger.Store
	failures *ledger.FailureLog
	logger   *slog.Logger
	opts     Options

	videos      VideoFetcher
	podcasts    PodcastFetcher
	transcriber Transcriber
	summarizer  Summarizer
	publisher   Publisher
}

// New assembles a pipeline. A zero Options.Style falls back to the
// configured summary style.
func New(cfg *config.Config, store *ledger.Store, failures *ledger.FailureLog, logger *slog.Logger, deps Deps, opts Options) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Style == "" {
		opts.Style = cfg.Summarizer.Style
	}
	return &Pipeline{
		cfg:         cfg,
		store:       store,
		failures:    failures,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
		opts:        opts,
		videos:      deps.Videos,
		podcasts:    deps.Podcasts,
		transcriber: deps.Transcriber,
		summarizer:  deps.Summarizer,
		publisher:   deps.Publisher,
	}
}

// ProcessVideo runs a single remote video end to end.
func (p *Pipeline) ProcessVideo(ctx context.Context, url string) (ProcessingResult, error) {
	identifier, ok := classify.VideoID(url)
	if !ok {
		return p.track(ctx, ledger.KindVideo, url, url, func(ctx context.Context) (ProcessingResult, error) {
			return ProcessingResult{}, services.Wrap(services.ErrValidation, "acquire", "video", "cannot extract video id from url", nil)
		})
	}
	return p.track(ctx, ledger.KindVideo, url, identifier, func(ctx context.Context) (ProcessingResult, error) {
		return p.processVideo(ctx, url, identifier)
	})
}

func (p *Pipeline) processVideo(ctx context.Context, url, identifier string) (ProcessingResult, error) {
	ctx = services.WithStage(ctx, "acquire")
	meta, err := p.videos.VideoInfo(ctx, url)
	if err != nil {
		return ProcessingResult{}, err
	}
	result := ProcessingResult{Title: meta.Title}
	log := p.runLogger(ctx, identifier)
	log.Info("video metadata fetched",
		logging.String("title", meta.Title),
		logging.Bool("has_subtitles", meta.HasSubtitles))

	var text string
	captionsPath := ""
	if meta.HasSubtitles {
		captionsPath, err = p.videos.DownloadSubtitles(ctx, url, identifier, p.cfg.TempDir)
		if err != nil {
			return result, err
		}
	}
	duration := meta.Duration
	if captionsPath != "" {
		result.TranscriptPath, err = p.importCaptions(captionsPath, identifier)
		if err != nil {
			return result, err
		}
		text, err = captions.ExtractTextFile(result.TranscriptPath)
		if err != nil {
			return result, err
		}
		log.Info("using published captions", logging.String("transcript", result.TranscriptPath))
	} else {
		audioPath, err := p.videos.DownloadAudio(ctx, url, identifier, p.cfg.TempDir)
		if err != nil {
			return result, err
		}
		defer p.cleanupAudio(audioPath)

		transcription, err := p.transcriber.Transcribe(ctx, audioPath, p.cfg.TempDir)
		if err != nil {
			return result, err
		}
		result.TranscriptPath, err = p.writeTranscript(identifier, transcription.Segments)
		if err != nil {
			return result, err
		}
		text = transcription.Text
		if duration == 0 {
			duration = segmentsDuration(transcription.Segments)
		}
		log.Info("audio transcribed", logging.String("transcript", result.TranscriptPath))
	}

	return p.finish(ctx, result, summaryInput{
		identifier: identifier,
		title:      meta.Title,
		duration:   duration,
		sourceRef:  url,
		text:       text,
	})
}

// ProcessPodcastEpisode runs one feed episode end to end. Episode indexes
// follow feed order, so index 0 is the newest entry.
func (p *Pipeline) ProcessPodcastEpisode(ctx context.Context, url string, index int) (ProcessingResult, error) {
	podcastID, ok := classify.PodcastID(url)
	if !ok {
		return p.track(ctx, ledger.KindPodcast, url, url, func(ctx context.Context) (ProcessingResult, error) {
			return ProcessingResult{}, services.Wrap(services.ErrValidation, "acquire", "podcast", "cannot extract podcast id from url", nil)
		})
	}
	identifier := classify.EpisodeIdentifier(podcastID, index)
	return p.track(ctx, ledger.KindPodcast, url, identifier, func(ctx context.Context) (ProcessingResult, error) {
		show, err := p.podcasts.Resolve(ctx, url)
		if err != nil {
			return ProcessingResult{}, err
		}
		episode, err := itunes.EpisodeAt(show, index)
		if err != nil {
			return ProcessingResult{}, err
		}
		return p.processEpisode(ctx, url, identifier, episode)
	})
}

func (p *Pipeline) processEpisode(ctx context.Context, url, identifier string, episode media.Episode) (ProcessingResult, error) {
	ctx = services.WithStage(ctx, "acquire")
	result := ProcessingResult{Title: episode.Title}
	log := p.runLogger(ctx, identifier)
	log.Info("processing episode",
		logging.String("title", episode.Title),
		logging.Int("index", episode.Index))

	audioPath, err := p.podcasts.DownloadAudio(ctx, episode.AudioURL, identifier, p.cfg.TempDir)
	if err != nil {
		return result, err
	}
	defer p.cleanupAudio(audioPath)

	transcription, err := p.transcriber.Transcribe(ctx, audioPath, p.cfg.TempDir)
	if err != nil {
		return result, err
	}
	result.TranscriptPath, err = p.writeTranscript(identifier, transcription.Segments)
	if err != nil {
		return result, err
	}

	duration := episode.Duration
	if duration == 0 {
		duration = segmentsDuration(transcription.Segments)
	}
	return p.finish(ctx, result, summaryInput{
		identifier: identifier,
		title:      episode.Title,
		duration:   duration,
		sourceRef:  url,
		text:       transcription.Text,
	})
}

// ProcessLocalFile runs a single on-disk audio file end to end. The file is
// never deleted.
func (p *Pipeline) ProcessLocalFile(ctx context.Context, path string) (ProcessingResult, error) {
	identifier := classify.FileIdentifier(path)
	return p.track(ctx, ledger.KindLocal, path, identifier, func(ctx context.Context) (ProcessingResult, error) {
		ctx = services.WithStage(ctx, "acquire")
		info, err := os.Stat(path)
		if err != nil {
			return ProcessingResult{}, services.Wrap(services.ErrValidation, "acquire", "local", "audio file not found", err)
		}
		if info.IsDir() {
			return ProcessingResult{}, services.Wrap(services.ErrValidation, "acquire", "local", "path is a directory, not an audio file", nil)
		}

		result := ProcessingResult{Title: identifier}
		transcription, err := p.transcriber.Transcribe(ctx, path, p.cfg.TempDir)
		if err != nil {
			return result, err
		}
		result.TranscriptPath, err = p.writeTranscript(identifier, transcription.Segments)
		if err != nil {
			return result, err
		}
		return p.finish(ctx, result, summaryInput{
			identifier: identifier,
			title:      identifier,
			duration:   segmentsDuration(transcription.Segments),
			sourceRef:  path,
			text:       transcription.Text,
		})
	})
}

// track wraps one processing attempt with ledger bookkeeping: a run is
// created first, moved to working, and ends done or failed. Interrupts leave
// the run at working so an operator can see what was cut short.
func (p *Pipeline) track(ctx context.Context, kind ledger.Kind, sourceRef, identifier string, work func(context.Context) (ProcessingResult, error)) (ProcessingResult, error) {
	runID, err := p.store.StartRun(ctx, kind, sourceRef, identifier)
	if err != nil {
		return ProcessingResult{}, fmt.Errorf("start run: %w", err)
	}
	ctx = services.WithRunID(ctx, runID)
	log := p.runLogger(ctx, identifier)
	log.Info("run started", logging.String(logging.FieldKind, string(kind)))

	if err := p.store.UpdateStatus(ctx, runID, ledger.StatusWorking, ""); err != nil {
		return ProcessingResult{RunID: runID, Identifier: identifier}, fmt.Errorf("mark run working: %w", err)
	}

	result, err := work(ctx)
	result.RunID = runID
	result.Identifier = identifier
	if err != nil {
		return result, p.fail(ctx, runID, kind, identifier, sourceRef, err)
	}

	if err := p.store.UpdateStatus(ctx, runID, ledger.StatusDone, ""); err != nil {
		return result, fmt.Errorf("mark run done: %w", err)
	}
	log.Info("run completed",
		logging.String("summary", result.SummaryPath),
		logging.String("report", result.ReportPath))
	return result, nil
}

// fail records a run failure in the ledger and the failure log. Context
// cancellation is passed through untouched: the run stays at working.
func (p *Pipeline) fail(ctx context.Context, runID int64, kind ledger.Kind, identifier, sourceRef string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		p.runLogger(ctx, identifier).Warn("run interrupted", logging.Error(err))
		return err
	}
	if updateErr := p.store.UpdateStatus(ctx, runID, ledger.StatusFailed, err.Error()); updateErr != nil {
		p.runLogger(ctx, identifier).Error("failed to record run failure", logging.Error(updateErr))
	}
	if p.failures != nil {
		p.failures.Record(kind, identifier, sourceRef, err.Error())
	}
	p.runLogger(ctx, identifier).Error("run failed", logging.Error(err))
	return err
}

type summaryInput struct {
	identifier string
	title      string
	duration   int
	sourceRef  string
	text       string
}

// finish summarizes the transcript, writes the summary and report artifacts,
// and publishes the report when requested. Publishing is best effort; a
// publish error is logged but never fails the run.
func (p *Pipeline) finish(ctx context.Context, result ProcessingResult, in summaryInput) (ProcessingResult, error) {
	text := strings.TrimSpace(in.text)
	if text == "" {
		return result, services.Wrap(services.ErrValidation, "summarize", "pipeline", "transcript is empty", nil)
	}

	fallback := p.cfg.Captions.DefaultLanguage
	if fallback == "" {
		fallback = p.cfg.Summarizer.Language
	}
	language := DetectLanguage(text, p.cfg.Captions.HanRatio, fallback)

	ctx = services.WithStage(ctx, "summarize")
	log := p.runLogger(ctx, in.identifier)
	log.Info("summarizing transcript",
		logging.String("style", p.opts.Style),
		logging.String("language", language))

	summary, err := p.summarizer.Summarize(ctx, text, p.opts.Style, language)
	if err != nil {
		return result, err
	}

	now := time.Now()
	content := summaryContent(in, summary, now)

	summaryPath := filepath.Join(p.cfg.SummaryDir(), in.identifier+"_summary.md")
	if err := os.WriteFile(summaryPath, []byte(content), 0o644); err != nil {
		return result, fmt.Errorf("write summary: %w", err)
	}
	result.SummaryPath = summaryPath

	if strings.TrimSpace(in.title) != "" {
		reportPath := filepath.Join(p.cfg.ReportDir(), textutil.ReportFileName(in.title, now))
		if err := os.WriteFile(reportPath, []byte(content), 0o644); err != nil {
			return result, fmt.Errorf("write report: %w", err)
		}
		result.ReportPath = reportPath
	}

	if p.opts.Publish && p.publisher != nil && p.publisher.Enabled() {
		target := result.ReportPath
		if target == "" {
			target = result.SummaryPath
		}
		url, err := p.publisher.Publish(ctx, target)
		switch {
		case err != nil:
			log.Warn("report publish failed", logging.Error(err))
		case url != "":
			result.PublishURL = url
			log.Info("report published", logging.String("url", url))
		}
	}
	return result, nil
}

func summaryContent(in summaryInput, summary string, now time.Time) string {
	title := strings.TrimSpace(in.title)
	if title == "" {
		title = in.identifier
	}
	var b strings.Builder
	b.WriteString(textutil.SummaryHeader(title, textutil.FormatDuration(in.duration), now))
	b.WriteString(strings.TrimSpace(summary))
	b.WriteString("\n\n---\n\n")
	b.WriteString("**Identifier**: " + in.identifier + "  \n")
	b.WriteString("**Source**: " + in.sourceRef + "\n")
	return b.String()
}

// importCaptions moves a downloaded caption file into the transcript
// directory under the run identifier.
func (p *Pipeline) importCaptions(captionsPath, identifier string) (string, error) {
	data, err := os.ReadFile(captionsPath)
	if err != nil {
		return "", fmt.Errorf("read captions: %w", err)
	}
	destPath := filepath.Join(p.cfg.TranscriptDir(), identifier+"_transcript.srt")
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	if err := os.Remove(captionsPath); err != nil {
		p.logger.Warn("failed to remove downloaded captions", logging.Error(err), logging.String("path", captionsPath))
	}
	return destPath, nil
}

func (p *Pipeline) writeTranscript(identifier string, segments []captions.Segment) (string, error) {
	destPath := filepath.Join(p.cfg.TranscriptDir(), identifier+"_transcript.srt")
	if err := captions.WriteSRTFile(destPath, segments); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return destPath, nil
}

func (p *Pipeline) cleanupAudio(audioPath string) {
	if audioPath == "" {
		return
	}
	if p.opts.KeepAudio {
		p.logger.Info("keeping downloaded audio", logging.String("path", audioPath))
		return
	}
	if err := os.Remove(audioPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.logger.Warn("failed to remove downloaded audio", logging.Error(err), logging.String("path", audioPath))
	}
}

func (p *Pipeline) runLogger(ctx context.Context, identifier string) *slog.Logger {
	log := p.logger.With(logging.String(logging.FieldIdentifier, identifier))
	if runID, ok := services.RunIDFromContext(ctx); ok {
		log = log.With(logging.Int64(logging.FieldRunID, runID))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		log = log.With(logging.String(logging.FieldStage, stage))
	}
	return log
}

func segmentsDuration(segments []captions.Segment) int {
	if len(segments) == 0 {
		return 0
	}
	return int(segments[len(segments)-1].End)
}
