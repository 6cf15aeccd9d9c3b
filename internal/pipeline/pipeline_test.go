package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/captions"
	"scribe/internal/config"
	"scribe/internal/ledger"
	"scribe/internal/media"
	"scribe/internal/pipeline"
	"scribe/internal/testsupport"
)

const videoURL = "https://www.youtube.com/watch?v=abc123"

type fakeVideos struct {
	meta         media.VideoMetadata
	metaErr      error
	withCaptions bool
	subsCalled   bool
	audioCalled  bool
	playlist     []string
	playlistErr  error
}

func (f *fakeVideos) VideoInfo(ctx context.Context, url string) (media.VideoMetadata, error) {
	if f.metaErr != nil {
		return media.VideoMetadata{}, f.metaErr
	}
	return f.meta, nil
}

func (f *fakeVideos) DownloadSubtitles(ctx context.Context, url, videoID, destDir string) (string, error) {
	f.subsCalled = true
	if !f.withCaptions {
		return "", nil
	}
	path := filepath.Join(destDir, videoID+".en.srt")
	srt := "1\n00:00:00,000 --> 00:00:02,000\nhello from captions\n\n"
	if err := os.WriteFile(path, []byte(srt), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeVideos) DownloadAudio(ctx context.Context, url, videoID, destDir string) (string, error) {
	f.audioCalled = true
	path := filepath.Join(destDir, videoID+".mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeVideos) PlaylistItems(ctx context.Context, url string) ([]string, error) {
	return f.playlist, f.playlistErr
}

type fakePodcasts struct {
	show       media.Show
	resolveErr error
}

func (f *fakePodcasts) Resolve(ctx context.Context, rawURL string) (media.Show, error) {
	if f.resolveErr != nil {
		return media.Show{}, f.resolveErr
	}
	return f.show, nil
}

func (f *fakePodcasts) DownloadAudio(ctx context.Context, audioURL, baseName, destDir string) (string, error) {
	path := filepath.Join(destDir, baseName+".mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeTranscriber struct {
	transcription media.Transcription
	err           error
	hook          func(ctx context.Context, audioPath string) error
	lastAudio     string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath, outputDir string) (media.Transcription, error) {
	f.lastAudio = audioPath
	if f.hook != nil {
		if err := f.hook(ctx, audioPath); err != nil {
			return media.Transcription{}, err
		}
	}
	if f.err != nil {
		return media.Transcription{}, f.err
	}
	return f.transcription, nil
}

type fakeSummarizer struct {
	summary      string
	err          error
	errFor       string
	lastStyle    string
	lastLanguage string
	lastText     string
	calls        int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript, style, language string) (string, error) {
	f.calls++
	f.lastText = transcript
	f.lastStyle = style
	f.lastLanguage = language
	if f.err != nil {
		return "", f.err
	}
	if f.errFor != "" && strings.Contains(transcript, f.errFor) {
		return "", errors.New("summarizer rejected transcript")
	}
	if f.summary == "" {
		return "## Summary\nok", nil
	}
	return f.summary, nil
}

type fakePublisher struct {
	enabled  bool
	url      string
	err      error
	lastPath string
	calls    int
}

func (f *fakePublisher) Enabled() bool { return f.enabled }

func (f *fakePublisher) Publish(ctx context.Context, filePath string) (string, error) {
	f.calls++
	f.lastPath = filePath
	return f.url, f.err
}

type harness struct {
	cfg         *config.Config
	store       *ledger.Store
	pipe        *pipeline.Pipeline
	videos      *fakeVideos
	podcasts    *fakePodcasts
	transcriber *fakeTranscriber
	summarizer  *fakeSummarizer
	publisher   *fakePublisher
}

func newHarness(t *testing.T, opts pipeline.Options, cfgOpts ...testsupport.ConfigOption) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, cfgOpts...)
	store := testsupport.MustOpenLedger(t, cfg)
	h := &harness{
		cfg:   cfg,
		store: store,
		videos: &fakeVideos{
			meta: media.VideoMetadata{
				ID:       "abc123",
				Title:    "Sample Video",
				Duration: 120,
				URL:      videoURL,
			},
		},
		podcasts: &fakePodcasts{
			show: media.Show{
				ID:    "123456",
				Title: "Sample Show",
				Episodes: []media.Episode{
					{Index: 0, Title: "Newest Episode", AudioURL: "https://cdn.example.com/ep10.mp3", Duration: 900},
					{Index: 1, Title: "Older Episode", AudioURL: "https://cdn.example.com/ep9.mp3", Duration: 800},
				},
			},
		},
		transcriber: &fakeTranscriber{
			transcription: media.Transcription{
				Text:     "transcribed text",
				Language: "en",
				Segments: []captions.Segment{
					{Start: 0, End: 2, Text: "transcribed"},
					{Start: 2, End: 4, Text: "text"},
				},
			},
		},
		summarizer: &fakeSummarizer{},
		publisher:  &fakePublisher{enabled: true, url: "https://github.com/owner/notes/blob/main/reports/r.md"},
	}
	failures := ledger.NewFailureLog(cfg.LogDir, nil)
	h.pipe = pipeline.New(cfg, store, failures, nil, pipeline.Deps{
		Videos:      h.videos,
		Podcasts:    h.podcasts,
		Transcriber: h.transcriber,
		Summarizer:  h.summarizer,
		Publisher:   h.publisher,
	}, opts)
	return h
}

func (h *harness) runStatus(t *testing.T, runID int64) ledger.Status {
	t.Helper()
	run, err := h.store.GetRun(context.Background(), runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run == nil {
		t.Fatalf("run %d not found", runID)
	}
	return run.Status
}

func TestProcessVideoPrefersCaptions(t *testing.T) {
	h := newHarness(t, pipeline.Options{})
	h.videos.meta.HasSubtitles = true
	h.videos.withCaptions = true

	res, err := h.pipe.ProcessVideo(context.Background(), videoURL)
	if err != nil {
		t.Fatalf("ProcessVideo failed: %v", err)
	}
	if res.Identifier != "abc123" {
		t.Fatalf("unexpected identifier %q", res.Identifier)
	}
	if h.videos.audioCalled {
		t.Fatal("audio should not be downloaded when captions exist")
	}
	if !strings.HasSuffix(res.TranscriptPath, "abc123_transcript.srt") {
		t.Fatalf("unexpected transcript path %q", res.TranscriptPath)
	}
	if !strings.Contains(h.summarizer.lastText, "hello from captions") {
		t.Fatalf("summarizer did not receive caption text: %q", h.summarizer.lastText)
	}
	if h.runStatus(t, res.RunID) != ledger.StatusDone {
		t.Fatalf("expected done run, got %s", h.runStatus(t, res.RunID))
	}
	data, err := os.ReadFile(res.SummaryPath)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if !strings.Contains(string(data), "# Sample Video") {
		t.Fatalf("summary missing title header:\n%s", data)
	}
	if !strings.Contains(string(data), "**Source**: "+videoURL) {
		t.Fatalf("summary missing source reference:\n%s", data)
	}
	if res.ReportPath == "" {
		t.Fatal("expected report artifact for titled video")
	}
}

func TestProcessVideoFallsBackToAudio(t *testing.T) {
	h := newHarness(t, pipeline.Options{})
	h.videos.meta.HasSubtitles = false

	res, err := h.pipe.ProcessVideo(context.Background(), videoURL)
	if err != nil {
		t.Fatalf("ProcessVideo failed: %v", err)
	}
	if !h.videos.audioCalled {
		t.Fatal("expected audio download when no captions exist")
	}
	if h.transcriber.lastAudio == "" {
		t.Fatal("transcriber was not invoked")
	}
	if _, err := os.Stat(h.transcriber.lastAudio); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("downloaded audio should be removed, stat err: %v", err)
	}
	data, err := os.ReadFile(res.TranscriptPath)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if !strings.Contains(string(data), "00:00:00,000 --> 00:00:02,000") {
		t.Fatalf("transcript missing srt timing:\n%s", data)
	}
}

func TestProcessVideoKeepsAudioWhenAsked(t *testing.T) {
	h := newHarness(t, pipeline.Options{KeepAudio: true})

	if _, err := h.pipe.ProcessVideo(context.Background(), videoURL); err != nil {
		t.Fatalf("ProcessVideo failed: %v", err)
	}
	if _, err := os.Stat(h.transcriber.lastAudio); err != nil {
		t.Fatalf("audio should be kept, stat err: %v", err)
	}
}

func TestProcessVideoRejectsUnparseableURL(t *testing.T) {
	h := newHarness(t, pipeline.Options{})

	res, err := h.pipe.ProcessVideo(context.Background(), "https://www.youtube.com/account")
	if err == nil {
		t.Fatal("expected error for url without video id")
	}
	if h.runStatus(t, res.RunID) != ledger.StatusFailed {
		t.Fatalf("expected failed run, got %s", h.runStatus(t, res.RunID))
	}
}

func TestProcessVideoFailureIsRecorded(t *testing.T) {
	h := newHarness(t, pipeline.Options{})
	h.summarizer.err = errors.New("model unavailable")

	res, err := h.pipe.ProcessVideo(context.Background(), videoURL)
	if err == nil {
		t.Fatal("expected summarizer failure to propagate")
	}
	run, getErr := h.store.GetRun(context.Background(), res.RunID)
	if getErr != nil || run == nil {
		t.Fatalf("GetRun failed: %v", getErr)
	}
	if run.Status != ledger.StatusFailed {
		t.Fatalf("expected failed run, got %s", run.Status)
	}
	if !strings.Contains(run.ErrorMessage, "model unavailable") {
		t.Fatalf("run missing error message: %q", run.ErrorMessage)
	}
}

func TestProcessVideoInterruptLeavesRunWorking(t *testing.T) {
	h := newHarness(t, pipeline.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	h.transcriber.hook = func(ctx context.Context, audioPath string) error {
		cancel()
		return ctx.Err()
	}

	res, err := h.pipe.ProcessVideo(ctx, videoURL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if h.runStatus(t, res.RunID) != ledger.StatusWorking {
		t.Fatalf("interrupted run should stay working, got %s", h.runStatus(t, res.RunID))
	}
}

func TestProcessVideoPublishesReport(t *testing.T) {
	h := newHarness(t, pipeline.Options{Publish: true})

	res, err := h.pipe.ProcessVideo(context.Background(), videoURL)
	if err != nil {
		t.Fatalf("ProcessVideo failed: %v", err)
	}
	if res.PublishURL == "" {
		t.Fatal("expected publish url")
	}
	if h.publisher.lastPath != res.ReportPath {
		t.Fatalf("expected report to be published, got %q", h.publisher.lastPath)
	}
}

func TestProcessVideoPublishFailureDoesNotFailRun(t *testing.T) {
	h := newHarness(t, pipeline.Options{Publish: true})
	h.publisher.err = errors.New("network down")

	res, err := h.pipe.ProcessVideo(context.Background(), videoURL)
	if err != nil {
		t.Fatalf("publish failure must not fail the run: %v", err)
	}
	if res.PublishURL != "" {
		t.Fatalf("unexpected publish url %q", res.PublishURL)
	}
	if h.runStatus(t, res.RunID) != ledger.StatusDone {
		t.Fatalf("expected done run, got %s", h.runStatus(t, res.RunID))
	}
}

func TestProcessPodcastEpisode(t *testing.T) {
	h := newHarness(t, pipeline.Options{})

	res, err := h.pipe.ProcessPodcastEpisode(context.Background(), "https://podcasts.apple.com/us/podcast/show/id123456", 0)
	if err != nil {
		t.Fatalf("ProcessPodcastEpisode failed: %v", err)
	}
	if res.Identifier != "123456_ep0" {
		t.Fatalf("unexpected identifier %q", res.Identifier)
	}
	if res.Title != "Newest Episode" {
		t.Fatalf("unexpected title %q", res.Title)
	}
	if h.runStatus(t, res.RunID) != ledger.StatusDone {
		t.Fatalf("expected done run, got %s", h.runStatus(t, res.RunID))
	}
}

func TestProcessPodcastEpisodeRejectsURLWithoutID(t *testing.T) {
	h := newHarness(t, pipeline.Options{})

	res, err := h.pipe.ProcessPodcastEpisode(context.Background(), "https://podcasts.example.com/show", 0)
	if err == nil {
		t.Fatal("expected error for url without podcast id")
	}
	if h.runStatus(t, res.RunID) != ledger.StatusFailed {
		t.Fatalf("expected failed run, got %s", h.runStatus(t, res.RunID))
	}
}

func TestProcessLocalFileDoesNotDeleteSource(t *testing.T) {
	h := newHarness(t, pipeline.Options{})
	audio := filepath.Join(t.TempDir(), "lecture.mp3")
	if err := os.WriteFile(audio, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	res, err := h.pipe.ProcessLocalFile(context.Background(), audio)
	if err != nil {
		t.Fatalf("ProcessLocalFile failed: %v", err)
	}
	if res.Identifier != "lecture" {
		t.Fatalf("unexpected identifier %q", res.Identifier)
	}
	if _, err := os.Stat(audio); err != nil {
		t.Fatalf("source file must survive processing: %v", err)
	}
	if h.runStatus(t, res.RunID) != ledger.StatusDone {
		t.Fatalf("expected done run, got %s", h.runStatus(t, res.RunID))
	}
}

func TestProcessLocalFileMissing(t *testing.T) {
	h := newHarness(t, pipeline.Options{})

	res, err := h.pipe.ProcessLocalFile(context.Background(), filepath.Join(t.TempDir(), "missing.mp3"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if h.runStatus(t, res.RunID) != ledger.StatusFailed {
		t.Fatalf("expected failed run, got %s", h.runStatus(t, res.RunID))
	}
}

func TestSummarizerReceivesStyleAndDetectedLanguage(t *testing.T) {
	h := newHarness(t, pipeline.Options{}, testsupport.WithStyle("brief"))
	h.transcriber.transcription.Text = "这是一个完全中文的视频内容讲解"

	if _, err := h.pipe.ProcessVideo(context.Background(), videoURL); err != nil {
		t.Fatalf("ProcessVideo failed: %v", err)
	}
	if h.summarizer.lastStyle != "brief" {
		t.Fatalf("unexpected style %q", h.summarizer.lastStyle)
	}
	if h.summarizer.lastLanguage != "zh" {
		t.Fatalf("expected zh detection, got %q", h.summarizer.lastLanguage)
	}
}

func TestSummaryLanguageFallsBackToCaptionDefault(t *testing.T) {
	h := newHarness(t, pipeline.Options{})
	h.cfg.Summarizer.Language = "en"
	h.cfg.Captions.DefaultLanguage = "fr"

	if _, err := h.pipe.ProcessVideo(context.Background(), videoURL); err != nil {
		t.Fatalf("ProcessVideo failed: %v", err)
	}
	if h.summarizer.lastLanguage != "fr" {
		t.Fatalf("expected configured caption language, got %q", h.summarizer.lastLanguage)
	}
}

func TestProcessVideoSkipsDisabledPublisher(t *testing.T) {
	h := newHarness(t, pipeline.Options{Publish: true})
	h.publisher.enabled = false

	res, err := h.pipe.ProcessVideo(context.Background(), videoURL)
	if err != nil {
		t.Fatalf("ProcessVideo failed: %v", err)
	}
	if h.publisher.calls != 0 {
		t.Fatalf("disabled publisher must not be invoked, got %d calls", h.publisher.calls)
	}
	if res.PublishURL != "" {
		t.Fatalf("unexpected publish url %q", res.PublishURL)
	}
}

func TestRunLogsCarryStage(t *testing.T) {
	var buf bytes.Buffer
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	videos := &fakeVideos{
		meta: media.VideoMetadata{ID: "abc123", Title: "Sample Video", Duration: 120, URL: videoURL},
	}
	transcriber := &fakeTranscriber{
		transcription: media.Transcription{
			Text:     "transcribed text",
			Segments: []captions.Segment{{Start: 0, End: 2, Text: "transcribed"}},
		},
	}
	pipe := pipeline.New(cfg, store, ledger.NewFailureLog(cfg.LogDir, nil),
		slog.New(slog.NewJSONHandler(&buf, nil)),
		pipeline.Deps{Videos: videos, Transcriber: transcriber, Summarizer: &fakeSummarizer{}},
		pipeline.Options{})

	if _, err := pipe.ProcessVideo(context.Background(), videoURL); err != nil {
		t.Fatalf("ProcessVideo failed: %v", err)
	}
	logs := buf.String()
	if !strings.Contains(logs, `"stage":"acquire"`) {
		t.Fatalf("logs missing acquire stage:\n%s", logs)
	}
	if !strings.Contains(logs, `"stage":"summarize"`) {
		t.Fatalf("logs missing summarize stage:\n%s", logs)
	}
}
