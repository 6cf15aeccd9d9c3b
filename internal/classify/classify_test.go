package classify_test

import (
	"testing"

	"scribe/internal/classify"
)

func TestClassifyURLs(t *testing.T) {
	cases := []struct {
		input string
		want  classify.Kind
	}{
		{"https://www.youtube.com/watch?v=abc123", classify.KindVideo},
		{"https://youtu.be/abc123", classify.KindVideo},
		{"https://www.youtube.com/playlist?list=PLxyz", classify.KindPlaylist},
		{"https://www.youtube.com/watch?v=abc&list=PLxyz", classify.KindPlaylist},
		{"https://podcasts.apple.com/us/podcast/some-show/id123456", classify.KindPodcast},
		{"https://podcasts.example.com/shows/id123456", classify.KindPodcast},
		{"https://example.com/media/episode.mp4", classify.KindVideo},
	}
	for _, tc := range cases {
		if got := classify.Classify(tc.input); got != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestClassifyPodcastWinsOverPlaylistMarker(t *testing.T) {
	got := classify.Classify("https://podcasts.example.com/show/id99?list=all")
	if got != classify.KindPodcast {
		t.Fatalf("Classify = %q, want %q", got, classify.KindPodcast)
	}
}

func TestClassifyExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	if got := classify.Classify(dir); got != classify.KindFolder {
		t.Fatalf("Classify(%q) = %q, want %q", dir, got, classify.KindFolder)
	}
}

func TestClassifyUnknown(t *testing.T) {
	cases := []string{
		"not a url or path",
		"",
		"   ",
		"ftp://example.com/file",
		"/definitely/not/a/real/directory/xyz",
	}
	for _, input := range cases {
		if got := classify.Classify(input); got != classify.KindUnknown {
			t.Fatalf("Classify(%q) = %q, want %q", input, got, classify.KindUnknown)
		}
	}
}

func TestVideoID(t *testing.T) {
	cases := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=abc123&t=42s", "abc123", true},
		{"https://example.com/watch?v=abc123", "", false},
	}
	for _, tc := range cases {
		got, ok := classify.VideoID(tc.url)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("VideoID(%q) = (%q, %v), want (%q, %v)", tc.url, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPodcastID(t *testing.T) {
	id, ok := classify.PodcastID("https://podcasts.apple.com/us/podcast/some-show/id123456")
	if !ok || id != "123456" {
		t.Fatalf("PodcastID = (%q, %v)", id, ok)
	}
	if _, ok := classify.PodcastID("https://podcasts.apple.com/us/podcast/some-show"); ok {
		t.Fatal("expected no id for URL without id segment")
	}
}

func TestEpisodeIdentifier(t *testing.T) {
	if got := classify.EpisodeIdentifier("123456", 3); got != "123456_ep3" {
		t.Fatalf("EpisodeIdentifier = %q", got)
	}
}

func TestFileIdentifier(t *testing.T) {
	if got := classify.FileIdentifier("/tmp/audio/interview.mp3"); got != "interview" {
		t.Fatalf("FileIdentifier = %q", got)
	}
	if got := classify.FileIdentifier("noext"); got != "noext" {
		t.Fatalf("FileIdentifier = %q", got)
	}
}
