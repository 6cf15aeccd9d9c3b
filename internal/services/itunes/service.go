package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"scribe/internal/classify"
	"scribe/internal/media"
	"scribe/internal/services"
)

// DefaultLookupURL is the iTunes podcast lookup endpoint.
const DefaultLookupURL = "https://itunes.apple.com/lookup"

// Service resolves podcast URLs through the iTunes lookup API and the show's
// RSS feed.
type Service struct {
	lookupURL  string
	httpClient *http.Client
	feedParser *gofeed.Parser
}

// NewService creates a podcast resolver. A zero timeout falls back to 30s.
func NewService(lookupURL string, timeout time.Duration) *Service {
	if strings.TrimSpace(lookupURL) == "" {
		lookupURL = DefaultLookupURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{
		lookupURL:  lookupURL,
		httpClient: &http.Client{Timeout: timeout},
		feedParser: gofeed.NewParser(),
	}
}

type lookupResponse struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		CollectionName string `json:"collectionName"`
		FeedURL        string `json:"feedUrl"`
	} `json:"results"`
}

// Lookup fetches the show title and RSS feed URL for a podcast id.
func (s *Service) Lookup(ctx context.Context, podcastID string) (title, feedURL string, err error) {
	endpoint := s.lookupURL + "?" + url.Values{
		"id":     []string{podcastID},
		"entity": []string{"podcast"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", services.Wrap(services.ErrConfiguration, "fetch", "itunes", "build lookup request", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", "", services.Wrap(services.ErrExternalTool, "fetch", "itunes", "lookup podcast", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", services.Wrap(services.ErrExternalTool, "fetch", "itunes",
			fmt.Sprintf("lookup returned status %d", resp.StatusCode), nil)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", "", services.Wrap(services.ErrExternalTool, "fetch", "itunes", "decode lookup response", err)
	}
	if payload.ResultCount == 0 || len(payload.Results) == 0 {
		return "", "", services.Wrap(services.ErrNotFound, "fetch", "itunes",
			fmt.Sprintf("no podcast found with id %s", podcastID), nil)
	}

	result := payload.Results[0]
	if result.FeedURL == "" {
		return "", "", services.Wrap(services.ErrNotFound, "fetch", "itunes",
			fmt.Sprintf("podcast %s has no RSS feed", podcastID), nil)
	}
	return result.CollectionName, result.FeedURL, nil
}

// Resolve turns a podcast directory URL into a Show with all episodes that
// carry playable audio, in feed order. Episode indexes match the feed entry
// positions so identifiers stay stable when entries without audio are skipped.
func (s *Service) Resolve(ctx context.Context, rawURL string) (media.Show, error) {
	podcastID, ok := classify.PodcastID(rawURL)
	if !ok {
		return media.Show{}, services.Wrap(services.ErrValidation, "fetch", "itunes",
			fmt.Sprintf("could not extract podcast id from %s", rawURL), nil)
	}

	title, feedURL, err := s.Lookup(ctx, podcastID)
	if err != nil {
		return media.Show{}, err
	}

	feed, err := s.feedParser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return media.Show{}, services.Wrap(services.ErrExternalTool, "fetch", "itunes", "parse RSS feed", err)
	}
	if feed == nil || len(feed.Items) == 0 {
		return media.Show{}, services.Wrap(services.ErrNotFound, "fetch", "itunes", "feed contains no episodes", nil)
	}

	show := media.Show{
		ID:      podcastID,
		Title:   title,
		FeedURL: feedURL,
	}
	if show.Title == "" {
		show.Title = feed.Title
	}

	for i, item := range feed.Items {
		audioURL := audioEnclosure(item)
		if audioURL == "" {
			continue
		}
		episode := media.Episode{
			Index:    i,
			Title:    item.Title,
			AudioURL: audioURL,
			Duration: itunesDuration(item),
		}
		if item.PublishedParsed != nil {
			episode.Published = *item.PublishedParsed
		}
		show.Episodes = append(show.Episodes, episode)
	}
	return show, nil
}

// EpisodeAt returns the episode whose feed position matches index.
func EpisodeAt(show media.Show, index int) (media.Episode, error) {
	for _, episode := range show.Episodes {
		if episode.Index == index {
			return episode, nil
		}
	}
	return media.Episode{}, services.Wrap(services.ErrNotFound, "fetch", "itunes",
		fmt.Sprintf("episode index %d out of range for %s", index, show.Title), nil)
}

func audioEnclosure(item *gofeed.Item) string {
	for _, enclosure := range item.Enclosures {
		if enclosure == nil {
			continue
		}
		if strings.Contains(enclosure.Type, "audio") && enclosure.URL != "" {
			return enclosure.URL
		}
	}
	// Some feeds omit the MIME type; fall back to the first enclosure URL.
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && enclosure.URL != "" {
			return enclosure.URL
		}
	}
	return ""
}

// itunesDuration parses the itunes:duration field, which may be HH:MM:SS,
// MM:SS, or plain seconds. Unparseable values yield zero.
func itunesDuration(item *gofeed.Item) int {
	if item.ITunesExt == nil {
		return 0
	}
	raw := strings.TrimSpace(item.ITunesExt.Duration)
	if raw == "" {
		return 0
	}
	if !strings.Contains(raw, ":") {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return 0
		}
		return seconds
	}
	parts := strings.Split(raw, ":")
	values := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0
		}
		values[i] = v
	}
	switch len(values) {
	case 3:
		return values[0]*3600 + values[1]*60 + values[2]
	case 2:
		return values[0]*60 + values[1]
	default:
		return 0
	}
}
