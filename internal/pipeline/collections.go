package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"scribe/internal/classify"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/services"
)

// MemberFailure records one failed item inside a collection.
type MemberFailure struct {
	Index      int
	Identifier string
	Message    string
}

// CollectionResult reconciles a collection run: every member either appears
// in Results or in Failures.
type CollectionResult struct {
	Total    int
	Results  []ProcessingResult
	Failures []MemberFailure
}

// Succeeded returns the number of members processed successfully.
func (r CollectionResult) Succeeded() int { return len(r.Results) }

// Failed returns the number of failed members.
func (r CollectionResult) Failed() int { return len(r.Failures) }

// ProcessPlaylist enumerates a playlist and processes each video. A failed
// member is recorded and iteration continues; only context cancellation
// stops the loop early.
func (p *Pipeline) ProcessPlaylist(ctx context.Context, url string) (CollectionResult, error) {
	items, err := p.videos.PlaylistItems(ctx, url)
	if err != nil {
		return CollectionResult{}, err
	}
	p.logger.Info("processing playlist",
		logging.String("url", url),
		logging.Int("items", len(items)))

	result := CollectionResult{Total: len(items)}
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		res, err := p.ProcessVideo(ctx, item)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
			result.Failures = append(result.Failures, MemberFailure{
				Index:      i,
				Identifier: memberIdentifier(res.Identifier, item),
				Message:    err.Error(),
			})
			continue
		}
		result.Results = append(result.Results, res)
	}
	p.logCollection("playlist", url, result)
	return result, nil
}

// ProcessShow resolves a podcast feed once and processes every episode.
func (p *Pipeline) ProcessShow(ctx context.Context, url string) (CollectionResult, error) {
	podcastID, ok := classify.PodcastID(url)
	if !ok {
		return CollectionResult{}, services.Wrap(services.ErrValidation, "acquire", "podcast", "cannot extract podcast id from url", nil)
	}
	show, err := p.podcasts.Resolve(ctx, url)
	if err != nil {
		return CollectionResult{}, err
	}
	p.logger.Info("processing show",
		logging.String("title", show.Title),
		logging.Int("episodes", len(show.Episodes)))

	result := CollectionResult{Total: len(show.Episodes)}
	for i, episode := range show.Episodes {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		identifier := classify.EpisodeIdentifier(podcastID, episode.Index)
		episode := episode
		res, err := p.track(ctx, ledger.KindPodcast, url, identifier, func(ctx context.Context) (ProcessingResult, error) {
			return p.processEpisode(ctx, url, identifier, episode)
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
			result.Failures = append(result.Failures, MemberFailure{
				Index:      i,
				Identifier: identifier,
				Message:    err.Error(),
			})
			continue
		}
		result.Results = append(result.Results, res)
	}
	p.logCollection("show", url, result)
	return result, nil
}

// ProcessFolder processes every *.mp3 file in a directory. Entries are
// sorted lexicographically so runs are created in a stable order.
func (p *Pipeline) ProcessFolder(ctx context.Context, dir string) (CollectionResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return CollectionResult{}, services.Wrap(services.ErrValidation, "acquire", "folder", "folder not found", err)
	}
	if !info.IsDir() {
		return CollectionResult{}, services.Wrap(services.ErrValidation, "acquire", "folder", "path is not a directory", nil)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return CollectionResult{}, fmt.Errorf("read folder: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".mp3") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	p.logger.Info("processing folder",
		logging.String("dir", dir),
		logging.Int("files", len(files)))

	result := CollectionResult{Total: len(files)}
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		res, err := p.ProcessLocalFile(ctx, file)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
			result.Failures = append(result.Failures, MemberFailure{
				Index:      i,
				Identifier: memberIdentifier(res.Identifier, file),
				Message:    err.Error(),
			})
			continue
		}
		result.Results = append(result.Results, res)
	}
	p.logCollection("folder", dir, result)
	return result, nil
}

func (p *Pipeline) logCollection(kind, source string, result CollectionResult) {
	p.logger.Info("collection finished",
		logging.String("kind", kind),
		logging.String("source", source),
		logging.Int("total", result.Total),
		logging.Int("succeeded", result.Succeeded()),
		logging.Int("failed", result.Failed()))
}

func memberIdentifier(identifier, fallback string) string {
	if identifier != "" {
		return identifier
	}
	return fallback
}
