package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"scribe/internal/classify"
	"scribe/internal/ledger"
	"scribe/internal/logging"
)

// BatchItem reports the outcome of one manifest line.
type BatchItem struct {
	Line      string
	Kind      classify.Kind
	Succeeded int
	Failed    int
	Err       string
}

// BatchResult aggregates a manifest run across all lines.
type BatchResult struct {
	Items     []BatchItem
	Total     int
	Succeeded int
	Failed    int
}

// ProcessBatch reads a manifest file and routes each entry by its classified
// kind. Blank lines and lines starting with # are skipped before
// classification. A failing entry is recorded and processing continues; only
// an unreadable manifest or context cancellation aborts the batch.
func (p *Pipeline) ProcessBatch(ctx context.Context, manifestPath string) (BatchResult, error) {
	file, err := os.Open(manifestPath)
	if err != nil {
		return BatchResult{}, fmt.Errorf("open batch file: %w", err)
	}
	defer file.Close()

	var result BatchResult
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		item, err := p.processBatchLine(ctx, line)
		if err != nil {
			return result, err
		}
		result.Items = append(result.Items, item)
		result.Total += item.Succeeded + item.Failed
		result.Succeeded += item.Succeeded
		result.Failed += item.Failed
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("read batch file: %w", err)
	}

	p.logger.Info("batch finished",
		logging.String("manifest", manifestPath),
		logging.Int("total", result.Total),
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed))
	return result, nil
}

// processBatchLine runs one manifest entry. The returned error is non-nil
// only for context cancellation; everything else is captured in the item.
func (p *Pipeline) processBatchLine(ctx context.Context, line string) (BatchItem, error) {
	item := BatchItem{Line: line, Kind: classify.Classify(line)}

	switch item.Kind {
	case classify.KindVideo:
		_, err := p.ProcessVideo(ctx, line)
		return p.recordSingle(item, err)
	case classify.KindPodcast:
		_, err := p.ProcessPodcastEpisode(ctx, line, 0)
		return p.recordSingle(item, err)
	case classify.KindPlaylist:
		col, err := p.ProcessPlaylist(ctx, line)
		return p.recordCollection(item, col, err)
	case classify.KindFolder:
		col, err := p.ProcessFolder(ctx, line)
		return p.recordCollection(item, col, err)
	default:
		item.Failed = 1
		item.Err = "unrecognized input"
		if p.failures != nil {
			p.failures.Record(ledger.Kind("unknown"), line, line, "unrecognized input")
		}
		p.logger.Error("unrecognized batch entry", logging.String("line", line))
		return item, nil
	}
}

func (p *Pipeline) recordSingle(item BatchItem, err error) (BatchItem, error) {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return item, err
		}
		item.Failed = 1
		item.Err = err.Error()
		return item, nil
	}
	item.Succeeded = 1
	return item, nil
}

func (p *Pipeline) recordCollection(item BatchItem, col CollectionResult, err error) (BatchItem, error) {
	item.Succeeded = col.Succeeded()
	item.Failed = col.Failed()
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return item, err
		}
		item.Err = err.Error()
		// Collection-level failures (no members attempted) still count once.
		if item.Succeeded == 0 && item.Failed == 0 {
			item.Failed = 1
		}
	}
	return item, nil
}
