package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scribe/internal/pipeline"
)

func newVideoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "video <url>",
		Short: "Transcribe and summarize a single video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVideo(cmd, ctx, args[0])
		},
	}
}

func newPlaylistCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "playlist <url>",
		Short: "Process every video in a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaylist(cmd, ctx, args[0])
		},
	}
}

func newPodcastCommand(ctx *commandContext) *cobra.Command {
	var episode int
	var all bool

	cmd := &cobra.Command{
		Use:   "podcast <url>",
		Short: "Process podcast episodes from an Apple Podcasts URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				return runShow(cmd, ctx, args[0])
			}
			return runPodcastEpisode(cmd, ctx, args[0], episode)
		},
	}
	cmd.Flags().IntVar(&episode, "episode", 0, "Episode index in feed order (0 is the newest)")
	cmd.Flags().BoolVar(&all, "all", false, "Process every episode in the feed")
	return cmd
}

func newFolderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "folder <dir>",
		Short: "Process every mp3 file in a local directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFolder(cmd, ctx, args[0])
		},
	}
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <file>",
		Short: "Process every entry in a manifest file",
		Long: `Process every entry in a manifest file. Each non-empty line that does not
start with # is classified as a video, playlist, podcast, or folder and
processed accordingly. Failing entries are recorded and the batch continues.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(cmd.Context(), func(runCtx context.Context, pipe *pipeline.Pipeline) error {
				result, err := pipe.ProcessBatch(runCtx, args[0])
				if err != nil {
					return err
				}
				printBatchResult(cmd, result)
				return nil
			})
		},
	}
}

func runVideo(cmd *cobra.Command, ctx *commandContext, url string) error {
	return ctx.withPipeline(cmd.Context(), func(runCtx context.Context, pipe *pipeline.Pipeline) error {
		result, err := pipe.ProcessVideo(runCtx, url)
		if err != nil {
			return err
		}
		printProcessingResult(cmd, result)
		return nil
	})
}

func runPlaylist(cmd *cobra.Command, ctx *commandContext, url string) error {
	return ctx.withPipeline(cmd.Context(), func(runCtx context.Context, pipe *pipeline.Pipeline) error {
		result, err := pipe.ProcessPlaylist(runCtx, url)
		if err != nil {
			return err
		}
		printCollectionResult(cmd, "playlist", result)
		return nil
	})
}

func runPodcastEpisode(cmd *cobra.Command, ctx *commandContext, url string, episode int) error {
	return ctx.withPipeline(cmd.Context(), func(runCtx context.Context, pipe *pipeline.Pipeline) error {
		result, err := pipe.ProcessPodcastEpisode(runCtx, url, episode)
		if err != nil {
			return err
		}
		printProcessingResult(cmd, result)
		return nil
	})
}

func runShow(cmd *cobra.Command, ctx *commandContext, url string) error {
	return ctx.withPipeline(cmd.Context(), func(runCtx context.Context, pipe *pipeline.Pipeline) error {
		result, err := pipe.ProcessShow(runCtx, url)
		if err != nil {
			return err
		}
		printCollectionResult(cmd, "show", result)
		return nil
	})
}

func runFolder(cmd *cobra.Command, ctx *commandContext, dir string) error {
	return ctx.withPipeline(cmd.Context(), func(runCtx context.Context, pipe *pipeline.Pipeline) error {
		result, err := pipe.ProcessFolder(runCtx, dir)
		if err != nil {
			return err
		}
		printCollectionResult(cmd, "folder", result)
		return nil
	})
}

func printProcessingResult(cmd *cobra.Command, result pipeline.ProcessingResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %d (%s) completed\n", result.RunID, result.Identifier)
	if result.Title != "" {
		fmt.Fprintf(out, "  Title:      %s\n", result.Title)
	}
	fmt.Fprintf(out, "  Transcript: %s\n", result.TranscriptPath)
	fmt.Fprintf(out, "  Summary:    %s\n", result.SummaryPath)
	if result.ReportPath != "" {
		fmt.Fprintf(out, "  Report:     %s\n", result.ReportPath)
	}
	if result.PublishURL != "" {
		fmt.Fprintf(out, "  Published:  %s\n", result.PublishURL)
	}
}

func printCollectionResult(cmd *cobra.Command, kind string, result pipeline.CollectionResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed %s: %d total, %d succeeded, %d failed\n",
		kind, result.Total, result.Succeeded(), result.Failed())
	for _, res := range result.Results {
		if res.PublishURL != "" {
			fmt.Fprintf(out, "  Published %s: %s\n", res.Identifier, res.PublishURL)
		}
	}
	if len(result.Failures) == 0 {
		return
	}
	rows := make([][]string, 0, len(result.Failures))
	for _, failure := range result.Failures {
		rows = append(rows, []string{
			strconv.Itoa(failure.Index),
			failure.Identifier,
			failure.Message,
		})
	}
	table := renderTable([]string{"#", "Identifier", "Error"}, rows, 1)
	fmt.Fprintln(out, table)
}

func printBatchResult(cmd *cobra.Command, result pipeline.BatchResult) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(result.Items))
	for _, item := range result.Items {
		rows = append(rows, []string{
			item.Line,
			string(item.Kind),
			strconv.Itoa(item.Succeeded),
			strconv.Itoa(item.Failed),
			item.Err,
		})
	}
	if len(rows) > 0 {
		table := renderTable([]string{"Entry", "Kind", "Succeeded", "Failed", "Error"}, rows, 3, 4)
		fmt.Fprintln(out, table)
	}
	fmt.Fprintf(out, "Batch finished: %d total, %d succeeded, %d failed\n",
		result.Total, result.Succeeded, result.Failed)
}
