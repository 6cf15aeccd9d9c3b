package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scribe/internal/classify"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "scribe [input]",
		Short:         "Transcribe and summarize videos, podcasts, and audio files",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return processAuto(cmd, ctx, args[0])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ctx.cookiesFlag, "cookies", "", "Cookies file passed to yt-dlp")
	rootCmd.PersistentFlags().BoolVar(&ctx.keepAudioFlag, "keep-audio", false, "Keep downloaded audio files")
	rootCmd.PersistentFlags().StringVar(&ctx.styleFlag, "style", "", "Summary style (brief or detailed)")
	rootCmd.PersistentFlags().BoolVar(&ctx.publishFlag, "publish", false, "Publish the report after processing")

	rootCmd.AddCommand(newVideoCommand(ctx))
	rootCmd.AddCommand(newPlaylistCommand(ctx))
	rootCmd.AddCommand(newPodcastCommand(ctx))
	rootCmd.AddCommand(newFolderCommand(ctx))
	rootCmd.AddCommand(newBatchCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// processAuto classifies a free-form input and routes it like the matching
// subcommand would.
func processAuto(cmd *cobra.Command, ctx *commandContext, input string) error {
	switch classify.Classify(input) {
	case classify.KindVideo:
		return runVideo(cmd, ctx, input)
	case classify.KindPlaylist:
		return runPlaylist(cmd, ctx, input)
	case classify.KindPodcast:
		return runPodcastEpisode(cmd, ctx, input, 0)
	case classify.KindFolder:
		return runFolder(cmd, ctx, input)
	default:
		return fmt.Errorf("cannot classify input %q: expected a video/playlist/podcast URL or a local directory", input)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
