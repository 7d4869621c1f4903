// Package cli is the cobra command surface over the compose pipeline. It
// owns flag parsing, source-artifact discovery, logger setup, and the
// exit-code policy; the pipeline itself never reads a flag.
package cli

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/andrewarrow/weave/internal/config"
	"github.com/andrewarrow/weave/internal/encode"
	"github.com/andrewarrow/weave/internal/fontmetric"
	"github.com/andrewarrow/weave/internal/meeting"
)

var rootCmd = &cobra.Command{
	Use:   "weave",
	Short: "Compose meeting recordings into playable MP4s",
	Long: `Weave ingests the artifacts one meeting published during its live
session (whiteboard annotations, slides, pan/zoom events, cursor trajectory,
chat, webcam and desk-share tracks) and composes them into one MP4 with
embedded chapters.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and translates its error into the process
// exit code: 0 on success (including the silent non-presentation case),
// nonzero on any pipeline failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("compose failed: %v", err)
		os.Exit(1)
	}
}

var (
	flagMeetingID     string
	flagFormat        string
	flagLogStdout     bool
	flagPublishedBase string
	flagVideoBase     string
	flagScratchBase   string
	flagBackground    string
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Compose one meeting's published artifacts into an MP4",
	RunE:  runCompose,
}

func init() {
	composeCmd.Flags().StringVar(&flagMeetingID, "meeting-id", "", "id of the meeting to compose (required)")
	composeCmd.Flags().StringVar(&flagFormat, "format", "presentation", "recording format to process; anything else exits silently")
	composeCmd.Flags().BoolVar(&flagLogStdout, "log-stdout", false, "log to stdout instead of stderr")
	composeCmd.Flags().StringVar(&flagPublishedBase, "published-base", "published", "directory holding per-meeting published artifact trees")
	composeCmd.Flags().StringVar(&flagVideoBase, "video-base", "video", "directory the finished MP4 and rewritten metadata land under")
	composeCmd.Flags().StringVar(&flagScratchBase, "scratch-base", "scratch", "directory scratch trees are created under")
	composeCmd.Flags().StringVar(&flagBackground, "background", "", "background loop video; defaults to background.mp4 in the published tree")
	composeCmd.MarkFlagRequired("meeting-id")

	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	// Non-presentation recordings are someone else's job: exit 0, say
	// nothing.
	if flagFormat != "presentation" {
		return nil
	}

	if flagLogStdout {
		log.SetOutput(os.Stdout)
	}

	cfg := config.Default()

	src, err := discoverSources(flagPublishedBase, flagMeetingID, flagBackground)
	if err != nil {
		return err
	}

	p := meeting.Pipeline{
		Config:       cfg,
		ScratchBase:  flagScratchBase,
		RecordingDir: filepath.Join(flagVideoBase, flagMeetingID),
		Font:         fontmetric.NewExecClient(cfg.FontMetricBin),
		Encoder:      encode.NewExecClient(cfg.EncoderBin),
	}

	log.Printf("composing meeting %s", flagMeetingID)
	outcome, err := p.Run(context.Background(), flagMeetingID, src)
	if err != nil {
		return err
	}
	log.Printf("wrote %s (%d chapters)", outcome.OutputPath, len(outcome.Chapters))
	return nil
}
