// Package main provides the nojoin CLI entry point.
// nojoin turns transcription and diarization output into
// speaker-attributed transcripts and manages speaker identity.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Valtora/nojoin/cmd"
	"github.com/Valtora/nojoin/pkg/buildinfo"
)

var rootCmd = &cobra.Command{
	Use:   "nojoin",
	Short: "Speaker-attributed transcript tool",
	Long: `nojoin fuses speech-to-text utterances with speaker diarization turns
into speaker-attributed transcripts, and keeps speaker names consistent
across the transcript text and the database when speakers are renamed,
merged, or deleted.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       buildinfo.String(),
}

func init() {
	cmd.RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(
		cmd.NewProcessCommand(),
		cmd.NewRecordingCommand(),
		cmd.NewSpeakerCommand(),
		cmd.NewGlobalCommand(),
		cmd.NewTranscriptCommand(),
		cmd.NewTagCommand(),
		cmd.NewMigrateCommand(),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
