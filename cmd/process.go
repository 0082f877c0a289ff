package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Valtora/nojoin/pkg/ingest"
	"github.com/Valtora/nojoin/pkg/pipeline"
)

// NewProcessCommand runs the fusion pipeline for one recording from
// engine output files.
func NewProcessCommand() *cobra.Command {
	var (
		utterancesPath  string
		diarizationPath string
		charset         string
	)

	cmd := &cobra.Command{
		Use:   "process <recording-id>",
		Short: "Fuse ASR and diarization output into a speaker-attributed transcript",
		Long: `Process reads the ASR utterance stream and the diarization turn
stream for a recording, fuses them into speaker-labelled segments,
consolidates the segments into display turns, and stores the resulting
transcripts. Speaker records and snippet intervals are created for
every diarization label observed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if charset == "" {
				charset = app.Config.Pipeline.Charset
			}

			utteranceFile, err := os.Open(utterancesPath)
			if err != nil {
				return fmt.Errorf("opening utterance stream: %w", err)
			}
			defer utteranceFile.Close()

			utterances, err := ingest.ReadUtterances(utteranceFile, charset)
			if err != nil {
				return err
			}

			diarizationFile, err := os.Open(diarizationPath)
			if err != nil {
				return fmt.Errorf("opening diarization stream: %w", err)
			}
			defer diarizationFile.Close()

			turns, err := ingest.ReadDiarization(diarizationFile, charset)
			if err != nil {
				return err
			}

			result, err := app.Runner().Run(ctx, pipeline.Request{
				RecordingID: args[0],
				Utterances:  utterances,
				Diarization: turns,
			})
			if err != nil {
				return err
			}

			return printOutput(app.Config.OutputFormat, result, func() {
				fmt.Printf("Processed recording %s\n", args[0])
				fmt.Printf("  segments:         %d\n", result.Segments)
				fmt.Printf("  turns:            %d\n", result.Turns)
				fmt.Printf("  speakers:         %d\n", len(result.Labels))
				fmt.Printf("  unknown segments: %d\n", result.UnknownSegments)
			})
		},
	}

	cmd.Flags().StringVar(&utterancesPath, "utterances", "", "path to the ASR utterance JSON stream (required)")
	cmd.Flags().StringVar(&diarizationPath, "diarization", "", "path to the diarization turn JSON stream (required)")
	cmd.Flags().StringVar(&charset, "charset", "", "character set of the stream files if not UTF-8")
	cmd.MarkFlagRequired("utterances")
	cmd.MarkFlagRequired("diarization")

	return cmd
}
