package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Valtora/nojoin/pkg/transcript"
)

// NewTranscriptCommand reads stored transcripts.
func NewTranscriptCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcript",
		Short: "Inspect stored transcripts",
	}

	cmd.AddCommand(
		newTranscriptShowCommand(),
		newTranscriptLabelsCommand(),
	)
	return cmd
}

func parseKind(s string) (transcript.Kind, error) {
	switch transcript.Kind(s) {
	case transcript.KindRaw:
		return transcript.KindRaw, nil
	case transcript.KindDiarized:
		return transcript.KindDiarized, nil
	default:
		return "", fmt.Errorf("invalid transcript kind %q (want raw or diarized)", s)
	}
}

func newTranscriptShowCommand() *cobra.Command {
	var kindFlag string
	var withNames bool

	cmd := &cobra.Command{
		Use:   "show <recording-id>",
		Short: "Print a recording's transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			recordingID := args[0]

			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
			}

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			text, err := app.Transcripts().Get(ctx, recordingID, kind)
			if err != nil {
				return err
			}

			if withNames {
				names, err := labelNames(cmd, app, recordingID)
				if err != nil {
					return err
				}
				text = transcript.RenderDisplay(text, names)
			}

			fmt.Print(text)
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", string(transcript.KindDiarized), "Transcript kind (raw or diarized)")
	cmd.Flags().BoolVar(&withNames, "names", false, "Substitute speaker display names for diarization labels")
	return cmd
}

// labelNames maps each diarization label on the recording to the
// display name of its associated speaker.
func labelNames(cmd *cobra.Command, app *App, recordingID string) (map[string]string, error) {
	ctx := cmd.Context()
	store := app.Speakers()

	assocs, err := store.ListAssociations(ctx, recordingID)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]string)
	spks, err := store.ListSpeakers(ctx, recordingID)
	if err != nil {
		return nil, err
	}
	for _, s := range spks {
		byID[s.ID] = s.DisplayName
	}

	names := make(map[string]string, len(assocs))
	for _, a := range assocs {
		if name, ok := byID[a.SpeakerID]; ok {
			names[a.DiarizationLabel] = name
		}
	}
	return names, nil
}

func newTranscriptLabelsCommand() *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "labels <recording-id>",
		Short: "List the distinct speaker labels in a transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
			}

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			text, err := app.Transcripts().Get(ctx, args[0], kind)
			if err != nil {
				return err
			}

			labels := transcript.ExtractLabels(text)
			return printOutput(app.Config.OutputFormat, labels, func() {
				for _, l := range labels {
					fmt.Println(l)
				}
			})
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", string(transcript.KindDiarized), "Transcript kind (raw or diarized)")
	return cmd
}
