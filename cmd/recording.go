package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Valtora/nojoin/pkg/recordings"
)

// NewRecordingCommand manages recording metadata.
func NewRecordingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recording",
		Short: "Manage recordings",
	}

	cmd.AddCommand(
		newRecordingCreateCommand(),
		newRecordingListCommand(),
		newRecordingShowCommand(),
		newRecordingRenameCommand(),
		newRecordingDeleteCommand(),
	)
	return cmd
}

func newRecordingCreateCommand() *cobra.Command {
	var (
		id       string
		format   string
		duration float64
	)

	cmd := &cobra.Command{
		Use:   "create <name> <audio-path>",
		Short: "Register a new recording",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if id == "" {
				id = uuid.New().String()
			}
			rec := &recordings.Recording{
				ID:        id,
				Name:      args[0],
				AudioPath: args[1],
				Format:    format,
			}
			if duration > 0 {
				rec.DurationSeconds = &duration
			}
			if err := app.Recordings().Create(ctx, rec); err != nil {
				return err
			}

			return printOutput(app.Config.OutputFormat, rec, func() {
				fmt.Printf("Created recording %s (%s)\n", rec.ID, rec.Name)
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "recording id (generated when omitted)")
	cmd.Flags().StringVar(&format, "format", "", "audio format (default MP3)")
	cmd.Flags().Float64Var(&duration, "duration", 0, "duration in seconds")
	return cmd
}

func newRecordingListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recordings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			recs, err := app.Recordings().List(ctx)
			if err != nil {
				return err
			}

			return printOutput(app.Config.OutputFormat, recs, func() {
				if len(recs) == 0 {
					fmt.Println("No recordings.")
					return
				}
				for _, rec := range recs {
					fmt.Printf("%-36s  %-10s  %s\n", rec.ID, rec.Status, rec.Name)
				}
			})
		},
	}
}

func newRecordingShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <recording-id>",
		Short: "Show one recording with its speakers and tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			rec, err := app.Recordings().Get(ctx, args[0])
			if err != nil {
				return err
			}
			speakerList, err := app.Identity().ListSpeakers(ctx, rec.ID)
			if err != nil {
				return err
			}
			tags, err := app.Recordings().TagsForRecording(ctx, rec.ID)
			if err != nil {
				return err
			}

			out := struct {
				Recording *recordings.Recording `json:"recording"`
				Speakers  any                   `json:"speakers"`
				Tags      []recordings.Tag      `json:"tags"`
			}{rec, speakerList, tags}

			return printOutput(app.Config.OutputFormat, out, func() {
				fmt.Printf("%s  %s\n", rec.ID, rec.Name)
				fmt.Printf("  status:  %s\n", rec.Status)
				fmt.Printf("  audio:   %s (%s)\n", rec.AudioPath, rec.Format)
				if rec.ProcessedAt != nil {
					fmt.Printf("  processed: %s\n", rec.ProcessedAt.Format("2006-01-02 15:04:05"))
				}
				for _, s := range speakerList {
					linked := ""
					if s.GlobalSpeakerID != nil {
						linked = " (linked)"
					}
					fmt.Printf("  speaker %d: %s%s\n", s.ID, s.DisplayName, linked)
				}
				for _, tag := range tags {
					fmt.Printf("  tag: %s\n", tag.Name)
				}
			})
		},
	}
}

func newRecordingRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <recording-id> <new-name>",
		Short: "Rename a recording",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Recordings().Rename(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Renamed recording %s to %q\n", args[0], args[1])
			return nil
		},
	}
}

func newRecordingDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <recording-id>",
		Short: "Delete a recording and everything attached to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Recordings().Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted recording %s\n", args[0])
			return nil
		},
	}
}
