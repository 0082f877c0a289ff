package cmd

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewSpeakerCommand manages per-recording speaker identities.
func NewSpeakerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speaker",
		Short: "Manage speakers within a recording",
	}

	cmd.AddCommand(
		newSpeakerListCommand(),
		newSpeakerRenameCommand(),
		newSpeakerMergeCommand(),
		newSpeakerDeleteCommand(),
		newSpeakerDeleteUnknownCommand(),
		newSpeakerLinkCommand(),
		newSpeakerUnlinkCommand(),
	)
	return cmd
}

func parseSpeakerID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid speaker id %q", arg)
	}
	return id, nil
}

func newSpeakerListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <recording-id>",
		Short: "List the speakers in a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			list, err := app.Identity().ListSpeakers(ctx, args[0])
			if err != nil {
				return err
			}

			return printOutput(app.Config.OutputFormat, list, func() {
				if len(list) == 0 {
					fmt.Println("No speakers.")
					return
				}
				for _, s := range list {
					linked := ""
					if s.GlobalSpeakerID != nil {
						linked = fmt.Sprintf("  -> %s", s.GlobalSpeakerID)
					}
					fmt.Printf("%d\t%s%s\n", s.ID, s.DisplayName, linked)
				}
			})
		},
	}
}

func newSpeakerRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <speaker-id> <new-name>",
		Short: "Rename a speaker (transcript text is untouched)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseSpeakerID(args[0])
			if err != nil {
				return err
			}

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Identity().Rename(ctx, id, args[1]); err != nil {
				return err
			}
			fmt.Printf("Renamed speaker %d to %q\n", id, args[1])
			return nil
		},
	}
}

func newSpeakerMergeCommand() *cobra.Command {
	var target int64

	cmd := &cobra.Command{
		Use:   "merge <recording-id> <speaker-id>...",
		Short: "Merge speakers into one, rewriting the transcript",
		Long: `Merge folds the listed speakers into the target speaker. Their
diarization labels are replaced with the target's label throughout the
diarized transcript, their associations are removed, and orphaned
speaker rows are deleted. The operation is atomic: if the rewrite
changes no lines, nothing is modified.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sources := make([]int64, 0, len(args)-1)
			for _, arg := range args[1:] {
				id, err := parseSpeakerID(arg)
				if err != nil {
					return err
				}
				sources = append(sources, id)
			}

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			count, err := app.Identity().Merge(ctx, args[0], sources, target)
			if err != nil {
				return err
			}
			fmt.Printf("Merged %d speaker(s) into %d; %d transcript line(s) rewritten\n",
				len(sources), target, count)
			return nil
		},
	}

	cmd.Flags().Int64Var(&target, "into", 0, "target speaker id (required)")
	cmd.MarkFlagRequired("into")
	return cmd
}

func newSpeakerDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <recording-id> <speaker-id>",
		Short: "Remove a speaker and their transcript lines from a recording",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseSpeakerID(args[1])
			if err != nil {
				return err
			}

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			count, err := app.Identity().Delete(ctx, args[0], id)
			if err != nil {
				return err
			}
			fmt.Printf("Deleted speaker %d; %d transcript line(s) affected\n", id, count)
			return nil
		},
	}
}

func newSpeakerDeleteUnknownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-unknown <recording-id>",
		Short: "Remove the Unknown speaker and undiarized lines from a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			count, err := app.Identity().DeleteUnknown(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Deleted Unknown speaker; %d transcript line(s) affected\n", count)
			return nil
		},
	}
}

func newSpeakerLinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "link <speaker-id> <global-speaker-id>",
		Short: "Link a speaker to a global speaker profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseSpeakerID(args[0])
			if err != nil {
				return err
			}
			globalID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid global speaker id %q", args[1])
			}

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Identity().LinkToGlobal(ctx, id, globalID); err != nil {
				return err
			}
			fmt.Printf("Linked speaker %d to global profile %s\n", id, globalID)
			return nil
		},
	}
}

func newSpeakerUnlinkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <speaker-id>",
		Short: "Clear a speaker's global profile link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseSpeakerID(args[0])
			if err != nil {
				return err
			}

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Identity().Unlink(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Unlinked speaker %d\n", id)
			return nil
		},
	}
}
