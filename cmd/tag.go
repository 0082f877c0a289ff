package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewTagCommand manages recording tags.
func NewTagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage recording tags",
	}

	cmd.AddCommand(
		newTagCreateCommand(),
		newTagListCommand(),
		newTagSuggestCommand(),
		newTagDeleteCommand(),
		newTagAssignCommand(),
		newTagUnassignCommand(),
	)
	return cmd
}

func parseTagID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tag id %q", arg)
	}
	return id, nil
}

func newTagCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			tag, err := app.Recordings().CreateTag(ctx, args[0])
			if err != nil {
				return err
			}

			return printOutput(app.Config.OutputFormat, tag, func() {
				fmt.Printf("Created tag %d (%s)\n", tag.ID, tag.Name)
			})
		},
	}
}

func newTagListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			tags, err := app.Recordings().ListTags(ctx)
			if err != nil {
				return err
			}

			return printOutput(app.Config.OutputFormat, tags, func() {
				if len(tags) == 0 {
					fmt.Println("No tags.")
					return
				}
				for _, t := range tags {
					fmt.Printf("%d  %s\n", t.ID, t.Name)
				}
			})
		},
	}
}

func newTagSuggestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Suggest tags matching a prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			tags, err := app.Recordings().SuggestTags(ctx, args[0])
			if err != nil {
				return err
			}

			return printOutput(app.Config.OutputFormat, tags, func() {
				for _, t := range tags {
					fmt.Println(t.Name)
				}
			})
		},
	}
}

func newTagDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tag-id>",
		Short: "Delete a tag everywhere",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseTagID(args[0])
			if err != nil {
				return err
			}

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Recordings().DeleteTag(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted tag %d\n", id)
			return nil
		},
	}
}

func newTagAssignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <recording-id> <tag-id>",
		Short: "Assign a tag to a recording",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseTagID(args[1])
			if err != nil {
				return err
			}

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Recordings().AssignTag(ctx, args[0], id); err != nil {
				return err
			}
			fmt.Printf("Assigned tag %d to recording %s\n", id, args[0])
			return nil
		},
	}
}

func newTagUnassignCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <recording-id> <tag-id>",
		Short: "Remove a tag from a recording",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseTagID(args[1])
			if err != nil {
				return err
			}

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Recordings().UnassignTag(ctx, args[0], id); err != nil {
				return err
			}
			fmt.Printf("Removed tag %d from recording %s\n", id, args[0])
			return nil
		},
	}
}
