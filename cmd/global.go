package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewGlobalCommand manages cross-recording speaker profiles.
func NewGlobalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "global",
		Short: "Manage global speaker profiles",
	}

	cmd.AddCommand(
		newGlobalAddCommand(),
		newGlobalListCommand(),
		newGlobalRenameCommand(),
		newGlobalDeleteCommand(),
	)
	return cmd
}

func parseGlobalID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid global speaker id %q", arg)
	}
	return id, nil
}

func newGlobalAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a global speaker profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			gs, err := app.Identity().CreateGlobalProfile(ctx, args[0])
			if err != nil {
				return err
			}

			return printOutput(app.Config.OutputFormat, gs, func() {
				fmt.Printf("Created global profile %s (%s)\n", gs.ID, gs.Name)
			})
		},
	}
}

func newGlobalListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List global speaker profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			profiles, err := app.Identity().ListGlobalProfiles(ctx)
			if err != nil {
				return err
			}

			return printOutput(app.Config.OutputFormat, profiles, func() {
				if len(profiles) == 0 {
					fmt.Println("No global profiles.")
					return
				}
				for _, gs := range profiles {
					fmt.Printf("%s  %s\n", gs.ID, gs.Name)
				}
			})
		},
	}
}

func newGlobalRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <global-speaker-id> <new-name>",
		Short: "Rename a global speaker profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseGlobalID(args[0])
			if err != nil {
				return err
			}

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Identity().RenameGlobalProfile(ctx, id, args[1]); err != nil {
				return err
			}
			fmt.Printf("Renamed global profile %s to %q\n", id, args[1])
			return nil
		},
	}
}

func newGlobalDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <global-speaker-id>",
		Short: "Delete a global profile, clearing links from all speakers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseGlobalID(args[0])
			if err != nil {
				return err
			}

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Identity().DeleteGlobalProfile(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted global profile %s\n", id)
			return nil
		},
	}
}
