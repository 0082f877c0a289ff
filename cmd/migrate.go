package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Valtora/nojoin/pkg/db"
)

// NewMigrateCommand creates or updates the database schema.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := db.InitSchema(ctx, app.Pool()); err != nil {
				return err
			}
			fmt.Println("Schema is up to date.")
			return nil
		},
	}
}
