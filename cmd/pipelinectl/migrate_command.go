package main

import (
	"errors"
	"fmt"

	"github.com/maheshrc27/editorial-api/internal/app"
	"github.com/maheshrc27/editorial-api/internal/repository"
	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withContainer(cmd.Context(), func(_ *app.Container, deps app.Deps) error {
				if deps.DB == nil {
					return errors.New("migrate needs the postgres store")
				}
				if err := repository.Migrate(cmd.Context(), deps.DB); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
				return nil
			})
		},
	}
}
