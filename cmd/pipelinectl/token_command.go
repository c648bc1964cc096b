package main

import (
	"fmt"

	"github.com/maheshrc27/editorial-api/internal/app"
	"github.com/spf13/cobra"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a session token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "user id")
			if err != nil {
				return err
			}
			return ctx.withContainer(cmd.Context(), func(c *app.Container, _ app.Deps) error {
				token, err := c.Services.Auth.IssueToken(cmd.Context(), userID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
}
