package main

import (
	"fmt"

	"github.com/maheshrc27/editorial-api/internal/policy"
	"github.com/spf13/cobra"
)

func newPolicyCommand() *cobra.Command {
	policyCmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the access policy",
	}

	policyCmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Print the decision table as a JSON rule document",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := policy.ExportJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(doc))
			return nil
		},
	})

	return policyCmd
}
