// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Browse contacts through a running server",
}

var listContactsCmd = &cobra.Command{
	Use:   "list",
	Short: "List the contacts visible to a token",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		page, _ := cmd.Flags().GetInt64("page")
		size, _ := cmd.Flags().GetInt64("size")

		list, err := newAPIClient(httpEndpoint, tenantHeader, "", token).ListContacts(cmd.Context(), page, size)
		if err != nil {
			return fmt.Errorf("failed to list contacts: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tPRIORITY")
		for _, c := range list.Data {
			fmt.Fprintf(w, "%s\t%s %s\t%s\t%t\n", c.ID, c.FirstName, c.LastName, c.ContactType, c.IsPriority)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d contacts\n", len(list.Data), list.Meta.Total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(contactsCmd)
	contactsCmd.AddCommand(listContactsCmd)

	listContactsCmd.Flags().String("token", "", "Access token, see the token command")
	listContactsCmd.Flags().Int64("page", 1, "Page number")
	listContactsCmd.Flags().Int64("size", 50, "Page size")
	_ = listContactsCmd.MarkFlagRequired("token")
}
