// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/canonical/tenant-crm/internal/db"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/storage"
	"github.com/canonical/tenant-crm/internal/tenancy"
	"github.com/canonical/tenant-crm/internal/tracing"
	"github.com/canonical/tenant-crm/internal/types"
	"github.com/canonical/tenant-crm/pkg/authentication"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage tenant users",
}

var createUserCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user in a tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		tenantID, _ := cmd.Flags().GetString("tenant")
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		roles, _ := cmd.Flags().GetStringSlice("role")

		ctx, err := tenantContext(cmd.Context(), tenantID)
		if err != nil {
			return err
		}

		client, logger, err := newCLIClient(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		var user *types.User

		err = client.WithTx(ctx, func(ctx context.Context) error {
			user, err = createUser(ctx, client, logger, username, email, password)
			if err != nil {
				return err
			}

			return assignRoles(ctx, client, logger, user.ID, roles)
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "User %s created with ID %s\n", user.Username, user.ID)
		return nil
	},
}

var listUsersCmd = &cobra.Command{
	Use:   "list",
	Short: "List users of a tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		tenantID, _ := cmd.Flags().GetString("tenant")

		ctx, err := tenantContext(cmd.Context(), tenantID)
		if err != nil {
			return err
		}

		client, logger, err := newCLIClient(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		users, err := storage.NewTenantStore[types.User](
			client, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("tenant-crm-cli", logger), logger,
		).FindMany(ctx, nil, storage.WithOrderBy("username", false))
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "USER_ID\tUSERNAME\tEMAIL\tCREATED_AT")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

// tenantContext binds tenantID to ctx the same way the HTTP middleware does.
func tenantContext(ctx context.Context, tenantID string) (context.Context, error) {
	id, err := uuid.Parse(tenantID)
	if err != nil {
		return nil, fmt.Errorf("invalid tenant %q: %w", tenantID, tenancy.ErrTenantInvalid)
	}

	return tenancy.WithContext(ctx, tenancy.RequestContext{TenantID: id.String()}), nil
}

func createUser(ctx context.Context, client db.DBClientInterface, logger logging.LoggerInterface, username, email, password string) (*types.User, error) {
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("tenant-crm-cli", logger)

	if username == "" || email == "" {
		return nil, errors.New("username and email are required")
	}

	hash, salt, err := authentication.NewHasher(1, tracer, monitor, logger).Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &types.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
	}

	if err := storage.NewTenantStore[types.User](client, tracer, monitor, logger).Create(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("user %s already exists in this tenant: %w", username, err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(createUserCmd)
	usersCmd.AddCommand(listUsersCmd)

	for _, c := range []*cobra.Command{createUserCmd, listUsersCmd} {
		addDSNFlag(c)
		c.Flags().String("tenant", "", "Tenant ID")
		_ = c.MarkFlagRequired("tenant")
	}

	createUserCmd.Flags().String("username", "", "Username, unique within the tenant")
	createUserCmd.Flags().String("email", "", "Email, unique within the tenant")
	createUserCmd.Flags().String("password", "", "Password")
	createUserCmd.Flags().StringSlice("role", nil, "Role to grant, repeatable")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
}
