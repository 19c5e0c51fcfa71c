// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/spf13/cobra"

	"github.com/canonical/tenant-crm/internal/config"
	"github.com/canonical/tenant-crm/internal/db"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/storage"
	"github.com/canonical/tenant-crm/internal/tracing"
	"github.com/canonical/tenant-crm/internal/types"
)

const (
	seedUsername = "dev"
	seedEmail    = "dev@example.com"
	seedPassword = "DevPassword123!"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a development tenant",
	Long:  `Create the development user with the Admin role and a handful of sample contacts. Running it twice is a no-op.`,
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

		return client.WithTx(ctx, func(ctx context.Context) error {
			return seed(ctx, client, logger)
		})
	},
}

func seed(ctx context.Context, client db.DBClientInterface, logger logging.LoggerInterface) error {
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("tenant-crm-cli", logger)

	// looked up first, a unique violation would abort the surrounding transaction
	user, err := storage.NewTenantStore[types.User](client, tracer, monitor, logger).FindOne(ctx, sq.Eq{"username": seedUsername})

	switch {
	case err == nil:
		logger.Infof("user %s already present, skipping", seedUsername)
	case errors.Is(err, storage.ErrNotFound):
		user, err = createUser(ctx, client, logger, seedUsername, seedEmail, seedPassword)
		if err != nil {
			return err
		}
		logger.Infof("created user %s (%s)", user.Username, user.ID)
	default:
		return err
	}

	if err := assignRoles(ctx, client, logger, user.ID, []string{types.AdminRole}); err != nil {
		return err
	}

	contacts := storage.NewTenantStore[types.Contact](client, tracer, monitor, logger)

	count, err := contacts.Count(ctx, nil)
	if err != nil {
		return err
	}

	if count > 0 {
		logger.Infof("tenant already has %d contacts, skipping", count)
		return nil
	}

	samples := sampleContacts()
	for _, c := range samples {
		if err := contacts.Create(ctx, c); err != nil {
			return fmt.Errorf("failed to seed contact %s %s: %w", c.FirstName, c.LastName, err)
		}
	}

	logger.Infof("seeded %d contacts", len(samples))

	return nil
}

func sampleContacts() []*types.Contact {
	company := func(s string) *string { return &s }

	return []*types.Contact{
		{
			FirstName:   "Ada",
			LastName:    "Lovelace",
			ContactType: types.ContactTypeMentor,
			Company:     company("Analytical Engines"),
			Tags:        types.Tags{"math", "engines"},
			IsPriority:  true,
		},
		{
			FirstName:   "Grace",
			LastName:    "Hopper",
			ContactType: types.ContactTypeIndustryPeer,
			Company:     company("Navy"),
			Tags:        types.Tags{"compilers"},
		},
		{
			FirstName:   "Alan",
			LastName:    "Turing",
			ContactType: types.ContactTypeColleague,
			Tags:        types.Tags{},
		},
	}
}

func init() {
	addDSNFlag(seedCmd)
	seedCmd.Flags().String("tenant", config.DevelopmentTenantID, "Tenant ID to seed")

	rootCmd.AddCommand(seedCmd)
}
