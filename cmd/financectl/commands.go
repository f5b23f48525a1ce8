package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/models/reports"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/spf13/cobra"
)

// adminContext marks CLI work as admin so the tenant guard and access checks allow it.
func adminContext() context.Context {
	ctx := utils.SetIsAdminInContext(context.Background(), true)
	ctx = utils.SetUsernameInContext(ctx, "financectl")
	ctx = utils.SetUserNameInContext(ctx, "financectl")
	return utils.SetSkipTenantScopeInContext(ctx, true)
}

func connect() error {
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		return errors.New("database not initialized; set DB_* env vars")
	}
	return nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run AutoMigrate for every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := connect(); err != nil {
				return err
			}
			if err := models.MigrateTable(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newSeedAdminCommand() *cobra.Command {
	var input models.NewAdminUser
	var baseId string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an admin user, or promote and reset an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := connect(); err != nil {
				return err
			}
			if baseId != "" {
				input.BaseId = &baseId
			}
			user, err := models.CreateAdminUser(adminContext(), &input)
			if err != nil {
				return fmt.Errorf("create admin user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin user ready: uid=%s email=%s\n", user.UID, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Email, "email", "", "admin email (required)")
	cmd.Flags().StringVar(&input.Name, "name", "Administrador", "display name")
	cmd.Flags().StringVar(&input.Password, "password", "", "password, at least 8 characters (required)")
	cmd.Flags().StringVar(&input.Uid, "uid", "", "identity provider uid; generated when empty")
	cmd.Flags().StringVar(&baseId, "base", "", "default client base id")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newExportDRECommand() *cobra.Command {
	var baseId, from, to, out string
	var storeId int

	cmd := &cobra.Command{
		Use:   "export-dre",
		Short: "Write the DRE of a client base to an xlsx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := models.ParseMyDate(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end, err := models.ParseMyDate(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			if err := connect(); err != nil {
				return err
			}

			ctx := utils.InternalContext(adminContext(), baseId)
			if _, err := models.GetClientBase(ctx, baseId); err != nil {
				return fmt.Errorf("client base %s: %w", baseId, err)
			}
			var store *int
			if storeId > 0 {
				store = &storeId
			}
			result, err := reports.GenerateDREReport(ctx, start, end, store)
			if err != nil {
				return err
			}
			buf, err := reports.ExportDREExcel(result)
			if err != nil {
				return err
			}
			if out == "" {
				out = fmt.Sprintf("dre_%s_%s.xlsx", start.String(), end.String())
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d closings)\n", out, result.Consolidated.ClosingCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseId, "base", "", "client base id (required)")
	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD (required)")
	cmd.Flags().IntVar(&storeId, "store", 0, "restrict to one store")
	cmd.Flags().StringVar(&out, "out", "", "output file")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newPubSubSetupCommand() *cobra.Command {
	var topic, subscription, pushEndpoint string

	cmd := &cobra.Command{
		Use:   "pubsub-setup",
		Short: "Create the outbox topic and its subscription when missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if topic == "" {
				topic = strings.TrimSpace(os.Getenv("PUBSUB_TOPIC"))
			}
			if topic == "" {
				return errors.New("--topic or PUBSUB_TOPIC is required")
			}
			if subscription == "" {
				subscription = topic + "-sub"
			}
			endpoint, err := config.PushEndpointWithToken(pushEndpoint)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			client, err := config.GetClient(ctx)
			if err != nil {
				return err
			}
			t, err := config.EnsureTopic(ctx, client, topic)
			if err != nil {
				return err
			}
			if _, err := config.EnsureSubscription(ctx, client, t, config.SubscriptionSpec{
				Name:         subscription,
				PushEndpoint: endpoint,
			}); err != nil {
				return err
			}
			mode := "pull"
			if endpoint != "" {
				mode = "push"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "topic %s and %s subscription %s ready\n", topic, mode, subscription)
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "topic name (default PUBSUB_TOPIC)")
	cmd.Flags().StringVar(&subscription, "subscription", "", "subscription name (default <topic>-sub)")
	cmd.Flags().StringVar(&pushEndpoint, "push-endpoint", os.Getenv("PUBSUB_PUSH_ENDPOINT"), "https URL of POST /pubsub; empty creates a pull subscription")

	return cmd
}

func newBackfillSummariesCommand() *cobra.Command {
	var baseId, from, to string

	cmd := &cobra.Command{
		Use:   "backfill-summaries",
		Short: "Rebuild store daily summaries from transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := models.ParseMyDate(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			end, err := models.ParseMyDate(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			if err := connect(); err != nil {
				return err
			}

			ctx := adminContext()
			baseIds := []string{baseId}
			if baseId == "" {
				bases, err := models.GetClientBases(ctx, nil)
				if err != nil {
					return fmt.Errorf("listing client bases: %w", err)
				}
				baseIds = baseIds[:0]
				for _, b := range bases {
					baseIds = append(baseIds, b.ID)
				}
			}

			for _, id := range baseIds {
				n, err := models.BackfillStoreDailySummaries(utils.InternalContext(ctx, id), id, start, end)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "base %s backfill failed: %v\n", id, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "base %s: %d summary rows rebuilt\n", id, n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseId, "base", "", "client base id; every base when empty")
	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newPurgeIdempotencyCommand() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "purge-idempotency",
		Short: "Delete succeeded idempotency keys older than --older-than",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			if err := connect(); err != nil {
				return err
			}
			n, err := models.PurgeIdempotencyKeys(adminContext(), time.Now().UTC().Add(-olderThan))
			if err != nil {
				return fmt.Errorf("purge: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d idempotency keys deleted\n", n)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "minimum age of the keys to delete")
	return cmd
}
