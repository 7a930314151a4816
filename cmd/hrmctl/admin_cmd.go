package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/iota-uz/hrdesk/internal/server"
	"github.com/iota-uz/hrdesk/pkg/authn"
	"github.com/iota-uz/hrdesk/pkg/composables"
	"github.com/iota-uz/hrdesk/pkg/configuration"
)

func newTokenCmd(cfg *settings) *cobra.Command {
	var (
		tenant string
		user   string
		email  string
		roles  []string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed bearer token for development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid tenant: %w", err)
			}
			userID := uuid.New()
			if user != "" {
				if userID, err = uuid.Parse(user); err != nil {
					return fmt.Errorf("invalid user: %w", err)
				}
			}
			secret := cfg.String(cfgKeySecret)
			if secret == "" {
				secret = configuration.Use().Auth.JWTSecret
			}
			issuer := authn.NewIssuer(secret, cfg.String(cfgKeyIssuer), ttl)
			token, err := issuer.Issue(authn.AuthState{
				UserID:   userID,
				TenantID: tenantID,
				Email:    email,
				Roles:    roles,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant id")
	cmd.Flags().StringVar(&user, "user", "", "user id, random when empty")
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringSliceVar(&roles, "role", []string{authn.RoleAdmin}, "roles granted by the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var down, status bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or list database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := configuration.Use()
			defer conf.Unload()
			rt, err := server.NewRuntime(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer rt.Close()
			migrations := rt.App.Migrations()
			switch {
			case status:
				rows, err := migrations.Status(cmd.Context())
				if err != nil {
					return err
				}
				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.Header("Module", "Version", "Applied", "Path")
				for _, r := range rows {
					applied := "pending"
					if r.Applied {
						applied = r.AppliedAt.Format(time.RFC3339)
					}
					if err := table.Append(r.Module, fmt.Sprint(r.Version), applied, r.Path); err != nil {
						return err
					}
				}
				return table.Render()
			case down:
				return migrations.Rollback(cmd.Context())
			default:
				return migrations.Run(cmd.Context())
			}
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back the latest migration of every module")
	cmd.Flags().BoolVar(&status, "status", false, "list migrations and whether they are applied")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var tenant string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write demo HR records for a tenant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid tenant: %w", err)
			}
			conf := configuration.Use()
			defer conf.Unload()
			rt, err := server.NewRuntime(cmd.Context(), conf)
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := rt.App.Migrations().Run(cmd.Context()); err != nil {
				return err
			}
			ctx := composables.WithAuthState(cmd.Context(), authn.AuthState{
				UserID:   uuid.Nil,
				TenantID: tenantID,
				Roles:    []string{authn.RoleAdmin},
			})
			ctx = composables.WithPool(ctx, rt.Pool)
			return rt.App.Seeder().Seed(ctx, rt.App)
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant id")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
