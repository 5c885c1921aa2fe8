package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/shenikar/disaster_response_system/internal/config"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/shenikar/disaster_response_system/internal/repository"
	"github.com/shenikar/disaster_response_system/pkg/logger"
	"github.com/shenikar/disaster_response_system/pkg/postgres"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// grantRoleCmd lets an operator promote the first admin or emergency
// accounts, which the HTTP API cannot do without an existing admin.
func grantRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant-role <username> <role>",
		Short: "Set the role of an existing user (user, emergency, admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, role := args[0], models.Role(args[1])
			if !role.Valid() {
				return fmt.Errorf("unknown role %q: want user, emergency or admin", args[1])
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel, cfg.LogFormat)

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL, 1)
			if err != nil {
				return err
			}
			defer dbpool.Close()

			users := repository.NewUserRepository(dbpool)
			user, err := users.GetByUsername(ctx, username)
			if err != nil {
				return err
			}
			user, err = users.UpdateRole(ctx, user.ID, role)
			if err != nil {
				return err
			}

			log.WithFields(logrus.Fields{
				"user_id": user.ID,
				"role":    user.Role,
			}).Info("Role granted from command line")
			fmt.Printf("%s %s is now %s (effective from next login)\n",
				color.New(color.FgGreen).Sprint("OK"), user.Username, color.New(color.FgCyan).Sprint(user.Role))
			return nil
		},
	}
}
