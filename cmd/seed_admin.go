package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/it-helpdesk/helpdesk-service/internal/config"
	"github.com/it-helpdesk/helpdesk-service/internal/database"
	"github.com/it-helpdesk/helpdesk-service/internal/service"
	"github.com/spf13/cobra"
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin [email]",
	Short: "Seed the admin roster when it is empty (defaults to DEFAULT_ADMIN_EMAIL)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSeedAdmin,
}

func runSeedAdmin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	email := cfg.DefaultAdminEmail
	if len(args) == 1 {
		email = args[0]
	}
	if email == "" {
		return fmt.Errorf("no email given and DEFAULT_ADMIN_EMAIL is not set")
	}

	db, err := database.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	adminSvc := service.NewAdminService(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := adminSvc.EnsureDefault(ctx, email); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Printf("seed-admin: roster ensured (default %s)", email)
	return nil
}
