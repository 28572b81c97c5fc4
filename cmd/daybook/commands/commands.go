package commands

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/daybook/core/internal/adapters/notification"
	"github.com/daybook/core/internal/adapters/repository"
	"github.com/daybook/core/internal/application/services"
	"github.com/daybook/core/internal/infrastructure/config"
	"github.com/daybook/core/internal/infrastructure/database"
	"github.com/daybook/core/internal/infrastructure/logger"
	"github.com/daybook/core/internal/infrastructure/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Daybook API server",
		Long:  "Start the Daybook API server with the scheduled rollover and generator jobs",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewGenerateCommand creates a one-shot recurrence generator run.
func NewGenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Materialize recurring task instances",
		Long:  "Run the recurrence generator once over the configured horizon and exit",
		Run: func(cmd *cobra.Command, args []string) {
			withProcessors(func(ctx context.Context, recurrence *services.RecurrenceService, _ *services.AnchorService) error {
				result, err := recurrence.Generate(ctx, time.Now())
				if err != nil {
					return err
				}
				fmt.Printf("Templates: %d\n", result.Templates)
				fmt.Printf("Instances created: %d\n", result.InstancesCreated)
				fmt.Printf("Templates skipped: %d\n", result.TemplatesSkipped)
				return nil
			})
		},
	}
}

// NewRolloverCommand creates a one-shot anchor carry-forward run.
func NewRolloverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Carry yesterday's incomplete anchors into today",
		Long:  "Run the anchor carry-forward processor once and exit",
		Run: func(cmd *cobra.Command, args []string) {
			withProcessors(func(ctx context.Context, _ *services.RecurrenceService, anchors *services.AnchorService) error {
				result, err := anchors.CarryForward(ctx, time.Now())
				if err != nil {
					return err
				}
				fmt.Printf("Candidates: %d\n", result.Candidates)
				fmt.Printf("Carried: %d\n", result.Carried)
				return nil
			})
		},
	}
}

// NewOwnerCommand creates the owner credential helpers.
func NewOwnerCommand() *cobra.Command {
	ownerCmd := &cobra.Command{
		Use:   "owner",
		Short: "Owner credential commands",
		Long:  "Generate the owner password hash and mint access tokens",
	}

	hashCmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for AUTH_PASSWORD_HASH",
		Run: func(cmd *cobra.Command, args []string) {
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				log.Fatal("Password is required")
			}

			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				log.Fatalf("Failed to hash password: %v", err)
			}

			fmt.Println(string(hash))
		},
	}
	hashCmd.Flags().String("password", "", "Owner password (required)")
	ownerCmd.AddCommand(hashCmd)

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for scripts",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				log.Fatalf("Failed to load configuration: %v", err)
			}

			authService := services.NewAuthService(cfg.Auth, logger.NewNop())
			response, err := authService.IssueToken(time.Now())
			if err != nil {
				log.Fatalf("Failed to issue token: %v", err)
			}

			fmt.Println(response.Token)
		},
	}
	ownerCmd.AddCommand(tokenCmd)

	return ownerCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Daybook version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Daybook Core v1.0.0")
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		appLogger.Fatalw("Failed to connect to database", "error", err)
	}
	defer db.Close()

	srv, err := server.New(cfg, db, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	appLogger.Infow("Starting Daybook API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"timezone", cfg.App.Timezone,
	)

	if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		appLogger.Fatalw("Server failed to start", "error", err)
	}
}

// withProcessors wires the processors against the database for a one-shot
// CLI run. Reminders are not scheduled from these runs; the serve process
// owns the notification channel.
func withProcessors(fn func(context.Context, *services.RecurrenceService, *services.AnchorService) error) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		appLogger.Fatalw("Failed to connect to database", "error", err)
	}
	defer db.Close()

	dayLogRepo := repository.NewDayLogRepository(db.DB)
	taskRepo := repository.NewTaskRepository(db.DB)
	cal := cfg.Calendar()

	recurrence := services.NewRecurrenceService(dayLogRepo, taskRepo, notification.NewNoopScheduler(), cal, cfg.Recurrence, appLogger, nil)
	anchors := services.NewAnchorService(dayLogRepo, taskRepo, cal, appLogger, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := fn(ctx, recurrence, anchors); err != nil {
		appLogger.Fatalw("Processor run failed", "error", err)
	}
}

func runMigration(direction string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	m := newMigrator(cfg)

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Migration failed: %v", err)
	}

	if err == migrate.ErrNoChange {
		fmt.Println("No migrations to run")
	} else {
		fmt.Printf("Migration %s completed successfully\n", direction)
	}
}

func showMigrationVersion() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	version, dirty, err := newMigrator(cfg).Version()
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
}

func newMigrator(cfg *config.Config) *migrate.Migrate {
	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		log.Fatalf("Failed to create migration driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}

	return m
}
