package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/investdesk/core/internal/adapters/repository"
	"github.com/investdesk/core/internal/application/services"
	"github.com/investdesk/core/internal/domain/entities"
	"github.com/investdesk/core/internal/infrastructure/config"
	"github.com/investdesk/core/internal/infrastructure/logger"
	"github.com/investdesk/core/internal/infrastructure/server"
	"github.com/investdesk/core/internal/infrastructure/storage"
	"github.com/investdesk/core/internal/ports"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the InvestDesk API server",
		Long:  "Start the InvestDesk API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewBackupCommand creates the backup command with subcommands
func NewBackupCommand() *cobra.Command {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Data file backup commands",
		Long:  "Run, list, prune, and restore snapshots of the JSON data files",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Snapshot all data files",
		Run: func(cmd *cobra.Command, args []string) {
			force, _ := cmd.Flags().GetBool("force")
			runBackup(force)
		},
	}
	runCmd.Flags().Bool("force", false, "Snapshot even if the backup interval has not elapsed")
	backupCmd.AddCommand(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List existing snapshots, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			file, _ := cmd.Flags().GetString("file")
			listBackups(file)
		},
	}
	listCmd.Flags().String("file", "", "Only show snapshots of this data file")
	backupCmd.AddCommand(listCmd)

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Prune old snapshots",
		Run: func(cmd *cobra.Command, args []string) {
			keep, _ := cmd.Flags().GetInt("keep")
			cleanupBackups(keep)
		},
	}
	cleanupCmd.Flags().Int("keep", 0, "Snapshots to keep per data file (default: configured retention)")
	backupCmd.AddCommand(cleanupCmd)

	restoreCmd := &cobra.Command{
		Use:   "restore <backup>",
		Short: "Restore a data file from a snapshot",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			target, _ := cmd.Flags().GetString("target")
			restoreBackup(args[0], target)
		},
	}
	restoreCmd.Flags().String("target", "", "Data file to overwrite (default: inferred from the snapshot name)")
	backupCmd.AddCommand(restoreCmd)

	return backupCmd
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Create and manage back office users",
	}

	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		Run: func(cmd *cobra.Command, args []string) {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")
			name, _ := cmd.Flags().GetString("name")

			if email == "" || password == "" {
				log.Fatal("Email and password are required")
			}

			createUser(email, password, role, name)
		},
	}

	createUserCmd.Flags().String("email", "", "User email (required)")
	createUserCmd.Flags().String("password", "", "User password (required)")
	createUserCmd.Flags().String("role", "editor", "User role (admin, editor)")
	createUserCmd.Flags().String("name", "", "Display name")

	userCmd.AddCommand(createUserCmd)
	return userCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print InvestDesk version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("InvestDesk Core v1.0.0")
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
	defer appLogger.Sync()

	srv, err := server.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	appLogger.Infow("Starting InvestDesk API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
	)

	if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		appLogger.Fatalw("Server failed to start", "error", err)
	}
}

// newBackupManager builds the storage stack the commands below share.
func newBackupManager() (*storage.BackupManager, *storage.Store, *config.Config, *logger.Logger) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	locks := storage.NewLockManager(cfg.Storage.LockTimeout)
	store := storage.NewStore(locks, appLogger)
	backups := storage.NewBackupManager(store, cfg.Storage.DataDir, cfg.Storage.BackupDir,
		cfg.Storage.BackupInterval, cfg.Storage.BackupRetention, appLogger)
	store.AttachSnapshotter(backups)

	return backups, store, cfg, appLogger
}

func runBackup(force bool) {
	backups, _, _, appLogger := newBackupManager()
	defer appLogger.Sync()

	if err := backups.BackupAll(context.Background(), force); err != nil {
		log.Fatalf("Backup failed: %v", err)
	}
	fmt.Println("Backup completed")
}

func listBackups(file string) {
	backups, _, _, appLogger := newBackupManager()
	defer appLogger.Sync()

	names, err := backups.ListBackups(file)
	if err != nil {
		log.Fatalf("Failed to list backups: %v", err)
	}

	if len(names) == 0 {
		fmt.Println("No backups found")
		return
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func cleanupBackups(keep int) {
	backups, _, _, appLogger := newBackupManager()
	defer appLogger.Sync()

	if err := backups.CleanupOldBackups(keep); err != nil {
		log.Fatalf("Backup cleanup failed: %v", err)
	}
	fmt.Println("Backup cleanup completed")
}

func restoreBackup(backup, target string) {
	backups, _, _, appLogger := newBackupManager()
	defer appLogger.Sync()

	if err := backups.RestoreFromBackup(context.Background(), backup, target); err != nil {
		log.Fatalf("Restore failed: %v", err)
	}
	fmt.Println("Restore completed")
}

func createUser(email, password, role, name string) {
	_, store, cfg, appLogger := newBackupManager()
	defer appLogger.Sync()

	userRepo := repository.NewUserRepository(store, cfg.Storage.DataDir, appLogger)
	userService := services.NewUserService(userRepo, cfg.Security.BcryptCost, appLogger)

	user, err := userService.CreateUser(context.Background(), ports.CreateUserRequest{
		Email:    email,
		Password: password,
		Name:     name,
		Role:     entities.UserRole(role),
	})
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("User created successfully:\n")
	fmt.Printf("  ID: %s\n", user.ID)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  Role: %s\n", user.Role)
	if user.Name != "" {
		fmt.Printf("  Name: %s\n", user.Name)
	}
}
