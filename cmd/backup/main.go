package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"jugayaprende/internal/config"
	"jugayaprende/internal/database"
	"jugayaprende/internal/logging"
	"jugayaprende/internal/service"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	importInput := importCmd.String("input", "", "Input file path (required)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Load()

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		fatal(logger, "failed to initialize database", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		fatal(logger, "failed to run migrations", err)
	}

	backupService := service.NewBackupService(db, cfg.DatabaseType, logger)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(backupService, logger, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(backupService, logger, *importInput)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(backupService *service.BackupService, logger *slog.Logger, outputPath string) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fatal(logger, "failed to create output directory", err)
		}
	}

	if err := backupService.Export(outputPath); err != nil {
		fatal(logger, "export failed", err)
	}

	if info, err := os.Stat(outputPath); err == nil {
		logger.Info("export complete", "path", outputPath, "size_kb", info.Size()/1024)
	}
}

func handleImport(backupService *service.BackupService, logger *slog.Logger, inputPath string) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		fatal(logger, "input file does not exist", err)
	}

	stats, err := backupService.Import(inputPath)
	if err != nil {
		fatal(logger, "import failed", err)
	}

	logger.Info("import complete",
		"users_created", stats.UsersCreated,
		"users_existing", stats.UsersExisting,
		"configs_created", stats.ConfigsCreated,
		"configs_skipped", stats.ConfigsSkipped,
	)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println("Juga y Aprende backup tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [-output <file>]    Export hosts and question sets to JSON")
	fmt.Println("  backup import -input <file>       Merge a JSON backup into the database")
	fmt.Println()
	fmt.Println("Live game sessions are not part of a backup.")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE          Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./jugayaprende.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
}
