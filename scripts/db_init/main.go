package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"

	dbfs "github.com/plastmart/b2b/db"
	"github.com/plastmart/b2b/internal/config"
	"github.com/plastmart/b2b/internal/db"
)

func main() {
	noSeed := flag.Bool("no-seed", false, "apply migrations only")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	var seeds fs.FS = dbfs.SeedFiles
	if *noSeed {
		seeds = nil
	}
	if err := db.Migrate(ctx, database, dbfs.Migrations, seeds); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	var applied int
	if err := database.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&applied); err != nil {
		fmt.Fprintf(os.Stderr, "Read migrations: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database %s initialized (%d migrations applied).\n", cfg.DatabasePath, applied)
}
