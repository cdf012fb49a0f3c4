package main

import (
	"flag"
	"os"
	"time"

	"brdgenius-be/internal/config"
	"brdgenius-be/internal/model"
	"brdgenius-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	prune := flag.Duration("prune", 0, "delete snapshots not updated within this duration (e.g. 720h); 0 keeps everything")
	flag.Parse()

	cfg := config.Load()
	if cfg.Database.Connection == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		color.Red("Error: failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Migrating wizard snapshot storage...")
	if err := db.AutoMigrate(&model.WizardSnapshot{}); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}
	color.Green("Table %s is up to date", model.WizardSnapshot{}.TableName())

	if *prune > 0 {
		cutoff := time.Now().Add(-*prune)
		color.Yellow("Pruning snapshots not updated since %s", cutoff.Format(time.RFC3339))
		res := db.Where("updated_at < ?", cutoff).Delete(&model.WizardSnapshot{})
		if res.Error != nil {
			color.Red("Error: prune failed: %v", res.Error)
			os.Exit(1)
		}
		color.Green("Pruned %d snapshot(s)", res.RowsAffected)
	}

	color.Green("Success: migration completed")
}
