package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"vinvest/internal/database"
	"vinvest/internal/logger"
)

const usage = "usage: migrate <up|down|version> [N]"

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	cfg, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	migrator, err := database.NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer migrator.Close()

	log := logger.Named("migrate")

	switch args[0] {
	case "up":
		applied, err := migrator.Up()
		if err != nil {
			return err
		}
		if !applied {
			log.Info("Schema already up to date")
			return nil
		}
		log.Info("Migrations applied successfully")

	case "down":
		steps := 1
		if len(args) > 1 {
			if steps, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid step count: %w", err)
			}
		}
		if err := migrator.Down(steps); err != nil {
			return err
		}
		log.Infow("Rolled back migrations", "steps", steps)

	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		log.Infow("Schema version", "version", version, "dirty", dirty)

	default:
		return fmt.Errorf("unknown command %q; %s", args[0], usage)
	}

	return nil
}
