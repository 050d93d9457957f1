package main

import (
	"context"
	"fmt"

	"paceaid/internal/db"
	"paceaid/internal/seed"
	"paceaid/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with a development dataset",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		userRepo := store.NewUserRepository(pool)
		beneficiaryRepo := store.NewBeneficiaryRepository(pool)
		caseRepo := store.NewCaseRepository(pool, cfg.CaseCodePrefix)

		logrus.Info("Seeding admin user...")
		if err := seed.SeedAdminUser(ctx, userRepo); err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}

		logrus.Info("Seeding sample data...")
		if err := seed.SeedSampleData(ctx, beneficiaryRepo, caseRepo); err != nil {
			return fmt.Errorf("failed to seed sample data: %w", err)
		}

		logrus.Info("Seed complete")

		return nil
	},
}
