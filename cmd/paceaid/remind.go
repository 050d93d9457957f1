package main

import (
	"context"
	"fmt"
	"time"

	"paceaid/internal/db"
	"paceaid/internal/reminder"
	"paceaid/internal/store"
	"paceaid/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Run from cron until a real delivery gateway lands.
var remindCommand = &cli.Command{
	Name:  "remind",
	Usage: "Dispatch reminders due today",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		logger := logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		reminderRepo := store.NewReminderRepository(pool)
		dispatcher := reminder.NewDispatcher(logger)

		reminders, err := reminderRepo.UpcomingReminders(ctx)
		if err != nil {
			return fmt.Errorf("failed to load upcoming reminders: %w", err)
		}

		var sent, failed int
		for _, rem := range reminders {
			if rem.SendDate.After(time.Now()) {
				continue
			}

			if err := dispatcher.Dispatch(ctx, rem); err != nil {
				logger.WithError(err).WithField("reminder_id", rem.ID).Error("dispatch failed")
				if err := reminderRepo.UpdateStatus(ctx, rem.ID, types.ReminderStatusFailed); err != nil {
					logger.WithError(err).WithField("reminder_id", rem.ID).Error("failed to mark reminder failed")
				}
				failed++
				continue
			}

			if err := reminderRepo.UpdateStatus(ctx, rem.ID, types.ReminderStatusSent); err != nil {
				logger.WithError(err).WithField("reminder_id", rem.ID).Error("failed to mark reminder sent")
			}
			sent++
		}

		logger.WithFields(logrus.Fields{"sent": sent, "failed": failed}).Info("reminder dispatch complete")

		return nil
	},
}
