package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paceaid/internal/coupler"
	"paceaid/internal/db"
	"paceaid/internal/drive"
	"paceaid/internal/server"
	"paceaid/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	beneficiaryRepo := store.NewBeneficiaryRepository(pool)
	caseRepo := store.NewCaseRepository(pool, config.CaseCodePrefix)
	eventRepo := store.NewEventRepository(pool)
	reminderRepo := store.NewReminderRepository(pool)
	documentRepo := store.NewDocumentRepository(pool)
	userRepo := store.NewUserRepository(pool)

	statusCoupler := coupler.New(logger, caseRepo, eventRepo)
	driveService := drive.New(logger, config.DriveRootFolderID)
	oauth := drive.NewOAuth(config.GoogleClientID, config.GoogleClientSecret, config.GoogleRedirectURI)

	srv, err := server.New(
		config,
		logger,
		beneficiaryRepo,
		caseRepo,
		eventRepo,
		reminderRepo,
		documentRepo,
		userRepo,
		statusCoupler,
		driveService,
		oauth,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
